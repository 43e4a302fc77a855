package test

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"time"
)

// SelfSignedCertificate holds a root CA with a server and a client certificate
// signed by it.
type SelfSignedCertificate struct {
	CA                *tls.Certificate
	CACertificate     PEM
	Server            *tls.Certificate
	ServerCertificate PEM
	Client            *tls.Certificate
	ClientCertificate PEM
}

type PEM struct {
	Certificate []byte
	PrivateKey  []byte
}

// NewCertificate creates certificates valid for the given duration.
// If no hosts are provided all localhost variants will be used.
func NewCertificate(duration time.Duration, hosts ...string) (*SelfSignedCertificate, error) {
	rootCA, rootPEM, err := newCertificateAuthority("authproxy test CA")
	if err != nil {
		return nil, err
	}

	if len(hosts) == 0 {
		hosts = []string{"127.0.0.1", "::1", "localhost"}
	}

	serverTemplate := defaultTemplate(duration)
	serverTemplate.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			serverTemplate.IPAddresses = append(serverTemplate.IPAddresses, ip)
		} else {
			serverTemplate.DNSNames = append(serverTemplate.DNSNames, h)
		}
	}

	srvCrt, srvPEM, err := newSignedCertificate(&serverTemplate, rootCA)
	if err != nil {
		return nil, err
	}

	clientTemplate := defaultTemplate(duration)
	clientTemplate.Subject.CommonName = "authproxy"
	clientTemplate.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth}

	clientCrt, clientPEM, err := newSignedCertificate(&clientTemplate, rootCA)
	if err != nil {
		return nil, err
	}

	return &SelfSignedCertificate{
		CA:                rootCA,
		CACertificate:     *rootPEM,
		Server:            srvCrt,
		ServerCertificate: *srvPEM,
		Client:            clientCrt,
		ClientCertificate: *clientPEM,
	}, nil
}

func newCertificateAuthority(name string) (*tls.Certificate, *PEM, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	template := defaultTemplate(time.Hour * 24)
	template.IsCA = true
	template.KeyUsage |= x509.KeyUsageCertSign | x509.KeyUsageCRLSign
	template.Subject.CommonName = name
	template.BasicConstraintsValid = true
	template.MaxPathLen = 1

	caDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return nil, nil, err
	}
	return newCertificateFromDER(caDER, key)
}

func newSignedCertificate(template *x509.Certificate, parent *tls.Certificate) (*tls.Certificate, *PEM, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, err
	}

	der, err := x509.CreateCertificate(rand.Reader, template, parent.Leaf, &key.PublicKey, parent.PrivateKey)
	if err != nil {
		return nil, nil, err
	}
	return newCertificateFromDER(der, key)
}

func newCertificateFromDER(der []byte, key crypto.PrivateKey) (*tls.Certificate, *PEM, error) {
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})

	privBytes, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, err
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes})

	certificate, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, nil, err
	}
	certificate.Leaf, err = x509.ParseCertificate(der)
	return &certificate, &PEM{certPEM, keyPEM}, err
}

func newSerialNumber() *big.Int {
	serialNumberLimit := new(big.Int).Lsh(big.NewInt(1), 128)
	i, _ := rand.Int(rand.Reader, serialNumberLimit)
	return i
}

func defaultTemplate(duration time.Duration) x509.Certificate {
	now := time.Now()
	return x509.Certificate{
		Subject: pkix.Name{
			Country:            []string{"DE"},
			Organization:       []string{"authproxy"},
			OrganizationalUnit: []string{"Development"},
		},
		KeyUsage:     x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		NotBefore:    now.Add(-time.Minute),
		NotAfter:     now.Add(duration),
		SerialNumber: newSerialNumber(),
	}
}
