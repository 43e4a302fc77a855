package tls

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"strings"

	"github.com/coupergateway/authproxy/errors"
)

// ParseCertificate reads a certificate from the given bytes.
// Either as PEM format where chained ones are considered or just plain DER format.
// The private key may be part of cert or given separately as PEM or DER.
func ParseCertificate(cert, key []byte) (certificate tls.Certificate, err error) {
	tlsErr := errors.Configuration.Label("tls")

	var keyDERBlock *pem.Block
	rest := cert
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type == "CERTIFICATE" {
			certificate.Certificate = append(certificate.Certificate, block.Bytes)
		} else if strings.HasSuffix(block.Type, " PRIVATE KEY") {
			keyDERBlock = block
		}
	}

	// assume DER format
	if len(certificate.Certificate) == 0 {
		certificate.Certificate = [][]byte{cert}
	}

	certificate.Leaf, err = x509.ParseCertificate(certificate.Certificate[0])
	if err != nil {
		return tls.Certificate{}, tlsErr.Message("invalid certificate").With(err)
	}

	keyBytes := key
	if len(keyBytes) == 0 && keyDERBlock != nil {
		keyBytes = keyDERBlock.Bytes
	} else if block, _ := pem.Decode(key); block != nil {
		keyBytes = block.Bytes
	}
	if len(keyBytes) == 0 {
		return tls.Certificate{}, tlsErr.Message("missing private key")
	}

	certificate.PrivateKey, err = parsePrivateKey(keyBytes)
	if err != nil {
		return tls.Certificate{}, err
	}

	if !matchesPublicKey(certificate.Leaf.PublicKey, certificate.PrivateKey) {
		return tls.Certificate{}, tlsErr.Message("private key does not match certificate public key")
	}

	return certificate, nil
}

// Attempt to parse the given private key DER block. OpenSSL 0.9.8 generates
// PKCS #1 private keys by default, while OpenSSL 1.0.0 generates PKCS #8 keys.
// OpenSSL ecparam generates SEC1 EC private keys for ECDSA. We try all three.
func parsePrivateKey(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		switch key := key.(type) {
		case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey:
			return key, nil
		default:
			return nil, errors.Configuration.Label("tls").Message("found unknown private key type in PKCS#8 wrapping")
		}
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}

	return nil, errors.Configuration.Label("tls").Message("failed to parse private key")
}

func matchesPublicKey(pub crypto.PublicKey, priv crypto.PrivateKey) bool {
	signer, ok := priv.(crypto.Signer)
	if !ok {
		return false
	}
	key, ok := signer.Public().(interface{ Equal(crypto.PublicKey) bool })
	return ok && key.Equal(pub)
}

// NewCertPool returns a pool with all PEM or DER encoded certificates of the given bytes.
func NewCertPool(caCerts ...[]byte) (*x509.CertPool, error) {
	pool := x509.NewCertPool()
	if err := AppendCertificates(pool, caCerts...); err != nil {
		return nil, err
	}
	return pool, nil
}

// AppendCertificates adds PEM or DER encoded certificates to the given pool.
func AppendCertificates(pool *x509.CertPool, caCerts ...[]byte) error {
	for _, ca := range caCerts {
		if pool.AppendCertsFromPEM(ca) {
			continue
		}
		cert, err := x509.ParseCertificate(ca)
		if err != nil {
			return errors.Configuration.Label("tls").Message("invalid ca certificate").With(err)
		}
		pool.AddCert(cert)
	}
	return nil
}
