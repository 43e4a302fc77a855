package tls_test

import (
	"bytes"
	"encoding/pem"
	goerrors "errors"
	"testing"
	"time"

	"github.com/coupergateway/authproxy/errors"
	"github.com/coupergateway/authproxy/internal/test"
	"github.com/coupergateway/authproxy/internal/tls"
)

func TestParseCertificate(t *testing.T) {
	helper := test.New(t)

	selfSigned, err := test.NewCertificate(time.Hour)
	helper.Must(err)

	other, err := test.NewCertificate(time.Hour)
	helper.Must(err)

	clientPEM := selfSigned.ClientCertificate
	derCert := selfSigned.Client.Certificate[0]
	keyBlock, _ := pem.Decode(clientPEM.PrivateKey)

	combined := bytes.Join([][]byte{clientPEM.Certificate, clientPEM.PrivateKey}, nil)

	tests := []struct {
		name    string
		cert    []byte
		key     []byte
		wantErr bool
	}{
		{"pem", clientPEM.Certificate, clientPEM.PrivateKey, false},
		{"der certificate, der key", derCert, keyBlock.Bytes, false},
		{"combined pem", combined, nil, false},
		{"missing key", clientPEM.Certificate, nil, true},
		{"invalid certificate", []byte("-----BEGIN CERTIFICATE-----\nAAAA\n-----END CERTIFICATE-----\n"), clientPEM.PrivateKey, true},
		{"garbage certificate", []byte("not a certificate"), clientPEM.PrivateKey, true},
		{"garbage key", clientPEM.Certificate, []byte("not a key"), true},
		{"mismatched key", clientPEM.Certificate, other.ClientCertificate.PrivateKey, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(subT *testing.T) {
			certificate, err := tls.ParseCertificate(tt.cert, tt.key)
			if (err != nil) != tt.wantErr {
				subT.Fatalf("ParseCertificate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !goerrors.Is(err, errors.Configuration) {
					subT.Errorf("expected configuration error, got: %#v", err)
				}
				return
			}
			if certificate.Leaf == nil || certificate.PrivateKey == nil {
				subT.Fatal("expected leaf and private key")
			}
			if certificate.Leaf.Subject.CommonName != "authproxy" {
				subT.Errorf("unexpected common name: %q", certificate.Leaf.Subject.CommonName)
			}
		})
	}
}

func TestNewCertPool(t *testing.T) {
	helper := test.New(t)

	selfSigned, err := test.NewCertificate(time.Hour)
	helper.Must(err)

	pool, err := tls.NewCertPool(selfSigned.CACertificate.Certificate, selfSigned.CA.Certificate[0])
	helper.Must(err)
	if pool == nil {
		t.Fatal("expected a pool")
	}

	if _, err = tls.NewCertPool([]byte("invalid")); err == nil {
		t.Error("expected an error for invalid ca")
	}
}
