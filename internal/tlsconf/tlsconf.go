// Package tlsconf builds the TLS configurations used by the QUIC transport.
package tlsconf

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"time"

	"github.com/pkg/errors"
)

// Server returns a server config using the key pair in certFile and keyFile,
// or a fresh self-signed certificate if both are empty.
func Server(certFile, keyFile string) (*tls.Config, error) {
	if certFile == "" && keyFile == "" {
		cert, err := SelfSigned("localhost", "127.0.0.1", "::1")
		if err != nil {
			return nil, err
		}
		return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, errors.Wrap(err, "loading TLS key pair")
	}
	return &tls.Config{Certificates: []tls.Certificate{cert}}, nil
}

// Client returns a client config. With insecure set the server certificate
// isn't verified, which is needed to talk to a self-signed server.
func Client(insecure bool) *tls.Config {
	return &tls.Config{InsecureSkipVerify: insecure}
}

// SelfSigned creates a certificate for hosts, valid for a year. Hosts that
// parse as IP addresses become IP SANs, the rest DNS names.
func SelfSigned(hosts ...string) (tls.Certificate, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, err
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "oscd"},
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(365 * 24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, pub, priv)
	if err != nil {
		return tls.Certificate{}, errors.Wrap(err, "creating certificate")
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: priv}, nil
}
