package server

import (
	"crypto/tls"
	"fmt"
)

// TLSConfig holds TLS configuration for the server.
type TLSConfig struct {
	CertFile string
	KeyFile  string
}

// LoadCertificates loads TLS certificates from files.
func (c *TLSConfig) LoadCertificates() ([]tls.Certificate, error) {
	if c.CertFile == "" || c.KeyFile == "" {
		return nil, fmt.Errorf("certfile and keyfile must be specified")
	}

	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificates: %w", err)
	}
	return []tls.Certificate{cert}, nil
}

// ServerTLSConfig returns a TLS 1.3 configuration with HTTP/2 negotiation.
// Go picks the TLS 1.3 cipher suites itself.
func ServerTLSConfig(certificates []tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: certificates,
		MinVersion:   tls.VersionTLS13,
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
		NextProtos: []string{"h2", "http/1.1"},
	}
}
