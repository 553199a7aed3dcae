package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
)

// TLS constants.
const (
	// ALPNProtocol is negotiated on plain TLS stream connections. WebSocket
	// connections leave ALPN to the HTTP stack.
	ALPNProtocol = "ndg/1"

	// DefaultPort is the default server port.
	DefaultPort = 5055
)

// TLSConfig holds the certificates for a TLS connection.
type TLSConfig struct {
	// Certificate is presented by servers, and by clients when the server
	// asks for one.
	Certificate tls.Certificate

	// RootCAs verifies server certificates. Nil uses the system pool.
	RootCAs *x509.CertPool

	// ServerName overrides the name checked against the server certificate.
	ServerName string

	// InsecureSkipVerify disables certificate verification.
	// Only for testing - never use in production!
	InsecureSkipVerify bool
}

// NewServerTLSConfig creates a TLS configuration for a stream server.
func NewServerTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	if cfg == nil {
		return nil, errors.New("transport: TLSConfig is required")
	}
	if len(cfg.Certificate.Certificate) == 0 {
		return nil, errors.New("transport: server certificate is required")
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cfg.Certificate},
		NextProtos:   []string{ALPNProtocol},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}, nil
}

// NewClientTLSConfig creates a TLS configuration for a client. cfg may be
// nil, in which case the system roots are used.
func NewClientTLSConfig(cfg *TLSConfig) *tls.Config {
	tc := &tls.Config{
		MinVersion: tls.VersionTLS12,
		NextProtos: []string{ALPNProtocol},
		CurvePreferences: []tls.CurveID{
			tls.X25519,
			tls.CurveP256,
		},
	}
	if cfg == nil {
		return tc
	}
	if len(cfg.Certificate.Certificate) > 0 {
		tc.Certificates = []tls.Certificate{cfg.Certificate}
	}
	tc.RootCAs = cfg.RootCAs
	tc.ServerName = cfg.ServerName
	tc.InsecureSkipVerify = cfg.InsecureSkipVerify
	return tc
}

// VerifyALPN checks that the negotiated ALPN protocol is correct. Servers
// that do not support ALPN leave it empty, which is accepted.
func VerifyALPN(state tls.ConnectionState) error {
	if state.NegotiatedProtocol != "" && state.NegotiatedProtocol != ALPNProtocol {
		return fmt.Errorf("transport: ALPN protocol %q is not %q", state.NegotiatedProtocol, ALPNProtocol)
	}
	return nil
}
