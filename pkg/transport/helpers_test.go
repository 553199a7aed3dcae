package transport

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

const waitTimeout = 5 * time.Second

func timeout() <-chan time.Time { return time.After(waitTimeout) }

// recordingReceiver collects what a transport delivers.
type recordingReceiver struct {
	frames chan []byte
	closed chan error

	mu     sync.Mutex
	closes int
}

func newRecordingReceiver() *recordingReceiver {
	return &recordingReceiver{
		frames: make(chan []byte, 16),
		closed: make(chan error, 4),
	}
}

func (r *recordingReceiver) ReceiveIncomingCommands(data []byte) {
	r.frames <- bytes.Clone(data)
}

func (r *recordingReceiver) TransportClosed(err error) {
	r.mu.Lock()
	r.closes++
	r.mu.Unlock()
	r.closed <- err
}

func (r *recordingReceiver) closeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closes
}

func (r *recordingReceiver) nextFrame(t *testing.T) []byte {
	t.Helper()
	select {
	case f := <-r.frames:
		return f
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

func (r *recordingReceiver) waitClosed(t *testing.T) error {
	t.Helper()
	select {
	case err := <-r.closed:
		return err
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for TransportClosed")
		return nil
	}
}

// serverConns records server-side connections and echoes frames back.
// Pings are recorded but not echoed.
type serverConns struct {
	mu    sync.Mutex
	conns []Conn
	got   chan []byte
	gone  chan Conn
}

func newServerConns() *serverConns {
	return &serverConns{got: make(chan []byte, 16), gone: make(chan Conn, 4)}
}

func (s *serverConns) handlers() Handlers {
	return Handlers{
		OnConnect: func(c Conn) {
			s.mu.Lock()
			s.conns = append(s.conns, c)
			s.mu.Unlock()
		},
		OnDisconnect: func(c Conn, _ error) { s.gone <- c },
		OnFrame: func(c Conn, frame []byte) {
			s.got <- bytes.Clone(frame)
			if frame[0] == peer.MagicFrame {
				c.Send(frame)
			}
		},
	}
}

func (s *serverConns) first(t *testing.T) Conn {
	t.Helper()
	var c Conn
	require.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.conns) == 0 {
			return false
		}
		c = s.conns[0]
		return true
	}, waitTimeout, 5*time.Millisecond)
	return c
}

func startServer(t *testing.T, cfg ServerConfig) *Server {
	t.Helper()
	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:0"
	}
	srv, err := NewServer(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { srv.Stop() })
	return srv
}

// generateTestCertificate creates a self-signed certificate for 127.0.0.1.
func generateTestCertificate(t *testing.T) (tls.Certificate, *x509.CertPool) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "ndg.test"},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	pool := x509.NewCertPool()
	pool.AddCert(leaf)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}, pool
}
