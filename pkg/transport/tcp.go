package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

// TCP is a stream socket transport, optionally wrapped in TLS.
type TCP struct {
	cfg  Config
	recv peer.Receiver

	mu      sync.Mutex
	conn    net.Conn
	writer  *FrameWriter
	closing bool

	ipv6 atomic.Bool
}

// NewTCP creates a TCP transport delivering to r.
func NewTCP(r peer.Receiver, cfg Config) *TCP {
	return &TCP{cfg: cfg.withDefaults(), recv: r}
}

// Connect dials address, performs the TLS handshake if configured and starts
// the read loop.
func (t *TCP) Connect(address string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn != nil {
		return ErrAlreadyConnected
	}

	ctx, cancel := context.WithTimeout(context.Background(), t.cfg.DialTimeout)
	defer cancel()

	dialer := &net.Dialer{}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}
	t.ipv6.Store(isIPv6(conn.RemoteAddr()))

	if t.cfg.TLS != nil {
		tc := tls.Client(conn, clientTLS(t.cfg.TLS, address))
		if err := tc.HandshakeContext(ctx); err != nil {
			conn.Close()
			return fmt.Errorf("TLS handshake failed: %w", err)
		}
		if err := VerifyALPN(tc.ConnectionState()); err != nil {
			tc.Close()
			return err
		}
		conn = tc
	}

	t.conn = conn
	t.writer = NewFrameWriter(conn)
	t.closing = false

	t.cfg.Logger.Debug("tcp connected", "remote", address, "tls", t.cfg.TLS != nil)
	logState(t.cfg.ProtocolLogger, "", address, "", "CONNECTED", "tcp")

	go t.readLoop(conn)
	return nil
}

// Send writes one frame.
func (t *TCP) Send(data []byte) error {
	t.mu.Lock()
	w := t.writer
	t.mu.Unlock()

	if w == nil {
		return ErrNotConnected
	}
	return w.WriteFrame(data)
}

// Disconnect closes the socket. The read loop then reports the close. A
// transport that is already closed returns nil.
func (t *TCP) Disconnect() error {
	t.mu.Lock()
	conn := t.conn
	t.closing = true
	t.mu.Unlock()

	if conn == nil {
		return nil
	}
	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

// Connected reports whether the socket is open.
func (t *TCP) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn != nil
}

// AddressResolvedAsIPv6 reports whether the last Connect reached an IPv6
// address.
func (t *TCP) AddressResolvedAsIPv6() bool {
	return t.ipv6.Load()
}

func (t *TCP) readLoop(conn net.Conn) {
	fr := NewFrameReader(conn, peer.PingReplySize)
	fr.SetMaxFrameSize(t.cfg.MaxFrameSize)

	var err error
	for {
		var frame []byte
		frame, err = fr.ReadFrame()
		if err != nil {
			break
		}
		t.recv.ReceiveIncomingCommands(frame)
	}

	conn.Close()

	t.mu.Lock()
	closing := t.closing
	if t.conn == conn {
		t.conn = nil
		t.writer = nil
	}
	t.mu.Unlock()

	// Local close and orderly remote close both report nil.
	if closing || errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		t.cfg.Logger.Warn("tcp read failed", "remote", conn.RemoteAddr().String(), "error", err)
	}
	logState(t.cfg.ProtocolLogger, "", conn.RemoteAddr().String(), "CONNECTED", "DISCONNECTED", errString(err))
	t.recv.TransportClosed(err)
}

// clientTLS builds the client tls.Config, defaulting the server name to the
// host part of address.
func clientTLS(cfg *TLSConfig, address string) *tls.Config {
	tc := NewClientTLSConfig(cfg)
	if tc.ServerName == "" {
		if host, _, err := net.SplitHostPort(address); err == nil {
			tc.ServerName = host
		}
	}
	return tc
}

func isIPv6(addr net.Addr) bool {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.To4() == nil
	}
	return false
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
