package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

// Subprotocol is offered during the WebSocket handshake.
const Subprotocol = "ndg.binary.v1"

const closeGracePeriod = time.Second

// WebSocket carries one frame per binary WebSocket message.
type WebSocket struct {
	cfg    Config
	recv   peer.Receiver
	secure bool

	mu      sync.Mutex
	conn    *websocket.Conn
	writeMu sync.Mutex
	closing bool

	ipv6 atomic.Bool
}

// NewWebSocket creates a WebSocket transport. secure selects the wss scheme
// for addresses given without one.
func NewWebSocket(r peer.Receiver, cfg Config, secure bool) *WebSocket {
	return &WebSocket{cfg: cfg.withDefaults(), recv: r, secure: secure}
}

// Connect performs the WebSocket handshake and starts the read loop. address
// is either a full ws:// or wss:// URL or host:port.
func (w *WebSocket) Connect(address string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.conn != nil {
		return ErrAlreadyConnected
	}

	u, err := websocketURL(address, w.secure, w.cfg.Path)
	if err != nil {
		return err
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: w.cfg.DialTimeout,
		Subprotocols:     []string{Subprotocol},
	}
	if u.Scheme == "wss" {
		tc := NewClientTLSConfig(w.cfg.TLS)
		tc.NextProtos = nil
		dialer.TLSClientConfig = tc
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.DialTimeout)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("websocket dial %s: %w", u, err)
	}
	conn.SetReadLimit(int64(w.cfg.MaxFrameSize))
	w.ipv6.Store(isIPv6(conn.NetConn().RemoteAddr()))

	w.conn = conn
	w.closing = false

	w.cfg.Logger.Debug("websocket connected", "url", u.String())
	logState(w.cfg.ProtocolLogger, "", u.String(), "", "CONNECTED", "websocket")

	go w.readLoop(conn)
	return nil
}

// Send writes one frame as a binary message.
func (w *WebSocket) Send(data []byte) error {
	if len(data) == 0 {
		return ErrFrameEmpty
	}
	w.mu.Lock()
	conn := w.conn
	w.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return conn.WriteMessage(websocket.BinaryMessage, data)
}

// Disconnect sends a close message and closes the connection.
func (w *WebSocket) Disconnect() error {
	w.mu.Lock()
	conn := w.conn
	w.closing = true
	w.mu.Unlock()

	if conn == nil {
		return nil
	}

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
	return conn.Close()
}

// Connected reports whether the connection is open.
func (w *WebSocket) Connected() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.conn != nil
}

// AddressResolvedAsIPv6 reports whether the last Connect reached an IPv6
// address.
func (w *WebSocket) AddressResolvedAsIPv6() bool {
	return w.ipv6.Load()
}

func (w *WebSocket) readLoop(conn *websocket.Conn) {
	var err error
	for {
		var (
			mt   int
			data []byte
		)
		mt, data, err = conn.ReadMessage()
		if err != nil {
			break
		}
		if mt != websocket.BinaryMessage {
			w.cfg.Logger.Debug("websocket: ignoring non-binary message", "type", mt)
			continue
		}
		w.recv.ReceiveIncomingCommands(data)
	}

	conn.Close()

	w.mu.Lock()
	closing := w.closing
	if w.conn == conn {
		w.conn = nil
	}
	w.mu.Unlock()

	if closing || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		err = nil
	}
	remote := conn.RemoteAddr().String()
	if err != nil {
		w.cfg.Logger.Warn("websocket read failed", "remote", remote, "error", err)
	}
	logState(w.cfg.ProtocolLogger, "", remote, "CONNECTED", "DISCONNECTED", errString(err))
	w.recv.TransportClosed(err)
}

// websocketURL turns an address into a WebSocket URL.
func websocketURL(address string, secure bool, path string) (*url.URL, error) {
	if !strings.Contains(address, "://") {
		scheme := "ws"
		if secure {
			scheme = "wss"
		}
		address = scheme + "://" + address
	}
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("transport: bad websocket address: %w", err)
	}
	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return nil, fmt.Errorf("transport: bad websocket scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, errors.New("transport: websocket address has no host")
	}
	if u.Path == "" {
		u.Path = path
	}
	return u, nil
}
