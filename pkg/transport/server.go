package transport

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

// Handlers receives server-side connection callbacks. OnFrame is called from
// the connection's read goroutine; the frame slice is only valid for the
// duration of the call.
type Handlers struct {
	// OnConnect is called when a new connection is established.
	OnConnect func(conn Conn)

	// OnDisconnect is called once when a connection is closed.
	OnDisconnect func(conn Conn, err error)

	// OnFrame is called for every frame or ping packet received.
	OnFrame func(conn Conn, frame []byte)
}

// ServerConfig configures a stream server.
type ServerConfig struct {
	// Address to listen on (e.g., ":5055" or "127.0.0.1:0").
	Address string

	// TLSConfig enables TLS. Nil serves plain TCP.
	TLSConfig *TLSConfig

	// MaxFrameSize is the largest inbound frame (default: 512 KiB).
	MaxFrameSize uint32

	// Logger receives server diagnostics. Nil uses slog.Default().
	Logger *slog.Logger

	// ProtocolLogger receives connection state events. Optional.
	ProtocolLogger log.Logger

	Handlers
}

// Server accepts stream connections from peers.
type Server struct {
	config   ServerConfig
	tlsConf  *tls.Config
	listener net.Listener

	conns   map[*ServerConn]struct{}
	connsMu sync.RWMutex

	running atomic.Bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewServer creates a new stream server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Address == "" {
		config.Address = fmt.Sprintf(":%d", DefaultPort)
	}
	if config.MaxFrameSize == 0 {
		config.MaxFrameSize = DefaultMaxFrameSize
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	var tlsConf *tls.Config
	if config.TLSConfig != nil {
		var err error
		tlsConf, err = NewServerTLSConfig(config.TLSConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
	}

	return &Server{
		config:  config,
		tlsConf: tlsConf,
		conns:   make(map[*ServerConn]struct{}),
	}, nil
}

// Start starts the server and begins accepting connections.
func (s *Server) Start(ctx context.Context) error {
	if s.running.Load() {
		return errors.New("transport: server already running")
	}

	listener, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	if s.tlsConf != nil {
		listener = tls.NewListener(listener, s.tlsConf)
	}
	s.listener = listener
	s.ctx, s.cancel = context.WithCancel(ctx)

	s.running.Store(true)

	s.wg.Add(1)
	go s.acceptLoop()

	return nil
}

// Stop stops the server and closes all connections.
func (s *Server) Stop() error {
	if !s.running.Swap(false) {
		return nil
	}
	s.cancel()
	s.listener.Close()

	s.connsMu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.connsMu.Unlock()

	s.wg.Wait()
	return nil
}

// Addr returns the server's listen address.
func (s *Server) Addr() net.Addr {
	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

// ConnectionCount returns the number of active connections.
func (s *Server) ConnectionCount() int {
	s.connsMu.RLock()
	defer s.connsMu.RUnlock()
	return len(s.conns)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for s.running.Load() {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.running.Load() && !errors.Is(err, net.ErrClosed) {
				s.config.Logger.Warn("accept failed", "error", err)
				continue
			}
			return
		}

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	if tc, ok := conn.(*tls.Conn); ok {
		ctx, cancel := context.WithTimeout(s.ctx, DefaultDialTimeout)
		err := tc.HandshakeContext(ctx)
		cancel()
		if err != nil {
			s.config.Logger.Debug("TLS handshake failed", "remote", conn.RemoteAddr().String(), "error", err)
			conn.Close()
			return
		}
	}

	sconn := &ServerConn{
		conn:   conn,
		writer: NewFrameWriter(conn),
		id:     uuid.NewString(),
	}

	s.connsMu.Lock()
	s.conns[sconn] = struct{}{}
	s.connsMu.Unlock()

	logState(s.config.ProtocolLogger, sconn.id, conn.RemoteAddr().String(), "", "CONNECTED", "accept")
	if s.config.OnConnect != nil {
		s.config.OnConnect(sconn)
	}

	err := sconn.readLoop(s.config.MaxFrameSize, s.config.OnFrame)

	s.connsMu.Lock()
	delete(s.conns, sconn)
	s.connsMu.Unlock()

	if err != nil && s.running.Load() {
		s.config.Logger.Debug("connection ended", "conn", sconn.id, "error", err)
	}
	logState(s.config.ProtocolLogger, sconn.id, conn.RemoteAddr().String(), "CONNECTED", "DISCONNECTED", errString(err))
	if s.config.OnDisconnect != nil {
		s.config.OnDisconnect(sconn, err)
	}
}

// ServerConn is an accepted stream connection.
type ServerConn struct {
	conn      net.Conn
	writer    *FrameWriter
	id        string
	closed    atomic.Bool
	closeOnce sync.Once
}

// ID returns the unique connection identifier.
func (c *ServerConn) ID() string {
	return c.id
}

// RemoteAddr returns the remote address of the client.
func (c *ServerConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// Send writes one frame to the client.
func (c *ServerConn) Send(data []byte) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	return c.writer.WriteFrame(data)
}

// Close closes the connection.
func (c *ServerConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		err = c.conn.Close()
	})
	return err
}

// readLoop reads frames until the connection ends. A clean end of stream or
// a local Close returns nil.
func (c *ServerConn) readLoop(maxFrameSize uint32, onFrame func(Conn, []byte)) error {
	fr := NewFrameReader(c.conn, peer.PingRequestSize)
	fr.SetMaxFrameSize(maxFrameSize)

	for {
		data, err := fr.ReadFrame()
		if err != nil {
			c.Close()
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		if onFrame != nil {
			onFrame(c, data)
		}
	}
}

// WebSocketHandlerConfig configures WebSocketHandler.
type WebSocketHandlerConfig struct {
	// MaxFrameSize is the largest inbound frame (default: 512 KiB).
	MaxFrameSize uint32

	// CheckOrigin overrides the upgrader's origin check. Nil accepts all
	// origins.
	CheckOrigin func(r *http.Request) bool

	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger

	// ProtocolLogger receives connection state events. Optional.
	ProtocolLogger log.Logger

	Handlers
}

// WebSocketHandler upgrades HTTP requests and serves each WebSocket as a
// Conn. The handler blocks for the lifetime of the connection.
func WebSocketHandler(cfg WebSocketHandlerConfig) http.Handler {
	if cfg.MaxFrameSize == 0 {
		cfg.MaxFrameSize = DefaultMaxFrameSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	checkOrigin := cfg.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	upgrader := websocket.Upgrader{
		Subprotocols: []string{Subprotocol},
		CheckOrigin:  checkOrigin,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			cfg.Logger.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
			return
		}
		ws.SetReadLimit(int64(cfg.MaxFrameSize))

		conn := &wsServerConn{ws: ws, id: uuid.NewString()}
		logState(cfg.ProtocolLogger, conn.id, r.RemoteAddr, "", "CONNECTED", "upgrade")
		if cfg.OnConnect != nil {
			cfg.OnConnect(conn)
		}

		err = conn.readLoop(cfg.OnFrame)

		logState(cfg.ProtocolLogger, conn.id, r.RemoteAddr, "CONNECTED", "DISCONNECTED", errString(err))
		if cfg.OnDisconnect != nil {
			cfg.OnDisconnect(conn, err)
		}
	})
}

// wsServerConn is an accepted WebSocket connection.
type wsServerConn struct {
	ws        *websocket.Conn
	id        string
	writeMu   sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
}

func (c *wsServerConn) ID() string           { return c.id }
func (c *wsServerConn) RemoteAddr() net.Addr { return c.ws.RemoteAddr() }

func (c *wsServerConn) Send(data []byte) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.BinaryMessage, data)
}

func (c *wsServerConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = c.ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(closeGracePeriod))
		err = c.ws.Close()
	})
	return err
}

func (c *wsServerConn) readLoop(onFrame func(Conn, []byte)) error {
	for {
		mt, data, err := c.ws.ReadMessage()
		if err != nil {
			closed := c.closed.Load()
			c.Close()
			if closed || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		if mt == websocket.BinaryMessage && onFrame != nil {
			onFrame(c, data)
		}
	}
}
