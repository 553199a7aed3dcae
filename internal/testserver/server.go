package testserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/keyexchange"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/transport"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// Built-in operation codes.
const (
	OpEcho       byte = 1
	OpRaiseEvent byte = 2
	OpDisconnect byte = 3
	OpServerTime byte = 4
)

// Parameter keys used by the built-in operations.
const (
	// ParamEventCode selects the event code for OpRaiseEvent.
	ParamEventCode byte = 244

	// ParamServerTime carries the clock in OpServerTime responses.
	ParamServerTime byte = 1
)

// Return codes.
const (
	ReturnOK               int16 = 0
	ReturnInvalidOperation int16 = -2
	ReturnKeyExchange      int16 = -3
)

// ErrUnknownSession is returned for connection ids without a session.
var ErrUnknownSession = errors.New("testserver: unknown session")

// Handler serves application operations. Returning nil falls back to the
// built-in operations.
type Handler func(s *Session, req *wire.OperationRequest) *wire.OperationResponse

// Config configures the server.
type Config struct {
	// Address to listen on for TCP (default "127.0.0.1:0").
	Address string

	// TLS enables TLS on the TCP listener.
	TLS *transport.TLSConfig

	// Registry resolves custom types. Nil uses wire.DefaultRegistry.
	Registry *wire.Registry

	// Handler serves operations before the built-ins. Optional.
	Handler Handler

	// Logger receives diagnostics. Nil uses slog.Default().
	Logger *slog.Logger

	// ProtocolLogger receives connection state events. Optional.
	ProtocolLogger log.Logger
}

// Server is the reference server.
type Server struct {
	cfg   Config
	codec *wire.Codec
	tcp   *transport.Server

	mu       sync.Mutex
	sessions map[string]*Session
	actors   atomic.Int32

	dropPings atomic.Bool
	timeNow   func() time.Time
}

// New creates a server.
func New(cfg Config) (*Server, error) {
	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:0"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	s := &Server{
		cfg:      cfg,
		codec:    wire.NewCodec(cfg.Registry),
		sessions: make(map[string]*Session),
		timeNow:  time.Now,
	}

	tcp, err := transport.NewServer(transport.ServerConfig{
		Address:        cfg.Address,
		TLSConfig:      cfg.TLS,
		Logger:         cfg.Logger,
		ProtocolLogger: cfg.ProtocolLogger,
		Handlers:       s.handlers(),
	})
	if err != nil {
		return nil, err
	}
	s.tcp = tcp
	return s, nil
}

// Start begins accepting TCP connections.
func (s *Server) Start(ctx context.Context) error {
	return s.tcp.Start(ctx)
}

// Stop closes the listener and every TCP connection.
func (s *Server) Stop() error {
	return s.tcp.Stop()
}

// Addr returns the TCP listen address.
func (s *Server) Addr() string {
	if a := s.tcp.Addr(); a != nil {
		return a.String()
	}
	return ""
}

// WebSocketHandler serves the same protocol over WebSocket.
func (s *Server) WebSocketHandler() http.Handler {
	return transport.WebSocketHandler(transport.WebSocketHandlerConfig{
		Logger:         s.cfg.Logger,
		ProtocolLogger: s.cfg.ProtocolLogger,
		Handlers:       s.handlers(),
	})
}

// SetDropPings makes the server ignore ping packets and ping operations.
func (s *Server) SetDropPings(drop bool) {
	s.dropPings.Store(drop)
}

// Sessions returns a snapshot of the connected sessions ordered by actor.
func (s *Server) Sessions() []*Session {
	s.mu.Lock()
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Actor < out[j].Actor })
	return out
}

// SendEvent sends an event to one session.
func (s *Server) SendEvent(connID string, ev *wire.EventData) error {
	sess := s.session(connID)
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSession, connID)
	}
	return s.sendEvent(sess, ev)
}

// Broadcast sends an event to every initialized session and returns how many
// received it.
func (s *Server) Broadcast(ev *wire.EventData) int {
	n := 0
	for _, sess := range s.Sessions() {
		if sess.Initialized() && s.sendEvent(sess, ev) == nil {
			n++
		}
	}
	return n
}

// Kick closes a session's connection.
func (s *Server) Kick(connID string) error {
	sess := s.session(connID)
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSession, connID)
	}
	return sess.conn.Close()
}

func (s *Server) session(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

func (s *Server) handlers() transport.Handlers {
	return transport.Handlers{
		OnConnect: func(c transport.Conn) {
			sess := &Session{ID: c.ID(), Actor: s.actors.Add(1), conn: c}
			s.mu.Lock()
			s.sessions[c.ID()] = sess
			s.mu.Unlock()
			s.cfg.Logger.Debug("session opened", "conn", c.ID(), "remote", c.RemoteAddr().String())
		},
		OnDisconnect: func(c transport.Conn, err error) {
			s.mu.Lock()
			delete(s.sessions, c.ID())
			s.mu.Unlock()
			s.cfg.Logger.Debug("session closed", "conn", c.ID(), "error", err)
		},
		OnFrame: func(c transport.Conn, frame []byte) {
			if sess := s.session(c.ID()); sess != nil {
				s.handleFrame(sess, frame)
			}
		},
	}
}

func (s *Server) nowMillis() int32 {
	return int32(s.timeNow().UnixMilli())
}

func (s *Server) handleFrame(sess *Session, data []byte) {
	if data[0] == peer.MagicPing {
		if s.dropPings.Load() {
			return
		}
		clientTime, err := peer.DecodePingRequest(data)
		if err != nil {
			s.cfg.Logger.Warn("bad ping", "conn", sess.ID, "error", err)
			return
		}
		sess.conn.Send(peer.EncodePingReply(s.nowMillis(), clientTime))
		return
	}

	f, err := peer.ParseFrame(data)
	if err != nil {
		s.cfg.Logger.Warn("bad frame", "conn", sess.ID, "error", err)
		return
	}

	payload := f.Payload
	if f.Encrypted {
		crypto := sess.cipher()
		if crypto == nil {
			s.cfg.Logger.Warn("encrypted frame before key exchange", "conn", sess.ID)
			return
		}
		if payload, err = crypto.Decrypt(payload); err != nil {
			s.cfg.Logger.Warn("decrypt failed", "conn", sess.ID, "error", err)
			return
		}
	}

	if err := s.dispatch(sess, f, payload); err != nil {
		s.cfg.Logger.Warn("frame dropped", "conn", sess.ID, "type", f.Type.String(), "error", err)
	}
}

func (s *Server) dispatch(sess *Session, f peer.Frame, payload []byte) error {
	switch f.Type {
	case peer.MessageInit:
		req, err := peer.DecodeInit(payload, s.codec)
		if err != nil {
			return err
		}
		sess.setInit(req)
		return sess.send(f.Channel, peer.MessageInitResponse, false, []byte{0})

	case peer.MessageOperation:
		if !sess.Initialized() {
			return errors.New("operation before init")
		}
		req, err := s.codec.DeserializeOperationRequest(buffer.NewStreamBufferFrom(payload))
		if err != nil {
			return err
		}
		return s.operate(sess, f, req)

	case peer.MessageInternalOperationRequest:
		req, err := s.codec.DeserializeOperationRequest(buffer.NewStreamBufferFrom(payload))
		if err != nil {
			return err
		}
		return s.internal(sess, f, req)

	case peer.MessageMessage, peer.MessageRawMessage:
		return s.sendEncrypted(sess, f.Channel, f.Type, f.Encrypted, payload)

	default:
		return fmt.Errorf("unexpected message type %s", f.Type)
	}
}

func (s *Server) operate(sess *Session, f peer.Frame, req *wire.OperationRequest) error {
	var resp *wire.OperationResponse
	if s.cfg.Handler != nil {
		resp = s.cfg.Handler(sess, req)
	}
	closeAfter := false
	if resp == nil {
		resp = &wire.OperationResponse{OperationCode: req.OperationCode}
		switch req.OperationCode {
		case OpEcho:
			resp.Parameters = req.Parameters
		case OpRaiseEvent:
			if err := s.raiseEvent(sess, req); err != nil {
				resp.ReturnCode = ReturnInvalidOperation
				resp.DebugMessage = err.Error()
			}
		case OpServerTime:
			resp.Parameters = wire.ParameterDictionary{ParamServerTime: s.nowMillis()}
		case OpDisconnect:
			closeAfter = true
		default:
			resp.ReturnCode = ReturnInvalidOperation
			resp.DebugMessage = fmt.Sprintf("unknown operation %d", req.OperationCode)
		}
	}

	body := buffer.NewStreamBuffer(64)
	if err := s.codec.SerializeOperationResponse(body, resp, false); err != nil {
		return err
	}
	if err := s.sendEncrypted(sess, f.Channel, peer.MessageOperationResponse, f.Encrypted, body.Bytes()); err != nil {
		return err
	}
	if closeAfter {
		return sess.conn.Close()
	}
	return nil
}

func (s *Server) raiseEvent(sender *Session, req *wire.OperationRequest) error {
	code, ok := req.Parameters[ParamEventCode].(byte)
	if !ok {
		return errors.New("missing event code")
	}
	params := make(wire.ParameterDictionary, len(req.Parameters))
	for k, v := range req.Parameters {
		if k != ParamEventCode {
			params[k] = v
		}
	}
	params[wire.SenderKey] = sender.Actor
	ev := &wire.EventData{Code: code, Parameters: params}

	for _, sess := range s.Sessions() {
		if sess.Initialized() && sess.AppID() == sender.AppID() {
			if err := s.sendEvent(sess, ev); err != nil {
				s.cfg.Logger.Debug("event not delivered", "conn", sess.ID, "error", err)
			}
		}
	}
	return nil
}

func (s *Server) internal(sess *Session, f peer.Frame, req *wire.OperationRequest) error {
	resp := &wire.OperationResponse{OperationCode: req.OperationCode}

	switch req.OperationCode {
	case peer.InternalOpInitEncryption:
		clientKey, _ := req.Parameters[peer.ParamClientKey].([]byte)
		ex := keyexchange.New()
		pub, err := ex.PublicKey()
		if err == nil {
			err = ex.DeriveSharedKey(clientKey)
		}
		if err != nil {
			resp.ReturnCode = ReturnKeyExchange
			resp.DebugMessage = err.Error()
		} else {
			resp.Parameters = wire.ParameterDictionary{peer.ParamServerKey: pub}
			sess.setCipher(ex)
		}

	case peer.InternalOpPing:
		if s.dropPings.Load() {
			return nil
		}
		clientTime, ok := req.Parameters[peer.ParamClientTime].(int32)
		if !ok {
			return errors.New("ping without client time")
		}
		resp.Parameters = wire.ParameterDictionary{
			peer.ParamClientTime: clientTime,
			peer.ParamServerTime: s.nowMillis(),
		}

	default:
		resp.ReturnCode = ReturnInvalidOperation
		resp.DebugMessage = fmt.Sprintf("unknown internal operation %d", req.OperationCode)
	}

	body := buffer.NewStreamBuffer(64)
	if err := s.codec.SerializeOperationResponse(body, resp, false); err != nil {
		return err
	}
	return sess.send(f.Channel, peer.MessageInternalOperationResponse, false, body.Bytes())
}

func (s *Server) sendEvent(sess *Session, ev *wire.EventData) error {
	body := buffer.NewStreamBuffer(64)
	if err := s.codec.SerializeEventData(body, ev, false); err != nil {
		return err
	}
	return sess.send(0, peer.MessageEvent, false, body.Bytes())
}

func (s *Server) sendEncrypted(sess *Session, channel byte, mt peer.MessageType, encrypt bool, body []byte) error {
	if encrypt {
		crypto := sess.cipher()
		if crypto == nil {
			return errors.New("no session key")
		}
		sealed, err := crypto.Encrypt(body)
		if err != nil {
			return err
		}
		body = sealed
	}
	return sess.send(channel, mt, encrypt, body)
}

// Session is one connected client.
type Session struct {
	ID    string
	Actor int32

	conn transport.Conn

	mu     sync.Mutex
	init   *peer.InitRequest
	crypto *keyexchange.Exchange
}

// AppID returns the app id from the init message, or "" before init.
func (s *Session) AppID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.init == nil {
		return ""
	}
	return s.init.AppID
}

// Init returns the decoded init message, or nil before init.
func (s *Session) Init() *peer.InitRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.init
}

// Initialized reports whether the init message has been received.
func (s *Session) Initialized() bool {
	return s.Init() != nil
}

// Encrypted reports whether a session key has been agreed.
func (s *Session) Encrypted() bool {
	return s.cipher() != nil
}

func (s *Session) setInit(req *peer.InitRequest) {
	s.mu.Lock()
	s.init = req
	s.mu.Unlock()
}

func (s *Session) cipher() *keyexchange.Exchange {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.crypto
}

func (s *Session) setCipher(ex *keyexchange.Exchange) {
	s.mu.Lock()
	s.crypto = ex
	s.mu.Unlock()
}

func (s *Session) send(channel byte, mt peer.MessageType, encrypted bool, body []byte) error {
	return s.conn.Send(peer.AppendFrame(nil, channel, peer.DeliveryReliable, mt, encrypted, body))
}
