package peer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// MaxLogFrameDataSize bounds the frame bytes copied into protocol log events.
const MaxLogFrameDataSize = 4096

// session identifies one Connect cycle.
type session struct {
	id      string
	address string
	appID   string
}

// Encryption states.
const (
	encNone int32 = iota
	encPending
	encEstablished
)

// Peer is a client session with one server. See the package documentation
// for the threading model.
type Peer struct {
	cfg         Config
	listener    Listener
	msgListener MessageListener
	transport   Transport
	codec       *wire.Codec
	crypto      CryptoProvider
	logger      *slog.Logger
	plog        log.Logger

	state   atomic.Int32
	session atomic.Pointer[session]

	// outMu guards outgoing.
	outMu    sync.Mutex
	outgoing []*buffer.StreamBuffer

	// inMu guards incoming and actions.
	inMu     sync.Mutex
	incoming []incomingFrame
	actions  []func()

	// enqueueMu serializes callers issuing operations.
	enqueueMu sync.Mutex

	buffers *MessageBufferPool
	slices  *buffer.SlicePool

	applicationInitialized atomic.Bool
	lastReceive            atomic.Int64 // unix nanos
	lastPing               atomic.Int64 // unix nanos, 0 forces a ping

	rtt        *rttEstimator
	encryption atomic.Int32
	stats      trafficCounters

	// timeNow returns the current time. Defaults to time.Now.
	// Replaced in tests for deterministic behavior.
	timeNow func() time.Time
	// epoch is the zero of the peer's millisecond clock.
	epoch time.Time
}

// New creates a disconnected peer. The factory is called once to build the
// transport bound to the peer.
func New(cfg Config, listener Listener, factory TransportFactory) (*Peer, error) {
	if listener == nil {
		return nil, ErrNoListener
	}
	if factory == nil {
		return nil, ErrNoTransport
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Peer{
		cfg:      cfg,
		listener: listener,
		codec:    wire.NewCodec(cfg.Registry),
		crypto:   cfg.Crypto,
		logger:   cfg.Logger,
		plog:     cfg.ProtocolLogger,
		buffers:  NewMessageBufferPool(),
		rtt:      newRTTEstimator(),
		timeNow:  time.Now,
	}
	if p.plog == nil {
		p.plog = log.NoopLogger{}
	}
	if cfg.UseByteArraySlicePool {
		p.slices = buffer.NewSlicePool()
	}
	p.session.Store(&session{})
	p.epoch = p.timeNow()
	p.stats.reset(p.epoch)

	p.transport = factory(p)
	if p.transport == nil {
		return nil, ErrNoTransport
	}
	return p, nil
}

// SetMessageListener installs the receiver for Message and RawMessage
// payloads. Call before Connect.
func (p *Peer) SetMessageListener(l MessageListener) {
	p.msgListener = l
}

// Config returns the validated configuration.
func (p *Peer) Config() Config { return p.cfg }

// Codec returns the codec used for all payloads.
func (p *Peer) Codec() *wire.Codec { return p.codec }

// State returns the current connection state.
func (p *Peer) State() ConnectionState {
	return ConnectionState(p.state.Load())
}

// ConnectionID returns the id of the current or last session.
func (p *Peer) ConnectionID() string { return p.session.Load().id }

// Address returns the address passed to the last Connect.
func (p *Peer) Address() string { return p.session.Load().address }

// AppID returns the application id passed to the last Connect.
func (p *Peer) AppID() string { return p.session.Load().appID }

// IsApplicationInitialized reports whether the server acknowledged the init
// message of the current session.
func (p *Peer) IsApplicationInitialized() bool {
	return p.applicationInitialized.Load()
}

// IsEncryptionAvailable reports whether encrypted sends are possible.
func (p *Peer) IsEncryptionAvailable() bool {
	return p.encryption.Load() == encEstablished
}

// RoundTripTime returns the smoothed round trip time.
func (p *Peer) RoundTripTime() time.Duration { return p.rtt.snapshot().rtt }

// RoundTripTimeVariance returns the round trip time variance.
func (p *Peer) RoundTripTimeVariance() time.Duration { return p.rtt.snapshot().variance }

// LowestRoundTripTime returns the lowest smoothed round trip time seen.
func (p *Peer) LowestRoundTripTime() time.Duration { return p.rtt.snapshot().lowest }

// HighestRoundTripTimeVariance returns the highest variance seen.
func (p *Peer) HighestRoundTripTimeVariance() time.Duration {
	return p.rtt.snapshot().highestVariance
}

// ServerTime returns the estimated server clock in milliseconds. It wraps
// around like the server's int32 clock.
func (p *Peer) ServerTime() int32 {
	t, _ := p.rtt.serverTime(p.nowMillis())
	return t
}

// ServerTimeAvailable reports whether a server clock offset is known.
func (p *Peer) ServerTimeAvailable() bool {
	_, ok := p.rtt.serverTime(p.nowMillis())
	return ok
}

// TrafficStats returns the traffic counters. All counters stay zero unless
// Config.TrafficStatsEnabled is set.
func (p *Peer) TrafficStats() TrafficStats {
	return p.stats.snapshot()
}

// ResetTrafficStats zeroes the traffic counters.
func (p *Peer) ResetTrafficStats() {
	p.stats.reset(p.timeNow())
}

// QueuedOutgoingCommands returns the number of frames waiting to be sent.
func (p *Peer) QueuedOutgoingCommands() int {
	p.outMu.Lock()
	defer p.outMu.Unlock()
	return len(p.outgoing)
}

// QueuedIncomingCommands returns the number of frames waiting for dispatch.
func (p *Peer) QueuedIncomingCommands() int {
	p.inMu.Lock()
	defer p.inMu.Unlock()
	return len(p.incoming)
}

// Service dispatches every queued frame, then flushes outgoing frames.
func (p *Peer) Service() {
	for p.DispatchIncomingCommands() {
	}
	p.SendOutgoingCommands()
}

func (p *Peer) nowMillis() int32 {
	return p.millis(p.timeNow())
}

// millis converts t to the int32 millisecond clock sent in pings. The clock
// starts at zero when the peer is created and wraps like the server's.
func (p *Peer) millis(t time.Time) int32 {
	return int32(t.Sub(p.epoch).Milliseconds())
}

// ---------------------------------------------------------------------------
// State
// ---------------------------------------------------------------------------

// casState moves from one state to another and logs the change.
func (p *Peer) casState(from, to ConnectionState, reason string, status StatusCode) bool {
	if !p.state.CompareAndSwap(int32(from), int32(to)) {
		return false
	}
	p.logState(from, to, reason, status)
	return true
}

// setState stores a state unconditionally and returns the previous one.
func (p *Peer) setState(to ConnectionState, reason string, status StatusCode) ConnectionState {
	from := ConnectionState(p.state.Swap(int32(to)))
	if from != to {
		p.logState(from, to, reason, status)
	}
	return from
}

// ---------------------------------------------------------------------------
// Deferred actions
// ---------------------------------------------------------------------------

// enqueueAction defers fn to the next dispatch call.
func (p *Peer) enqueueAction(fn func()) {
	p.inMu.Lock()
	p.actions = append(p.actions, fn)
	p.inMu.Unlock()
}

// runActions invokes the deferred actions queued so far. Actions queued
// while running are kept for the next call.
func (p *Peer) runActions() {
	p.inMu.Lock()
	actions := p.actions
	p.actions = nil
	p.inMu.Unlock()

	for _, fn := range actions {
		fn()
	}
}

func (p *Peer) queueStatus(code StatusCode) {
	p.enqueueAction(func() { p.listener.OnStatusChanged(code) })
}

// debug reports a message to the listener (filtered by Config.DebugLevel)
// and mirrors it to the operational logger.
func (p *Peer) debug(level DebugLevel, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	if p.logger != nil {
		p.logger.Log(context.Background(), slogLevel(level), msg, "conn_id", p.ConnectionID())
	}
	if level == DebugOff || level > p.cfg.DebugLevel {
		return
	}
	p.enqueueAction(func() { p.listener.DebugReturn(level, msg) })
}

func slogLevel(level DebugLevel) slog.Level {
	switch level {
	case DebugError:
		return slog.LevelError
	case DebugWarning:
		return slog.LevelWarn
	case DebugInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// ---------------------------------------------------------------------------
// Protocol log
// ---------------------------------------------------------------------------

func (p *Peer) logEvent(ev log.Event) {
	s := p.session.Load()
	ev.Timestamp = p.timeNow()
	ev.ConnectionID = s.id
	ev.RemoteAddr = s.address
	ev.AppID = s.appID
	p.plog.Log(ev)
}

func (p *Peer) logFrame(dir log.Direction, data []byte) {
	size := len(data)
	truncated := size > MaxLogFrameDataSize
	if truncated {
		data = data[:MaxLogFrameDataSize]
	}
	fe := &log.FrameEvent{
		Size:      size,
		Data:      append([]byte(nil), data...),
		Truncated: truncated,
	}
	if size >= FrameHeaderSize && data[0] == MagicFrame {
		fe.Channel = data[5]
		fe.DeliveryMode = data[6]
	}
	p.logEvent(log.Event{
		Direction: dir,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Frame:     fe,
	})
}

func (p *Peer) logMessage(dir log.Direction, mt MessageType, me *log.MessageEvent) {
	me.Type = log.MessageType(mt)
	p.logEvent(log.Event{
		Direction: dir,
		Layer:     log.LayerWire,
		Category:  log.CategoryMessage,
		Message:   me,
	})
}

func (p *Peer) logState(from, to ConnectionState, reason string, status StatusCode) {
	p.logEvent(log.Event{
		Layer:    log.LayerSession,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			OldState:   from.String(),
			NewState:   to.String(),
			Reason:     reason,
			StatusCode: int(status),
		},
	})
}

func (p *Peer) logError(layer log.Layer, where string, err error) {
	p.logEvent(log.Event{
		Direction: log.DirectionIn,
		Layer:     layer,
		Category:  log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   layer,
			Message: err.Error(),
			Context: where,
		},
	})
}

// describeParameters renders a parameter table for the protocol log.
func describeParameters(params wire.ParameterDictionary) map[uint8]string {
	if len(params) == 0 {
		return nil
	}
	out := make(map[uint8]string, len(params))
	for k, v := range params {
		out[k] = fmt.Sprintf("%T(%v)", v, v)
	}
	return out
}
