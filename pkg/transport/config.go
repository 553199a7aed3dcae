package transport

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

// DefaultDialTimeout bounds dialing plus the TLS or WebSocket handshake.
const DefaultDialTimeout = 10 * time.Second

// Config configures the client transports.
type Config struct {
	// TLS enables TLS on TCP connections and configures wss. Nil means a
	// plain TCP connection; wss then uses the system roots.
	TLS *TLSConfig

	// DialTimeout bounds the dial and handshake (default: 10s).
	DialTimeout time.Duration

	// MaxFrameSize is the largest inbound frame (default: 512 KiB).
	MaxFrameSize uint32

	// Path is the WebSocket request path used when the address has none.
	Path string

	// Logger receives transport diagnostics. Nil uses slog.Default().
	Logger *slog.Logger

	// ProtocolLogger receives connection state events. Optional.
	ProtocolLogger log.Logger
}

func (c Config) withDefaults() Config {
	if c.DialTimeout <= 0 {
		c.DialTimeout = DefaultDialTimeout
	}
	if c.MaxFrameSize == 0 {
		c.MaxFrameSize = DefaultMaxFrameSize
	}
	if c.Path == "" {
		c.Path = "/"
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Factory returns the transport factory for a peer protocol.
func Factory(protocol peer.Protocol, cfg Config) (peer.TransportFactory, error) {
	switch protocol {
	case peer.ProtocolTCP, "":
		return func(r peer.Receiver) peer.Transport { return NewTCP(r, cfg) }, nil
	case peer.ProtocolWebSocket:
		return func(r peer.Receiver) peer.Transport { return NewWebSocket(r, cfg, false) }, nil
	case peer.ProtocolWebSocketSecure:
		return func(r peer.Receiver) peer.Transport { return NewWebSocket(r, cfg, true) }, nil
	default:
		return nil, fmt.Errorf("%w: %s", peer.ErrUnsupportedProtocol, protocol)
	}
}

// logState records a connection state change in the protocol log.
func logState(l log.Logger, connID, remote, oldState, newState, reason string) {
	if l == nil {
		return
	}
	l.Log(log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Layer:        log.LayerTransport,
		Category:     log.CategoryState,
		RemoteAddr:   remote,
		StateChange: &log.StateChangeEvent{
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	})
}
