package transport

import (
	"net"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

// Conn is a server-side connection to a peer.
// Implemented by ServerConn and the WebSocket handler's connections.
type Conn interface {
	// ID returns a unique connection identifier.
	ID() string

	// RemoteAddr returns the remote network address of the client.
	RemoteAddr() net.Addr

	// Send writes one frame to the client.
	Send(data []byte) error

	// Close closes the connection.
	Close() error
}

// FrameReadWriter provides stream frame I/O.
type FrameReadWriter interface {
	ReadFrame() ([]byte, error)
	WriteFrame(data []byte) error
}

// Compile-time interface satisfaction checks.
var (
	_ peer.Transport  = (*TCP)(nil)
	_ peer.Transport  = (*WebSocket)(nil)
	_ Conn            = (*ServerConn)(nil)
	_ Conn            = (*wsServerConn)(nil)
	_ FrameReadWriter = struct {
		*FrameReader
		*FrameWriter
	}{}
)
