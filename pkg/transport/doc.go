// Package transport provides stream transports for peer sessions.
//
// Two client transports implement peer.Transport:
//   - TCP: a plain or TLS stream socket. Frames are self-delimiting, so the
//     reader splits the stream on the 0xFB length header and on fixed-size
//     0xF0 ping packets.
//   - WebSocket: one binary WebSocket message per frame (ws or wss).
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│   Operations / Events (wire)   │
//	├────────────────────────────────┤
//	│   0xFB frame header (9B)       │
//	├────────────────────────────────┤
//	│   TLS (optional) │ WebSocket   │
//	├────────────────────────────────┤
//	│             TCP                │
//	└────────────────────────────────┘
//
// The server side (Server, WebSocketHandler) hands each accepted connection
// to callbacks as a Conn and is used by the reference server.
//
// Every transport owns its read goroutine and reports the end of a
// connection to the peer exactly once through Receiver.TransportClosed.
package transport
