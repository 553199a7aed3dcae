// Package testserver is an in-process reference server for peer sessions.
//
// It answers the init handshake, ping packets and internal ping operations,
// performs the server side of the key exchange and serves a few built-in
// operations:
//
//	OpEcho        response carries the request parameters
//	OpRaiseEvent  broadcasts an event to every session of the same app id
//	OpDisconnect  responds, then closes the connection
//	OpServerTime  response carries the server clock in milliseconds
//
// Messages and raw messages are echoed back to the sender. The server runs
// over TCP (optionally TLS) and, through WebSocketHandler, over WebSocket.
package testserver
