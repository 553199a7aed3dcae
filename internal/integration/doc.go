// Package integration runs the client peer against internal/testserver
// over real TCP and WebSocket connections.
package integration
