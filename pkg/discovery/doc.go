// Package discovery advertises and finds NDG servers on the local network
// with mDNS/DNS-SD.
//
// Servers register one instance of the _ndg._tcp service. The SRV port is
// the TCP stream port; TXT records describe the rest:
//
//	v     protocol version ("1.8")
//	app   application id served (optional)
//	ws    WebSocket port (optional)
//	path  WebSocket request path (optional, default "/")
//	tls   "1" when the stream port requires TLS (optional)
//
// Instance names are user-facing server names and must fit in 63 bytes.
package discovery
