package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

// Service type constants for mDNS.
const (
	ServiceType = "_ndg._tcp"
	Domain      = "local."
)

// TXT record keys.
const (
	TXTKeyVersion = "v"
	TXTKeyAppID   = "app"
	TXTKeyWSPort  = "ws"
	TXTKeyWSPath  = "path"
	TXTKeyTLS     = "tls"
)

// Limits and defaults.
const (
	MaxInstanceNameLen = 63
	DefaultTTL         = 120 * time.Second
	BrowseTimeout      = 10 * time.Second
)

// Errors.
var (
	ErrMissingRequired     = errors.New("discovery: missing required TXT record")
	ErrInvalidTXTRecord    = errors.New("discovery: invalid TXT record")
	ErrInstanceNameTooLong = errors.New("discovery: instance name too long")
	ErrInvalidPort         = errors.New("discovery: invalid port")
	ErrNotFound            = errors.New("discovery: no server found")
)

// ServerInfo describes an advertised server.
type ServerInfo struct {
	// Name is the DNS-SD instance name.
	Name string

	// Port is the TCP stream port.
	Port uint16

	// Version is the protocol version, "major.minor".
	Version string

	// AppID is the application served, if the server is dedicated to one.
	AppID string

	// WebSocketPort is set when the server also accepts WebSocket clients.
	WebSocketPort uint16

	// WebSocketPath is the request path for WebSocket clients.
	WebSocketPath string

	// TLS marks a stream port that requires TLS.
	TLS bool
}

// Service is a server found by browsing.
type Service struct {
	InstanceName string
	Host         string
	Addresses    []string
	ServerInfo
}

// Address returns the address a peer connects to for the given protocol,
// using the first resolved address. It returns "" when the protocol is not
// offered.
func (s *Service) Address(protocol peer.Protocol) string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}

	switch protocol {
	case peer.ProtocolTCP, "":
		return net.JoinHostPort(host, strconv.Itoa(int(s.Port)))
	case peer.ProtocolWebSocket, peer.ProtocolWebSocketSecure:
		if s.WebSocketPort == 0 {
			return ""
		}
		scheme := "ws"
		if protocol == peer.ProtocolWebSocketSecure {
			scheme = "wss"
		}
		path := s.WebSocketPath
		if path == "" {
			path = "/"
		}
		return fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, strconv.Itoa(int(s.WebSocketPort))), path)
	}
	return ""
}

// DefaultVersion renders the peer's protocol version for TXT records.
func DefaultVersion() string {
	return fmt.Sprintf("%d.%d", peer.ProtocolVersionMajor, peer.ProtocolVersionMinor)
}
