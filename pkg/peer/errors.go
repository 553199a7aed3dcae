package peer

import "errors"

// Peer errors.
var (
	ErrAlreadyConnected    = errors.New("peer: already connected")
	ErrNoListener          = errors.New("peer: listener is required")
	ErrNoTransport         = errors.New("peer: transport factory is required")
	ErrInvalidConfig       = errors.New("peer: invalid config")
	ErrUnsupportedProtocol = errors.New("peer: unsupported protocol")
	ErrAppIDTooLong        = errors.New("peer: application id too long")
	ErrFrameTooLarge       = errors.New("peer: frame too large")
	ErrMalformedFrame      = errors.New("peer: malformed frame")
	ErrNoCrypto            = errors.New("peer: no crypto provider")
)
