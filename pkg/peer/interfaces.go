package peer

import (
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// Transport moves bytes between the peer and a server. Implementations own
// their read loop and deliver inbound data through the Receiver they were
// constructed with. After a successful Connect, the transport must call
// Receiver.TransportClosed exactly once when the connection ends, whether
// it was closed by Disconnect or by the remote side.
type Transport interface {
	// Connect dials address and starts the read loop.
	Connect(address string) error

	// Send writes one complete frame.
	Send(data []byte) error

	// Disconnect starts teardown of the connection.
	Disconnect() error

	// Connected reports whether the transport has a live connection.
	Connected() bool

	// AddressResolvedAsIPv6 reports whether the last Connect resolved to an
	// IPv6 address.
	AddressResolvedAsIPv6() bool
}

// Receiver is the callback surface a Transport drives. Implemented by Peer.
type Receiver interface {
	// ReceiveIncomingCommands hands over one inbound frame or ping reply.
	// The slice may be reused after the call returns.
	ReceiveIncomingCommands(data []byte)

	// TransportClosed reports the end of the connection. err is nil for an
	// orderly close.
	TransportClosed(err error)
}

// TransportFactory builds a transport bound to a receiver.
type TransportFactory func(r Receiver) Transport

// Listener receives session callbacks. All methods are invoked from
// DispatchIncomingCommands on the host's goroutine.
type Listener interface {
	OnStatusChanged(code StatusCode)
	OnOperationResponse(resp *wire.OperationResponse)
	OnEvent(ev *wire.EventData)
	DebugReturn(level DebugLevel, message string)
}

// MessageListener receives Message and RawMessage payloads. Optional.
type MessageListener interface {
	// OnMessage delivers a decoded value (isRaw false) or the raw payload
	// bytes (isRaw true).
	OnMessage(isRaw bool, message any)
}

// CryptoProvider seals and opens encrypted payloads once a shared key has
// been agreed with the server.
type CryptoProvider interface {
	// PublicKey returns the local public key, generating a key pair if needed.
	PublicKey() ([]byte, error)

	// DeriveSharedKey computes the session key from the server's public key.
	DeriveSharedKey(serverPublicKey []byte) error

	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)

	// Reset forgets the key pair and the session key.
	Reset()
}

// Compile-time interface satisfaction check.
var _ Receiver = (*Peer)(nil)
