package peer

import (
	"fmt"
	"strings"
)

// ConnectionState is the lifecycle state of a Peer.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateDisconnecting
	// StateAcknowledgingDisconnect belongs to datagram transports that
	// confirm a disconnect. Stream transports never enter it.
	StateAcknowledgingDisconnect
	StateZombie
)

// String returns the state name.
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	case StateDisconnecting:
		return "DISCONNECTING"
	case StateAcknowledgingDisconnect:
		return "ACKNOWLEDGING_DISCONNECT"
	case StateZombie:
		return "ZOMBIE"
	default:
		return "UNKNOWN"
	}
}

// DeliveryMode selects how the transport should treat a frame. Stream
// transports deliver everything reliably; the mode is still carried in the
// frame header so the server can apply its own policy.
type DeliveryMode byte

const (
	DeliveryUnreliable DeliveryMode = iota
	DeliveryReliable
	DeliveryUnreliableUnsequenced
	DeliveryReliableUnsequenced
)

// String returns the delivery mode name.
func (d DeliveryMode) String() string {
	switch d {
	case DeliveryUnreliable:
		return "UNRELIABLE"
	case DeliveryReliable:
		return "RELIABLE"
	case DeliveryUnreliableUnsequenced:
		return "UNRELIABLE_UNSEQUENCED"
	case DeliveryReliableUnsequenced:
		return "RELIABLE_UNSEQUENCED"
	default:
		return "UNKNOWN"
	}
}

// SendOptions controls how a single enqueue is framed.
type SendOptions struct {
	Channel      byte
	DeliveryMode DeliveryMode
	Encrypt      bool
}

var (
	// SendReliable sends reliably on channel 0.
	SendReliable = SendOptions{DeliveryMode: DeliveryReliable}

	// SendUnreliable sends unreliably on channel 0.
	SendUnreliable = SendOptions{DeliveryMode: DeliveryUnreliable}
)

// MessageType is the type byte that follows the 0xF3 sub-header.
type MessageType byte

const (
	MessageInit                      MessageType = 0
	MessageInitResponse              MessageType = 1
	MessageOperation                 MessageType = 2
	MessageOperationResponse         MessageType = 3
	MessageEvent                     MessageType = 4
	MessageInternalOperationRequest  MessageType = 6
	MessageInternalOperationResponse MessageType = 7
	MessageMessage                   MessageType = 8
	MessageRawMessage                MessageType = 9

	// encryptedFlag marks an encrypted payload in the message type byte.
	encryptedFlag byte = 0x80
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageInit:
		return "Init"
	case MessageInitResponse:
		return "InitResponse"
	case MessageOperation:
		return "Operation"
	case MessageOperationResponse:
		return "OperationResponse"
	case MessageEvent:
		return "Event"
	case MessageInternalOperationRequest:
		return "InternalOperationRequest"
	case MessageInternalOperationResponse:
		return "InternalOperationResponse"
	case MessageMessage:
		return "Message"
	case MessageRawMessage:
		return "RawMessage"
	default:
		return fmt.Sprintf("MessageType(%d)", byte(m))
	}
}

// Internal operation codes.
const (
	InternalOpInitEncryption byte = 0
	InternalOpPing           byte = 1
)

// Internal operation parameter keys.
const (
	ParamClientKey  byte = 1
	ParamServerKey  byte = 1
	ParamClientTime byte = 1
	ParamServerTime byte = 2
)

// StatusCode is reported through Listener.OnStatusChanged.
type StatusCode int

const (
	StatusSecurityExceptionOnConnect      StatusCode = 1022
	StatusExceptionOnConnect              StatusCode = 1023
	StatusConnect                         StatusCode = 1024
	StatusDisconnect                      StatusCode = 1025
	StatusException                       StatusCode = 1026
	StatusSendError                       StatusCode = 1030
	StatusExceptionOnReceive              StatusCode = 1039
	StatusTimeoutDisconnect               StatusCode = 1040
	StatusDisconnectByServerTimeout       StatusCode = 1041
	StatusDisconnectByServerUserLimit     StatusCode = 1042
	StatusDisconnectByServerLogic         StatusCode = 1043
	StatusDisconnectByServerReasonUnknown StatusCode = 1044
	StatusEncryptionEstablished           StatusCode = 1048
	StatusEncryptionFailedToEstablish     StatusCode = 1049
)

var statusNames = map[StatusCode]string{
	StatusSecurityExceptionOnConnect:      "SecurityExceptionOnConnect",
	StatusExceptionOnConnect:              "ExceptionOnConnect",
	StatusConnect:                         "Connect",
	StatusDisconnect:                      "Disconnect",
	StatusException:                       "Exception",
	StatusSendError:                       "SendError",
	StatusExceptionOnReceive:              "ExceptionOnReceive",
	StatusTimeoutDisconnect:               "TimeoutDisconnect",
	StatusDisconnectByServerTimeout:       "DisconnectByServerTimeout",
	StatusDisconnectByServerUserLimit:     "DisconnectByServerUserLimit",
	StatusDisconnectByServerLogic:         "DisconnectByServerLogic",
	StatusDisconnectByServerReasonUnknown: "DisconnectByServerReasonUnknown",
	StatusEncryptionEstablished:           "EncryptionEstablished",
	StatusEncryptionFailedToEstablish:     "EncryptionFailedToEstablish",
}

// String returns the status name.
func (c StatusCode) String() string {
	if name, ok := statusNames[c]; ok {
		return name
	}
	return fmt.Sprintf("StatusCode(%d)", int(c))
}

// DebugLevel filters DebugReturn output.
type DebugLevel byte

const (
	DebugOff     DebugLevel = 0
	DebugError   DebugLevel = 1
	DebugWarning DebugLevel = 2
	DebugInfo    DebugLevel = 3
	DebugAll     DebugLevel = 5
)

// String returns the level name.
func (l DebugLevel) String() string {
	switch l {
	case DebugOff:
		return "OFF"
	case DebugError:
		return "ERROR"
	case DebugWarning:
		return "WARNING"
	case DebugInfo:
		return "INFO"
	case DebugAll:
		return "ALL"
	default:
		return fmt.Sprintf("DebugLevel(%d)", byte(l))
	}
}

// ParseDebugLevel parses a level name (case-insensitive).
func ParseDebugLevel(s string) (DebugLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return DebugOff, nil
	case "error":
		return DebugError, nil
	case "warning", "warn":
		return DebugWarning, nil
	case "info":
		return DebugInfo, nil
	case "all", "debug":
		return DebugAll, nil
	}
	return DebugOff, fmt.Errorf("%w: debug level %q", ErrInvalidConfig, s)
}

// Protocol selects the transport flavour.
type Protocol string

const (
	ProtocolTCP             Protocol = "tcp"
	ProtocolWebSocket       Protocol = "ws"
	ProtocolWebSocketSecure Protocol = "wss"
	ProtocolUDP             Protocol = "udp"
)

// IsWebSocket reports whether the protocol is message oriented.
func (p Protocol) IsWebSocket() bool {
	return p == ProtocolWebSocket || p == ProtocolWebSocketSecure
}
