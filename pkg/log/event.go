package log

import (
	"time"
)

// Event represents a protocol log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies the peer session (UUID, new per Connect).
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// RemoteAddr is the server address as given to Connect.
	RemoteAddr string `cbor:"6,keyasint,omitempty"`

	// AppID is the application id sent in the init message.
	AppID string `cbor:"7,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Wire layer (decoded)
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Session state
	Ping        *PingEvent        `cbor:"13,keyasint,omitempty"` // Ping/pong/close
	Error       *ErrorEventData   `cbor:"14,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates an incoming message.
	DirectionIn Direction = 0
	// DirectionOut indicates an outgoing message.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which protocol layer captured the event.
type Layer uint8

const (
	// LayerTransport is the socket layer (raw frames).
	LayerTransport Layer = 0
	// LayerWire is the codec layer (decoded messages).
	LayerWire Layer = 1
	// LayerSession is the peer session state machine.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a framed message (operation, event, ...).
	CategoryMessage Category = 0
	// CategoryControl indicates a ping, pong or close.
	CategoryControl Category = 1
	// CategoryState indicates a state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryControl:
		return "CONTROL"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw frame data at the transport layer.
type FrameEvent struct {
	// Size is the frame size in bytes (including headers).
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`

	// Channel the frame was sent or received on.
	Channel uint8 `cbor:"4,keyasint,omitempty"`

	// DeliveryMode is the delivery mode code from the frame header.
	DeliveryMode uint8 `cbor:"5,keyasint,omitempty"`
}

// MessageEvent captures a decoded message at the wire layer.
type MessageEvent struct {
	// Type is the message type from the 0xF3 sub-header.
	Type MessageType `cbor:"1,keyasint"`

	// Code is the operation or event code.
	Code uint8 `cbor:"2,keyasint"`

	// ReturnCode is set for operation responses.
	ReturnCode *int16 `cbor:"3,keyasint,omitempty"`

	// DebugMessage is the server's debug text for responses.
	DebugMessage string `cbor:"4,keyasint,omitempty"`

	// Encrypted reports whether the payload was encrypted on the wire.
	Encrypted bool `cbor:"5,keyasint,omitempty"`

	// ParameterCount is the number of entries in the parameter table.
	ParameterCount int `cbor:"6,keyasint,omitempty"`

	// Parameters holds a printable rendering of the parameter table.
	Parameters map[uint8]string `cbor:"7,keyasint,omitempty"`
}

// MessageType mirrors the message type byte of the session protocol.
type MessageType uint8

const (
	MessageTypeInit                      MessageType = 0
	MessageTypeInitResponse              MessageType = 1
	MessageTypeOperation                 MessageType = 2
	MessageTypeOperationResponse         MessageType = 3
	MessageTypeEvent                     MessageType = 4
	MessageTypeInternalOperationRequest  MessageType = 6
	MessageTypeInternalOperationResponse MessageType = 7
	MessageTypeMessage                   MessageType = 8
	MessageTypeRawMessage                MessageType = 9
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeInit:
		return "INIT"
	case MessageTypeInitResponse:
		return "INIT_RESPONSE"
	case MessageTypeOperation:
		return "OPERATION"
	case MessageTypeOperationResponse:
		return "OPERATION_RESPONSE"
	case MessageTypeEvent:
		return "EVENT"
	case MessageTypeInternalOperationRequest:
		return "INTERNAL_REQUEST"
	case MessageTypeInternalOperationResponse:
		return "INTERNAL_RESPONSE"
	case MessageTypeMessage:
		return "MESSAGE"
	case MessageTypeRawMessage:
		return "RAW_MESSAGE"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures session lifecycle events.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`

	// StatusCode is the listener status raised with the change, if any.
	StatusCode int `cbor:"4,keyasint,omitempty"`
}

// PingEvent captures ping traffic and the resulting round trip estimate.
type PingEvent struct {
	// Type of control message.
	Type ControlMsgType `cbor:"1,keyasint"`

	// RTT is the smoothed round trip time after this sample.
	RTT time.Duration `cbor:"2,keyasint,omitempty"`

	// Variance is the round trip time variance after this sample.
	Variance time.Duration `cbor:"3,keyasint,omitempty"`

	// Sample is the raw round trip of this ping.
	Sample time.Duration `cbor:"4,keyasint,omitempty"`

	// ServerTime is the server timestamp (ms) carried by a pong.
	ServerTime int32 `cbor:"5,keyasint,omitempty"`
}

// ControlMsgType indicates the type of control message.
type ControlMsgType uint8

const (
	// ControlMsgPing indicates a ping message.
	ControlMsgPing ControlMsgType = 0
	// ControlMsgPong indicates a pong message.
	ControlMsgPong ControlMsgType = 1
	// ControlMsgClose indicates a close message.
	ControlMsgClose ControlMsgType = 2
)

// String returns the control message type name.
func (c ControlMsgType) String() string {
	switch c {
	case ControlMsgPing:
		return "PING"
	case ControlMsgPong:
		return "PONG"
	case ControlMsgClose:
		return "CLOSE"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Code is the status code (if applicable).
	Code *int `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
