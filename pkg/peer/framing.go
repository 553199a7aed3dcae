package peer

import (
	"encoding/binary"
	"fmt"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
)

// Wire magic bytes.
const (
	MagicFrame   byte = 0xFB
	MagicMessage byte = 0xF3
	MagicPing    byte = 0xF0
)

// Frame layout sizes.
const (
	// FrameHeaderSize covers magic, total length, channel and delivery mode.
	FrameHeaderSize = 7

	// headerSize adds the 0xF3 sub-header and the message type.
	headerSize = FrameHeaderSize + 2

	PingRequestSize = 5
	PingReplySize   = 9
)

// Frame is a parsed inbound frame.
type Frame struct {
	Channel      byte
	DeliveryMode DeliveryMode
	Type         MessageType
	Encrypted    bool

	// Payload is the message body after the type byte.
	Payload []byte

	// Framed is false for a bare 0xF3 message without the 0xFB header.
	Framed bool
}

// beginFrame writes a frame header with a zero length placeholder.
func beginFrame(buf *buffer.StreamBuffer, opts SendOptions, mt MessageType) {
	buf.Reset()
	h := buf.ReserveBytes(headerSize)
	h[0] = MagicFrame
	h[5] = opts.Channel
	h[6] = byte(opts.DeliveryMode)
	h[7] = MagicMessage
	h[8] = byte(mt)
}

// finishFrame patches the total length into the header.
func finishFrame(buf *buffer.StreamBuffer) {
	binary.BigEndian.PutUint32(buf.Bytes()[1:5], uint32(buf.Len()))
}

// AppendFrame appends a complete frame to dst.
func AppendFrame(dst []byte, channel byte, mode DeliveryMode, mt MessageType, encrypted bool, body []byte) []byte {
	typ := byte(mt)
	if encrypted {
		typ |= encryptedFlag
	}
	total := headerSize + len(body)
	dst = append(dst, MagicFrame)
	dst = binary.BigEndian.AppendUint32(dst, uint32(total))
	dst = append(dst, channel, byte(mode), MagicMessage, typ)
	return append(dst, body...)
}

// ParseFrame parses an inbound frame. The returned payload aliases data.
func ParseFrame(data []byte) (Frame, error) {
	var f Frame
	msg := data

	if len(data) > 0 && data[0] == MagicFrame {
		if len(data) < headerSize {
			return f, fmt.Errorf("%w: %d byte frame", ErrMalformedFrame, len(data))
		}
		declared := binary.BigEndian.Uint32(data[1:5])
		if int(declared) != len(data) {
			return f, fmt.Errorf("%w: length header %d, got %d bytes", ErrMalformedFrame, declared, len(data))
		}
		f.Framed = true
		f.Channel = data[5]
		f.DeliveryMode = DeliveryMode(data[6])
		msg = data[FrameHeaderSize:]
	}

	if len(msg) < 2 || msg[0] != MagicMessage {
		var first byte
		if len(msg) > 0 {
			first = msg[0]
		}
		return f, fmt.Errorf("%w: unexpected magic 0x%02X", ErrMalformedFrame, first)
	}

	f.Encrypted = msg[1]&encryptedFlag != 0
	f.Type = MessageType(msg[1] &^ encryptedFlag)
	f.Payload = msg[2:]
	return f, nil
}

// EncodePingRequest builds a ping carrying the client's timestamp.
func EncodePingRequest(clientTime int32) []byte {
	b := make([]byte, PingRequestSize)
	b[0] = MagicPing
	binary.BigEndian.PutUint32(b[1:], uint32(clientTime))
	return b
}

// DecodePingRequest extracts the client timestamp from a ping.
func DecodePingRequest(data []byte) (int32, error) {
	if len(data) != PingRequestSize || data[0] != MagicPing {
		return 0, fmt.Errorf("%w: ping request of %d bytes", ErrMalformedFrame, len(data))
	}
	return int32(binary.BigEndian.Uint32(data[1:])), nil
}

// EncodePingReply builds the server's answer to a ping.
func EncodePingReply(serverTime, clientTime int32) []byte {
	b := make([]byte, PingReplySize)
	b[0] = MagicPing
	binary.BigEndian.PutUint32(b[1:], uint32(serverTime))
	binary.BigEndian.PutUint32(b[5:], uint32(clientTime))
	return b
}

// DecodePingReply extracts the server time and the echoed client time.
func DecodePingReply(data []byte) (serverTime, clientTime int32, err error) {
	if len(data) != PingReplySize || data[0] != MagicPing {
		return 0, 0, fmt.Errorf("%w: ping reply of %d bytes", ErrMalformedFrame, len(data))
	}
	return int32(binary.BigEndian.Uint32(data[1:])), int32(binary.BigEndian.Uint32(data[5:])), nil
}
