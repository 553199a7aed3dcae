package peer

import (
	"fmt"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// Init flags.
const (
	InitFlagIPv6       byte = 0x01
	InitFlagCustomData byte = 0x02
)

// MaxAppIDLength is the longest application id the init message can carry.
const MaxAppIDLength = 255

// InitRequest is the body of the Init message.
type InitRequest struct {
	VersionMajor  byte
	VersionMinor  byte
	ClientSDKID   byte
	IPv6          bool
	ClientVersion [4]byte
	AppID         string

	// CustomData is the optional tagged value; nil when absent.
	CustomData    any
	HasCustomData bool
}

// encodeInit writes an init body at the buffer's cursor.
func encodeInit(buf *buffer.StreamBuffer, codec *wire.Codec, req *InitRequest) error {
	if len(req.AppID) > MaxAppIDLength {
		return fmt.Errorf("%w: %d bytes", ErrAppIDTooLong, len(req.AppID))
	}

	var flags byte
	if req.IPv6 {
		flags |= InitFlagIPv6
	}
	if req.HasCustomData {
		flags |= InitFlagCustomData
	}
	buf.WriteBytes(req.VersionMajor, req.VersionMinor, req.ClientSDKID, flags)
	buf.Write(req.ClientVersion[:])
	buf.WriteByte(byte(len(req.AppID)))
	buf.Write([]byte(req.AppID))

	if req.HasCustomData {
		if err := codec.Serialize(buf, req.CustomData, true); err != nil {
			return fmt.Errorf("init custom data: %w", err)
		}
	}
	return nil
}

// DecodeInit parses an init body. Servers use it to read the handshake.
func DecodeInit(payload []byte, codec *wire.Codec) (*InitRequest, error) {
	if codec == nil {
		codec = wire.NewCodec(nil)
	}
	buf := buffer.NewStreamBufferFrom(payload)

	head, err := buf.ReadN(8)
	if err != nil {
		return nil, fmt.Errorf("%w: init header", ErrMalformedFrame)
	}
	req := &InitRequest{
		VersionMajor: head[0],
		VersionMinor: head[1],
		ClientSDKID:  head[2],
		IPv6:         head[3]&InitFlagIPv6 != 0,
	}
	copy(req.ClientVersion[:], head[4:8])

	n, err := buf.ReadByte()
	if err != nil {
		return nil, fmt.Errorf("%w: init app id length", ErrMalformedFrame)
	}
	app, err := buf.ReadN(int(n))
	if err != nil {
		return nil, fmt.Errorf("%w: init app id", ErrMalformedFrame)
	}
	req.AppID = string(app)

	if head[3]&InitFlagCustomData != 0 {
		req.HasCustomData = true
		if req.CustomData, err = codec.Deserialize(buf); err != nil {
			return nil, fmt.Errorf("init custom data: %w", err)
		}
	}
	return req, nil
}
