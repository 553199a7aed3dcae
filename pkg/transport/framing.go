package transport

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

// Framing constants.
const (
	// DefaultMaxFrameSize matches the peer's default frame size guard.
	DefaultMaxFrameSize = 512 * 1024

	// lengthHeaderSize covers the 0xFB magic and the uint32 total length.
	lengthHeaderSize = 5

	readBufferSize = 16 * 1024
)

// Errors.
var (
	ErrFrameTooLarge    = errors.New("transport: frame too large")
	ErrFrameTruncated   = errors.New("transport: frame truncated")
	ErrBadFrameLength   = errors.New("transport: bad frame length")
	ErrUnexpectedByte   = errors.New("transport: unexpected leading byte")
	ErrFrameEmpty       = errors.New("transport: frame is empty")
	ErrNotConnected     = errors.New("transport: not connected")
	ErrAlreadyConnected = errors.New("transport: already connected")
	ErrConnectionClosed = errors.New("transport: connection closed")
)

// FrameReader splits a byte stream into frames. A frame is either a 0xFB
// frame whose header carries its total length, or a 0xF0 ping packet of a
// fixed size: peer.PingReplySize on the client side, peer.PingRequestSize on
// the server side.
//
// The returned slice is reused by the next ReadFrame call.
type FrameReader struct {
	r            *bufio.Reader
	pingSize     int
	maxFrameSize uint32
	buf          []byte
}

// NewFrameReader creates a frame reader expecting pings of pingSize bytes.
func NewFrameReader(r io.Reader, pingSize int) *FrameReader {
	return &FrameReader{
		r:            bufio.NewReaderSize(r, readBufferSize),
		pingSize:     pingSize,
		maxFrameSize: DefaultMaxFrameSize,
	}
}

// SetMaxFrameSize updates the largest accepted frame.
func (fr *FrameReader) SetMaxFrameSize(size uint32) {
	fr.maxFrameSize = size
}

// ReadFrame reads the next frame. io.EOF is returned only when the stream
// ends on a frame boundary.
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	lead, err := fr.r.ReadByte()
	if err != nil {
		return nil, err
	}

	var size int
	switch lead {
	case peer.MagicFrame:
		var length [4]byte
		if _, err := io.ReadFull(fr.r, length[:]); err != nil {
			return nil, truncated(err)
		}
		n := binary.BigEndian.Uint32(length[:])
		if n < peer.FrameHeaderSize {
			return nil, fmt.Errorf("%w: %d", ErrBadFrameLength, n)
		}
		if n > fr.maxFrameSize {
			return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, fr.maxFrameSize)
		}
		size = int(n)
		fr.grow(size)
		fr.buf[0] = lead
		copy(fr.buf[1:lengthHeaderSize], length[:])
		if _, err := io.ReadFull(fr.r, fr.buf[lengthHeaderSize:size]); err != nil {
			return nil, truncated(err)
		}

	case peer.MagicPing:
		size = fr.pingSize
		fr.grow(size)
		fr.buf[0] = lead
		if _, err := io.ReadFull(fr.r, fr.buf[1:size]); err != nil {
			return nil, truncated(err)
		}

	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnexpectedByte, lead)
	}

	return fr.buf[:size], nil
}

func (fr *FrameReader) grow(n int) {
	if cap(fr.buf) < n {
		fr.buf = make([]byte, n)
	}
	fr.buf = fr.buf[:n]
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrFrameTruncated
	}
	return err
}

// FrameWriter writes complete frames to an underlying writer.
// Thread-safe: can be called from multiple goroutines.
type FrameWriter struct {
	w  io.Writer
	mu sync.Mutex
}

// NewFrameWriter creates a new frame writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame writes one frame in a single call to the underlying writer.
func (fw *FrameWriter) WriteFrame(data []byte) error {
	if len(data) == 0 {
		return ErrFrameEmpty
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.w.Write(data); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
