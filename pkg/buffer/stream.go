package buffer

import (
	"errors"
	"fmt"
	"io"
)

// Errors returned by StreamBuffer.
var (
	// ErrTruncated indicates a read asked for more bytes than remain.
	ErrTruncated = errors.New("buffer truncated")

	// ErrNegativeSize indicates a negative length or offset.
	ErrNegativeSize = errors.New("negative size")
)

// StreamBuffer is a growable byte array with a read/write cursor.
//
// The zero value is an empty buffer ready for use.
// A StreamBuffer is not safe for concurrent use.
type StreamBuffer struct {
	buf    []byte // len(buf) is the capacity
	pos    int
	length int
}

// NewStreamBuffer creates an empty buffer with the given initial capacity.
func NewStreamBuffer(capacity int) *StreamBuffer {
	if capacity < 0 {
		capacity = 0
	}
	return &StreamBuffer{buf: make([]byte, capacity)}
}

// NewStreamBufferFrom wraps data without copying. The cursor starts at 0
// and the length equals len(data).
func NewStreamBufferFrom(data []byte) *StreamBuffer {
	return &StreamBuffer{buf: data[:len(data):len(data)], length: len(data)}
}

// Len returns the number of valid bytes in the buffer.
func (b *StreamBuffer) Len() int { return b.length }

// Position returns the cursor.
func (b *StreamBuffer) Position() int { return b.pos }

// SetPosition moves the cursor. Negative positions clamp to zero; a
// position past the current length extends the length (zero filled).
func (b *StreamBuffer) SetPosition(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > b.length {
		b.grow(pos)
		clear(b.buf[b.length:pos])
		b.length = pos
	}
	b.pos = pos
}

// Capacity returns the size of the backing array.
func (b *StreamBuffer) Capacity() int { return len(b.buf) }

// Available returns the number of unread bytes after the cursor.
func (b *StreamBuffer) Available() int { return b.length - b.pos }

// Bytes returns the valid bytes. The slice aliases the buffer and is only
// valid until the next write.
func (b *StreamBuffer) Bytes() []byte { return b.buf[:b.length] }

// BytesFromPosition returns the unread bytes after the cursor.
func (b *StreamBuffer) BytesFromPosition() []byte { return b.buf[b.pos:b.length] }

// Copy returns a copy of the valid bytes.
func (b *StreamBuffer) Copy() []byte {
	out := make([]byte, b.length)
	copy(out, b.buf[:b.length])
	return out
}

// Reset empties the buffer, keeping its capacity.
func (b *StreamBuffer) Reset() {
	b.pos = 0
	b.length = 0
}

// SetLength truncates or extends the buffer. The cursor is clamped to the
// new length.
func (b *StreamBuffer) SetLength(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: length %d", ErrNegativeSize, n)
	}
	if n > b.length {
		b.grow(n)
		clear(b.buf[b.length:n])
	}
	b.length = n
	if b.pos > n {
		b.pos = n
	}
	return nil
}

// EnsureCapacity grows the backing array to hold at least n bytes.
func (b *StreamBuffer) EnsureCapacity(n int) {
	b.grow(n)
}

// Compact discards the bytes before the cursor, moving the unread bytes to
// the front.
func (b *StreamBuffer) Compact() {
	if b.pos == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.pos:b.length])
	b.length = n
	b.pos = 0
}

// grow doubles the capacity (starting from 1) until it holds n bytes.
func (b *StreamBuffer) grow(n int) {
	if n <= len(b.buf) {
		return
	}
	c := len(b.buf)
	if c < 1 {
		c = 1
	}
	for c < n {
		c *= 2
	}
	nb := make([]byte, c)
	copy(nb, b.buf[:b.length])
	b.buf = nb
}

// Read implements io.Reader.
func (b *StreamBuffer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if b.pos >= b.length {
		return 0, io.EOF
	}
	n := copy(p, b.buf[b.pos:b.length])
	b.pos += n
	return n, nil
}

// ReadByte implements io.ByteReader.
func (b *StreamBuffer) ReadByte() (byte, error) {
	if b.pos >= b.length {
		return 0, ErrTruncated
	}
	c := b.buf[b.pos]
	b.pos++
	return c, nil
}

// ReadN returns the next n bytes and advances the cursor. The returned
// slice aliases the buffer.
func (b *StreamBuffer) ReadN(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: read %d", ErrNegativeSize, n)
	}
	if n > b.length-b.pos {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncated, n, b.length-b.pos)
	}
	p := b.buf[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}

// Skip advances the cursor by n bytes.
func (b *StreamBuffer) Skip(n int) error {
	_, err := b.ReadN(n)
	return err
}

// Write implements io.Writer. It never returns an error.
func (b *StreamBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	b.grow(end)
	copy(b.buf[b.pos:], p)
	b.pos = end
	if end > b.length {
		b.length = end
	}
	return len(p), nil
}

// WriteByte implements io.ByteWriter. It never returns an error.
func (b *StreamBuffer) WriteByte(c byte) error {
	b.grow(b.pos + 1)
	b.buf[b.pos] = c
	b.pos++
	if b.pos > b.length {
		b.length = b.pos
	}
	return nil
}

// WriteBytes writes the given bytes at the cursor.
func (b *StreamBuffer) WriteBytes(p ...byte) {
	_, _ = b.Write(p)
}

// WriteAt overwrites bytes at off without moving the cursor. Writes past
// the length extend it.
func (b *StreamBuffer) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 {
		return 0, fmt.Errorf("%w: offset %d", ErrNegativeSize, off)
	}
	at := int(off)
	end := at + len(p)
	if end > b.length {
		b.grow(end)
		if at > b.length {
			clear(b.buf[b.length:at])
		}
		b.length = end
	}
	copy(b.buf[at:], p)
	return len(p), nil
}

// ReserveBytes returns an n byte window at the cursor for the caller to
// fill, and advances the cursor past it.
func (b *StreamBuffer) ReserveBytes(n int) []byte {
	end := b.pos + n
	b.grow(end)
	p := b.buf[b.pos:end]
	b.pos = end
	if end > b.length {
		b.length = end
	}
	return p
}

// Compile-time interface checks.
var (
	_ io.Reader     = (*StreamBuffer)(nil)
	_ io.Writer     = (*StreamBuffer)(nil)
	_ io.ByteReader = (*StreamBuffer)(nil)
	_ io.ByteWriter = (*StreamBuffer)(nil)
	_ io.WriterAt   = (*StreamBuffer)(nil)
)
