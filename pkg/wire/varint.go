package wire

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
)

// MaxVarintLen32 and MaxVarintLen64 are the longest varints for each width.
const (
	MaxVarintLen32 = 5
	MaxVarintLen64 = 10
)

// ZigZag32 maps a signed value so small magnitudes stay small.
func ZigZag32(v int32) uint32 {
	return uint32((v << 1) ^ (v >> 31))
}

// UnZigZag32 reverses ZigZag32.
func UnZigZag32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

// ZigZag64 maps a signed value so small magnitudes stay small.
func ZigZag64(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

// UnZigZag64 reverses ZigZag64.
func UnZigZag64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// UvarintLen returns the number of bytes needed to encode v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}

func writeUvarint(b *buffer.StreamBuffer, v uint64) {
	var tmp [MaxVarintLen64]byte
	i := 0
	for v >= 0x80 {
		tmp[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	tmp[i] = byte(v)
	b.Write(tmp[:i+1])
}

func readUvarint(b *buffer.StreamBuffer, maxLen int) (uint64, error) {
	var v uint64
	var shift uint
	for i := 0; ; i++ {
		if i >= maxLen {
			return 0, ErrVarintOverflow
		}
		c, err := b.ReadByte()
		if err != nil {
			return 0, fmt.Errorf("%w: varint", ErrTruncatedInput)
		}
		v |= uint64(c&0x7F) << shift
		if c < 0x80 {
			return v, nil
		}
		shift += 7
	}
}

func readUvarint32(b *buffer.StreamBuffer) (uint32, error) {
	v, err := readUvarint(b, MaxVarintLen32)
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, ErrVarintOverflow
	}
	return uint32(v), nil
}

func writeCompressedInt(b *buffer.StreamBuffer, v int32) {
	writeUvarint(b, uint64(ZigZag32(v)))
}

func writeCompressedLong(b *buffer.StreamBuffer, v int64) {
	writeUvarint(b, ZigZag64(v))
}

func readCompressedInt(b *buffer.StreamBuffer) (int32, error) {
	u, err := readUvarint32(b)
	if err != nil {
		return 0, err
	}
	return UnZigZag32(u), nil
}

func readCompressedLong(b *buffer.StreamBuffer) (int64, error) {
	u, err := readUvarint(b, MaxVarintLen64)
	if err != nil {
		return 0, err
	}
	return UnZigZag64(u), nil
}

// Fixed-width big-endian helpers.

func writeUint16(b *buffer.StreamBuffer, v uint16) {
	binary.BigEndian.PutUint16(b.ReserveBytes(2), v)
}

func writeUint32(b *buffer.StreamBuffer, v uint32) {
	binary.BigEndian.PutUint32(b.ReserveBytes(4), v)
}

func writeUint64(b *buffer.StreamBuffer, v uint64) {
	binary.BigEndian.PutUint64(b.ReserveBytes(8), v)
}

func readFixed(b *buffer.StreamBuffer, n int) ([]byte, error) {
	p, err := b.ReadN(n)
	if err != nil {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedInput, n, b.Available())
	}
	return p, nil
}

func readByte(b *buffer.StreamBuffer) (byte, error) {
	c, err := b.ReadByte()
	if err != nil {
		return 0, fmt.Errorf("%w: need 1 byte", ErrTruncatedInput)
	}
	return c, nil
}

func readUint16(b *buffer.StreamBuffer) (uint16, error) {
	p, err := readFixed(b, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

func readUint32(b *buffer.StreamBuffer) (uint32, error) {
	p, err := readFixed(b, 4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

func readUint64(b *buffer.StreamBuffer) (uint64, error) {
	p, err := readFixed(b, 8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p), nil
}
