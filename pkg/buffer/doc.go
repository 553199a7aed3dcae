// Package buffer provides the byte containers used by the NDG wire codec
// and peer session.
//
// # StreamBuffer
//
// StreamBuffer is a growable byte array with an independent cursor:
//
//	position <= length <= capacity
//
// Writes happen at the cursor and extend the length when they run past it.
// When capacity is exceeded it doubles (starting from 1) until the write fits.
// Reads consume bytes between the cursor and the length.
//
//	buf := buffer.NewStreamBuffer(64)
//	buf.WriteByte(0xF3)
//	buf.Write(payload)
//	frame := buf.Bytes()
//
// # SlicePool
//
// SlicePool hands out reusable power-of-two sized byte slices, grouped in
// tiers starting at 128 bytes. Each tier is a free list with its own lock,
// so concurrent acquire/release on different sizes never contend.
//
//	s := pool.Acquire(len(data))
//	copy(s.Buffer, data)
//	defer s.Release()
package buffer
