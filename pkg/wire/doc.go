// Package wire implements the NDG tagged binary serialization format.
//
// Every value on the wire starts with a one-byte type tag followed by its
// payload. Containers whose element type is fixed (typed arrays, typed
// dictionaries) write the tag once and omit it from the elements.
//
// # Integers
//
// 32 and 64 bit integers are zig-zag mapped and written as varints
// (7 bits per byte, 0x80 continuation). When a tag is written, small
// values use the one or two byte shorthand tags (Int1, Int1_, Int2, Int2_
// and the L family) and zero uses a payload-free tag:
//
//	int32(0)    -> 1E
//	int32(200)  -> 0B C8
//	int32(-5)   -> 0C 05
//	int32(1000) -> 0D 03 E8
//
// # Custom types
//
// Applications extend the tag set by registering a Go type with a one
// byte code:
//
//	wire.Register(wire.DefaultRegistry, 7, encodeVec3, decodeVec3)
//
// Codes below 100 are written as the single tag byte 128+code; larger
// codes use the Custom tag followed by the code byte.
//
// # Forward compatibility
//
// An unknown tag decodes to nil without an error so that newer servers
// can send values older clients do not understand. Truncated input,
// unregistered custom codes and malformed varints are errors.
package wire
