package wire

import "errors"

// Codec errors. Returned errors wrap these; test with errors.Is.
var (
	// ErrTruncatedInput indicates a read past the end of the buffer.
	ErrTruncatedInput = errors.New("wire: truncated input")

	// ErrUnknownCustomType indicates a custom type code with no registration.
	ErrUnknownCustomType = errors.New("wire: unknown custom type")

	// ErrStringTooLong indicates a string longer than MaxStringLength bytes.
	ErrStringTooLong = errors.New("wire: string too long")

	// ErrUnsupportedType indicates a Go value the codec cannot encode.
	ErrUnsupportedType = errors.New("wire: unsupported type")

	// ErrVarintOverflow indicates a varint longer than its integer width allows.
	ErrVarintOverflow = errors.New("wire: varint overflow")

	// ErrCollectionTooLarge indicates an element count beyond MaxCollectionCount.
	ErrCollectionTooLarge = errors.New("wire: collection count exceeds limit")

	// ErrMaxDepthExceeded indicates containers nested deeper than MaxDepth.
	ErrMaxDepthExceeded = errors.New("wire: maximum nesting depth exceeded")

	// ErrTypeMismatch indicates an element that does not match the
	// container's declared element type.
	ErrTypeMismatch = errors.New("wire: element type mismatch")
)
