package wire

// Encoding limits.
const (
	// MaxStringLength is the largest UTF-8 byte length a string may have.
	MaxStringLength = 32767

	// MaxCollectionCount bounds the element count of any array or map.
	MaxCollectionCount = 1 << 20

	// MaxParameterCount is the largest parameter table an operation or
	// event can carry; the count is a single byte.
	MaxParameterCount = 255

	// MaxDepth bounds container nesting in both directions.
	MaxDepth = 64
)

// depthContext tracks container nesting for one encode or decode call.
type depthContext struct {
	current int
}

func (dc *depthContext) enter() error {
	if dc.current >= MaxDepth {
		return ErrMaxDepthExceeded
	}
	dc.current++
	return nil
}

func (dc *depthContext) leave() {
	dc.current--
}
