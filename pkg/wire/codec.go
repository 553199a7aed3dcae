package wire

import (
	"fmt"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
)

// Codec serializes wire values using a custom type registry.
// A Codec holds no per-call state and is safe for concurrent use.
type Codec struct {
	registry *Registry
}

// NewCodec creates a codec resolving custom types through reg.
// A nil reg uses DefaultRegistry.
func NewCodec(reg *Registry) *Codec {
	if reg == nil {
		reg = DefaultRegistry
	}
	return &Codec{registry: reg}
}

// Registry returns the codec's custom type registry.
func (c *Codec) Registry() *Registry {
	return c.registry
}

// Serialize appends v at buf's cursor. With writeType the value's tag is
// written first. On error buf is restored to its previous length.
func (c *Codec) Serialize(buf *buffer.StreamBuffer, v any, writeType bool) error {
	e := encoder{reg: c.registry, buf: buf}
	start := buf.Position()
	if err := e.encode(v, writeType); err != nil {
		e.rollback(start)
		return err
	}
	return nil
}

// Deserialize reads one tagged value. Unknown tags yield nil without an error.
func (c *Codec) Deserialize(buf *buffer.StreamBuffer) (any, error) {
	d := decoder{reg: c.registry, buf: buf}
	return d.decode()
}

// DeserializeAs reads one value whose tag has already been consumed.
func (c *Codec) DeserializeAs(buf *buffer.StreamBuffer, tag Tag) (any, error) {
	d := decoder{reg: c.registry, buf: buf}
	return d.decodeAs(tag)
}

// SerializeOperationRequest writes req. With setType the OperationRequest
// tag is written first; message bodies omit it.
func (c *Codec) SerializeOperationRequest(buf *buffer.StreamBuffer, req *OperationRequest, setType bool) error {
	e := encoder{reg: c.registry, buf: buf}
	start := buf.Position()
	if setType {
		e.writeTag(TagOperationRequest)
	}
	if err := e.writeOperationRequest(req); err != nil {
		e.rollback(start)
		return err
	}
	return nil
}

// DeserializeOperationRequest reads an untagged operation request.
func (c *Codec) DeserializeOperationRequest(buf *buffer.StreamBuffer) (*OperationRequest, error) {
	d := decoder{reg: c.registry, buf: buf}
	return d.readOperationRequest()
}

// SerializeOperationResponse writes resp, optionally tagged.
func (c *Codec) SerializeOperationResponse(buf *buffer.StreamBuffer, resp *OperationResponse, setType bool) error {
	e := encoder{reg: c.registry, buf: buf}
	start := buf.Position()
	if setType {
		e.writeTag(TagOperationResponse)
	}
	if err := e.writeOperationResponse(resp); err != nil {
		e.rollback(start)
		return err
	}
	return nil
}

// DeserializeOperationResponse reads an untagged operation response.
func (c *Codec) DeserializeOperationResponse(buf *buffer.StreamBuffer) (*OperationResponse, error) {
	d := decoder{reg: c.registry, buf: buf}
	return d.readOperationResponse()
}

// SerializeEventData writes ev, optionally tagged.
func (c *Codec) SerializeEventData(buf *buffer.StreamBuffer, ev *EventData, setType bool) error {
	e := encoder{reg: c.registry, buf: buf}
	start := buf.Position()
	if setType {
		e.writeTag(TagEventData)
	}
	if err := e.writeEventData(ev); err != nil {
		e.rollback(start)
		return err
	}
	return nil
}

// DeserializeEventData reads untagged event data.
func (c *Codec) DeserializeEventData(buf *buffer.StreamBuffer) (*EventData, error) {
	d := decoder{reg: c.registry, buf: buf}
	return d.readEventData()
}

var defaultCodec = NewCodec(DefaultRegistry)

// Marshal encodes v as a tagged value using DefaultRegistry.
func Marshal(v any) ([]byte, error) {
	buf := buffer.NewStreamBuffer(64)
	if err := defaultCodec.Serialize(buf, v, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes one tagged value using DefaultRegistry. Trailing
// bytes are an error.
func Unmarshal(data []byte) (any, error) {
	buf := buffer.NewStreamBufferFrom(data)
	v, err := defaultCodec.Deserialize(buf)
	if err != nil {
		return nil, err
	}
	if buf.Available() != 0 {
		return nil, fmt.Errorf("wire: %d trailing bytes", buf.Available())
	}
	return v, nil
}
