package wire

import (
	"bytes"
	"fmt"
	"reflect"
	"sync"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
)

// SerializeFunc encodes a custom value into a standalone byte slice.
type SerializeFunc func(v any) ([]byte, error)

// DeserializeFunc decodes a custom value from exactly the bytes produced
// by the matching SerializeFunc. data is a private copy the function may
// keep.
type DeserializeFunc func(data []byte) (any, error)

// StreamSerializeFunc writes a custom value at the buffer's cursor.
type StreamSerializeFunc func(w *buffer.StreamBuffer, v any) error

// StreamDeserializeFunc reads a custom value of length bytes from the
// buffer's cursor. r holds a private copy of the body, so slices read
// from it may be kept.
type StreamDeserializeFunc func(r *buffer.StreamBuffer, length int) (any, error)

// CustomType is one registration in a Registry.
type CustomType struct {
	Code byte
	Type reflect.Type

	serialize         SerializeFunc
	deserialize       DeserializeFunc
	streamSerialize   StreamSerializeFunc
	streamDeserialize StreamDeserializeFunc

	// makeSlice builds a typed []T from decoded elements.
	makeSlice func(elems []any) (any, error)
}

// Streaming reports whether the registration uses the streaming form.
func (ct *CustomType) Streaming() bool {
	return ct.streamSerialize != nil
}

func (ct *CustomType) encode(w *buffer.StreamBuffer, v any) error {
	if ct.streamSerialize != nil {
		return ct.streamSerialize(w, v)
	}
	data, err := ct.serialize(v)
	if err != nil {
		return err
	}
	w.Write(data)
	return nil
}

// decode hands the deserializer a copy of the body. Frame payloads may
// live in pooled receive buffers that are reused after dispatch.
func (ct *CustomType) decode(r *buffer.StreamBuffer, length int) (any, error) {
	body, err := readFixed(r, length)
	if err != nil {
		return nil, err
	}
	data := bytes.Clone(body)
	if data == nil {
		data = []byte{}
	}
	if ct.streamDeserialize != nil {
		return ct.streamDeserialize(buffer.NewStreamBufferFrom(data), length)
	}
	return ct.deserialize(data)
}

// Registry maps custom type codes to Go types and their serializers.
// Registrations are expected at startup and are never removed.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byCode map[byte]*CustomType
	byType map[reflect.Type]*CustomType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byCode: make(map[byte]*CustomType),
		byType: make(map[reflect.Type]*CustomType),
	}
}

// DefaultRegistry is the process-wide registry used by codecs created
// without an explicit one.
var DefaultRegistry = NewRegistry()

// RegisterType registers t under code with whole-buffer serializers.
// It returns false, leaving the registry unchanged, if code or t is
// already registered or either function is nil.
func (r *Registry) RegisterType(t reflect.Type, code byte, ser SerializeFunc, de DeserializeFunc) bool {
	if t == nil || ser == nil || de == nil {
		return false
	}
	return r.add(&CustomType{
		Code:        code,
		Type:        t,
		serialize:   ser,
		deserialize: de,
		makeSlice:   reflectSlice(t),
	})
}

// RegisterStreamType registers t under code with streaming serializers.
// Collisions are rejected as in RegisterType.
func (r *Registry) RegisterStreamType(t reflect.Type, code byte, ser StreamSerializeFunc, de StreamDeserializeFunc) bool {
	if t == nil || ser == nil || de == nil {
		return false
	}
	return r.add(&CustomType{
		Code:              code,
		Type:              t,
		streamSerialize:   ser,
		streamDeserialize: de,
		makeSlice:         reflectSlice(t),
	})
}

func (r *Registry) add(ct *CustomType) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byCode[ct.Code]; ok {
		return false
	}
	if _, ok := r.byType[ct.Type]; ok {
		return false
	}
	r.byCode[ct.Code] = ct
	r.byType[ct.Type] = ct
	return true
}

// ByCode returns the registration for code.
func (r *Registry) ByCode(code byte) (*CustomType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.byCode[code]
	return ct, ok
}

// ByType returns the registration for t.
func (r *Registry) ByType(t reflect.Type) (*CustomType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ct, ok := r.byType[t]
	return ct, ok
}

// Len returns the number of registrations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCode)
}

// Register registers T under code using typed whole-buffer serializers.
func Register[T any](r *Registry, code byte, ser func(T) ([]byte, error), de func([]byte) (T, error)) bool {
	if ser == nil || de == nil {
		return false
	}
	return r.add(&CustomType{
		Code: code,
		Type: reflect.TypeFor[T](),
		serialize: func(v any) ([]byte, error) {
			tv, ok := v.(T)
			if !ok {
				return nil, fmt.Errorf("%w: %T for custom type %d", ErrTypeMismatch, v, code)
			}
			return ser(tv)
		},
		deserialize: func(data []byte) (any, error) {
			return de(data)
		},
		makeSlice: typedSlice[T],
	})
}

// RegisterStream registers T under code using typed streaming serializers.
func RegisterStream[T any](r *Registry, code byte, ser func(*buffer.StreamBuffer, T) error, de func(*buffer.StreamBuffer, int) (T, error)) bool {
	if ser == nil || de == nil {
		return false
	}
	return r.add(&CustomType{
		Code: code,
		Type: reflect.TypeFor[T](),
		streamSerialize: func(w *buffer.StreamBuffer, v any) error {
			tv, ok := v.(T)
			if !ok {
				return fmt.Errorf("%w: %T for custom type %d", ErrTypeMismatch, v, code)
			}
			return ser(w, tv)
		},
		streamDeserialize: func(rd *buffer.StreamBuffer, length int) (any, error) {
			return de(rd, length)
		},
		makeSlice: typedSlice[T],
	})
}

// RegisterType registers t in DefaultRegistry.
func RegisterType(t reflect.Type, code byte, ser SerializeFunc, de DeserializeFunc) bool {
	return DefaultRegistry.RegisterType(t, code, ser, de)
}

// RegisterStreamType registers t in DefaultRegistry.
func RegisterStreamType(t reflect.Type, code byte, ser StreamSerializeFunc, de StreamDeserializeFunc) bool {
	return DefaultRegistry.RegisterStreamType(t, code, ser, de)
}

func typedSlice[T any](elems []any) (any, error) {
	out := make([]T, len(elems))
	for i, e := range elems {
		v, ok := e.(T)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T", ErrTypeMismatch, i, e)
		}
		out[i] = v
	}
	return out, nil
}

func reflectSlice(t reflect.Type) func([]any) (any, error) {
	return func(elems []any) (any, error) {
		out := reflect.MakeSlice(reflect.SliceOf(t), len(elems), len(elems))
		for i, e := range elems {
			ev := reflect.ValueOf(e)
			if !ev.IsValid() || !ev.Type().AssignableTo(t) {
				return nil, fmt.Errorf("%w: element %d is %T", ErrTypeMismatch, i, e)
			}
			out.Index(i).Set(ev)
		}
		return out.Interface(), nil
	}
}
