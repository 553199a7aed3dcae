package wire

import (
	"fmt"
	"reflect"
)

// dictSchema is the two byte header of a dictionary: the key and value
// tags, with TagUnknown meaning each element is tagged individually.
type dictSchema struct {
	key   Tag
	value Tag
}

// dictKind materializes one concrete map type.
type dictKind struct {
	decode      func(d *decoder, s dictSchema, n int) (any, error)
	decodeArray func(d *decoder, s dictSchema, n int) (any, error)
}

// Supported key and value types. The decode table is the cross product of
// these lists; every other header decodes to map[any]any.
var (
	dictKinds = make(map[dictSchema]dictKind)

	keyTags   = make(map[reflect.Type]Tag)
	valueTags = make(map[reflect.Type]Tag)

	fallbackDict dictKind
)

func init() {
	fallbackDict = dictKind{
		decode:      decodeDict[any, any],
		decodeArray: decodeDictArray[any, any],
	}
	addKeyKind[any](TagUnknown)
	addKeyKind[byte](TagByte)
	addKeyKind[int16](TagShort)
	addKeyKind[int32](TagCompressedInt)
	addKeyKind[int64](TagCompressedLong)
	addKeyKind[string](TagString)
}

func addKeyKind[K comparable](key Tag) {
	if key != TagUnknown {
		keyTags[reflect.TypeFor[K]()] = key
	}
	addDictKind[K, any](key, TagUnknown)
	addDictKind[K, bool](key, TagBoolean)
	addDictKind[K, byte](key, TagByte)
	addDictKind[K, int16](key, TagShort)
	addDictKind[K, int32](key, TagCompressedInt)
	addDictKind[K, int64](key, TagCompressedLong)
	addDictKind[K, float32](key, TagFloat)
	addDictKind[K, float64](key, TagDouble)
	addDictKind[K, string](key, TagString)
	addDictKind[K, Hashtable](key, TagHashtable)
	addDictKind[K, []byte](key, TagByteArray)
	addDictKind[K, []int32](key, TagCompressedIntArray)
	addDictKind[K, []string](key, TagStringArray)
	addDictKind[K, []any](key, TagObjectArray)
}

func addDictKind[K comparable, V any](key, value Tag) {
	if value != TagUnknown {
		valueTags[reflect.TypeFor[V]()] = value
	}
	dictKinds[dictSchema{key, value}] = dictKind{
		decode:      decodeDict[K, V],
		decodeArray: decodeDictArray[K, V],
	}
}

func lookupDictKind(s dictSchema) dictKind {
	if k, ok := dictKinds[s]; ok {
		return k
	}
	return fallbackDict
}

// dictionaryHeader returns the header tags for a Go map type. Types
// outside the decode table are written element-tagged.
func dictionaryHeader(t reflect.Type) (Tag, Tag) {
	kt, ok := keyTags[t.Key()]
	if !ok {
		kt = TagUnknown
	}
	vt, ok := valueTags[t.Elem()]
	if !ok {
		vt = TagUnknown
	}
	return kt, vt
}

func decodeDict[K comparable, V any](d *decoder, s dictSchema, n int) (any, error) {
	return readDict[K, V](d, s, n)
}

func readDict[K comparable, V any](d *decoder, s dictSchema, n int) (map[K]V, error) {
	m := make(map[K]V, min(n, 64))
	for i := 0; i < n; i++ {
		rk, err := d.decodeElement(s.key)
		if err != nil {
			return nil, err
		}
		k, err := as[K](rk)
		if err != nil {
			return nil, fmt.Errorf("dictionary key: %w", err)
		}
		if !hashable(rk) {
			return nil, fmt.Errorf("%w: dictionary key %T", ErrUnsupportedType, rk)
		}
		rv, err := d.decodeElement(s.value)
		if err != nil {
			return nil, err
		}
		v, err := as[V](rv)
		if err != nil {
			return nil, fmt.Errorf("dictionary value: %w", err)
		}
		m[k] = v
	}
	return m, nil
}

func decodeDictArray[K comparable, V any](d *decoder, s dictSchema, n int) (any, error) {
	out := make([]map[K]V, n)
	for i := range out {
		if err := d.depth.enter(); err != nil {
			return nil, err
		}
		count, err := d.readCount(0)
		if err == nil {
			out[i], err = readDict[K, V](d, s, count)
		}
		d.depth.leave()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// as converts a decoded element to the container's element type. A nil
// element becomes the zero value.
func as[T any](v any) (T, error) {
	var zero T
	if v == nil {
		return zero, nil
	}
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: got %T, want %T", ErrTypeMismatch, v, zero)
	}
	return t, nil
}
