package wire

import (
	"fmt"
	"math"
	"reflect"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
)

// decoder holds the state of one Deserialize call.
type decoder struct {
	reg   *Registry
	buf   *buffer.StreamBuffer
	depth depthContext
}

func (d *decoder) decode() (any, error) {
	tag, err := readByte(d.buf)
	if err != nil {
		return nil, err
	}
	return d.decodeAs(Tag(tag))
}

// decodeElement reads a container element. TagUnknown in a container
// header means each element carries its own tag.
func (d *decoder) decodeElement(tag Tag) (any, error) {
	if tag == TagUnknown {
		return d.decode()
	}
	return d.decodeAs(tag)
}

// readCount reads a collection count and checks that the remaining input
// can hold count elements of at least minBytes each.
func (d *decoder) readCount(minBytes int) (int, error) {
	n, err := readUvarint32(d.buf)
	if err != nil {
		return 0, err
	}
	if n > MaxCollectionCount {
		return 0, fmt.Errorf("%w: %d", ErrCollectionTooLarge, n)
	}
	if minBytes > 0 && int(n)*minBytes > d.buf.Available() {
		return 0, fmt.Errorf("%w: %d elements, %d bytes left", ErrTruncatedInput, n, d.buf.Available())
	}
	return int(n), nil
}

func (d *decoder) decodeAs(tag Tag) (any, error) {
	switch tag {
	case TagNull:
		return nil, nil
	case TagBoolean:
		c, err := readByte(d.buf)
		return c != 0, err
	case TagBooleanFalse:
		return false, nil
	case TagBooleanTrue:
		return true, nil
	case TagByte:
		return readByte(d.buf)
	case TagByteZero:
		return byte(0), nil
	case TagShort:
		u, err := readUint16(d.buf)
		return int16(u), err
	case TagShortZero:
		return int16(0), nil

	case TagCompressedInt:
		return readCompressedInt(d.buf)
	case TagIntZero:
		return int32(0), nil
	case TagInt1:
		c, err := readByte(d.buf)
		return int32(c), err
	case TagInt1_:
		c, err := readByte(d.buf)
		return -int32(c), err
	case TagInt2:
		u, err := readUint16(d.buf)
		return int32(u), err
	case TagInt2_:
		u, err := readUint16(d.buf)
		return -int32(u), err

	case TagCompressedLong:
		return readCompressedLong(d.buf)
	case TagLongZero:
		return int64(0), nil
	case TagL1:
		c, err := readByte(d.buf)
		return int64(c), err
	case TagL1_:
		c, err := readByte(d.buf)
		return -int64(c), err
	case TagL2:
		u, err := readUint16(d.buf)
		return int64(u), err
	case TagL2_:
		u, err := readUint16(d.buf)
		return -int64(u), err

	case TagFloat:
		u, err := readUint32(d.buf)
		return math.Float32frombits(u), err
	case TagFloatZero:
		return float32(0), nil
	case TagDouble:
		u, err := readUint64(d.buf)
		return math.Float64frombits(u), err
	case TagDoubleZero:
		return float64(0), nil
	case TagString:
		return d.readString()

	case TagBooleanArray:
		return d.readBoolArray()
	case TagByteArray:
		n, err := d.readCount(1)
		if err != nil {
			return nil, err
		}
		p, err := readFixed(d.buf, n)
		if err != nil {
			return nil, err
		}
		out := make([]byte, n)
		copy(out, p)
		return out, nil
	case TagShortArray:
		n, err := d.readCount(2)
		if err != nil {
			return nil, err
		}
		out := make([]int16, n)
		for i := range out {
			u, err := readUint16(d.buf)
			if err != nil {
				return nil, err
			}
			out[i] = int16(u)
		}
		return out, nil
	case TagCompressedIntArray:
		n, err := d.readCount(1)
		if err != nil {
			return nil, err
		}
		out := make([]int32, n)
		for i := range out {
			if out[i], err = readCompressedInt(d.buf); err != nil {
				return nil, err
			}
		}
		return out, nil
	case TagCompressedLongArray:
		n, err := d.readCount(1)
		if err != nil {
			return nil, err
		}
		out := make([]int64, n)
		for i := range out {
			if out[i], err = readCompressedLong(d.buf); err != nil {
				return nil, err
			}
		}
		return out, nil
	case TagFloatArray:
		n, err := d.readCount(4)
		if err != nil {
			return nil, err
		}
		out := make([]float32, n)
		for i := range out {
			u, err := readUint32(d.buf)
			if err != nil {
				return nil, err
			}
			out[i] = math.Float32frombits(u)
		}
		return out, nil
	case TagDoubleArray:
		n, err := d.readCount(8)
		if err != nil {
			return nil, err
		}
		out := make([]float64, n)
		for i := range out {
			u, err := readUint64(d.buf)
			if err != nil {
				return nil, err
			}
			out[i] = math.Float64frombits(u)
		}
		return out, nil
	case TagStringArray:
		n, err := d.readCount(1)
		if err != nil {
			return nil, err
		}
		out := make([]string, n)
		for i := range out {
			if out[i], err = d.readString(); err != nil {
				return nil, err
			}
		}
		return out, nil

	case TagObjectArray:
		return d.readObjectArray()
	case TagArray:
		return d.readNestedArray()
	case TagHashtable:
		return d.readHashtable()
	case TagHashtableArray:
		return d.readHashtableArray()
	case TagDictionary:
		return d.readDictionary()
	case TagDictionaryArray:
		return d.readDictionaryArray()

	case TagCustom:
		code, err := readByte(d.buf)
		if err != nil {
			return nil, err
		}
		return d.readCustom(code)
	case TagCustomTypeArray:
		return d.readCustomArray()

	case TagOperationRequest:
		return d.readOperationRequest()
	case TagOperationResponse:
		return d.readOperationResponse()
	case TagEventData:
		return d.readEventData()
	}

	if tag.IsSlimCustom() {
		return d.readCustom(tag.CustomCode())
	}
	// Unknown tags decode to nil so newer peers can add types.
	return nil, nil
}

func (d *decoder) readString() (string, error) {
	n, err := readUvarint32(d.buf)
	if err != nil {
		return "", err
	}
	p, err := readFixed(d.buf, int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

func (d *decoder) readBoolArray() ([]bool, error) {
	n, err := d.readCount(0)
	if err != nil {
		return nil, err
	}
	packed, err := readFixed(d.buf, (n+7)/8)
	if err != nil {
		return nil, err
	}
	out := make([]bool, n)
	for i := range out {
		out[i] = packed[i/8]&(1<<(i%8)) != 0
	}
	return out, nil
}

func (d *decoder) readObjectArray() ([]any, error) {
	if err := d.depth.enter(); err != nil {
		return nil, err
	}
	defer d.depth.leave()
	n, err := d.readCount(1)
	if err != nil {
		return nil, err
	}
	out := make([]any, n)
	for i := range out {
		if out[i], err = d.decode(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// readNestedArray decodes an array of arrays. Homogeneous elements of a
// primitive array type come back as [][]T, anything else as []any.
func (d *decoder) readNestedArray() (any, error) {
	elems, err := d.readObjectArray()
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return elems, nil
	}
	switch elems[0].(type) {
	case []bool:
		return narrow[[]bool](elems), nil
	case []byte:
		return narrow[[]byte](elems), nil
	case []int16:
		return narrow[[]int16](elems), nil
	case []int32:
		return narrow[[]int32](elems), nil
	case []int64:
		return narrow[[]int64](elems), nil
	case []float32:
		return narrow[[]float32](elems), nil
	case []float64:
		return narrow[[]float64](elems), nil
	case []string:
		return narrow[[]string](elems), nil
	case []any:
		return narrow[[]any](elems), nil
	case []Hashtable:
		return narrow[[]Hashtable](elems), nil
	}
	return elems, nil
}

func narrow[T any](elems []any) any {
	out := make([]T, len(elems))
	for i, e := range elems {
		v, ok := e.(T)
		if !ok {
			return elems
		}
		out[i] = v
	}
	return out
}

func hashable(k any) bool {
	return k == nil || reflect.TypeOf(k).Comparable()
}

func (d *decoder) readHashtable() (Hashtable, error) {
	if err := d.depth.enter(); err != nil {
		return nil, err
	}
	defer d.depth.leave()
	n, err := d.readCount(2)
	if err != nil {
		return nil, err
	}
	h := make(Hashtable, n)
	for i := 0; i < n; i++ {
		k, err := d.decode()
		if err != nil {
			return nil, err
		}
		if !hashable(k) {
			return nil, fmt.Errorf("%w: hashtable key %T", ErrUnsupportedType, k)
		}
		v, err := d.decode()
		if err != nil {
			return nil, err
		}
		h[k] = v
	}
	return h, nil
}

func (d *decoder) readHashtableArray() ([]Hashtable, error) {
	if err := d.depth.enter(); err != nil {
		return nil, err
	}
	defer d.depth.leave()
	n, err := d.readCount(1)
	if err != nil {
		return nil, err
	}
	out := make([]Hashtable, n)
	for i := range out {
		if out[i], err = d.readHashtable(); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (d *decoder) readDictionaryHeader() (dictSchema, error) {
	p, err := readFixed(d.buf, 2)
	if err != nil {
		return dictSchema{}, err
	}
	return dictSchema{key: Tag(p[0]), value: Tag(p[1])}, nil
}

func (d *decoder) readDictionary() (any, error) {
	s, err := d.readDictionaryHeader()
	if err != nil {
		return nil, err
	}
	return d.readDictionaryBody(s)
}

func (d *decoder) readDictionaryBody(s dictSchema) (any, error) {
	if err := d.depth.enter(); err != nil {
		return nil, err
	}
	defer d.depth.leave()
	n, err := d.readCount(0)
	if err != nil {
		return nil, err
	}
	return lookupDictKind(s).decode(d, s, n)
}

func (d *decoder) readDictionaryArray() (any, error) {
	n, err := d.readCount(1)
	if err != nil {
		return nil, err
	}
	s, err := d.readDictionaryHeader()
	if err != nil {
		return nil, err
	}
	return lookupDictKind(s).decodeArray(d, s, n)
}

func (d *decoder) readCustom(code byte) (any, error) {
	n, err := readUvarint32(d.buf)
	if err != nil {
		return nil, err
	}
	length := int(n)
	if length > d.buf.Available() {
		return nil, fmt.Errorf("%w: custom type %d body of %d bytes, %d left",
			ErrTruncatedInput, code, length, d.buf.Available())
	}
	ct, ok := d.reg.ByCode(code)
	if !ok {
		return nil, fmt.Errorf("%w: code %d", ErrUnknownCustomType, code)
	}
	v, err := ct.decode(d.buf, length)
	if err != nil {
		return nil, fmt.Errorf("custom type %d: %w", code, err)
	}
	return v, nil
}

func (d *decoder) readCustomArray() (any, error) {
	n, err := d.readCount(1)
	if err != nil {
		return nil, err
	}
	code, err := readByte(d.buf)
	if err != nil {
		return nil, err
	}
	ct, ok := d.reg.ByCode(code)
	if !ok {
		return nil, fmt.Errorf("%w: code %d", ErrUnknownCustomType, code)
	}
	elems := make([]any, n)
	for i := range elems {
		size, err := readUvarint32(d.buf)
		if err != nil {
			return nil, err
		}
		if int(size) > d.buf.Available() {
			return nil, fmt.Errorf("%w: custom type %d element %d", ErrTruncatedInput, code, i)
		}
		if elems[i], err = ct.decode(d.buf, int(size)); err != nil {
			return nil, fmt.Errorf("custom type %d: %w", code, err)
		}
	}
	return ct.makeSlice(elems)
}

func (d *decoder) readParameters() (ParameterDictionary, error) {
	if err := d.depth.enter(); err != nil {
		return nil, err
	}
	defer d.depth.leave()
	n, err := readByte(d.buf)
	if err != nil {
		return nil, err
	}
	params := make(ParameterDictionary, n)
	for i := 0; i < int(n); i++ {
		key, err := readByte(d.buf)
		if err != nil {
			return nil, err
		}
		v, err := d.decode()
		if err != nil {
			return nil, fmt.Errorf("parameter %d: %w", key, err)
		}
		params[key] = v
	}
	return params, nil
}

func (d *decoder) readOperationRequest() (*OperationRequest, error) {
	code, err := readByte(d.buf)
	if err != nil {
		return nil, err
	}
	params, err := d.readParameters()
	if err != nil {
		return nil, err
	}
	return &OperationRequest{OperationCode: code, Parameters: params}, nil
}

func (d *decoder) readOperationResponse() (*OperationResponse, error) {
	code, err := readByte(d.buf)
	if err != nil {
		return nil, err
	}
	rc, err := readUint16(d.buf)
	if err != nil {
		return nil, err
	}
	msg, err := d.decode()
	if err != nil {
		return nil, err
	}
	params, err := d.readParameters()
	if err != nil {
		return nil, err
	}
	resp := &OperationResponse{OperationCode: code, ReturnCode: int16(rc), Parameters: params}
	if s, ok := msg.(string); ok {
		resp.DebugMessage = s
	}
	return resp, nil
}

func (d *decoder) readEventData() (*EventData, error) {
	code, err := readByte(d.buf)
	if err != nil {
		return nil, err
	}
	params, err := d.readParameters()
	if err != nil {
		return nil, err
	}
	return &EventData{Code: code, Parameters: params}, nil
}
