package wire

import (
	"fmt"
	"math"
	"reflect"
	"unicode/utf8"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
)

// encoder holds the state of one Serialize call.
type encoder struct {
	reg   *Registry
	buf   *buffer.StreamBuffer
	depth depthContext
}

func (e *encoder) writeTag(t Tag) {
	e.buf.WriteByte(byte(t))
}

func (e *encoder) rollback(pos int) {
	e.buf.SetLength(pos)
	e.buf.SetPosition(pos)
}

func (e *encoder) writeCount(n int) error {
	if n > MaxCollectionCount {
		return fmt.Errorf("%w: %d", ErrCollectionTooLarge, n)
	}
	writeUvarint(e.buf, uint64(n))
	return nil
}

func (e *encoder) encode(v any, writeType bool) error {
	switch x := v.(type) {
	case nil:
		if writeType {
			e.writeTag(TagNull)
		}
	case bool:
		switch {
		case !writeType:
			e.buf.WriteByte(boolByte(x))
		case x:
			e.writeTag(TagBooleanTrue)
		default:
			e.writeTag(TagBooleanFalse)
		}
	case byte:
		if writeType {
			if x == 0 {
				e.writeTag(TagByteZero)
				return nil
			}
			e.writeTag(TagByte)
		}
		e.buf.WriteByte(x)
	case int16:
		if writeType {
			if x == 0 {
				e.writeTag(TagShortZero)
				return nil
			}
			e.writeTag(TagShort)
		}
		writeUint16(e.buf, uint16(x))
	case int32:
		e.writeInt32(x, writeType)
	case int:
		if x >= math.MinInt32 && x <= math.MaxInt32 {
			e.writeInt32(int32(x), writeType)
		} else {
			e.writeInt64(int64(x), writeType)
		}
	case int64:
		e.writeInt64(x, writeType)
	case float32:
		if writeType {
			if x == 0 && !math.Signbit(float64(x)) {
				e.writeTag(TagFloatZero)
				return nil
			}
			e.writeTag(TagFloat)
		}
		writeUint32(e.buf, math.Float32bits(x))
	case float64:
		if writeType {
			if x == 0 && !math.Signbit(x) {
				e.writeTag(TagDoubleZero)
				return nil
			}
			e.writeTag(TagDouble)
		}
		writeUint64(e.buf, math.Float64bits(x))
	case string:
		if writeType {
			e.writeTag(TagString)
		}
		return e.writeString(x)
	case []bool:
		if writeType {
			e.writeTag(TagBooleanArray)
		}
		return e.writeBoolArray(x)
	case []byte:
		if writeType {
			e.writeTag(TagByteArray)
		}
		if err := e.writeCount(len(x)); err != nil {
			return err
		}
		e.buf.Write(x)
	case []int16:
		if writeType {
			e.writeTag(TagShortArray)
		}
		if err := e.writeCount(len(x)); err != nil {
			return err
		}
		for _, s := range x {
			writeUint16(e.buf, uint16(s))
		}
	case []int32:
		if writeType {
			e.writeTag(TagCompressedIntArray)
		}
		if err := e.writeCount(len(x)); err != nil {
			return err
		}
		for _, n := range x {
			writeCompressedInt(e.buf, n)
		}
	case []int64:
		if writeType {
			e.writeTag(TagCompressedLongArray)
		}
		if err := e.writeCount(len(x)); err != nil {
			return err
		}
		for _, n := range x {
			writeCompressedLong(e.buf, n)
		}
	case []float32:
		if writeType {
			e.writeTag(TagFloatArray)
		}
		if err := e.writeCount(len(x)); err != nil {
			return err
		}
		for _, f := range x {
			writeUint32(e.buf, math.Float32bits(f))
		}
	case []float64:
		if writeType {
			e.writeTag(TagDoubleArray)
		}
		if err := e.writeCount(len(x)); err != nil {
			return err
		}
		for _, f := range x {
			writeUint64(e.buf, math.Float64bits(f))
		}
	case []string:
		if writeType {
			e.writeTag(TagStringArray)
		}
		if err := e.writeCount(len(x)); err != nil {
			return err
		}
		for _, s := range x {
			if err := e.writeString(s); err != nil {
				return err
			}
		}
	case []any:
		if writeType {
			e.writeTag(TagObjectArray)
		}
		return e.writeObjectArray(x)
	case Hashtable:
		if writeType {
			e.writeTag(TagHashtable)
		}
		return e.writeHashtable(x)
	case []Hashtable:
		if writeType {
			e.writeTag(TagHashtableArray)
		}
		if err := e.depth.enter(); err != nil {
			return err
		}
		defer e.depth.leave()
		if err := e.writeCount(len(x)); err != nil {
			return err
		}
		for _, h := range x {
			if err := e.writeHashtable(h); err != nil {
				return err
			}
		}
	case *OperationRequest:
		if writeType {
			e.writeTag(TagOperationRequest)
		}
		return e.writeOperationRequest(x)
	case *OperationResponse:
		if writeType {
			e.writeTag(TagOperationResponse)
		}
		return e.writeOperationResponse(x)
	case *EventData:
		if writeType {
			e.writeTag(TagEventData)
		}
		return e.writeEventData(x)
	default:
		return e.encodeReflect(v, writeType)
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// writeInt32 picks the shortest tagged form for v. Untagged values are
// always written as zig-zag varints.
func (e *encoder) writeInt32(v int32, writeType bool) {
	if !writeType {
		writeCompressedInt(e.buf, v)
		return
	}
	switch {
	case v == 0:
		e.writeTag(TagIntZero)
	case v > 0 && v <= math.MaxUint8:
		e.buf.WriteBytes(byte(TagInt1), byte(v))
	case v < 0 && v >= -math.MaxUint8:
		e.buf.WriteBytes(byte(TagInt1_), byte(-v))
	case v > 0 && v <= math.MaxUint16:
		e.writeTag(TagInt2)
		writeUint16(e.buf, uint16(v))
	case v < 0 && v >= -math.MaxUint16:
		e.writeTag(TagInt2_)
		writeUint16(e.buf, uint16(-v))
	default:
		e.writeTag(TagCompressedInt)
		writeCompressedInt(e.buf, v)
	}
}

func (e *encoder) writeInt64(v int64, writeType bool) {
	if !writeType {
		writeCompressedLong(e.buf, v)
		return
	}
	switch {
	case v == 0:
		e.writeTag(TagLongZero)
	case v > 0 && v <= math.MaxUint8:
		e.buf.WriteBytes(byte(TagL1), byte(v))
	case v < 0 && v >= -math.MaxUint8:
		e.buf.WriteBytes(byte(TagL1_), byte(-v))
	case v > 0 && v <= math.MaxUint16:
		e.writeTag(TagL2)
		writeUint16(e.buf, uint16(v))
	case v < 0 && v >= -math.MaxUint16:
		e.writeTag(TagL2_)
		writeUint16(e.buf, uint16(-v))
	default:
		e.writeTag(TagCompressedLong)
		writeCompressedLong(e.buf, v)
	}
}

func (e *encoder) writeString(s string) error {
	if len(s) > MaxStringLength {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrStringTooLong, len(s), MaxStringLength)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: string is not valid UTF-8", ErrUnsupportedType)
	}
	writeUvarint(e.buf, uint64(len(s)))
	e.buf.Write([]byte(s))
	return nil
}

// writeBoolArray packs eight values per byte, least significant bit first.
func (e *encoder) writeBoolArray(x []bool) error {
	if err := e.writeCount(len(x)); err != nil {
		return err
	}
	packed := e.buf.ReserveBytes((len(x) + 7) / 8)
	clear(packed)
	for i, b := range x {
		if b {
			packed[i/8] |= 1 << (i % 8)
		}
	}
	return nil
}

func (e *encoder) writeObjectArray(x []any) error {
	if err := e.depth.enter(); err != nil {
		return err
	}
	defer e.depth.leave()
	if err := e.writeCount(len(x)); err != nil {
		return err
	}
	for _, item := range x {
		if err := e.encode(item, true); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeHashtable(h Hashtable) error {
	if err := e.depth.enter(); err != nil {
		return err
	}
	defer e.depth.leave()
	if err := e.writeCount(len(h)); err != nil {
		return err
	}
	for k, v := range h {
		if err := e.encode(k, true); err != nil {
			return err
		}
		if err := e.encode(v, true); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeParameters(p ParameterDictionary) error {
	if len(p) > MaxParameterCount {
		return fmt.Errorf("%w: %d parameters, limit %d", ErrCollectionTooLarge, len(p), MaxParameterCount)
	}
	if err := e.depth.enter(); err != nil {
		return err
	}
	defer e.depth.leave()
	e.buf.WriteByte(byte(len(p)))
	for k, v := range p {
		e.buf.WriteByte(k)
		if err := e.encode(v, true); err != nil {
			return fmt.Errorf("parameter %d: %w", k, err)
		}
	}
	return nil
}

func (e *encoder) writeOperationRequest(req *OperationRequest) error {
	if req == nil {
		return fmt.Errorf("%w: nil operation request", ErrUnsupportedType)
	}
	e.buf.WriteByte(req.OperationCode)
	return e.writeParameters(req.Parameters)
}

func (e *encoder) writeOperationResponse(resp *OperationResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: nil operation response", ErrUnsupportedType)
	}
	e.buf.WriteByte(resp.OperationCode)
	writeUint16(e.buf, uint16(resp.ReturnCode))
	if resp.DebugMessage == "" {
		e.writeTag(TagNull)
	} else {
		e.writeTag(TagString)
		if err := e.writeString(resp.DebugMessage); err != nil {
			return err
		}
	}
	return e.writeParameters(resp.Parameters)
}

func (e *encoder) writeEventData(ev *EventData) error {
	if ev == nil {
		return fmt.Errorf("%w: nil event data", ErrUnsupportedType)
	}
	e.buf.WriteByte(ev.Code)
	return e.writeParameters(ev.Parameters)
}

// encodeReflect handles custom types, typed maps and slices of those.
func (e *encoder) encodeReflect(v any, writeType bool) error {
	rv := reflect.ValueOf(v)
	t := rv.Type()

	if ct, ok := e.reg.ByType(t); ok {
		return e.writeCustom(ct, v, writeType)
	}

	switch t.Kind() {
	case reflect.Map:
		if writeType {
			e.writeTag(TagDictionary)
		}
		return e.writeDictionary(rv)
	case reflect.Slice:
		elem := t.Elem()
		if ct, ok := e.reg.ByType(elem); ok {
			if writeType {
				e.writeTag(TagCustomTypeArray)
			}
			return e.writeCustomArray(ct, rv)
		}
		switch elem.Kind() {
		case reflect.Map:
			if writeType {
				e.writeTag(TagDictionaryArray)
			}
			return e.writeDictionaryArray(rv)
		case reflect.Slice:
			if writeType {
				e.writeTag(TagArray)
			}
			return e.writeNestedArray(rv)
		}
	}
	return fmt.Errorf("%w: %T", ErrUnsupportedType, v)
}

func (e *encoder) writeCustom(ct *CustomType, v any, writeType bool) error {
	switch {
	case writeType && ct.Code < SlimCustomCodeLimit:
		e.writeTag(TagCustomTypeSlim + Tag(ct.Code))
	case writeType:
		e.buf.WriteBytes(byte(TagCustom), ct.Code)
	default:
		e.buf.WriteByte(ct.Code)
	}
	return e.writeCustomBody(ct, v)
}

// writeCustomBody writes the serializer output prefixed with its length.
func (e *encoder) writeCustomBody(ct *CustomType, v any) error {
	scratch := buffer.NewStreamBuffer(32)
	if err := ct.encode(scratch, v); err != nil {
		return fmt.Errorf("custom type %d: %w", ct.Code, err)
	}
	writeUvarint(e.buf, uint64(scratch.Len()))
	e.buf.Write(scratch.Bytes())
	return nil
}

func (e *encoder) writeCustomArray(ct *CustomType, rv reflect.Value) error {
	if err := e.writeCount(rv.Len()); err != nil {
		return err
	}
	e.buf.WriteByte(ct.Code)
	for i := 0; i < rv.Len(); i++ {
		if err := e.writeCustomBody(ct, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeNestedArray(rv reflect.Value) error {
	if err := e.depth.enter(); err != nil {
		return err
	}
	defer e.depth.leave()
	if err := e.writeCount(rv.Len()); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := e.encode(rv.Index(i).Interface(), true); err != nil {
			return err
		}
	}
	return nil
}

// writeDictionary writes the two byte key/value header and the entries of
// a typed map.
func (e *encoder) writeDictionary(rv reflect.Value) error {
	kt, vt := dictionaryHeader(rv.Type())
	e.buf.WriteBytes(byte(kt), byte(vt))
	return e.writeDictionaryBody(rv, kt, vt)
}

func (e *encoder) writeDictionaryBody(rv reflect.Value, kt, vt Tag) error {
	if err := e.depth.enter(); err != nil {
		return err
	}
	defer e.depth.leave()
	if err := e.writeCount(rv.Len()); err != nil {
		return err
	}
	iter := rv.MapRange()
	for iter.Next() {
		if err := e.encode(iter.Key().Interface(), kt == TagUnknown); err != nil {
			return err
		}
		if err := e.encode(iter.Value().Interface(), vt == TagUnknown); err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) writeDictionaryArray(rv reflect.Value) error {
	if err := e.writeCount(rv.Len()); err != nil {
		return err
	}
	kt, vt := dictionaryHeader(rv.Type().Elem())
	e.buf.WriteBytes(byte(kt), byte(vt))
	for i := 0; i < rv.Len(); i++ {
		if err := e.writeDictionaryBody(rv.Index(i), kt, vt); err != nil {
			return err
		}
	}
	return nil
}
