package log

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// EventTag is the CBOR tag number wrapping every .nlog record. Its four
// bytes spell "NLOG", so each record on disk starts with 0xDA 'N' 'L' 'O' 'G'.
const EventTag uint64 = 0x4E4C4F47

// maxEventNesting bounds decoded message parameters. Dictionaries nested
// deeper than this are not produced by the peer.
const maxEventNesting = 24

var (
	eventEncMode cbor.EncMode
	eventDecMode cbor.DecMode
)

func init() {
	tags := cbor.NewTagSet()
	// Untagged records written before EventTag existed still decode.
	if err := tags.Add(cbor.TagOptions{EncTag: cbor.EncTagRequired, DecTag: cbor.DecTagOptional},
		reflect.TypeOf(Event{}), EventTag); err != nil {
		panic(fmt.Sprintf("log: register event tag: %v", err))
	}

	var err error
	eventEncMode, err = cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}.EncModeWithTags(tags)
	if err != nil {
		panic(fmt.Sprintf("log: event encoder mode: %v", err))
	}

	eventDecMode, err = cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		MaxNestedLevels:   maxEventNesting,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecModeWithTags(tags)
	if err != nil {
		panic(fmt.Sprintf("log: event decoder mode: %v", err))
	}
}

// EncodeEvent encodes one tagged .nlog record.
func EncodeEvent(event Event) ([]byte, error) {
	return eventEncMode.Marshal(event)
}

// DecodeEvent decodes one .nlog record. Records tagged with anything other
// than EventTag are rejected.
func DecodeEvent(data []byte) (Event, error) {
	var event Event
	if err := eventDecMode.Unmarshal(data, &event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// EventEncoder writes a stream of .nlog records.
type EventEncoder struct {
	enc *cbor.Encoder
}

// NewEncoder returns an EventEncoder writing to w.
func NewEncoder(w io.Writer) *EventEncoder {
	return &EventEncoder{enc: eventEncMode.NewEncoder(w)}
}

// Encode writes one record.
func (e *EventEncoder) Encode(event Event) error {
	return e.enc.Encode(event)
}

// EventDecoder reads a stream of .nlog records.
type EventDecoder struct {
	dec *cbor.Decoder
}

// NewDecoder returns an EventDecoder reading from r.
func NewDecoder(r io.Reader) *EventDecoder {
	return &EventDecoder{dec: eventDecMode.NewDecoder(r)}
}

// Decode reads the next record. It returns io.EOF at a clean end of stream.
func (d *EventDecoder) Decode() (Event, error) {
	var event Event
	if err := d.dec.Decode(&event); err != nil {
		return Event{}, err
	}
	return event, nil
}
