package log

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func createTestLogFile(t *testing.T, events []Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "logs", "test"+FileExtension)

	logger, err := NewFileLogger(path)
	if err != nil {
		t.Fatalf("failed to create test log: %v", err)
	}
	for _, e := range events {
		logger.Log(e)
	}
	if written, dropped := logger.Stats(); written != len(events) || dropped != 0 {
		t.Fatalf("Stats() = %d/%d, want %d/0", written, dropped, len(events))
	}
	logger.Close()
	return path
}

func readAll(t *testing.T, r *Reader) []Event {
	t.Helper()
	var out []Event
	for {
		event, err := r.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		out = append(out, event)
	}
}

func TestEventRoundTrip(t *testing.T) {
	rc := int16(-3)
	code := 1040
	ts := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)

	events := []Event{
		{
			Timestamp: ts, ConnectionID: "c1", Direction: DirectionOut, Layer: LayerTransport,
			Frame: &FrameEvent{Size: 12, Data: []byte{0xFB, 0, 0, 0, 12}, Channel: 2, DeliveryMode: 1},
		},
		{
			Timestamp: ts, ConnectionID: "c1", Direction: DirectionIn, Layer: LayerWire,
			Message: &MessageEvent{
				Type: MessageTypeOperationResponse, Code: 7, ReturnCode: &rc,
				DebugMessage: "nope", ParameterCount: 1, Parameters: map[uint8]string{1: "int32(5)"},
			},
		},
		{
			Timestamp: ts, ConnectionID: "c1", Layer: LayerSession, Category: CategoryState,
			StateChange: &StateChangeEvent{OldState: "Connected", NewState: "Disconnecting", Reason: "timeout", StatusCode: code},
		},
		{
			Timestamp: ts, ConnectionID: "c1", Category: CategoryControl,
			Ping: &PingEvent{Type: ControlMsgPong, RTT: 40 * time.Millisecond, Sample: 38 * time.Millisecond, ServerTime: 99},
		},
		{
			Timestamp: ts, ConnectionID: "c1", Category: CategoryError,
			Error: &ErrorEventData{Layer: LayerWire, Message: "truncated", Code: &code, Context: "dispatch"},
		},
	}

	for _, in := range events {
		data, err := EncodeEvent(in)
		if err != nil {
			t.Fatalf("EncodeEvent failed: %v", err)
		}
		out, err := DecodeEvent(data)
		if err != nil {
			t.Fatalf("DecodeEvent failed: %v", err)
		}
		if !out.Timestamp.Equal(in.Timestamp) || out.ConnectionID != in.ConnectionID {
			t.Errorf("header mismatch: %+v", out)
		}
		switch {
		case in.Frame != nil:
			if out.Frame == nil || !bytes.Equal(out.Frame.Data, in.Frame.Data) || out.Frame.Channel != 2 {
				t.Errorf("frame mismatch: %+v", out.Frame)
			}
		case in.Message != nil:
			if out.Message == nil || *out.Message.ReturnCode != rc || out.Message.Parameters[1] != "int32(5)" {
				t.Errorf("message mismatch: %+v", out.Message)
			}
		case in.StateChange != nil:
			if out.StateChange == nil || *out.StateChange != *in.StateChange {
				t.Errorf("state mismatch: %+v", out.StateChange)
			}
		case in.Ping != nil:
			if out.Ping == nil || *out.Ping != *in.Ping {
				t.Errorf("ping mismatch: %+v", out.Ping)
			}
		case in.Error != nil:
			if out.Error == nil || *out.Error.Code != code || out.Error.Context != "dispatch" {
				t.Errorf("error mismatch: %+v", out.Error)
			}
		}
	}
}

func TestReaderFilters(t *testing.T) {
	now := time.Now()
	opEvent := MessageTypeOperation
	in := DirectionIn

	path := createTestLogFile(t, []Event{
		{Timestamp: now, ConnectionID: "a", AppID: "game", Direction: DirectionOut,
			Message: &MessageEvent{Type: MessageTypeOperation, Code: 1}},
		{Timestamp: now.Add(time.Second), ConnectionID: "a", AppID: "game", Direction: DirectionIn,
			Message: &MessageEvent{Type: MessageTypeEvent, Code: 5}},
		{Timestamp: now.Add(2 * time.Second), ConnectionID: "b", AppID: "chat", Direction: DirectionIn,
			StateChange: &StateChangeEvent{NewState: "Connected"}},
	})

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 3},
		{"connection", Filter{ConnectionID: "a"}, 2},
		{"app", Filter{AppID: "chat"}, 1},
		{"direction", Filter{Direction: &in}, 2},
		{"message type", Filter{MessageType: &opEvent}, 1},
		{"time window", Filter{TimeStart: ptr(now.Add(500 * time.Millisecond)), TimeEnd: ptr(now.Add(1500 * time.Millisecond))}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFilteredReader(path, tt.filter)
			if err != nil {
				t.Fatalf("NewFilteredReader failed: %v", err)
			}
			defer r.Close()
			if got := len(readAll(t, r)); got != tt.want {
				t.Errorf("got %d events, want %d", got, tt.want)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestWriterLoggerAndStreamReader(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(nopCloser{&buf})
	l.Log(Event{ConnectionID: "x"})
	l.Close()
	l.Log(Event{ConnectionID: "ignored"})

	events := readAll(t, NewStreamReader(&buf, Filter{}))
	if len(events) != 1 || events[0].ConnectionID != "x" {
		t.Errorf("events = %+v", events)
	}
	if err := l.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
}

func TestMultiLogger(t *testing.T) {
	var a, b int
	m := NewMultiLogger(LoggerFunc(func(Event) { a++ }), nil, LoggerFunc(func(Event) { b++ }))
	if m.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", m.Len())
	}
	m.Log(Event{})
	m.Log(Event{})
	if a != 2 || b != 2 {
		t.Errorf("fan-out counts = %d/%d, want 2/2", a, b)
	}
	NoopLogger{}.Log(Event{})
}

func TestSlogAdapter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := NewSlogAdapter(logger)

	a.Log(Event{
		ConnectionID: "conn-9",
		AppID:        "demo",
		Category:     CategoryControl,
		Ping:         &PingEvent{Type: ControlMsgPong, RTT: 25 * time.Millisecond},
	})

	out := buf.String()
	for _, want := range []string{"conn_id=conn-9", "app_id=demo", "ctrl_type=PONG", "rtt=25ms", "level=DEBUG"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestEnumStrings(t *testing.T) {
	if MessageTypeInternalOperationResponse.String() != "INTERNAL_RESPONSE" || MessageType(5).String() != "UNKNOWN" {
		t.Error("MessageType.String mismatch")
	}
	if LayerSession.String() != "SESSION" || CategoryError.String() != "ERROR" || DirectionOut.String() != "OUT" {
		t.Error("enum String mismatch")
	}
}

func TestEventRecordsAreTagged(t *testing.T) {
	data, err := EncodeEvent(Event{ConnectionID: "c1"})
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xDA, 'N', 'L', 'O', 'G'}) {
		t.Fatalf("record header = % x", data[:5])
	}

	untagged, err := cbor.Marshal(Event{ConnectionID: "old"})
	if err != nil {
		t.Fatal(err)
	}
	ev, err := DecodeEvent(untagged)
	if err != nil || ev.ConnectionID != "old" {
		t.Fatalf("untagged record: %+v, %v", ev, err)
	}

	foreign, err := cbor.Marshal(cbor.Tag{Number: 42, Content: map[int]string{3: "x"}})
	if err != nil {
		t.Fatal(err)
	}
	_, err = DecodeEvent(foreign)
	var wrongTag *cbor.WrongTagError
	if !errors.As(err, &wrongTag) {
		t.Fatalf("foreign tag: err = %v", err)
	}
}

func TestEventDecoderStream(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	for _, id := range []string{"a", "b"} {
		if err := enc.Encode(Event{ConnectionID: id}); err != nil {
			t.Fatal(err)
		}
	}

	dec := NewDecoder(&buf)
	for _, want := range []string{"a", "b"} {
		ev, err := dec.Decode()
		if err != nil || ev.ConnectionID != want {
			t.Fatalf("Decode = %+v, %v; want %q", ev, err, want)
		}
	}
	if _, err := dec.Decode(); !errors.Is(err, io.EOF) {
		t.Fatalf("Decode at end = %v, want io.EOF", err)
	}
}
