package commands

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
)

const testConnID = "abc12345-6789-0123-4567-890abcdef012"

var t0 = time.Date(2026, 1, 28, 10, 15, 32, 123456000, time.UTC)

func sampleEvents() []log.Event {
	ret := int16(-2)
	return []log.Event{
		{
			Timestamp: t0, ConnectionID: testConnID, Direction: log.DirectionOut,
			Layer: log.LayerSession, Category: log.CategoryState,
			RemoteAddr: "127.0.0.1:5055", AppID: "demo",
			StateChange: &log.StateChangeEvent{OldState: "DISCONNECTED", NewState: "CONNECTING", Reason: "connect"},
		},
		{
			Timestamp: t0.Add(time.Millisecond), ConnectionID: testConnID, Direction: log.DirectionOut,
			Layer: log.LayerTransport, Category: log.CategoryMessage, AppID: "demo",
			Frame: &log.FrameEvent{Size: 21, Data: []byte{0xfb, 0, 0, 0, 21}, Truncated: true, DeliveryMode: 1},
		},
		{
			Timestamp: t0.Add(2 * time.Millisecond), ConnectionID: testConnID, Direction: log.DirectionOut,
			Layer: log.LayerWire, Category: log.CategoryMessage, AppID: "demo",
			Message: &log.MessageEvent{Type: log.MessageTypeOperation, Code: 7, ParameterCount: 2,
				Parameters: map[uint8]string{1: "int32(5)", 0: `"x"`}},
		},
		{
			Timestamp: t0.Add(10 * time.Millisecond), ConnectionID: testConnID, Direction: log.DirectionIn,
			Layer: log.LayerWire, Category: log.CategoryMessage, AppID: "demo",
			Message: &log.MessageEvent{Type: log.MessageTypeOperationResponse, Code: 7, ReturnCode: &ret, DebugMessage: "unknown operation 7"},
		},
		{
			Timestamp: t0.Add(20 * time.Millisecond), ConnectionID: testConnID, Direction: log.DirectionIn,
			Layer: log.LayerTransport, Category: log.CategoryControl, AppID: "demo",
			Ping: &log.PingEvent{Type: log.ControlMsgPong, Sample: 4 * time.Millisecond, RTT: 12 * time.Millisecond, Variance: time.Millisecond, ServerTime: 99},
		},
		{
			Timestamp: t0.Add(time.Second), ConnectionID: testConnID, Direction: log.DirectionIn,
			Layer: log.LayerSession, Category: log.CategoryState, AppID: "demo",
			StateChange: &log.StateChangeEvent{OldState: "CONNECTED", NewState: "DISCONNECTED", StatusCode: 1044},
		},
		{
			Timestamp: t0.Add(2 * time.Second), ConnectionID: "other", Direction: log.DirectionIn,
			Layer: log.LayerWire, Category: log.CategoryError, AppID: "other-app",
			Error: &log.ErrorEventData{Layer: log.LayerWire, Message: "unknown type tag", Context: "event"},
		},
	}
}

func writeLog(t *testing.T, events []log.Event) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session"+log.FileExtension)
	l, err := log.NewFileLogger(path)
	require.NoError(t, err)
	for _, e := range events {
		l.Log(e)
	}
	require.NoError(t, l.Close())
	return path
}

func TestFormatEvent(t *testing.T) {
	events := sampleEvents()

	var buf bytes.Buffer
	formatEvent(&buf, events[1])
	out := buf.String()
	assert.Contains(t, out, "2026-01-28T10:15:32.124456Z [conn:abc12345] OUT TRANSPORT Frame")
	assert.Contains(t, out, "Size: 21 bytes")
	assert.Contains(t, out, "fb00000015 (truncated)")

	buf.Reset()
	formatEvent(&buf, events[2])
	out = buf.String()
	assert.Contains(t, out, "WIRE OPERATION")
	assert.Contains(t, out, "OpCode: 7")
	assert.Less(t, strings.Index(out, `[0] "x"`), strings.Index(out, "[1] int32(5)"))

	buf.Reset()
	formatEvent(&buf, events[3])
	out = buf.String()
	assert.Contains(t, out, "Return: -2")
	assert.Contains(t, out, "Debug: unknown operation 7")

	buf.Reset()
	formatEvent(&buf, events[4])
	out = buf.String()
	assert.Contains(t, out, "IN  CTRL PONG")
	assert.Contains(t, out, "RTT: 12.000ms")

	buf.Reset()
	formatEvent(&buf, events[0])
	out = buf.String()
	assert.Contains(t, out, "DISCONNECTED -> CONNECTING")
	assert.Contains(t, out, "Remote: 127.0.0.1:5055")

	buf.Reset()
	formatEvent(&buf, events[6])
	assert.Contains(t, buf.String(), "Message: unknown type tag")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.500us", formatDuration(500*time.Nanosecond))
	assert.Equal(t, "1.500ms", formatDuration(1500*time.Microsecond))
	assert.Equal(t, "2.000s", formatDuration(2*time.Second))
}

func TestParseFlags(t *testing.T) {
	l, err := ParseLayerFlag("Session")
	require.NoError(t, err)
	assert.Equal(t, log.LayerSession, l)
	_, err = ParseLayerFlag("service")
	assert.Error(t, err)

	d, err := ParseDirectionFlag("OUT")
	require.NoError(t, err)
	assert.Equal(t, log.DirectionOut, d)
	_, err = ParseDirectionFlag("sideways")
	assert.Error(t, err)

	c, err := ParseCategoryFlag("control")
	require.NoError(t, err)
	assert.Equal(t, log.CategoryControl, c)
	_, err = ParseCategoryFlag("snapshot")
	assert.Error(t, err)

	mt, err := ParseMessageTypeFlag("OPERATION_RESPONSE")
	require.NoError(t, err)
	assert.Equal(t, log.MessageTypeOperationResponse, mt)
	_, err = ParseMessageTypeFlag("ack")
	assert.Error(t, err)
}

func TestRunView(t *testing.T) {
	path := writeLog(t, sampleEvents())

	var buf bytes.Buffer
	require.NoError(t, RunView(path, ViewFilter{}, &buf))
	assert.Equal(t, 7, strings.Count(buf.String(), "[conn:"))

	wire := log.LayerWire
	in := log.DirectionIn
	buf.Reset()
	require.NoError(t, RunView(path, ViewFilter{Layer: &wire, Direction: &in}, &buf))
	assert.Equal(t, 2, strings.Count(buf.String(), "[conn:"))

	op := log.MessageTypeOperation
	buf.Reset()
	require.NoError(t, RunView(path, ViewFilter{MessageType: &op}, &buf))
	assert.Equal(t, 1, strings.Count(buf.String(), "[conn:"))

	assert.Error(t, RunView(filepath.Join(t.TempDir(), "missing.nlog"), ViewFilter{}, &buf))
}

func TestRunExport(t *testing.T) {
	path := writeLog(t, sampleEvents())
	dir := t.TempDir()

	jsonl := filepath.Join(dir, "out.jsonl")
	require.NoError(t, RunExport(path, "jsonl", jsonl))
	data, err := os.ReadFile(jsonl)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 7)
	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, testConnID, first["ConnectionID"])

	csvPath := filepath.Join(dir, "out.csv")
	require.NoError(t, RunExport(path, "csv", csvPath))
	f, err := os.Open(csvPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 8)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"OPERATION_RESPONSE", "7", "-2", ""}, rows[4][6:])
	assert.Equal(t, "21", rows[2][9])

	assert.Error(t, RunExport(path, "xml", ""))
}

func TestRunFilter(t *testing.T) {
	path := writeLog(t, sampleEvents())
	out := filepath.Join(t.TempDir(), "filtered.nlog")

	n, err := RunFilter(path, FilterOptions{Output: out, AppID: "demo", Category: "message"})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var buf bytes.Buffer
	require.NoError(t, RunView(out, ViewFilter{}, &buf))
	assert.Equal(t, 3, strings.Count(buf.String(), "[conn:abc12345]"))

	_, err = RunFilter(path, FilterOptions{Output: out, TimeStart: "yesterday"})
	assert.Error(t, err)
	_, err = RunFilter(path, FilterOptions{Output: out, MessageType: "nope"})
	assert.Error(t, err)
}

func TestRunStats(t *testing.T) {
	path := writeLog(t, sampleEvents())

	var buf bytes.Buffer
	require.NoError(t, RunStats(path, &buf))
	out := buf.String()

	assert.Contains(t, out, "Total Events: 7")
	assert.Contains(t, out, "Connections: 2")
	assert.Contains(t, out, "App: demo  Remote: 127.0.0.1:5055")
	assert.Contains(t, out, "Bytes: in 0, out 21")
	assert.Contains(t, out, "Pongs: 1 (rtt 12.000ms, lowest 4.000ms)")
	assert.Contains(t, out, "Last status: 1044")
	assert.Contains(t, out, "OPERATION:")
	assert.Contains(t, out, "Errors: 1")
}
