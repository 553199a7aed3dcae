package interactive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

type nopListener struct{}

func (nopListener) OnStatusChanged(peer.StatusCode)             {}
func (nopListener) OnOperationResponse(*wire.OperationResponse) {}
func (nopListener) OnEvent(*wire.EventData)                     {}
func (nopListener) DebugReturn(peer.DebugLevel, string)         {}

type nopTransport struct{}

func (nopTransport) Connect(string) error        { return nil }
func (nopTransport) Send([]byte) error           { return nil }
func (nopTransport) Disconnect() error           { return nil }
func (nopTransport) Connected() bool             { return false }
func (nopTransport) AddressResolvedAsIPv6() bool { return false }

type fakeClient struct {
	p           *peer.Peer
	connects    int
	disconnects int
}

func (c *fakeClient) Peer() *peer.Peer { return c.p }
func (c *fakeClient) Connect() error   { c.connects++; return nil }
func (c *fakeClient) Disconnect()      { c.disconnects++ }

func newTestShell(t *testing.T) (*Shell, *fakeClient, *bytes.Buffer) {
	t.Helper()
	p, err := peer.New(peer.DefaultConfig(), nopListener{}, func(peer.Receiver) peer.Transport {
		return nopTransport{}
	})
	require.NoError(t, err)
	c := &fakeClient{p: p}
	var out bytes.Buffer
	return &Shell{client: c, out: &out}, c, &out
}

func TestShellSessionCommands(t *testing.T) {
	s, c, out := newTestShell(t)

	assert.True(t, s.Exec("connect"))
	assert.True(t, s.Exec("  disconnect  "))
	assert.True(t, s.Exec(""))
	assert.Equal(t, 1, c.connects)
	assert.Equal(t, 1, c.disconnects)

	assert.True(t, s.Exec("status"))
	assert.Contains(t, out.String(), "State:        DISCONNECTED")

	out.Reset()
	assert.True(t, s.Exec("stats reset"))
	assert.Contains(t, out.String(), "Traffic stats reset")

	out.Reset()
	assert.True(t, s.Exec("bogus"))
	assert.Contains(t, out.String(), "Unknown command: bogus")

	assert.False(t, s.Exec("quit"))
	assert.False(t, s.Exec("EXIT"))
}

func TestShellSendWhileDisconnected(t *testing.T) {
	s, _, out := newTestShell(t)

	s.Exec("op 5 1=hi")
	assert.Contains(t, out.String(), "Could not queue operation 5")

	out.Reset()
	s.Exec("msg hello")
	assert.Contains(t, out.String(), "Could not queue message")
}

func TestShellArgumentErrors(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"op", "Usage: op"},
		{"op -c", "-c needs a channel"},
		{"op -c 300 1", "bad channel"},
		{"op -z 1", "unknown option -z"},
		{"op -u -e", "operation code required"},
		{"op 999", "bad operation code"},
		{"op 1 x", "want key=value"},
		{"msg", "Usage: msg"},
		{"raw", "Usage: raw"},
		{"raw zz", "bad hex"},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			s, _, out := newTestShell(t)
			assert.True(t, s.Exec(tt.line))
			assert.Contains(t, out.String(), tt.want)
		})
	}
}

func TestFormatResponseAndEvent(t *testing.T) {
	resp := &wire.OperationResponse{
		OperationCode: 1,
		ReturnCode:    -2,
		DebugMessage:  "unknown operation 1",
		Parameters:    wire.ParameterDictionary{1: "x"},
	}
	assert.Equal(t, `[RESPONSE] op=1 return=-2 {1: "x"} debug="unknown operation 1"`, FormatResponse(resp))

	ev := &wire.EventData{Code: 9, Parameters: wire.ParameterDictionary{wire.SenderKey: int32(3)}}
	assert.Equal(t, "[EVENT] code=9 sender=3 {254: int32(3)}", FormatEvent(ev))
}
