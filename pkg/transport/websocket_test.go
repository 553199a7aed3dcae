package transport

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
)

func startWebSocketServer(t *testing.T, sc *serverConns) string {
	t.Helper()
	srv := httptest.NewServer(WebSocketHandler(WebSocketHandlerConfig{Handlers: sc.handlers()}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebSocketRoundTrip(t *testing.T) {
	sc := newServerConns()
	url := startWebSocketServer(t, sc)

	recv := newRecordingReceiver()
	tr := NewWebSocket(recv, Config{}, false)
	require.NoError(t, tr.Connect(url))
	assert.True(t, tr.Connected())

	frame := testFrame("\x01\x01\x00\x07\x05hello")
	require.NoError(t, tr.Send(frame))
	assert.Equal(t, frame, receive(t, sc.got))
	assert.Equal(t, frame, recv.nextFrame(t))

	assert.ErrorIs(t, tr.Send(nil), ErrFrameEmpty)
	assert.ErrorIs(t, tr.Connect(url), ErrAlreadyConnected)

	require.NoError(t, tr.Disconnect())
	assert.NoError(t, recv.waitClosed(t))
	assert.False(t, tr.Connected())

	select {
	case <-sc.gone:
	case <-timeout():
		t.Fatal("server did not see the close")
	}
}

func TestWebSocketServerClose(t *testing.T) {
	sc := newServerConns()
	url := startWebSocketServer(t, sc)

	recv := newRecordingReceiver()
	tr := NewWebSocket(recv, Config{}, false)
	require.NoError(t, tr.Connect(strings.TrimPrefix(url, "ws://")))

	require.NoError(t, sc.first(t).Close())
	assert.NoError(t, recv.waitClosed(t))
	assert.Equal(t, 1, recv.closeCount())
	assert.ErrorIs(t, tr.Send(testFrame("\x01\x00")), ErrNotConnected)
}

func TestWebSocketPingReply(t *testing.T) {
	sc := newServerConns()
	url := startWebSocketServer(t, sc)

	recv := newRecordingReceiver()
	tr := NewWebSocket(recv, Config{}, false)
	require.NoError(t, tr.Connect(url))
	t.Cleanup(func() { tr.Disconnect() })

	reply := peer.EncodePingReply(5, 6)
	require.NoError(t, sc.first(t).Send(reply))
	assert.Equal(t, reply, recv.nextFrame(t))
}

func TestWebSocketURL(t *testing.T) {
	tests := []struct {
		address string
		secure  bool
		want    string
		wantErr bool
	}{
		{address: "example.com:9090", want: "ws://example.com:9090/"},
		{address: "example.com:9090", secure: true, want: "wss://example.com:9090/"},
		{address: "example.com:9090/game", want: "ws://example.com:9090/game"},
		{address: "ws://10.0.0.1:80/x", secure: true, want: "ws://10.0.0.1:80/x"},
		{address: "https://example.com", want: "wss://example.com/"},
		{address: "ftp://example.com", wantErr: true},
		{address: "ws://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			u, err := websocketURL(tt.address, tt.secure, "/")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestFactory(t *testing.T) {
	recv := newRecordingReceiver()

	f, err := Factory(peer.ProtocolTCP, Config{})
	require.NoError(t, err)
	assert.IsType(t, &TCP{}, f(recv))

	f, err = Factory(peer.ProtocolWebSocketSecure, Config{})
	require.NoError(t, err)
	ws, ok := f(recv).(*WebSocket)
	require.True(t, ok)
	assert.True(t, ws.secure)

	_, err = Factory(peer.ProtocolUDP, Config{})
	assert.ErrorIs(t, err, peer.ErrUnsupportedProtocol)
}
