package testserver

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/keyexchange"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/transport"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// rawClient speaks the protocol directly over a TCP transport.
type rawClient struct {
	t      *testing.T
	tr     *transport.TCP
	frames chan []byte
	closed chan error
}

func (c *rawClient) ReceiveIncomingCommands(data []byte) { c.frames <- bytes.Clone(data) }
func (c *rawClient) TransportClosed(err error)           { c.closed <- err }

func startServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	srv, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { srv.Stop() })
	return srv
}

func dial(t *testing.T, srv *Server) *rawClient {
	t.Helper()
	c := &rawClient{t: t, frames: make(chan []byte, 16), closed: make(chan error, 1)}
	c.tr = transport.NewTCP(c, transport.Config{})
	require.NoError(t, c.tr.Connect(srv.Addr()))
	t.Cleanup(func() { c.tr.Disconnect() })
	return c
}

func (c *rawClient) next() []byte {
	c.t.Helper()
	select {
	case f := <-c.frames:
		return f
	case <-time.After(5 * time.Second):
		c.t.Fatal("timed out waiting for the server")
		return nil
	}
}

func (c *rawClient) nextFrame() peer.Frame {
	c.t.Helper()
	f, err := peer.ParseFrame(c.next())
	require.NoError(c.t, err)
	return f
}

func (c *rawClient) send(mt peer.MessageType, body []byte) {
	c.t.Helper()
	require.NoError(c.t, c.tr.Send(peer.AppendFrame(nil, 0, peer.DeliveryReliable, mt, false, body)))
}

func (c *rawClient) init(appID string) {
	c.t.Helper()
	body := []byte{1, 8, 0, 0, 1, 0, 0, 0, byte(len(appID))}
	c.send(peer.MessageInit, append(body, appID...))
	f := c.nextFrame()
	require.Equal(c.t, peer.MessageInitResponse, f.Type)
}

func (c *rawClient) operation(mt peer.MessageType, req *wire.OperationRequest) *wire.OperationResponse {
	c.t.Helper()
	codec := wire.NewCodec(nil)
	body := buffer.NewStreamBuffer(32)
	require.NoError(c.t, codec.SerializeOperationRequest(body, req, false))
	c.send(mt, body.Bytes())

	f := c.nextFrame()
	resp, err := codec.DeserializeOperationResponse(buffer.NewStreamBufferFrom(f.Payload))
	require.NoError(c.t, err)
	return resp
}

func TestInitAndEcho(t *testing.T) {
	srv := startServer(t, Config{})
	c := dial(t, srv)
	c.init("demo")

	require.Len(t, srv.Sessions(), 1)
	sess := srv.Sessions()[0]
	assert.Equal(t, "demo", sess.AppID())
	assert.Equal(t, [4]byte{1, 0, 0, 0}, sess.Init().ClientVersion)

	resp := c.operation(peer.MessageOperation, &wire.OperationRequest{
		OperationCode: OpEcho,
		Parameters:    wire.ParameterDictionary{0: "hello", 1: int32(7)},
	})
	assert.Equal(t, OpEcho, resp.OperationCode)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, "hello", resp.Get(0))
	assert.Equal(t, int32(7), resp.Get(1))

	resp = c.operation(peer.MessageOperation, &wire.OperationRequest{OperationCode: 99})
	assert.Equal(t, ReturnInvalidOperation, resp.ReturnCode)
	assert.Contains(t, resp.DebugMessage, "unknown operation 99")
}

func TestPingReply(t *testing.T) {
	srv := startServer(t, Config{})
	srv.timeNow = func() time.Time { return time.UnixMilli(5000) }
	c := dial(t, srv)

	require.NoError(t, c.tr.Send(peer.EncodePingRequest(1234)))
	serverTime, clientTime, err := peer.DecodePingReply(c.next())
	require.NoError(t, err)
	assert.Equal(t, int32(5000), serverTime)
	assert.Equal(t, int32(1234), clientTime)

	resp := c.operation(peer.MessageInternalOperationRequest, &wire.OperationRequest{
		OperationCode: peer.InternalOpPing,
		Parameters:    wire.ParameterDictionary{peer.ParamClientTime: int32(1234)},
	})
	assert.Equal(t, int32(1234), resp.Get(peer.ParamClientTime))
	assert.Equal(t, int32(5000), resp.Get(peer.ParamServerTime))

	srv.SetDropPings(true)
	require.NoError(t, c.tr.Send(peer.EncodePingRequest(1)))
	select {
	case f := <-c.frames:
		t.Fatalf("unexpected reply % X", f)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestKeyExchange(t *testing.T) {
	srv := startServer(t, Config{})
	c := dial(t, srv)
	c.init("demo")

	client := keyexchange.New()
	pub, err := client.PublicKey()
	require.NoError(t, err)

	resp := c.operation(peer.MessageInternalOperationRequest, &wire.OperationRequest{
		OperationCode: peer.InternalOpInitEncryption,
		Parameters:    wire.ParameterDictionary{peer.ParamClientKey: pub},
	})
	require.True(t, resp.IsSuccess(), resp.DebugMessage)
	serverKey, ok := resp.Get(peer.ParamServerKey).([]byte)
	require.True(t, ok)
	require.NoError(t, client.DeriveSharedKey(serverKey))
	assert.True(t, srv.Sessions()[0].Encrypted())

	// An encrypted echo comes back encrypted.
	codec := wire.NewCodec(nil)
	body := buffer.NewStreamBuffer(32)
	require.NoError(t, codec.SerializeOperationRequest(body, &wire.OperationRequest{
		OperationCode: OpEcho,
		Parameters:    wire.ParameterDictionary{3: "secret"},
	}, false))
	sealed, err := client.Encrypt(body.Bytes())
	require.NoError(t, err)
	require.NoError(t, c.tr.Send(peer.AppendFrame(nil, 0, peer.DeliveryReliable, peer.MessageOperation, true, sealed)))

	f := c.nextFrame()
	require.True(t, f.Encrypted)
	plain, err := client.Decrypt(f.Payload)
	require.NoError(t, err)
	echo, err := codec.DeserializeOperationResponse(buffer.NewStreamBufferFrom(plain))
	require.NoError(t, err)
	assert.Equal(t, "secret", echo.Get(3))

	bad := c.operation(peer.MessageInternalOperationRequest, &wire.OperationRequest{
		OperationCode: peer.InternalOpInitEncryption,
		Parameters:    wire.ParameterDictionary{peer.ParamClientKey: []byte{1, 2, 3}},
	})
	assert.Equal(t, ReturnKeyExchange, bad.ReturnCode)
}

func TestRaiseEventAndBroadcast(t *testing.T) {
	srv := startServer(t, Config{})
	a := dial(t, srv)
	a.init("room")
	b := dial(t, srv)
	b.init("room")
	other := dial(t, srv)
	other.init("elsewhere")

	codec := wire.NewCodec(nil)
	body := buffer.NewStreamBuffer(32)
	require.NoError(t, codec.SerializeOperationRequest(body, &wire.OperationRequest{
		OperationCode: OpRaiseEvent,
		Parameters:    wire.ParameterDictionary{ParamEventCode: byte(9), 1: "hi"},
	}, false))
	a.send(peer.MessageOperation, body.Bytes())

	// The sender gets its own event before the response.
	assert.Equal(t, peer.MessageEvent, a.nextFrame().Type)
	assert.Equal(t, peer.MessageOperationResponse, a.nextFrame().Type)

	f := b.nextFrame()
	require.Equal(t, peer.MessageEvent, f.Type)
	ev, err := codec.DeserializeEventData(buffer.NewStreamBufferFrom(f.Payload))
	require.NoError(t, err)
	assert.Equal(t, byte(9), ev.Code)
	assert.Equal(t, "hi", ev.Get(1))
	assert.Equal(t, srv.Sessions()[0].Actor, ev.Sender())

	n := srv.Broadcast(&wire.EventData{Code: 1})
	assert.Equal(t, 3, n)
	f = other.nextFrame()
	assert.Equal(t, peer.MessageEvent, f.Type)
	assert.Equal(t, []byte{1, 0}, f.Payload)
}

func TestMessagesEchoed(t *testing.T) {
	srv := startServer(t, Config{})
	c := dial(t, srv)
	c.init("demo")

	c.send(peer.MessageRawMessage, []byte{0xCA, 0xFE})
	f := c.nextFrame()
	assert.Equal(t, peer.MessageRawMessage, f.Type)
	assert.Equal(t, []byte{0xCA, 0xFE}, f.Payload)
}

func TestDisconnectAndKick(t *testing.T) {
	srv := startServer(t, Config{})
	c := dial(t, srv)
	c.init("demo")

	resp := c.operation(peer.MessageOperation, &wire.OperationRequest{OperationCode: OpDisconnect})
	assert.True(t, resp.IsSuccess())
	select {
	case err := <-c.closed:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not close the connection")
	}

	d := dial(t, srv)
	d.init("demo")
	require.Eventually(t, func() bool { return len(srv.Sessions()) == 1 }, 5*time.Second, 5*time.Millisecond)
	require.NoError(t, srv.Kick(srv.Sessions()[0].ID))
	select {
	case <-d.closed:
	case <-time.After(5 * time.Second):
		t.Fatal("kick did not close the connection")
	}
	assert.ErrorIs(t, srv.Kick("nope"), ErrUnknownSession)
	assert.ErrorIs(t, srv.SendEvent("nope", &wire.EventData{}), ErrUnknownSession)
}

func TestCustomHandler(t *testing.T) {
	srv := startServer(t, Config{
		Handler: func(s *Session, req *wire.OperationRequest) *wire.OperationResponse {
			if req.OperationCode != 50 {
				return nil
			}
			return &wire.OperationResponse{OperationCode: 50, Parameters: wire.ParameterDictionary{0: s.AppID()}}
		},
	})
	c := dial(t, srv)
	c.init("custom")

	resp := c.operation(peer.MessageOperation, &wire.OperationRequest{OperationCode: 50})
	assert.Equal(t, "custom", resp.Get(0))

	resp = c.operation(peer.MessageOperation, &wire.OperationRequest{OperationCode: OpServerTime})
	_, ok := resp.Get(ParamServerTime).(int32)
	assert.True(t, ok)
}
