package integration_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/internal/testserver"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/connection"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/keyexchange"
	ndglog "github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/peer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/transport"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

const waitTimeout = 5 * time.Second

// listener records callbacks. Everything runs on the test goroutine
// through Peer.Service, except hook which may start a reconnect.
type listener struct {
	statuses  []peer.StatusCode
	responses []*wire.OperationResponse
	events    []*wire.EventData
	messages  []any
	raw       [][]byte
	hook      func(peer.StatusCode)
}

func (l *listener) OnStatusChanged(code peer.StatusCode) {
	l.statuses = append(l.statuses, code)
	if l.hook != nil {
		l.hook(code)
	}
}
func (l *listener) OnOperationResponse(resp *wire.OperationResponse) {
	l.responses = append(l.responses, resp)
}
func (l *listener) OnEvent(ev *wire.EventData)          { l.events = append(l.events, ev) }
func (l *listener) DebugReturn(peer.DebugLevel, string) {}
func (l *listener) OnMessage(isRaw bool, message any) {
	if isRaw {
		l.raw = append(l.raw, message.([]byte))
		return
	}
	l.messages = append(l.messages, message)
}

func (l *listener) count(code peer.StatusCode) int {
	n := 0
	for _, s := range l.statuses {
		if s == code {
			n++
		}
	}
	return n
}

type client struct {
	t    *testing.T
	peer *peer.Peer
	l    *listener
}

func startServer(t *testing.T) *testserver.Server {
	t.Helper()
	srv, err := testserver.New(testserver.Config{})
	require.NoError(t, err)
	require.NoError(t, srv.Start(context.Background()))
	t.Cleanup(func() { srv.Stop() })
	return srv
}

func newClient(t *testing.T, protocol peer.Protocol, tune func(*peer.Config)) *client {
	t.Helper()
	cfg := peer.DefaultConfig()
	cfg.Protocol = protocol
	cfg.PingInterval = 20 * time.Millisecond
	cfg.TrafficStatsEnabled = true
	if tune != nil {
		tune(&cfg)
	}

	factory, err := transport.Factory(protocol, transport.Config{})
	require.NoError(t, err)

	l := &listener{}
	p, err := peer.New(cfg, l, factory)
	require.NoError(t, err)
	p.SetMessageListener(l)

	c := &client{t: t, peer: p, l: l}
	t.Cleanup(func() {
		if p.State() != peer.StateDisconnected {
			p.StopConnection()
		}
	})
	return c
}

// serviceUntil runs the service loop until cond holds.
func (c *client) serviceUntil(what string, cond func() bool) {
	c.t.Helper()
	deadline := time.Now().Add(waitTimeout)
	for !cond() {
		if time.Now().After(deadline) {
			c.t.Fatalf("timed out waiting for %s (statuses %v)", what, c.l.statuses)
		}
		c.peer.Service()
		time.Sleep(2 * time.Millisecond)
	}
}

func (c *client) connect(address, appID string) {
	c.t.Helper()
	require.NoError(c.t, c.peer.Connect(address, appID, nil))
	c.serviceUntil("connect", func() bool { return c.l.count(peer.StatusConnect) > 0 })
	require.Equal(c.t, peer.StateConnected, c.peer.State())
	require.True(c.t, c.peer.IsApplicationInitialized())
}

func (c *client) operation(code byte, params wire.ParameterDictionary, opts peer.SendOptions) *wire.OperationResponse {
	c.t.Helper()
	n := len(c.l.responses)
	require.True(c.t, c.peer.EnqueueOperation(params, code, opts))
	c.serviceUntil("response", func() bool { return len(c.l.responses) > n })
	return c.l.responses[n]
}

func TestSessionOverTCP(t *testing.T) {
	srv := startServer(t)
	c := newClient(t, peer.ProtocolTCP, nil)
	c.connect(srv.Addr(), "demo")

	t.Run("Echo", func(t *testing.T) {
		params := wire.ParameterDictionary{
			1: "hello",
			2: int32(-5),
			3: []byte{1, 2, 3},
			4: []any{int32(1), "two"},
		}
		resp := c.operation(testserver.OpEcho, params, peer.SendReliable)
		assert.True(t, resp.IsSuccess())
		assert.Equal(t, params, resp.Parameters)
	})

	t.Run("UnknownOperation", func(t *testing.T) {
		resp := c.operation(99, nil, peer.SendReliable)
		assert.Equal(t, testserver.ReturnInvalidOperation, resp.ReturnCode)
		assert.Equal(t, "unknown operation 99", resp.DebugMessage)
	})

	t.Run("RaiseEvent", func(t *testing.T) {
		resp := c.operation(testserver.OpRaiseEvent, wire.ParameterDictionary{
			testserver.ParamEventCode: byte(7),
			1:                         "payload",
		}, peer.SendReliable)
		require.True(t, resp.IsSuccess())
		require.NotEmpty(t, c.l.events)

		ev := c.l.events[len(c.l.events)-1]
		assert.Equal(t, byte(7), ev.Code)
		assert.Equal(t, "payload", ev.Get(1))
		assert.Equal(t, srv.Sessions()[0].Actor, ev.Sender())
	})

	t.Run("Messages", func(t *testing.T) {
		require.True(t, c.peer.EnqueueMessage("ping me", peer.SendReliable))
		require.True(t, c.peer.EnqueueRawMessage([]byte{0xde, 0xad}, peer.SendUnreliable))
		c.serviceUntil("messages", func() bool { return len(c.l.messages) > 0 && len(c.l.raw) > 0 })
		assert.Equal(t, "ping me", c.l.messages[0])
		assert.Equal(t, []byte{0xde, 0xad}, c.l.raw[0])
	})

	t.Run("PingAndServerTime", func(t *testing.T) {
		c.serviceUntil("pongs", func() bool { return c.peer.TrafficStats().PongsIn >= 3 })
		assert.True(t, c.peer.ServerTimeAvailable())
		assert.Greater(t, c.peer.RoundTripTime(), time.Duration(0))
		assert.LessOrEqual(t, c.peer.LowestRoundTripTime(), c.peer.RoundTripTime())
	})

	t.Run("Stats", func(t *testing.T) {
		st := c.peer.TrafficStats()
		assert.Positive(t, st.BytesOut)
		assert.Positive(t, st.BytesIn)
		assert.GreaterOrEqual(t, st.OperationsOut, int64(3))
		assert.GreaterOrEqual(t, st.ResponsesIn, int64(3))
		assert.Zero(t, st.DecodeErrors)
	})

	t.Run("Disconnect", func(t *testing.T) {
		c.peer.Disconnect()
		c.serviceUntil("disconnect", func() bool { return c.peer.State() == peer.StateDisconnected })
		assert.Equal(t, 1, c.l.count(peer.StatusDisconnect))
		assert.False(t, c.peer.EnqueueOperation(nil, testserver.OpEcho, peer.SendReliable))
	})
}

func TestSessionOverWebSocket(t *testing.T) {
	srv := startServer(t)
	hs := httptest.NewServer(srv.WebSocketHandler())
	t.Cleanup(hs.Close)

	c := newClient(t, peer.ProtocolWebSocket, nil)
	c.connect(strings.Replace(hs.URL, "http://", "ws://", 1)+"/", "demo")

	resp := c.operation(testserver.OpEcho, wire.ParameterDictionary{1: "over ws"}, peer.SendReliable)
	assert.Equal(t, "over ws", resp.Get(1))

	c.serviceUntil("pongs", func() bool { return c.peer.TrafficStats().PongsIn >= 1 })

	c.peer.Disconnect()
	c.serviceUntil("disconnect", func() bool { return c.peer.State() == peer.StateDisconnected })
}

func TestEncryptedSession(t *testing.T) {
	srv := startServer(t)
	c := newClient(t, peer.ProtocolTCP, func(cfg *peer.Config) {
		cfg.Crypto = keyexchange.New()
	})
	c.connect(srv.Addr(), "secure")

	require.True(t, c.peer.EstablishEncryption())
	c.serviceUntil("key exchange", func() bool { return c.l.count(peer.StatusEncryptionEstablished) > 0 })
	assert.True(t, c.peer.IsEncryptionAvailable())
	assert.True(t, srv.Sessions()[0].Encrypted())

	resp := c.operation(testserver.OpEcho, wire.ParameterDictionary{1: "secret"},
		peer.SendOptions{DeliveryMode: peer.DeliveryReliable, Encrypt: true})
	assert.Equal(t, "secret", resp.Get(1))

	require.True(t, c.peer.EnqueueMessage("sealed", peer.SendOptions{DeliveryMode: peer.DeliveryReliable, Encrypt: true}))
	c.serviceUntil("message", func() bool { return len(c.l.messages) > 0 })
	assert.Equal(t, "sealed", c.l.messages[0])
}

func TestServerClosesSession(t *testing.T) {
	srv := startServer(t)
	c := newClient(t, peer.ProtocolTCP, nil)
	c.connect(srv.Addr(), "demo")

	require.True(t, c.peer.EnqueueOperation(nil, testserver.OpDisconnect, peer.SendReliable))
	c.serviceUntil("server close", func() bool { return c.peer.State() == peer.StateDisconnected })

	assert.Equal(t, 1, c.l.count(peer.StatusDisconnectByServerReasonUnknown))
	assert.Equal(t, 1, c.l.count(peer.StatusDisconnect))
	require.NotEmpty(t, c.l.responses)
	assert.Equal(t, testserver.OpDisconnect, c.l.responses[0].OperationCode)

	// The peer can start a fresh session afterwards.
	first := c.peer.ConnectionID()
	c.l.statuses = nil
	c.connect(srv.Addr(), "demo")
	assert.NotEqual(t, first, c.peer.ConnectionID())
}

func TestReceiveTimeout(t *testing.T) {
	srv := startServer(t)
	c := newClient(t, peer.ProtocolTCP, func(cfg *peer.Config) {
		cfg.DisconnectTimeout = 200 * time.Millisecond
	})
	c.connect(srv.Addr(), "demo")

	srv.SetDropPings(true)
	c.serviceUntil("timeout", func() bool { return c.peer.State() == peer.StateDisconnected })
	assert.Equal(t, 1, c.l.count(peer.StatusTimeoutDisconnect))
	assert.Equal(t, 1, c.l.count(peer.StatusDisconnect))
}

func TestConnectRefused(t *testing.T) {
	c := newClient(t, peer.ProtocolTCP, nil)
	err := c.peer.Connect("127.0.0.1:1", "demo", nil)
	require.Error(t, err)
	c.serviceUntil("status", func() bool { return c.l.count(peer.StatusExceptionOnConnect) > 0 })
	assert.Equal(t, peer.StateDisconnected, c.peer.State())
}

func TestReconnectAfterKick(t *testing.T) {
	srv := startServer(t)
	c := newClient(t, peer.ProtocolTCP, nil)

	r := connection.NewReconnector(func(ctx context.Context) error {
		return c.peer.Connect(srv.Addr(), "demo", nil)
	}, connection.Options{
		Backoff: connection.BackoffConfig{Initial: 10 * time.Millisecond, Jitter: -1},
	})
	t.Cleanup(r.Close)
	c.l.hook = r.HandleStatus

	require.NoError(t, r.Connect())
	c.serviceUntil("connect", func() bool { return c.l.count(peer.StatusConnect) == 1 })

	sessions := srv.Sessions()
	require.Len(t, sessions, 1)
	require.NoError(t, srv.Kick(sessions[0].ID))

	c.serviceUntil("reconnect", func() bool { return c.l.count(peer.StatusConnect) == 2 })
	assert.Equal(t, connection.StateConnected, r.State())
	assert.Equal(t, 1, c.l.count(peer.StatusDisconnectByServerReasonUnknown))

	resp := c.operation(testserver.OpEcho, wire.ParameterDictionary{1: int32(2)}, peer.SendReliable)
	assert.Equal(t, int32(2), resp.Get(1))
}

func TestProtocolLogCapture(t *testing.T) {
	srv := startServer(t)

	var (
		mu     sync.Mutex
		events []ndglog.Event
	)
	capture := ndglog.LoggerFunc(func(e ndglog.Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})
	c := newClient(t, peer.ProtocolTCP, func(cfg *peer.Config) {
		cfg.ProtocolLogger = capture
		cfg.PingInterval = time.Hour
	})
	c.connect(srv.Addr(), "logged")
	c.operation(testserver.OpEcho, wire.ParameterDictionary{1: "x"}, peer.SendReliable)
	c.peer.Disconnect()
	c.serviceUntil("disconnect", func() bool { return c.peer.State() == peer.StateDisconnected })

	mu.Lock()
	defer mu.Unlock()
	var states, ops, responses int
	for _, e := range events {
		assert.Equal(t, c.peer.ConnectionID(), e.ConnectionID)
		switch {
		case e.StateChange != nil:
			states++
		case e.Message != nil && e.Message.Type == ndglog.MessageTypeOperation:
			ops++
		case e.Message != nil && e.Message.Type == ndglog.MessageTypeOperationResponse:
			responses++
		}
	}
	assert.GreaterOrEqual(t, states, 4)
	assert.Equal(t, 1, ops)
	assert.Equal(t, 1, responses)
}
