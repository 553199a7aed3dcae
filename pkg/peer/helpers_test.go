package peer

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// fakeClock provides a controllable time source for deterministic tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// fakeTransport records sent frames and lets tests drive the receiver.
type fakeTransport struct {
	mu            sync.Mutex
	recv          Receiver
	connected     bool
	ipv6          bool
	connectErr    error
	sendErr       error
	disconnectErr error
	disconnects   int
	sent          [][]byte
}

func (t *fakeTransport) Connect(string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.connectErr != nil {
		return t.connectErr
	}
	t.connected = true
	return nil
}

func (t *fakeTransport) Send(data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, append([]byte(nil), data...))
	return nil
}

func (t *fakeTransport) Disconnect() error {
	t.mu.Lock()
	t.disconnects++
	err := t.disconnectErr
	t.connected = false
	t.mu.Unlock()
	return err
}

func (t *fakeTransport) Connected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *fakeTransport) AddressResolvedAsIPv6() bool { return t.ipv6 }

func (t *fakeTransport) frames() [][]byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([][]byte(nil), t.sent...)
}

func (t *fakeTransport) reset() {
	t.mu.Lock()
	t.sent = nil
	t.mu.Unlock()
}

// recordingListener collects callbacks. All callbacks run on the test
// goroutine through DispatchIncomingCommands.
type recordingListener struct {
	statuses  []StatusCode
	responses []*wire.OperationResponse
	events    []*wire.EventData
	debug     []string
	messages  []any
	raw       [][]byte
}

func (l *recordingListener) OnStatusChanged(code StatusCode) { l.statuses = append(l.statuses, code) }
func (l *recordingListener) OnOperationResponse(resp *wire.OperationResponse) {
	l.responses = append(l.responses, resp)
}
func (l *recordingListener) OnEvent(ev *wire.EventData) { l.events = append(l.events, ev) }
func (l *recordingListener) DebugReturn(level DebugLevel, message string) {
	l.debug = append(l.debug, level.String()+": "+message)
}
func (l *recordingListener) OnMessage(isRaw bool, message any) {
	if isRaw {
		l.raw = append(l.raw, message.([]byte))
		return
	}
	l.messages = append(l.messages, message)
}

// orderListener records the interleaving of statuses and events.
type orderListener struct {
	*recordingListener
	order *[]string
}

func (l orderListener) OnStatusChanged(code StatusCode) {
	*l.order = append(*l.order, code.String())
	l.recordingListener.OnStatusChanged(code)
}

func (l orderListener) OnEvent(ev *wire.EventData) {
	*l.order = append(*l.order, "event")
	l.recordingListener.OnEvent(ev)
}

func (l *recordingListener) hasStatus(code StatusCode) bool {
	for _, s := range l.statuses {
		if s == code {
			return true
		}
	}
	return false
}

// xorCrypto is a reversible stand-in for a real cipher.
type xorCrypto struct {
	mu        sync.Mutex
	key       byte
	deriveErr error
	resets    int
}

func (c *xorCrypto) PublicKey() ([]byte, error) { return []byte{0xC1, 0x1E, 0x47}, nil }

func (c *xorCrypto) DeriveSharedKey(server []byte) error {
	if c.deriveErr != nil {
		return c.deriveErr
	}
	c.mu.Lock()
	c.key = server[0]
	c.mu.Unlock()
	return nil
}

func (c *xorCrypto) xor(in []byte) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]byte, len(in))
	for i, b := range in {
		out[i] = b ^ c.key
	}
	return out
}

func (c *xorCrypto) Encrypt(p []byte) ([]byte, error) { return c.xor(p), nil }
func (c *xorCrypto) Decrypt(p []byte) ([]byte, error) {
	if len(p) == 0 {
		return nil, errors.New("empty ciphertext")
	}
	return c.xor(p), nil
}
func (c *xorCrypto) Reset() { c.resets++ }

type testPeer struct {
	*Peer
	transport *fakeTransport
	listener  *recordingListener
	clock     *fakeClock
}

func newTestPeer(t *testing.T, mutate func(*Config)) *testPeer {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DebugLevel = DebugAll
	cfg.TrafficStatsEnabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	tr := &fakeTransport{}
	l := &recordingListener{}
	p, err := New(cfg, l, func(r Receiver) Transport {
		tr.recv = r
		return tr
	})
	require.NoError(t, err)

	clock := newFakeClock()
	p.timeNow = clock.Now
	p.epoch = clock.Now()
	p.SetMessageListener(l)
	return &testPeer{Peer: p, transport: tr, listener: l, clock: clock}
}

// connect runs the handshake up to Connected and clears recorded output.
func (tp *testPeer) connect(t *testing.T) {
	t.Helper()
	require.NoError(t, tp.Connect("127.0.0.1:5055", "app", nil))
	require.True(t, tp.SendOutgoingCommands())
	tp.serverSends(MessageInitResponse, nil)
	tp.dispatchAll()
	require.Equal(t, StateConnected, tp.State())
	tp.transport.reset()
	tp.listener.statuses = nil
	tp.listener.debug = nil
}

// serverSends delivers a framed message from the server.
func (tp *testPeer) serverSends(mt MessageType, body []byte) {
	tp.ReceiveIncomingCommands(AppendFrame(nil, 0, DeliveryReliable, mt, false, body))
}

func (tp *testPeer) dispatchAll() {
	for tp.DispatchIncomingCommands() {
	}
	// One more pass delivers actions queued by the last frame's callbacks.
	tp.DispatchIncomingCommands()
}

func eventBody(t *testing.T, ev *wire.EventData) []byte {
	t.Helper()
	buf := buffer.NewStreamBuffer(32)
	require.NoError(t, wire.NewCodec(nil).SerializeEventData(buf, ev, false))
	return buf.Copy()
}

func responseBody(t *testing.T, resp *wire.OperationResponse) []byte {
	t.Helper()
	buf := buffer.NewStreamBuffer(32)
	require.NoError(t, wire.NewCodec(nil).SerializeOperationResponse(buf, resp, false))
	return buf.Copy()
}
