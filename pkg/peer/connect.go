package peer

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
)

// Connect starts a session with the server at address. The init message is
// queued and goes out with the next SendOutgoingCommands; the session is
// connected once the server's init response has been dispatched.
//
// customInitData may be nil. Any value the codec can serialize is accepted.
func (p *Peer) Connect(address, appID string, customInitData any) error {
	if len(appID) > MaxAppIDLength {
		return fmt.Errorf("%w: %d bytes", ErrAppIDTooLong, len(appID))
	}
	if !p.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return fmt.Errorf("%w: state %s", ErrAlreadyConnected, p.State())
	}

	p.session.Store(&session{id: uuid.NewString(), address: address, appID: appID})
	p.resetSession()
	p.logState(StateDisconnected, StateConnecting, "connect", 0)

	if err := p.transport.Connect(address); err != nil {
		p.setState(StateDisconnected, err.Error(), StatusExceptionOnConnect)
		p.debug(DebugError, "connect to %s failed: %v", address, err)
		p.queueStatus(StatusExceptionOnConnect)
		return fmt.Errorf("connect %s: %w", address, err)
	}

	req := &InitRequest{
		VersionMajor:  ProtocolVersionMajor,
		VersionMinor:  ProtocolVersionMinor,
		ClientSDKID:   p.cfg.ClientSDKID,
		IPv6:          p.transport.AddressResolvedAsIPv6(),
		ClientVersion: p.cfg.ClientVersion,
		AppID:         appID,
		CustomData:    customInitData,
		HasCustomData: customInitData != nil,
	}
	ok := p.enqueue(MessageInit, SendReliable, true, nil, func(buf *buffer.StreamBuffer) error {
		return encodeInit(buf, p.codec, req)
	})
	if !ok {
		p.setState(StateDisconnected, "init message rejected", 0)
		p.transport.Disconnect()
		return fmt.Errorf("%w: init message for %s", ErrMalformedFrame, appID)
	}

	p.debug(DebugInfo, "connecting to %s as %s", address, appID)
	return nil
}

// resetSession clears per-connection state before a new Connect.
func (p *Peer) resetSession() {
	p.clearQueues()
	p.rtt.reset()
	p.encryption.Store(encNone)
	if p.crypto != nil {
		p.crypto.Reset()
	}
	p.applicationInitialized.Store(false)
	p.lastReceive.Store(p.timeNow().UnixNano())
	p.lastPing.Store(0)
}

// clearQueues drops queued frames in both directions. Deferred actions are
// kept so pending status callbacks still reach the listener.
func (p *Peer) clearQueues() {
	p.outMu.Lock()
	out := p.outgoing
	p.outgoing = nil
	p.outMu.Unlock()
	for _, b := range out {
		p.buffers.Put(b)
	}

	p.inMu.Lock()
	in := p.incoming
	p.incoming = nil
	p.inMu.Unlock()
	for i := range in {
		in[i].release()
	}
}

// Disconnect starts a graceful disconnect. The listener receives
// StatusDisconnect once the transport reports the connection closed.
func (p *Peer) Disconnect() {
	p.disconnect("disconnect requested")
}

func (p *Peer) disconnect(reason string) {
	st := p.State()
	if st != StateConnecting && st != StateConnected {
		return
	}
	if !p.casState(st, StateDisconnecting, reason, 0) {
		return
	}
	p.clearQueues()

	if err := p.transport.Disconnect(); err != nil {
		p.setState(StateZombie, err.Error(), 0)
		p.debug(DebugError, "disconnect failed: %v", err)
	}
}

// StopConnection forces the peer to Disconnected without waiting for the
// transport. StatusDisconnect is queued if the state changed.
func (p *Peer) StopConnection() {
	old := p.setState(StateDisconnected, "stopped", StatusDisconnect)
	p.clearQueues()
	if old == StateDisconnected {
		return
	}
	if old != StateDisconnecting {
		if err := p.transport.Disconnect(); err != nil {
			p.debug(DebugWarning, "transport teardown: %v", err)
		}
	}
	p.queueStatus(StatusDisconnect)
}

// TransportClosed implements Receiver. Frames received before the close
// are still dispatched; the state settles to Disconnected after them.
func (p *Peer) TransportClosed(err error) {
	reason := "transport closed"
	if err != nil {
		reason = err.Error()
	}

	var status StatusCode
	switch p.State() {
	case StateDisconnected, StateZombie:
		return
	case StateConnecting:
		if p.casState(StateConnecting, StateDisconnecting, reason, StatusExceptionOnConnect) {
			p.debug(DebugError, "connection closed while connecting: %s", reason)
			status = StatusExceptionOnConnect
		}
	case StateConnected:
		status = StatusDisconnectByServerReasonUnknown
		if err != nil {
			status = StatusExceptionOnReceive
		}
		if p.casState(StateConnected, StateDisconnecting, reason, status) {
			p.debug(DebugWarning, "connection closed by server: %s", reason)
		} else {
			status = 0
		}
	}

	p.inMu.Lock()
	p.incoming = append(p.incoming, incomingFrame{closed: true, status: status})
	p.inMu.Unlock()
}

// settleDisconnect runs when the close marker is dequeued.
func (p *Peer) settleDisconnect(status StatusCode) {
	if status != 0 {
		p.listener.OnStatusChanged(status)
	}
	if !p.casState(StateDisconnecting, StateDisconnected, "transport closed", StatusDisconnect) {
		return
	}
	p.clearQueues()
	p.listener.OnStatusChanged(StatusDisconnect)
}
