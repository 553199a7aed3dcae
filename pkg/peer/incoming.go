package peer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
)

// incomingFrame is a received frame waiting for dispatch.
type incomingFrame struct {
	frame Frame
	slice *buffer.Slice

	// closed marks the transport close; status is reported with it.
	closed bool
	status StatusCode
}

func (f *incomingFrame) release() {
	if f.slice != nil {
		f.slice.Release()
		f.slice = nil
	}
}

// messageHandler handles one message type. payload is already decrypted.
type messageHandler func(p *Peer, payload []byte) error

// handlers is indexed by message type - 1. Nil entries are types a client
// never receives.
var handlers = [...]messageHandler{
	(*Peer).handleInitResponse,      // 1 InitResponse
	nil,                             // 2 Operation
	(*Peer).handleOperationResponse, // 3 OperationResponse
	(*Peer).handleEvent,             // 4 Event
	nil,                             // 5 reserved
	nil,                             // 6 InternalOperationRequest
	(*Peer).handleInternalResponse,  // 7 InternalOperationResponse
	(*Peer).handleMessage,           // 8 Message
	(*Peer).handleRawMessage,        // 9 RawMessage
}

// ReceiveIncomingCommands implements Receiver. Ping replies are handled
// immediately; frames are copied and queued for DispatchIncomingCommands.
func (p *Peer) ReceiveIncomingCommands(data []byte) {
	now := p.timeNow()
	p.lastReceive.Store(now.UnixNano())

	if len(data) == 0 {
		return
	}
	switch p.State() {
	case StateDisconnected, StateZombie:
		return
	}
	if len(data) > p.cfg.MaxFrameSize {
		p.receiveError("receive", fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, len(data), p.cfg.MaxFrameSize))
		return
	}
	if p.cfg.TrafficStatsEnabled {
		p.stats.received(len(data), now)
	}

	if data[0] == MagicPing {
		p.handlePingReply(data, now)
		return
	}

	p.logFrame(log.DirectionIn, data)

	var in incomingFrame
	copied := data
	if p.slices != nil {
		in.slice = p.slices.AcquireCopy(data)
		copied = in.slice.Bytes()
	} else {
		copied = bytes.Clone(data)
	}

	f, err := ParseFrame(copied)
	if err != nil {
		in.release()
		p.receiveError("receive", err)
		return
	}
	in.frame = f

	p.inMu.Lock()
	p.incoming = append(p.incoming, in)
	p.inMu.Unlock()
}

// DispatchIncomingCommands runs deferred callbacks, checks the receive
// timeout, and dispatches at most one queued frame. It reports whether more
// frames are waiting.
func (p *Peer) DispatchIncomingCommands() bool {
	now := p.timeNow()
	if p.cfg.TrafficStatsEnabled {
		p.stats.dispatched(now)
	}

	p.runActions()
	p.checkTimeout(now)

	p.inMu.Lock()
	if len(p.incoming) == 0 {
		p.inMu.Unlock()
		p.runActions()
		return false
	}
	in := p.incoming[0]
	p.incoming[0] = incomingFrame{}
	p.incoming = p.incoming[1:]
	more := len(p.incoming) > 0
	p.inMu.Unlock()

	if in.closed {
		p.settleDisconnect(in.status)
		p.runActions()
		return false
	}
	p.dispatchFrame(in.frame)
	in.release()
	p.runActions()
	return more
}

func (p *Peer) checkTimeout(now time.Time) {
	st := p.State()
	if st != StateConnecting && st != StateConnected {
		return
	}
	silent := now.Sub(time.Unix(0, p.lastReceive.Load()))
	if silent <= p.cfg.DisconnectTimeout {
		return
	}
	p.debug(DebugWarning, "nothing received for %v, disconnecting", silent.Round(time.Millisecond))
	p.queueStatus(StatusTimeoutDisconnect)
	p.disconnect("receive timeout")
}

func (p *Peer) dispatchFrame(f Frame) {
	payload := f.Payload
	if f.Encrypted {
		if p.crypto == nil || !p.IsEncryptionAvailable() {
			p.receiveError(f.Type.String(), fmt.Errorf("encrypted %s before encryption is established", f.Type))
			return
		}
		plain, err := p.crypto.Decrypt(payload)
		if err != nil {
			p.receiveError(f.Type.String(), fmt.Errorf("decrypt: %w", err))
			return
		}
		payload = plain
	}

	idx := int(f.Type) - 1
	if idx < 0 || idx >= len(handlers) || handlers[idx] == nil {
		p.receiveError("dispatch", fmt.Errorf("unhandled message type %d", byte(f.Type)))
		return
	}
	if err := handlers[idx](p, payload); err != nil {
		p.receiveError(f.Type.String(), err)
	}
}

// receiveError reports a dropped frame. The connection stays open.
func (p *Peer) receiveError(where string, err error) {
	p.debug(DebugError, "%s: %v", where, err)
	p.logError(log.LayerWire, where, err)
	if p.cfg.TrafficStatsEnabled {
		p.stats.decodeErrors.Add(1)
	}
}

func (p *Peer) handleInitResponse(payload []byte) error {
	if !p.casState(StateConnecting, StateConnected, "init response", StatusConnect) {
		p.debug(DebugWarning, "init response while %s ignored", p.State())
		return nil
	}
	p.applicationInitialized.Store(true)
	p.logMessage(log.DirectionIn, MessageInitResponse, &log.MessageEvent{})
	p.queueStatus(StatusConnect)
	p.FetchServerTimestamp()
	return nil
}

func (p *Peer) handleOperationResponse(payload []byte) error {
	resp, err := p.codec.DeserializeOperationResponse(buffer.NewStreamBufferFrom(payload))
	if err != nil {
		return fmt.Errorf("operation response: %w", err)
	}
	rc := resp.ReturnCode
	p.logMessage(log.DirectionIn, MessageOperationResponse, &log.MessageEvent{
		Code:           resp.OperationCode,
		ReturnCode:     &rc,
		DebugMessage:   resp.DebugMessage,
		ParameterCount: len(resp.Parameters),
		Parameters:     describeParameters(resp.Parameters),
	})
	if p.cfg.TrafficStatsEnabled {
		p.stats.responsesIn.Add(1)
	}
	p.listener.OnOperationResponse(resp)
	return nil
}

func (p *Peer) handleEvent(payload []byte) error {
	ev, err := p.codec.DeserializeEventData(buffer.NewStreamBufferFrom(payload))
	if err != nil {
		return fmt.Errorf("event: %w", err)
	}
	p.logMessage(log.DirectionIn, MessageEvent, &log.MessageEvent{
		Code:           ev.Code,
		ParameterCount: len(ev.Parameters),
		Parameters:     describeParameters(ev.Parameters),
	})
	if p.cfg.TrafficStatsEnabled {
		p.stats.eventsIn.Add(1)
	}
	p.listener.OnEvent(ev)
	return nil
}

func (p *Peer) handleInternalResponse(payload []byte) error {
	resp, err := p.codec.DeserializeOperationResponse(buffer.NewStreamBufferFrom(payload))
	if err != nil {
		return fmt.Errorf("internal response: %w", err)
	}
	rc := resp.ReturnCode
	p.logMessage(log.DirectionIn, MessageInternalOperationResponse, &log.MessageEvent{
		Code:           resp.OperationCode,
		ReturnCode:     &rc,
		ParameterCount: len(resp.Parameters),
	})

	switch resp.OperationCode {
	case InternalOpInitEncryption:
		p.completeKeyExchange(resp)
	case InternalOpPing:
		client, ok1 := resp.Get(ParamClientTime).(int32)
		server, ok2 := resp.Get(ParamServerTime).(int32)
		if !ok1 || !ok2 {
			return fmt.Errorf("%w: ping response parameters", ErrMalformedFrame)
		}
		p.applyPing(server, client, p.timeNow())
	default:
		p.debug(DebugWarning, "unknown internal operation %d", resp.OperationCode)
	}
	return nil
}

func (p *Peer) handleMessage(payload []byte) error {
	v, err := p.codec.Deserialize(buffer.NewStreamBufferFrom(payload))
	if err != nil {
		return fmt.Errorf("message: %w", err)
	}
	p.logMessage(log.DirectionIn, MessageMessage, &log.MessageEvent{})
	if p.cfg.TrafficStatsEnabled {
		p.stats.messagesIn.Add(1)
	}
	if p.msgListener == nil {
		p.debug(DebugWarning, "message dropped, no message listener")
		return nil
	}
	p.msgListener.OnMessage(false, v)
	return nil
}

func (p *Peer) handleRawMessage(payload []byte) error {
	p.logMessage(log.DirectionIn, MessageRawMessage, &log.MessageEvent{})
	if p.cfg.TrafficStatsEnabled {
		p.stats.messagesIn.Add(1)
	}
	if p.msgListener == nil {
		p.debug(DebugWarning, "raw message dropped, no message listener")
		return nil
	}
	p.msgListener.OnMessage(true, bytes.Clone(payload))
	return nil
}

func (p *Peer) handlePingReply(data []byte, now time.Time) {
	serverTime, clientTime, err := DecodePingReply(data)
	if err != nil {
		p.receiveError("ping", err)
		return
	}
	p.applyPing(serverTime, clientTime, now)
}

// applyPing folds a ping result into the RTT estimate and, once per
// session, into the server clock offset.
func (p *Peer) applyPing(serverTime, clientTime int32, now time.Time) {
	nowMs := p.millis(now)
	sample := time.Duration(nowMs-clientTime) * time.Millisecond
	rtt, variance := p.rtt.update(sample)
	p.rtt.syncClock(serverTime, nowMs, sample)

	if p.cfg.TrafficStatsEnabled {
		p.stats.pongsIn.Add(1)
	}
	p.logEvent(log.Event{
		Direction: log.DirectionIn,
		Layer:     log.LayerSession,
		Category:  log.CategoryControl,
		Ping: &log.PingEvent{
			Type:       log.ControlMsgPong,
			RTT:        rtt,
			Variance:   variance,
			Sample:     sample,
			ServerTime: serverTime,
		},
	})
}
