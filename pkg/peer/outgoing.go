package peer

import (
	"fmt"
	"time"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/log"
	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/wire"
)

// EnqueueOperation queues an operation request. It returns false when the
// peer is not connected, the channel is out of range, encryption was
// requested before it is available, or the parameters cannot be serialized.
func (p *Peer) EnqueueOperation(params wire.ParameterDictionary, opCode byte, opts SendOptions) bool {
	p.enqueueMu.Lock()
	defer p.enqueueMu.Unlock()

	req := &wire.OperationRequest{OperationCode: opCode, Parameters: params}
	ev := &log.MessageEvent{
		Code:           opCode,
		ParameterCount: len(params),
		Parameters:     describeParameters(params),
	}
	ok := p.enqueue(MessageOperation, opts, false, ev, func(buf *buffer.StreamBuffer) error {
		return p.codec.SerializeOperationRequest(buf, req, false)
	})
	if ok && p.cfg.TrafficStatsEnabled {
		p.stats.operationsOut.Add(1)
	}
	return ok
}

// EnqueueMessage queues a free-form tagged value.
func (p *Peer) EnqueueMessage(message any, opts SendOptions) bool {
	ok := p.enqueue(MessageMessage, opts, false, &log.MessageEvent{}, func(buf *buffer.StreamBuffer) error {
		return p.codec.Serialize(buf, message, true)
	})
	if ok && p.cfg.TrafficStatsEnabled {
		p.stats.messagesOut.Add(1)
	}
	return ok
}

// EnqueueRawMessage queues opaque bytes.
func (p *Peer) EnqueueRawMessage(data []byte, opts SendOptions) bool {
	ok := p.enqueue(MessageRawMessage, opts, false, &log.MessageEvent{}, func(buf *buffer.StreamBuffer) error {
		_, err := buf.Write(data)
		return err
	})
	if ok && p.cfg.TrafficStatsEnabled {
		p.stats.messagesOut.Add(1)
	}
	return ok
}

// enqueueInternal queues an internal operation request.
func (p *Peer) enqueueInternal(opCode byte, params wire.ParameterDictionary) bool {
	req := &wire.OperationRequest{OperationCode: opCode, Parameters: params}
	ev := &log.MessageEvent{Code: opCode, ParameterCount: len(params)}
	return p.enqueue(MessageInternalOperationRequest, SendReliable, true, ev, func(buf *buffer.StreamBuffer) error {
		return p.codec.SerializeOperationRequest(buf, req, false)
	})
}

// enqueue frames one message and appends it to the outgoing queue.
func (p *Peer) enqueue(mt MessageType, opts SendOptions, internal bool, ev *log.MessageEvent, body func(*buffer.StreamBuffer) error) bool {
	if err := p.checkSend(mt, opts, internal); err != nil {
		p.sendError(err)
		return false
	}

	buf := p.buffers.Get()
	beginFrame(buf, opts, mt)
	if err := body(buf); err != nil {
		p.buffers.Put(buf)
		p.debug(DebugError, "serialize %s: %v", mt, err)
		p.logError(log.LayerWire, "serialize "+mt.String(), err)
		return false
	}
	if opts.Encrypt {
		if err := p.seal(buf); err != nil {
			p.buffers.Put(buf)
			p.debug(DebugError, "encrypt %s: %v", mt, err)
			return false
		}
	}
	if buf.Len() > p.cfg.MaxFrameSize {
		p.buffers.Put(buf)
		p.debug(DebugError, "%s: %v", mt, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, buf.Len(), p.cfg.MaxFrameSize))
		return false
	}
	finishFrame(buf)

	p.outMu.Lock()
	p.outgoing = append(p.outgoing, buf)
	p.outMu.Unlock()

	if ev != nil {
		ev.Encrypted = opts.Encrypt
		p.logMessage(log.DirectionOut, mt, ev)
	}
	return true
}

// checkSend validates session state and options for an enqueue.
func (p *Peer) checkSend(mt MessageType, opts SendOptions, internal bool) error {
	st := p.State()
	switch {
	case st == StateConnected:
	case internal && st == StateConnecting:
	default:
		return fmt.Errorf("cannot send %s while %s", mt, st)
	}
	if int(opts.Channel) >= p.cfg.ChannelCount {
		return fmt.Errorf("cannot send %s on channel %d, channel count is %d", mt, opts.Channel, p.cfg.ChannelCount)
	}
	if opts.Encrypt && !p.IsEncryptionAvailable() {
		return fmt.Errorf("cannot send %s encrypted before encryption is established", mt)
	}
	return nil
}

// sendError reports a rejected enqueue.
func (p *Peer) sendError(err error) {
	p.debug(DebugError, "%v", err)
	p.logError(log.LayerSession, "enqueue", err)
	p.queueStatus(StatusSendError)
	if p.cfg.TrafficStatsEnabled {
		p.stats.sendErrors.Add(1)
	}
}

// SendOutgoingCommands writes every queued frame to the transport, then
// sends a ping if PingInterval has elapsed. It reports whether any frame
// was written.
func (p *Peer) SendOutgoingCommands() bool {
	st := p.State()
	if st != StateConnecting && st != StateConnected {
		return false
	}

	p.outMu.Lock()
	batch := p.outgoing
	p.outgoing = nil
	p.outMu.Unlock()

	sent := false
	for i, buf := range batch {
		data := buf.Bytes()
		if err := p.transport.Send(data); err != nil {
			p.debug(DebugError, "send failed: %v", err)
			p.logError(log.LayerTransport, "send", err)
			p.queueStatus(StatusSendError)
			if p.cfg.TrafficStatsEnabled {
				p.stats.sendErrors.Add(1)
			}
			for _, rest := range batch[i:] {
				p.buffers.Put(rest)
			}
			return sent
		}
		sent = true
		p.logFrame(log.DirectionOut, data)
		if p.cfg.TrafficStatsEnabled {
			p.stats.sent(len(data), p.timeNow())
		}
		p.buffers.Put(buf)
	}

	if st == StateConnected {
		p.pingIfDue()
	}
	return sent
}

// SendAcksOnly exists for the reliable UDP transport. Stream transports
// have nothing to acknowledge.
func (p *Peer) SendAcksOnly() bool {
	return false
}

// FetchServerTimestamp discards the server clock offset and pings so the
// next result establishes a fresh one.
func (p *Peer) FetchServerTimestamp() {
	p.rtt.invalidateClock()
	if p.State() != StateConnected {
		return
	}
	p.sendPing(p.timeNow())
}

func (p *Peer) pingIfDue() {
	now := p.timeNow()
	if last := p.lastPing.Load(); last != 0 && now.Sub(time.Unix(0, last)) < p.cfg.PingInterval {
		return
	}
	p.sendPing(now)
}

// sendPing writes a ping directly to the transport, bypassing the queue.
func (p *Peer) sendPing(now time.Time) {
	p.lastPing.Store(now.UnixNano())
	ms := p.millis(now)

	var data []byte
	if p.cfg.Protocol.IsWebSocket() {
		body := buffer.NewStreamBuffer(16)
		req := &wire.OperationRequest{
			OperationCode: InternalOpPing,
			Parameters:    wire.ParameterDictionary{ParamClientTime: ms},
		}
		if err := p.codec.SerializeOperationRequest(body, req, false); err != nil {
			p.debug(DebugError, "ping: %v", err)
			return
		}
		data = AppendFrame(nil, 0, DeliveryReliable, MessageInternalOperationRequest, false, body.Bytes())
	} else {
		data = EncodePingRequest(ms)
	}

	if err := p.transport.Send(data); err != nil {
		p.debug(DebugWarning, "ping failed: %v", err)
		return
	}
	if p.cfg.TrafficStatsEnabled {
		p.stats.pingsOut.Add(1)
		p.stats.sent(len(data), now)
	}
	p.logEvent(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerSession,
		Category:  log.CategoryControl,
		Ping:      &log.PingEvent{Type: log.ControlMsgPing},
	})
}
