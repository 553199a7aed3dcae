package peer

import (
	"sync/atomic"
	"time"
)

// TrafficStats is a point-in-time copy of a peer's traffic counters.
type TrafficStats struct {
	BytesOut  int64
	BytesIn   int64
	FramesOut int64
	FramesIn  int64

	OperationsOut int64
	MessagesOut   int64
	ResponsesIn   int64
	EventsIn      int64
	MessagesIn    int64

	PingsOut int64
	PongsIn  int64

	DecodeErrors int64
	SendErrors   int64

	LastSend    time.Time
	LastReceive time.Time

	// LongestDispatchGap is the longest time between two dispatch calls.
	LongestDispatchGap time.Duration

	// Since is when counting started.
	Since time.Time
}

type trafficCounters struct {
	bytesOut, bytesIn                 atomic.Int64
	framesOut, framesIn               atomic.Int64
	operationsOut, messagesOut        atomic.Int64
	responsesIn, eventsIn, messagesIn atomic.Int64
	pingsOut, pongsIn                 atomic.Int64
	decodeErrors, sendErrors          atomic.Int64

	lastSend, lastReceive atomic.Int64 // unix nanos
	lastDispatch          atomic.Int64
	longestDispatchGap    atomic.Int64
	since                 atomic.Int64
}

func (c *trafficCounters) reset(now time.Time) {
	for _, v := range []*atomic.Int64{
		&c.bytesOut, &c.bytesIn, &c.framesOut, &c.framesIn,
		&c.operationsOut, &c.messagesOut, &c.responsesIn, &c.eventsIn, &c.messagesIn,
		&c.pingsOut, &c.pongsIn, &c.decodeErrors, &c.sendErrors,
		&c.lastSend, &c.lastReceive, &c.lastDispatch, &c.longestDispatchGap,
	} {
		v.Store(0)
	}
	c.since.Store(now.UnixNano())
}

func (c *trafficCounters) sent(n int, now time.Time) {
	c.bytesOut.Add(int64(n))
	c.framesOut.Add(1)
	c.lastSend.Store(now.UnixNano())
}

func (c *trafficCounters) received(n int, now time.Time) {
	c.bytesIn.Add(int64(n))
	c.framesIn.Add(1)
	c.lastReceive.Store(now.UnixNano())
}

func (c *trafficCounters) dispatched(now time.Time) {
	ns := now.UnixNano()
	prev := c.lastDispatch.Swap(ns)
	if prev == 0 {
		return
	}
	gap := ns - prev
	for {
		cur := c.longestDispatchGap.Load()
		if gap <= cur || c.longestDispatchGap.CompareAndSwap(cur, gap) {
			return
		}
	}
}

func (c *trafficCounters) snapshot() TrafficStats {
	return TrafficStats{
		BytesOut:           c.bytesOut.Load(),
		BytesIn:            c.bytesIn.Load(),
		FramesOut:          c.framesOut.Load(),
		FramesIn:           c.framesIn.Load(),
		OperationsOut:      c.operationsOut.Load(),
		MessagesOut:        c.messagesOut.Load(),
		ResponsesIn:        c.responsesIn.Load(),
		EventsIn:           c.eventsIn.Load(),
		MessagesIn:         c.messagesIn.Load(),
		PingsOut:           c.pingsOut.Load(),
		PongsIn:            c.pongsIn.Load(),
		DecodeErrors:       c.decodeErrors.Load(),
		SendErrors:         c.sendErrors.Load(),
		LastSend:           unixTime(c.lastSend.Load()),
		LastReceive:        unixTime(c.lastReceive.Load()),
		LongestDispatchGap: time.Duration(c.longestDispatchGap.Load()),
		Since:              unixTime(c.since.Load()),
	}
}

func unixTime(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
