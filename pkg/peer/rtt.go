package peer

import (
	"sync"
	"time"
)

// InitialRoundTripTime is the estimate before the first ping result.
const InitialRoundTripTime = 200 * time.Millisecond

// rttEstimator smooths ping samples. Updated from the transport goroutine
// (ping replies) and read from the host.
type rttEstimator struct {
	mu sync.Mutex

	rtt             time.Duration
	variance        time.Duration
	lowest          time.Duration
	highestVariance time.Duration
	samples         int

	// Server clock offset in milliseconds, fixed after the first sample
	// following a reset or refetch.
	offset          int32
	offsetAvailable bool
}

func newRTTEstimator() *rttEstimator {
	e := &rttEstimator{}
	e.reset()
	return e
}

func (e *rttEstimator) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rtt = InitialRoundTripTime
	e.variance = 0
	e.lowest = InitialRoundTripTime
	e.highestVariance = 0
	e.samples = 0
	e.offset = 0
	e.offsetAvailable = false
}

// update folds a sample in. The variance decays by a quarter, then grows by
// a quarter of the absolute deviation.
func (e *rttEstimator) update(sample time.Duration) (rtt, variance time.Duration) {
	if sample < 0 {
		sample = 0
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.variance -= e.variance / 4
	delta := sample - e.rtt
	e.rtt += delta / 8
	if delta < 0 {
		delta = -delta
	}
	e.variance += delta / 4

	if e.samples == 0 || e.rtt < e.lowest {
		e.lowest = e.rtt
	}
	if e.variance > e.highestVariance {
		e.highestVariance = e.variance
	}
	e.samples++
	return e.rtt, e.variance
}

// syncClock sets the server offset unless one is already held.
// remote is the server's timestamp; now is the local timestamp in ms.
func (e *rttEstimator) syncClock(remote, now int32, sample time.Duration) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.offsetAvailable {
		return false
	}
	e.offset = remote + int32(sample.Milliseconds()/2) - now
	e.offsetAvailable = true
	return true
}

func (e *rttEstimator) invalidateClock() {
	e.mu.Lock()
	e.offsetAvailable = false
	e.mu.Unlock()
}

func (e *rttEstimator) serverTime(now int32) (int32, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return now + e.offset, e.offsetAvailable
}

type rttSnapshot struct {
	rtt, variance, lowest, highestVariance time.Duration
	samples                                int
}

func (e *rttEstimator) snapshot() rttSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return rttSnapshot{
		rtt:             e.rtt,
		variance:        e.variance,
		lowest:          e.lowest,
		highestVariance: e.highestVariance,
		samples:         e.samples,
	}
}
