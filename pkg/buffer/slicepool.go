package buffer

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

// Pool sizing.
const (
	// MinTierExponent is the exponent of the smallest tier (2^7 = 128 bytes).
	MinTierExponent = 7

	// TierCount is the number of tiers.
	TierCount = 32
)

// Slice is a pooled byte slice. Buffer has the tier's full size; Count
// records how many bytes the holder actually uses.
type Slice struct {
	Buffer []byte
	Offset int
	Count  int

	pool     *SlicePool
	tier     int
	released atomic.Bool
}

// Bytes returns the used window Buffer[Offset:Offset+Count].
func (s *Slice) Bytes() []byte {
	return s.Buffer[s.Offset : s.Offset+s.Count]
}

// Release returns the slice to its pool. It reports false if the slice was
// already released or was allocated outside of any tier.
func (s *Slice) Release() bool {
	if s.pool == nil || s.tier < 0 {
		return false
	}
	if !s.released.CompareAndSwap(false, true) {
		return false
	}
	s.pool.put(s)
	return true
}

type tier struct {
	mu   sync.Mutex
	free []*Slice
}

// SlicePool is a tiered free-list allocator for power-of-two byte slices.
// It is safe for concurrent use.
type SlicePool struct {
	tiers       [TierCount]tier
	allocations atomic.Int64
}

// NewSlicePool creates an empty pool.
func NewSlicePool() *SlicePool {
	return &SlicePool{}
}

// tierFor returns the tier index for minSize, or -1 if no tier is big enough.
func tierFor(minSize int) int {
	if minSize <= 1<<MinTierExponent {
		return 0
	}
	exp := bits.Len(uint(minSize - 1))
	t := exp - MinTierExponent
	if t >= TierCount {
		return -1
	}
	return t
}

// TierSize returns the buffer size of tier t.
func TierSize(t int) int {
	return 1 << (MinTierExponent + t)
}

// Acquire returns a slice with at least minSize bytes. Count is set to
// minSize and Offset to zero.
func (p *SlicePool) Acquire(minSize int) *Slice {
	if minSize < 0 {
		minSize = 0
	}
	t := tierFor(minSize)
	if t < 0 {
		p.allocations.Add(1)
		return &Slice{Buffer: make([]byte, minSize), Count: minSize, tier: -1}
	}

	tr := &p.tiers[t]
	tr.mu.Lock()
	var s *Slice
	if n := len(tr.free); n > 0 {
		s = tr.free[n-1]
		tr.free[n-1] = nil
		tr.free = tr.free[:n-1]
	}
	tr.mu.Unlock()

	if s == nil {
		p.allocations.Add(1)
		s = &Slice{Buffer: make([]byte, TierSize(t)), pool: p, tier: t}
	} else {
		s.released.Store(false)
	}
	s.Offset = 0
	s.Count = minSize
	return s
}

// AcquireCopy returns a slice holding a copy of data.
func (p *SlicePool) AcquireCopy(data []byte) *Slice {
	s := p.Acquire(len(data))
	copy(s.Buffer, data)
	return s
}

func (p *SlicePool) put(s *Slice) {
	tr := &p.tiers[s.tier]
	tr.mu.Lock()
	tr.free = append(tr.free, s)
	tr.mu.Unlock()
}

// AllocationCount returns how many slices the pool has allocated since it
// was created. Reused slices are not counted.
func (p *SlicePool) AllocationCount() int64 {
	return p.allocations.Load()
}

// Free returns the number of idle slices held by tier t.
func (p *SlicePool) Free(t int) int {
	if t < 0 || t >= TierCount {
		return 0
	}
	tr := &p.tiers[t]
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return len(tr.free)
}
