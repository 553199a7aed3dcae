package peer

import (
	"sync"

	"github.com/KwonJoonSeong2851/-Client-NDG-Network-sub001/pkg/buffer"
)

const messageBufferCapacity = 256

// MessageBufferPool recycles the buffers outgoing frames are built in.
type MessageBufferPool struct {
	mu   sync.Mutex
	free []*buffer.StreamBuffer
}

// NewMessageBufferPool creates an empty pool.
func NewMessageBufferPool() *MessageBufferPool {
	return &MessageBufferPool{}
}

// Get returns an empty buffer, allocating one when the pool is empty.
func (p *MessageBufferPool) Get() *buffer.StreamBuffer {
	p.mu.Lock()
	n := len(p.free)
	if n == 0 {
		p.mu.Unlock()
		return buffer.NewStreamBuffer(messageBufferCapacity)
	}
	b := p.free[n-1]
	p.free[n-1] = nil
	p.free = p.free[:n-1]
	p.mu.Unlock()
	return b
}

// Put resets b and returns it to the pool.
func (p *MessageBufferPool) Put(b *buffer.StreamBuffer) {
	if b == nil {
		return
	}
	b.Reset()
	p.mu.Lock()
	p.free = append(p.free, b)
	p.mu.Unlock()
}

// Len returns the number of idle buffers.
func (p *MessageBufferPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}
