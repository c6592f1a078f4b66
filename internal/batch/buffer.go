package batch

import (
	"sync"

	"github.com/rzbill/tablesink/pkg/store"
)

// DefaultMaxSize is the batch bound the store accepts in one atomic write.
const DefaultMaxSize = 100

// Buffer accumulates entities for the next flush. Drain swaps the live batch
// for a fresh one under the lock, so an append racing a drain lands in
// exactly one of the two batches.
type Buffer struct {
	mu   sync.Mutex
	max  int
	live []store.Entity
}

// NewBuffer creates a Buffer bounded at max entities per batch.
func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = DefaultMaxSize
	}
	return &Buffer{max: max, live: make([]store.Entity, 0, max)}
}

// Append adds e to the live batch and returns the new size. The append that
// fills the batch to its bound detaches it in the same critical section and
// returns it; a fresh batch accepts subsequent appends immediately, so no
// detached batch ever grows past the bound.
func (b *Buffer) Append(e store.Entity) (int, []store.Entity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.live = append(b.live, e)
	n := len(b.live)
	if n >= b.max {
		full := b.live
		b.live = make([]store.Entity, 0, b.max)
		return n, full
	}
	return n, nil
}

// Len returns the live batch size.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

// Full reports whether the live batch reached the bound.
func (b *Buffer) Full() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live) >= b.max
}

// Max returns the batch bound.
func (b *Buffer) Max() int { return b.max }

// Drain atomically detaches the live batch and installs a fresh empty one.
// The returned slice is exclusively owned by the caller; nothing appends to
// it afterwards. Draining an empty buffer returns an empty slice.
func (b *Buffer) Drain() []store.Entity {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.live
	b.live = make([]store.Entity, 0, b.max)
	return out
}
