// Package dedupe tracks repeated student identifiers within a summary batch.
package dedupe

import (
	"context"
	"sync"
)

// Tracker records seen student IDs so repeated submissions can be flagged
// and filtered. A summary batch is finite and read in one pass, so the
// implementation favors simplicity over eviction policies.
type Tracker interface {
	// SeenAndRecord atomically checks if id was seen and records it if not.
	// Returns true if id was already seen, false if it was newly recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Count returns how many times id has been recorded so far.
	Count(ctx context.Context, id string) int

	Size() int
}

// inMemoryTracker implements Tracker with a plain map guarded by a mutex.
type inMemoryTracker struct {
	mu   sync.Mutex
	seen map[string]int
}

// NewInMemoryTracker creates an empty tracker.
func NewInMemoryTracker() Tracker {
	return &inMemoryTracker{seen: make(map[string]int)}
}

func (t *inMemoryTracker) SeenAndRecord(ctx context.Context, id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := t.seen[id]
	t.seen[id] = n + 1
	return n > 0
}

func (t *inMemoryTracker) Count(ctx context.Context, id string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen[id]
}

func (t *inMemoryTracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}
