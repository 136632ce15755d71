// Package sampling hands out random chunks of a filtered photo view without
// repeating a photo until every photo in the view has been shown.
package sampling

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"photo-index/internal/metrics"
	"photo-index/internal/photoindex"
)

// Signature identifies a filtered view.
type Signature struct {
	From     int
	To       int
	HasFaces bool
}

// String renders the signature as "<from>-<to>-<hasFaces>".
func (s Signature) String() string {
	return fmt.Sprintf("%d-%d-%t", s.From, s.To, s.HasFaces)
}

// Buffer remembers, per signature, which positions of the view have been
// served.
type Buffer struct {
	mu     sync.Mutex
	rng    *rand.Rand
	served map[Signature]map[int]struct{}
}

// New creates a buffer drawing from rng. A nil rng uses a randomly seeded
// source.
func New(rng *rand.Rand) *Buffer {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Buffer{rng: rng, served: make(map[Signature]map[int]struct{})}
}

// NextChunk draws up to size unserved entries of view, uniformly and
// without replacement, and returns them in draw order. The signature's state
// is reset first when reset is set or every position has been served.
func (b *Buffer) NextChunk(sig Signature, view []photoindex.Entry, size int, reset bool) []photoindex.Entry {
	if size <= 0 {
		return []photoindex.Entry{}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	served := b.served[sig]
	switch {
	case served == nil:
		served = make(map[int]struct{})
		b.served[sig] = served
	case reset:
		clear(served)
		metrics.SamplingResetsTotal.WithLabelValues("requested").Inc()
	case len(served) >= len(view):
		clear(served)
		metrics.SamplingResetsTotal.WithLabelValues("exhausted").Inc()
	}

	available := make([]int, 0, len(view))
	for i := range view {
		if _, ok := served[i]; !ok {
			available = append(available, i)
		}
	}
	if len(available) == 0 {
		return []photoindex.Entry{}
	}

	n := min(size, len(available))
	for i := 0; i < n; i++ {
		j := i + b.rng.IntN(len(available)-i)
		available[i], available[j] = available[j], available[i]
	}

	chunk := make([]photoindex.Entry, n)
	for k, pos := range available[:n] {
		served[pos] = struct{}{}
		chunk[k] = view[pos]
	}
	metrics.SamplingChunksTotal.Inc()
	return chunk
}

// Served returns how many positions of sig have been handed out since its
// last reset.
func (b *Buffer) Served(sig Signature) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.served[sig])
}

// Clear forgets the state of one signature.
func (b *Buffer) Clear(sig Signature) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.served, sig)
}

// ClearAll forgets every signature.
func (b *Buffer) ClearAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.served = make(map[Signature]map[int]struct{})
	metrics.SamplingResetsTotal.WithLabelValues("clear_all").Inc()
}
