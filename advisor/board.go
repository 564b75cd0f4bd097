package advisor

import (
	"context"
	"sync"
)

// Board holds the latest advice.
//
// Each request gets a token from Issue. Only the answer to the most recent
// token is kept: answers to older requests arriving late are discarded.
type Board struct {
	mu      sync.Mutex
	latest  uint64
	text    string
	pending bool
}

// Issue returns a new request token, superseding all previous ones.
func (b *Board) Issue() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.latest++
	b.pending = true
	return b.latest
}

// Resolve posts the answer of a request. It reports whether the answer was
// kept, that is whether token is still the latest.
func (b *Board) Resolve(token uint64, text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if token != b.latest {
		return false
	}
	b.text = text
	b.pending = false
	return true
}

// State returns the last kept answer and whether a request is in flight.
func (b *Board) State() (text string, pending bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text, b.pending
}

// Go issues a token and runs fn in its own goroutine, resolving the token
// with its result. The returned channel is closed once fn has returned.
func (b *Board) Go(ctx context.Context, fn func(ctx context.Context) string) (uint64, <-chan struct{}) {
	token := b.Issue()
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Resolve(token, fn(ctx))
	}()
	return token, done
}
