package gate

import (
	"context"
	"sync"
)

// Manual is a level-triggered broadcast gate, equivalent to a manual-reset
// event: once Set, it stays signalled (every Wait call, present and
// future, returns immediately) until a subsequent Reset.
//
// The zero value is an unsignalled gate, ready to use.
type Manual struct {
	mu      sync.Mutex
	signal  bool
	waiters []chan struct{}
}

// NewManual returns a Manual gate in the given initial state.
func NewManual(signalled bool) *Manual {
	return &Manual{signal: signalled}
}

// Wait blocks until the gate is signalled or ctx is done.
func (g *Manual) Wait(ctx context.Context) error {
	g.mu.Lock()
	if g.signal {
		g.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	g.waiters = append(g.waiters, ch)
	g.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		g.mu.Lock()
		for i, w := range g.waiters {
			if w == ch {
				g.waiters = append(g.waiters[:i], g.waiters[i+1:]...)
				break
			}
		}
		g.mu.Unlock()
		return ctx.Err()
	}
}

// Set signals the gate, releasing every waiter currently parked in Wait and
// leaving the gate signalled for future Wait calls, until Reset.
func (g *Manual) Set() {
	g.mu.Lock()
	g.signal = true
	waiters := g.waiters
	g.waiters = nil
	g.mu.Unlock()

	for _, w := range waiters {
		close(w)
	}
}

// Reset puts the gate back to unsignalled; future Wait calls block again.
func (g *Manual) Reset() {
	g.mu.Lock()
	g.signal = false
	g.mu.Unlock()
}

// IsSignalled reports whether the gate is currently signalled.
func (g *Manual) IsSignalled() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.signal
}
