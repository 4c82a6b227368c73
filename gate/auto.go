package gate

import (
	"context"
	"sync"
)

// Auto is a one-at-a-time hand-off gate, equivalent to an auto-reset
// event: each Set call releases exactly one waiter if any are queued, or
// else banks a single permit consumed by the next Wait. A Wait that
// consumes a banked permit returns immediately and does not affect any
// other waiter.
//
// The zero value is an unsignalled gate with no banked permit, ready to
// use.
type Auto struct {
	mu      sync.Mutex
	permit  bool
	waiters []chan struct{}
}

// NewAuto returns an Auto gate with the given initial permit state.
func NewAuto(signalled bool) *Auto {
	return &Auto{permit: signalled}
}

// Wait blocks until a permit is available (banked or from a future Set)
// or ctx is done. On success it consumes exactly one permit.
func (g *Auto) Wait(ctx context.Context) error {
	g.mu.Lock()
	if g.permit {
		g.permit = false
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
				g.mu.Unlock()
				return ctx.Err()
			}
		}
		// lost the race: already handed a permit concurrently with
		// cancellation; pass it on rather than drop it.
		g.permit = true
		g.mu.Unlock()
		return ctx.Err()
	}
}

// Set hands a single permit to the oldest queued waiter, or banks it for
// the next Wait if no waiter is queued. Calling Set when a permit is
// already banked is a no-op: at most one permit is ever outstanding.
func (g *Auto) Set() {
	g.mu.Lock()
	if len(g.waiters) > 0 {
		next := g.waiters[0]
		g.waiters = g.waiters[1:]
		g.mu.Unlock()
		close(next)
		return
	}
	g.permit = true
	g.mu.Unlock()
}

// Reset clears any banked permit without affecting queued waiters.
func (g *Auto) Reset() {
	g.mu.Lock()
	g.permit = false
	g.mu.Unlock()
}
