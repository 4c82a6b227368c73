package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/exp/slices"

	"github.com/joeycumines/go-asyncprim/internal/failurehook"
	"github.com/joeycumines/go-asyncprim/internal/obslog"
)

// ErrInvalidArgument is wrapped by New when given a non-positive
// maxWorkers.
var ErrInvalidArgument = errors.New("workerpool: invalid argument")

// Handler processes a single enqueued item. A non-nil return value is
// treated as an unhandled failure (see OnUnhandledFailure); it never
// removes the worker from the pool.
type Handler[T any] func(ctx context.Context, item T) error

// Options holds the resolved optional configuration for a Pool.
type Options[T any] struct {
	// Interval is the gap a worker waits, after handling one item, before
	// handling the next item it dequeues. A worker spawned after the queue
	// ran empty handles its first item without waiting. It only has an
	// effect when the Pool is constructed with maxWorkers == 1: a pool
	// with more than one worker has no single drain loop to space out.
	Interval time.Duration
}

// Option configures optional Pool behavior at construction time.
type Option[T any] func(*Options[T])

// WithInterval sets the gap a single-worker Pool waits between consecutive
// items of one drain pass (see Options.Interval).
func WithInterval[T any](d time.Duration) Option[T] {
	return func(o *Options[T]) {
		o.Interval = d
	}
}

// Pool is a bounded worker pool: items are enqueued onto a FIFO queue, and
// up to maxWorkers goroutines are spawned on demand to drain it. A worker
// exits once the queue is empty, and is respawned the next time work
// arrives; the pool never holds more than maxWorkers goroutines, and
// never fewer than are needed to drain a non-empty queue (baring the
// parent context being done).
//
// The zero value is not usable; construct with New.
type Pool[T any] struct {
	parent   context.Context
	max      int32
	handler  Handler[T]
	interval time.Duration
	hook     failurehook.Hook

	mu    sync.Mutex
	queue []T

	active atomic.Int32
}

// New constructs a Pool bound to parent, with a cap of maxWorkers
// concurrently-running handler invocations. Neither parent nor handler
// may be nil. It returns ErrInvalidArgument if maxWorkers is not
// positive.
func New[T any](parent context.Context, maxWorkers int, handler Handler[T], opts ...Option[T]) (*Pool[T], error) {
	if parent == nil {
		panic("workerpool: nil parent")
	}
	if handler == nil {
		panic("workerpool: nil handler")
	}
	if maxWorkers <= 0 {
		return nil, fmt.Errorf("workerpool: non-positive maxWorkers: %w", ErrInvalidArgument)
	}
	var o Options[T]
	for _, opt := range opts {
		opt(&o)
	}
	return &Pool[T]{
		parent:   parent,
		max:      int32(maxWorkers),
		handler:  handler,
		interval: o.Interval,
	}, nil
}

// OnUnhandledFailure installs fn to be called whenever the handler
// returns an error or panics. If fn returns false, or no hook is
// installed, the failure is logged and otherwise swallowed: a failing
// item never stops the worker that processed it.
func (p *Pool[T]) OnUnhandledFailure(fn func(error) bool) {
	p.hook.Set(fn)
}

// Enqueue appends items to the queue and ensures a worker is running (or
// about to be spawned) to process them, up to the configured cap. It is a
// no-op once the parent context is done.
func (p *Pool[T]) Enqueue(items ...T) {
	if len(items) == 0 || p.parent.Err() != nil {
		return
	}
	p.mu.Lock()
	p.queue = append(p.queue, items...)
	p.mu.Unlock()
	p.maybeSpawn()
}

// maybeSpawn starts a worker if there is queued work and the active
// count is below the cap. It is also called by a worker right after it
// decrements the active count on exit, closing the race where work is
// enqueued in the narrow window between a worker observing an empty
// queue and that worker actually being counted as gone.
func (p *Pool[T]) maybeSpawn() {
	for {
		p.mu.Lock()
		empty := len(p.queue) == 0
		p.mu.Unlock()
		if empty {
			return
		}
		cur := p.active.Load()
		if cur >= p.max {
			return
		}
		if p.active.CompareAndSwap(cur, cur+1) {
			go p.worker()
			return
		}
	}
}

func (p *Pool[T]) worker() {
	first := true
	for {
		if p.parent.Err() != nil {
			p.active.Add(-1)
			return
		}
		item, ok := p.dequeue()
		if !ok {
			p.active.Add(-1)
			p.maybeSpawn()
			return
		}
		if !first && p.max == 1 && p.interval > 0 {
			if !p.sleepInterval() {
				p.active.Add(-1)
				return
			}
		}
		first = false
		p.run(item)
	}
}

// sleepInterval waits out the configured inter-item interval, returning
// false early if the parent context ends first.
func (p *Pool[T]) sleepInterval() bool {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-p.parent.Done():
		return false
	}
}

func (p *Pool[T]) dequeue() (T, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		var zero T
		return zero, false
	}
	item := p.queue[0]
	p.queue = slices.Delete(p.queue, 0, 1)
	return item, true
}

func (p *Pool[T]) run(item T) {
	defer func() {
		if rec := recover(); rec != nil {
			p.reportFailure(fmt.Errorf("workerpool: handler panic: %v", rec))
		}
	}()
	if err := p.handler(p.parent, item); err != nil {
		p.reportFailure(err)
	}
}

func (p *Pool[T]) reportFailure(err error) {
	if !p.hook.Report(err) {
		obslog.WarnErr("workerpool", "unhandled handler failure", err)
	}
}

// Count returns the number of items currently queued, awaiting a worker.
// It does not include an item a worker is presently handling.
func (p *Pool[T]) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// IsActive reports whether at least one worker goroutine is currently
// running.
func (p *Pool[T]) IsActive() bool {
	return p.active.Load() > 0
}

// IsCancelled reports whether the parent context is done.
func (p *Pool[T]) IsCancelled() bool {
	return p.parent.Err() != nil
}
