package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-asyncprim/delay"
	"github.com/joeycumines/go-asyncprim/internal/failurehook"
	"github.com/joeycumines/go-asyncprim/internal/obslog"
)

// ErrAlreadyStarted is returned by Start and StartAfter on any call after
// the first.
var ErrAlreadyStarted = errors.New("poller: already started")

// ErrNotStarted is returned by Wake when called before Start or
// StartAfter.
var ErrNotStarted = errors.New("poller: not started")

// Callback is invoked once per tick. A non-nil return value is treated as
// an unhandled failure (see OnUnhandledFailure); it never stops the
// Runner.
type Callback func(ctx context.Context) error

// Option configures optional Runner behavior at construction time.
type Option func(*Runner)

// WithOnUnhandledFailure installs fn as the unhandled-failure hook before
// the Runner is constructed, equivalent to calling OnUnhandledFailure
// immediately after New but without a window where a failure could occur
// before the hook is registered.
func WithOnUnhandledFailure(fn func(error) bool) Option {
	return func(r *Runner) {
		r.hook.Set(fn)
	}
}

// Runner periodically invokes a Callback until its parent context is done.
// The zero value is not usable; construct with New.
type Runner struct {
	parent   context.Context
	interval time.Duration
	callback Callback
	hook     failurehook.Hook

	mu      sync.Mutex
	started bool
	d       *delay.Cancellable

	busy      atomic.Bool
	completed atomic.Bool
	doneCh    chan struct{}
}

// New constructs a Runner bound to parent. Neither parent nor callback may
// be nil. interval must be positive; invocations recur every interval
// after the first, measured from the end of one invocation to the start
// of the next.
func New(parent context.Context, interval time.Duration, callback Callback, opts ...Option) *Runner {
	if parent == nil {
		panic("poller: nil parent")
	}
	if callback == nil {
		panic("poller: nil callback")
	}
	if interval <= 0 {
		panic("poller: non-positive interval")
	}
	r := &Runner{
		parent:   parent,
		interval: interval,
		callback: callback,
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnUnhandledFailure installs fn to be called whenever the callback
// returns an error or panics. If fn returns false, or no hook is
// installed, the failure is logged and otherwise swallowed: a failing
// invocation never stops the Runner.
func (r *Runner) OnUnhandledFailure(fn func(error) bool) {
	r.hook.Set(fn)
}

// Start begins invoking the callback immediately, then every interval,
// until the parent context is done. It returns ErrAlreadyStarted if
// Start or StartAfter has already been called.
func (r *Runner) Start() error {
	return r.start(0)
}

// StartAfter behaves like Start, except the first invocation is delayed
// by initialDelay. If the parent context is done before initialDelay
// elapses, the Runner completes without ever invoking the callback. It
// returns ErrAlreadyStarted if Start or StartAfter has already been
// called.
func (r *Runner) StartAfter(initialDelay time.Duration) error {
	return r.start(initialDelay)
}

func (r *Runner) start(initialDelay time.Duration) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.d = delay.New(r.parent)
	r.mu.Unlock()

	go r.loop(initialDelay)
	return nil
}

func (r *Runner) loop(initialDelay time.Duration) {
	defer func() {
		r.completed.Store(true)
		close(r.doneCh)
	}()

	if initialDelay > 0 {
		if err := r.d.Wait(context.Background(), initialDelay); err != nil {
			return // parent cancelled during the initial wait
		}
	}

	for r.parent.Err() == nil {
		r.runOnce()
		if r.parent.Err() != nil {
			return
		}
		if err := r.d.Wait(context.Background(), r.interval); err != nil {
			return
		}
	}
}

func (r *Runner) runOnce() {
	r.busy.Store(true)
	defer r.busy.Store(false)
	defer func() {
		if rec := recover(); rec != nil {
			r.reportFailure(fmt.Errorf("poller: callback panic: %v", rec))
		}
	}()
	if err := r.callback(r.parent); err != nil {
		r.reportFailure(err)
	}
}

func (r *Runner) reportFailure(err error) {
	if !r.hook.Report(err) {
		obslog.WarnErr("poller", "unhandled callback failure", err)
	}
}

// Wake causes the Runner, if currently waiting between invocations, to
// invoke the callback immediately instead of waiting out the remainder of
// the interval. It returns ErrNotStarted if called before Start or
// StartAfter. It has no effect if the Runner is currently running the
// callback, or has already completed.
func (r *Runner) Wake() error {
	r.mu.Lock()
	d := r.d
	started := r.started
	r.mu.Unlock()
	if !started {
		return ErrNotStarted
	}
	d.Cancel()
	return nil
}

// IsStarted reports whether Start or StartAfter has been called.
func (r *Runner) IsStarted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// IsBusy reports whether the callback is currently executing.
func (r *Runner) IsBusy() bool {
	return r.busy.Load()
}

// IsCompleted reports whether the Runner's loop goroutine has exited,
// which only happens once the parent context is done.
func (r *Runner) IsCompleted() bool {
	return r.completed.Load()
}

// IsCancelled reports whether the parent context is done.
func (r *Runner) IsCancelled() bool {
	return r.parent.Err() != nil
}

// IsActive reports whether the Runner is started and has not yet
// completed.
func (r *Runner) IsActive() bool {
	return r.IsStarted() && !r.IsCompleted()
}

// Done returns a channel that is closed once the Runner completes.
func (r *Runner) Done() <-chan struct{} {
	return r.doneCh
}
