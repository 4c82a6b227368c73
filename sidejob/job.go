package sidejob

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-asyncprim/internal/failurehook"
	"github.com/joeycumines/go-asyncprim/internal/obslog"
)

// The job's entire coordination state lives in a single atomic.Int64
// slot. Non-sentinel values are a UnixNano deadline: run the callback no
// earlier than that instant. The sentinels occupy the top of the int64
// range, which no realistic UnixNano deadline reaches.
const (
	idle              int64 = 0
	stateRunImmediate int64 = math.MaxInt64 - 2
	stateRunningRedo  int64 = math.MaxInt64 - 1
	stateRunning      int64 = math.MaxInt64
)

// Callback is invoked once per coalesced run.
type Callback func(ctx context.Context) error

// Option configures optional Job behavior at construction time.
type Option func(*Job)

// WithOnUnhandledFailure installs fn as the unhandled-failure hook before
// the Job's background loop is started, equivalent to calling
// OnUnhandledFailure immediately after New but without a window where a
// failure could occur before the hook is registered.
func WithOnUnhandledFailure(fn func(error) bool) Option {
	return func(j *Job) {
		j.hook.Set(fn)
	}
}

// Job is a coalescing background job: Wake and Delay requests merge into
// at most one pending invocation, queued up behind whichever invocation
// is currently running, if any.
//
// The zero value is not usable; construct with New.
type Job struct {
	parent          context.Context
	defaultInterval time.Duration
	callback        Callback
	hook            failurehook.Hook

	slot atomic.Int64
	wake chan struct{}

	completed atomic.Bool
	doneCh    chan struct{}
}

// New constructs a Job bound to parent and starts its background loop.
// defaultInterval is the delay Delay uses when called with no explicit
// duration. Neither parent nor callback may be nil.
func New(parent context.Context, defaultInterval time.Duration, callback Callback, opts ...Option) *Job {
	if parent == nil {
		panic("sidejob: nil parent")
	}
	if callback == nil {
		panic("sidejob: nil callback")
	}
	j := &Job{
		parent:          parent,
		defaultInterval: defaultInterval,
		callback:        callback,
		wake:            make(chan struct{}, 1),
		doneCh:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(j)
	}
	go j.loop()
	return j
}

// OnUnhandledFailure installs fn to be called whenever the callback
// returns an error or panics. If fn returns false, or no hook is
// installed, the failure is logged and otherwise swallowed.
func (j *Job) OnUnhandledFailure(fn func(error) bool) {
	j.hook.Set(fn)
}

// Wake requests an immediate run, coalescing with any run already pending
// or in progress: if the job is idle or has a future-scheduled run, that
// is upgraded to run immediately. If a run is already in progress, a
// single further run is guaranteed after it finishes, rearmed at the
// default interval exactly as a bare Delay call would; any other pending
// or in-progress state is left untouched, since it already implies an
// equal-or-sooner run is coming.
func (j *Job) Wake() {
	for {
		cur := j.slot.Load()
		switch cur {
		case stateRunning:
			if j.slot.CompareAndSwap(cur, stateRunningRedo) {
				return
			}
		case stateRunningRedo, stateRunImmediate:
			return
		default:
			if j.slot.CompareAndSwap(cur, stateRunImmediate) {
				j.notify()
				return
			}
		}
	}
}

// Delay requests a run no earlier than d from now (or the configured
// default interval, if d is omitted). Among the job's idle or
// future-scheduled states, the latest requested deadline always wins,
// which makes repeated Delay calls behave as a debounce: a burst of calls
// in quick succession results in exactly one run, timed from the last
// call in the burst. A run that is already immediate, or in progress,
// takes priority and is left untouched, except that a run already in
// progress still has exactly one further run queued behind it.
func (j *Job) Delay(d ...time.Duration) {
	dur := j.defaultInterval
	if len(d) > 0 {
		dur = d[0]
	}
	target := time.Now().Add(dur).UnixNano()

	for {
		cur := j.slot.Load()
		switch cur {
		case stateRunning:
			if j.slot.CompareAndSwap(cur, stateRunningRedo) {
				return
			}
		case stateRunningRedo, stateRunImmediate:
			return
		default:
			if cur > target {
				return // a later deadline is already pending; it wins
			}
			if j.slot.CompareAndSwap(cur, target) {
				j.notify()
				return
			}
		}
	}
}

func (j *Job) notify() {
	select {
	case j.wake <- struct{}{}:
	default:
	}
}

func (j *Job) loop() {
	defer func() {
		j.completed.Store(true)
		close(j.doneCh)
	}()
	for {
		if j.parent.Err() != nil {
			return
		}

		cur := j.slot.Load()
		switch {
		case cur == idle:
			select {
			case <-j.wake:
			case <-j.parent.Done():
				return
			}

		case cur == stateRunImmediate:
			if j.slot.CompareAndSwap(stateRunImmediate, stateRunning) {
				j.runOnce()
			}

		case cur == stateRunning || cur == stateRunningRedo:
			// unreachable in normal operation: the loop only observes
			// these states while runOnce/exitRun, further up its own call
			// stack, are resolving them. Guard against it anyway, rather
			// than busy-spin on a state we don't expect.
			obslog.Warn("sidejob", "loop observed a running state outside of runOnce")
			return

		default: // a scheduled deadline
			d := time.Until(time.Unix(0, cur))
			if d <= 0 {
				if j.slot.CompareAndSwap(cur, stateRunning) {
					j.runOnce()
				}
				continue
			}
			timer := time.NewTimer(d)
			select {
			case <-timer.C:
				if j.slot.CompareAndSwap(cur, stateRunning) {
					j.runOnce()
				}
			case <-j.wake:
				timer.Stop()
			case <-j.parent.Done():
				timer.Stop()
				return
			}
		}
	}
}

func (j *Job) runOnce() {
	defer j.exitRun()
	defer func() {
		if rec := recover(); rec != nil {
			j.reportFailure(fmt.Errorf("sidejob: callback panic: %v", rec))
		}
	}()
	if err := j.callback(j.parent); err != nil {
		j.reportFailure(err)
	}
}

func (j *Job) exitRun() {
	for {
		cur := j.slot.Load()
		switch cur {
		case stateRunningRedo:
			// a reschedule was requested mid-run: rearm for one more run
			// at the default interval, same as a fresh Delay call, rather
			// than running again immediately.
			target := time.Now().Add(j.defaultInterval).UnixNano()
			if j.slot.CompareAndSwap(cur, target) {
				j.notify()
				return
			}
		case stateRunning:
			if j.slot.CompareAndSwap(cur, idle) {
				return
			}
		default:
			obslog.Warn("sidejob", "observed an unexpected state on run exit")
			return
		}
	}
}

func (j *Job) reportFailure(err error) {
	if !j.hook.Report(err) {
		obslog.WarnErr("sidejob", "unhandled callback failure", err)
	}
}

// IsBusy reports whether the callback is currently executing.
func (j *Job) IsBusy() bool {
	s := j.slot.Load()
	return s == stateRunning || s == stateRunningRedo
}

// IsScheduled reports whether a future-dated run is pending (neither
// idle, immediate, nor in progress).
func (j *Job) IsScheduled() bool {
	s := j.slot.Load()
	return s != idle && s != stateRunImmediate && s != stateRunning && s != stateRunningRedo
}

// IsIdle reports whether the job has no pending or in-progress run.
func (j *Job) IsIdle() bool {
	return j.slot.Load() == idle
}

// IsCompleted reports whether the Job's background loop has exited,
// which only happens once the parent context is done.
func (j *Job) IsCompleted() bool {
	return j.completed.Load()
}

// IsCancelled reports whether the parent context is done.
func (j *Job) IsCancelled() bool {
	return j.parent.Err() != nil
}

// Done returns a channel that is closed once the job's background loop
// exits, which only happens once the parent context is done.
func (j *Job) Done() <-chan struct{} {
	return j.doneCh
}
