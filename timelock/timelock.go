package timelock

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrInvalidArgument is wrapped by New when given a negative lock duration.
var ErrInvalidArgument = errors.New("timelock: invalid argument")

// for testing purposes, overridden in tests to control elapsed time without
// sleeping; mirrors the seam catrate.limiter.go uses for the same reason.
var timeNow = time.Now

// Lock is a time-bounded exclusive lock: at most one Obtain call succeeds
// per LockDuration window, tracked via a single atomic deadline rather than
// a held/blocked state. There is no queueing: a caller that loses the race
// simply gets false back, immediately.
//
// The zero value is not usable; construct with New.
type Lock struct {
	lockDuration  time.Duration
	nextAvailable atomic.Int64 // unix nanoseconds; 0 means unlocked
}

// New returns a Lock that, once obtained, stays held for lockDuration. It
// returns ErrInvalidArgument if lockDuration is negative.
func New(lockDuration time.Duration) (*Lock, error) {
	if lockDuration < 0 {
		return nil, fmt.Errorf("timelock: negative lock duration: %w", ErrInvalidArgument)
	}
	return &Lock{lockDuration: lockDuration}, nil
}

// Obtain returns true and holds the lock for LockDuration if no unexpired
// lock exists; otherwise it returns false. It never blocks.
func (l *Lock) Obtain() bool {
	now := timeNow().UnixNano()
	a := l.nextAvailable.Load()
	if now < a {
		return false
	}
	return l.nextAvailable.CompareAndSwap(a, now+int64(l.lockDuration))
}

// Release unconditionally clears the lock, regardless of who obtained it or
// whether it has expired.
func (l *Lock) Release() {
	l.nextAvailable.Store(0)
}

// LockDuration returns the configured lock duration.
func (l *Lock) LockDuration() time.Duration {
	return l.lockDuration
}
