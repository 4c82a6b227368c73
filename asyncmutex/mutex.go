package asyncmutex

import (
	"context"
	"sync"
)

// Mutex is a FIFO asynchronous mutual exclusion lock. Unlike sync.Mutex, an
// Acquire call that must wait does not pin an OS thread: it parks on a
// channel until a Release hands ownership to it.
//
// The zero value is not usable; construct with New.
type Mutex struct {
	mu        sync.Mutex
	signalled bool // true: free
	waiters   []chan struct{}
}

// New returns an unheld Mutex.
func New() *Mutex {
	return &Mutex{signalled: true}
}

// Acquire blocks until the mutex is free or ctx is done. On success it
// returns a Release capability that must be used to give the mutex up; on
// failure (ctx done before acquisition) it returns a nil Release and ctx's
// error, and the queued waiter is either removed or, if it was granted
// concurrently with cancellation, immediately handed to the next waiter.
func (m *Mutex) Acquire(ctx context.Context) (*Release, error) {
	m.mu.Lock()
	if m.signalled {
		m.signalled = false
		m.mu.Unlock()
		return &Release{m: m}, nil
	}
	ch := make(chan struct{})
	m.waiters = append(m.waiters, ch)
	m.mu.Unlock()

	select {
	case <-ch:
		return &Release{m: m}, nil
	case <-ctx.Done():
		if m.abandon(ch) {
			return nil, ctx.Err()
		}
		// granted concurrently with cancellation; the caller that lost the
		// race to ctx never gets to use it, so pass it straight on.
		(&Release{m: m}).Release()
		return nil, ctx.Err()
	}
}

// abandon removes ch from the waiter queue, reporting whether it was still
// queued (as opposed to already dequeued by a concurrent Release).
func (m *Mutex) abandon(ch chan struct{}) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, w := range m.waiters {
		if w == ch {
			m.waiters = append(m.waiters[:i], m.waiters[i+1:]...)
			return true
		}
	}
	return false
}

// Release is a single-use capability returned by Acquire, granting the
// right to release the mutex once. Subsequent calls are no-ops.
type Release struct {
	m    *Mutex
	once sync.Once
}

// Release gives the mutex up, handing it directly to the oldest waiter (if
// any) or marking it free. Calling Release more than once is a no-op.
func (r *Release) Release() {
	r.once.Do(func() {
		m := r.m
		m.mu.Lock()
		if len(m.waiters) > 0 {
			next := m.waiters[0]
			m.waiters = m.waiters[1:]
			m.mu.Unlock()
			close(next)
			return
		}
		m.signalled = true
		m.mu.Unlock()
	})
}
