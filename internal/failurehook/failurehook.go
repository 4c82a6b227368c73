// Package failurehook implements the unhandled-failure event plumbing shared
// by poller.Runner, sidejob.Job, and workerpool.Pool.
//
// It replaces the exception-event-plus-mutable-handled-flag pattern with a
// plain callback slot (design note §9(a)): a single func(error) bool, which
// may be replaced at any time (the latest registration wins), consulted whenever a
// callback invocation fails. If the hook is unset, or returns false, the
// failure is logged and dropped; the caller of the failing callback never
// sees the error.
package failurehook

import "sync/atomic"

// Hook is a callback slot for routing callback failures out of an
// otherwise-swallowing loop. The zero value has no registered handler.
type Hook struct {
	fn atomic.Pointer[func(error) bool]
}

// Set registers fn as the handler, replacing any previous registration. A
// nil fn clears the registration.
func (h *Hook) Set(fn func(error) bool) {
	if fn == nil {
		h.fn.Store(nil)
		return
	}
	h.fn.Store(&fn)
}

// Report offers err to the registered handler, if any, returning true if the
// handler claimed to have handled it (in which case the caller must not log
// or otherwise surface err itself).
func (h *Hook) Report(err error) (handled bool) {
	p := h.fn.Load()
	if p == nil {
		return false
	}
	return (*p)(err)
}
