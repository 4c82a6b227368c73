// Package timelock provides a time-bounded exclusive lock backed by a
// single atomic deadline: the lock is held exactly while the current time
// is before the deadline set by the last successful Obtain.
//
// The deadline is read from the wall clock (time.Now().UnixNano()), not a
// monotonic clock, so a step in the system clock shortens or lengthens how
// long an obtained lock stays held.
//
// This is the same single-word, CAS-guarded "next allowed" deadline catrate
// uses per rate-limit category, specialized to a single always-on window
// with no sliding history.
package timelock
