// Package sidejob implements a coalescing background job: Wake and Delay
// requests to run a callback are merged into a single pending invocation,
// so that no matter how many times either is called, at most one run is
// ever queued up behind the one currently executing.
//
// The entire coordination state — idle, scheduled-for-time-t,
// run-immediately, running, and running-with-a-reschedule-pending — is
// packed into a single atomic.Int64, following the same single-word
// CAS-state-machine technique catrate.Limiter uses for its rate window.
package sidejob
