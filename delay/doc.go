// Package delay provides a cancellable delay source: a way to suspend a
// goroutine for a duration, with the ability for any other goroutine to
// wake every in-progress wait early, without races between concurrent
// cancellers and concurrent waiters.
//
// See also [github.com/joeycumines/go-asyncprim/poller], which is built on
// top of a Cancellable for its inter-run waits.
package delay
