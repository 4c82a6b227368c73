// Package poller implements a cancellable periodic runner: a background
// goroutine that invokes a callback on a fixed interval until its parent
// context is done, with an optional initial delay and a manual Wake to
// trigger the next invocation early.
//
// It is built on delay.Cancellable for the interruptible sleep between
// invocations, the same way eventloop layers its scheduling loop on top of
// a lower-level wakeup primitive.
package poller
