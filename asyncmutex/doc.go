// Package asyncmutex provides a FIFO, non-reentrant, non-blocking-thread
// mutual exclusion primitive: Acquire suspends the caller (without pinning
// an OS thread) until the mutex is free, rather than spinning or relying on
// a kernel mutex.
//
// The waiter queue is the same unbuffered-channel-as-a-one-shot-gate idiom
// microbatch.Batcher uses for its ping/pong Submit protocol, generalized
// from a single slot to a FIFO slice of gates.
package asyncmutex
