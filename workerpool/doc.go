// Package workerpool implements a bounded, self-scaling worker pool: work
// items are enqueued onto a FIFO queue, and workers are spun up lazily, up
// to a configured cap, only while there is queued work for them to do.
//
// Worker lifecycle is driven by an atomic active-worker counter rather
// than a fixed set of pre-started goroutines, the same lazy-spawn idiom
// microbatch.Batcher uses for its batch-dispatch goroutines.
package workerpool
