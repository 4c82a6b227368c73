// Package gate provides two complementary level/edge signalling
// primitives, modelled on .NET's ManualResetEvent and AutoResetEvent:
//
// Manual is level-triggered: once Set, it stays signalled and every Wait
// (current or future) returns immediately, until Reset puts it back to
// unsignalled.
//
// Auto hands off one permit per Set: if a waiter is queued, exactly one is
// released; otherwise the permit is banked and consumed by the very next
// Wait, which then returns immediately without banking further permits.
//
// Both share the FIFO waiter-queue idiom asyncmutex uses, generalized to
// broadcast (Manual) and single-release (Auto) notification.
package gate
