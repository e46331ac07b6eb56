// Package dispatch implements the queue front-end and the single
// background worker that connect loggers to destination handlers.
//
// Many producer goroutines call Enqueue concurrently; exactly one
// consumer, the dispatch worker, drains the queue and fans each record
// out to every handler whose severity threshold it meets, in
// registration order. Enqueue performs no formatting or I/O, so the
// caller's latency is independent of how slow the destinations are.
//
// The queue is bounded. When it fills, the configured OverflowPolicy
// applies: Drop (the default) discards the record and records a
// one-time warning, Block waits for space up to a bounded timeout and
// then drops. Either way, a full queue degrades logging instead of
// stalling the application.
//
// The worker moves through the states Idle, Running, Draining, and
// Stopped. Running is entered on the first enqueue or an explicit
// Start; Shutdown stops intake, switches to Draining, delivers the
// remaining backlog best-effort within the grace period, and discards
// the rest. A handler that fails or panics during emit is isolated:
// the failure is counted, reported once, and never reaches the other
// handlers or the application.
package dispatch
