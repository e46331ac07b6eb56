// Package handler provides the Handler interface and its built-in
// implementations for emitting log records to destinations.
//
// Handlers are deliberately synchronous: a handler only formats and
// writes. All queuing, fan-out, and failure isolation live in the
// dispatch package, so Emit is only ever called from the single dispatch
// worker goroutine. Each handler carries its own severity threshold,
// checked through Accepts; a record below the threshold is dropped for
// that handler without affecting the others.
//
// Built-in handlers:
//
//   - ConsoleHandler writes human-readable lines to a terminal stream
//     (default: stderr), colourized by severity when the stream is a TTY.
//   - StructuredHandler writes machine-parseable structured lines to a
//     file or stream. File targets rotate by size, age, and backup count
//     via lumberjack.
package handler
