package handler

import (
	"github.com/fieldline/logpipe/core"
)

// Handler defines the interface for destination handlers. Handlers are
// synchronous sinks: all queuing happens upstream in the dispatch
// pipeline, so Emit is only ever called from the dispatch worker
// goroutine.
type Handler interface {
	// Accepts reports whether the record meets this handler's severity
	// threshold. Records that fail the check are dropped for this
	// handler only.
	Accepts(record *core.Record) bool

	// Emit formats and writes a record to the destination
	Emit(record *core.Record) error

	// Close closes the handler and releases resources
	Close() error
}
