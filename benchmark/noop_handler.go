package benchmark

import (
	"github.com/fieldline/logpipe/core"
	"github.com/fieldline/logpipe/handler"
)

// noopHandler accepts everything and emits nothing. It isolates the
// queue and fan-out cost from formatting and I/O.
type noopHandler struct{}

func newNoopHandler() handler.Handler {
	return &noopHandler{}
}

func (h *noopHandler) Accepts(*core.Record) bool { return true }

func (h *noopHandler) Emit(r *core.Record) error {
	_ = len(r.Message)
	return nil
}

func (h *noopHandler) Close() error { return nil }
