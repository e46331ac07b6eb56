package dispatch

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// The dispatch pipeline cannot log through itself, so internal problems
// are reported once to a fallback writer and then only counted.

var (
	diagMu     sync.Mutex
	diagWriter io.Writer = os.Stderr
)

// SetDiagWriter redirects internal one-time warnings. Used by tests;
// defaults to stderr.
func SetDiagWriter(w io.Writer) {
	diagMu.Lock()
	diagWriter = w
	diagMu.Unlock()
}

func diagf(format string, args ...interface{}) {
	diagMu.Lock()
	fmt.Fprintf(diagWriter, "logpipe: "+format+"\n", args...)
	diagMu.Unlock()
}

// onceWarner emits a given warning at most once for the lifetime of its
// owner. Subsequent occurrences are visible only through Stats.
type onceWarner struct {
	once sync.Once
}

func (w *onceWarner) warnf(format string, args ...interface{}) {
	w.once.Do(func() {
		diagf(format, args...)
	})
}
