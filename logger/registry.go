package logger

import (
	"sync"
	"time"

	"github.com/fieldline/logpipe/core"
	"github.com/fieldline/logpipe/dispatch"
)

// Registry holds the application's named loggers. The set is small and
// fixed by configuration; there is deliberately no mutable global root
// logger whose state third-party code could observe change.
type Registry struct {
	mu           sync.RWMutex
	loggers      map[string]*Logger
	dispatcher   *dispatch.Dispatcher
	defaultLevel core.Level
	now          func() time.Time
}

// RegistryConfig holds configuration for the logger registry
type RegistryConfig struct {
	// DefaultLevel applies to loggers requested by names that were not
	// configured (default: InfoLevel)
	DefaultLevel core.Level
	// Levels maps configured logger names to their severity thresholds
	Levels map[string]core.Level
	// CoarseClock timestamps records from a cached clock instead of
	// calling time.Now on every emission
	CoarseClock bool
	// CoarseClockInterval is the cached clock resolution (0 = default)
	CoarseClockInterval time.Duration
}

// NewRegistry creates a registry publishing into the given dispatcher.
// Configured loggers are created eagerly; unknown names are created on
// first request at the default level.
func NewRegistry(d *dispatch.Dispatcher, cfg RegistryConfig) *Registry {
	now := time.Now
	if cfg.CoarseClock {
		core.StartCoarseClock(cfg.CoarseClockInterval)
		now = core.CoarseNow
	}

	r := &Registry{
		loggers:      make(map[string]*Logger, len(cfg.Levels)),
		dispatcher:   d,
		defaultLevel: cfg.DefaultLevel,
		now:          now,
	}
	for name, level := range cfg.Levels {
		r.loggers[name] = newLogger(name, level, d, now)
	}
	return r
}

// Get returns the singleton Logger for the given name, creating it on
// first request. Lookups never fail; an unconfigured name yields a
// logger at the registry default level.
func (r *Registry) Get(name string) *Logger {
	r.mu.RLock()
	l, ok := r.loggers[name]
	r.mu.RUnlock()
	if ok {
		return l
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	// Re-check under the write lock
	if l, ok := r.loggers[name]; ok {
		return l
	}
	l = newLogger(name, r.defaultLevel, r.dispatcher, r.now)
	r.loggers[name] = l
	return l
}

// Names returns the names currently registered, in no particular order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.loggers))
	for name := range r.loggers {
		names = append(names, name)
	}
	return names
}
