package logpipe

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fieldline/logpipe/config"
	"github.com/fieldline/logpipe/core"
	"github.com/fieldline/logpipe/dispatch"
	"github.com/fieldline/logpipe/formatter"
	"github.com/fieldline/logpipe/handler"
	"github.com/fieldline/logpipe/logger"
)

// Pipeline ties together the logger registry, the shared queue with its
// dispatch worker, and the destination handlers. Build one at process
// start, before the first log emission, and call Shutdown before exit.
type Pipeline struct {
	registry   *logger.Registry
	dispatcher *dispatch.Dispatcher
}

// Setup loads the configuration document at path and builds the
// pipeline from it. Configuration errors are returned for the caller to
// fail fast on.
func Setup(path string) (*Pipeline, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// New builds a pipeline from an already-loaded configuration. A nil
// config selects config.Default.
func New(cfg *config.Config) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	handlers := make([]handler.Handler, 0, len(cfg.Handlers))
	for i, hc := range cfg.Handlers {
		h, err := buildHandler(hc)
		if err != nil {
			for _, built := range handlers {
				built.Close()
			}
			return nil, fmt.Errorf("handlers[%d]: %w", i, err)
		}
		handlers = append(handlers, h)
	}

	policy := dispatch.Drop
	if cfg.Queue.Policy == config.PolicyBlock {
		policy = dispatch.Block
	}

	d := dispatch.NewDispatcher(dispatch.Config{
		Capacity:         cfg.Queue.Capacity,
		Policy:           policy,
		BlockTimeout:     cfg.Queue.BlockTimeout.Duration,
		DrainGracePeriod: cfg.Queue.DrainGracePeriod.Duration,
	}, handlers...)
	d.Start()

	defaultLevel := core.InfoLevel
	if cfg.DefaultLevel != "" {
		defaultLevel, _ = core.LevelFromString(cfg.DefaultLevel)
	}
	levels := make(map[string]core.Level, len(cfg.Loggers))
	for _, lc := range cfg.Loggers {
		lvl, _ := core.LevelFromString(lc.Level)
		levels[lc.Name] = lvl
	}

	reg := logger.NewRegistry(d, logger.RegistryConfig{
		DefaultLevel:        defaultLevel,
		Levels:              levels,
		CoarseClock:         cfg.Queue.CoarseClock,
		CoarseClockInterval: cfg.Queue.CoarseClockInterval.Duration,
	})

	return &Pipeline{registry: reg, dispatcher: d}, nil
}

// buildHandler constructs one destination handler from its declaration
func buildHandler(hc config.HandlerConfig) (handler.Handler, error) {
	var minLevel core.Level
	if hc.Level != "" {
		minLevel, _ = core.LevelFromString(hc.Level)
	}
	maxLevel := core.FatalLevel
	if hc.MaxLevel != "" {
		maxLevel, _ = core.LevelFromString(hc.MaxLevel)
	}

	fcfg := formatter.Config{TimestampFormat: hc.TimestampFormat}
	var f formatter.Formatter
	switch hc.Formatter {
	case config.FormatterColorized:
		f = formatter.NewTextFormatter(fcfg)
	case config.FormatterStructured:
		f = formatter.NewJSONFormatter(fcfg)
	case "":
		// Each kind's natural formatter
		if hc.Kind == config.KindConsole {
			f = formatter.NewTextFormatter(fcfg)
		} else {
			f = formatter.NewJSONFormatter(fcfg)
		}
	}

	switch hc.Kind {
	case config.KindConsole:
		return handler.NewConsoleHandler(handler.ConsoleConfig{
			Writer:    consoleStream(hc.Target),
			Formatter: f,
			MinLevel:  minLevel,
			MaxLevel:  maxLevel,
			NoColor:   hc.NoColor,
		}), nil

	case config.KindStructured:
		scfg := handler.StructuredConfig{
			Formatter: f,
			MinLevel:  minLevel,
			MaxLevel:  maxLevel,
		}
		if hc.FileTarget() {
			scfg.Filename = hc.Target
			if r := hc.Rotation; r != nil {
				scfg.MaxSizeMB = r.MaxSizeMB
				scfg.MaxBackups = r.MaxBackups
				scfg.MaxAgeDays = r.MaxAgeDays
				scfg.Compress = r.Compress
			}
		} else {
			scfg.Writer = consoleStream(hc.Target)
		}
		return handler.NewStructuredHandler(scfg)

	default:
		return nil, fmt.Errorf("unknown kind %q", hc.Kind)
	}
}

func consoleStream(target string) io.Writer {
	if target == "stdout" {
		return os.Stdout
	}
	return os.Stderr
}

// Get returns the named logger, creating it on first request
func (p *Pipeline) Get(name string) *logger.Logger {
	return p.registry.Get(name)
}

// Registry exposes the logger registry
func (p *Pipeline) Registry() *logger.Registry {
	return p.registry
}

// State reports the dispatch worker state
func (p *Pipeline) State() dispatch.State {
	return p.dispatcher.State()
}

// Stats reports dispatch pipeline statistics
func (p *Pipeline) Stats() dispatch.Snapshot {
	return p.dispatcher.Stats()
}

// Shutdown stops intake and drains queued records best-effort within
// the configured grace period. Call it before process exit; records
// still queued when the grace period elapses are discarded.
func (p *Pipeline) Shutdown(ctx context.Context) error {
	return p.dispatcher.Shutdown(ctx)
}
