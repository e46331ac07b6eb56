package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fieldline/logpipe/core"
)

// Recognized handler kinds
const (
	// KindConsole emits human-readable colourized output
	KindConsole = "console"
	// KindStructured emits machine-parseable structured output
	KindStructured = "structured"
)

// Recognized formatter kinds
const (
	// FormatterColorized colours output by severity for terminals
	FormatterColorized = "colorized"
	// FormatterStructured serializes records with fixed field names
	FormatterStructured = "structured"
)

// Recognized overflow policies
const (
	PolicyDrop  = "drop"
	PolicyBlock = "block"
)

// Config is the typed form of the configuration document. It is loaded
// once at process start and immutable during a run.
type Config struct {
	// DefaultLevel applies to loggers not listed under Loggers
	// (default: "info")
	DefaultLevel string `json:"default_level,omitempty"`
	// Queue configures the shared record queue and dispatch worker
	Queue QueueConfig `json:"queue"`
	// Loggers enumerates the named loggers and their thresholds
	Loggers []LoggerConfig `json:"loggers"`
	// Handlers enumerates the destination handlers; every logger's
	// records reach every handler through the shared queue
	Handlers []HandlerConfig `json:"handlers"`
}

// QueueConfig configures the queue front-end and worker
type QueueConfig struct {
	// Capacity bounds the queue (default: 1024)
	Capacity int `json:"capacity,omitempty"`
	// Policy is "drop" (default) or "block"
	Policy string `json:"policy,omitempty"`
	// BlockTimeout bounds the wait under the block policy
	BlockTimeout Duration `json:"block_timeout,omitempty"`
	// DrainGracePeriod bounds the best-effort drain on shutdown
	DrainGracePeriod Duration `json:"drain_grace_period,omitempty"`
	// CoarseClock timestamps records from a cached clock
	CoarseClock bool `json:"coarse_clock,omitempty"`
	// CoarseClockInterval is the cached clock resolution (default:
	// 500µs); only meaningful with CoarseClock
	CoarseClockInterval Duration `json:"coarse_clock_interval,omitempty"`
}

// LoggerConfig declares one named logger
type LoggerConfig struct {
	Name  string `json:"name"`
	Level string `json:"level"`
}

// HandlerConfig declares one destination handler
type HandlerConfig struct {
	// Kind is "console" or "structured"
	Kind string `json:"kind"`
	// Level is the handler's severity threshold (default: "debug")
	Level string `json:"level,omitempty"`
	// MaxLevel caps the severity the handler accepts. It splits error
	// output from routine output: a console handler with max_level
	// "info" and a second handler with level "warn" route each record
	// to exactly one destination.
	MaxLevel string `json:"max_level,omitempty"`
	// Formatter is "colorized" or "structured"; defaults to the kind's
	// natural formatter
	Formatter string `json:"formatter,omitempty"`
	// Target is "stdout", "stderr", or a file path. Console handlers
	// default to stderr; structured handlers require a target.
	Target string `json:"target,omitempty"`
	// TimestampFormat overrides the formatter's time layout
	TimestampFormat string `json:"timestamp_format,omitempty"`
	// NoColor disables colour even on a terminal (console kind only)
	NoColor bool `json:"no_color,omitempty"`
	// Rotation configures file rotation (file targets only)
	Rotation *RotationConfig `json:"rotation,omitempty"`
}

// RotationConfig configures rotation of file targets
type RotationConfig struct {
	// MaxSizeMB is the maximum file size in megabytes before rotation
	MaxSizeMB int `json:"max_size_mb,omitempty"`
	// MaxBackups is the number of rotated files to retain
	MaxBackups int `json:"max_backups,omitempty"`
	// MaxAgeDays is the retention of rotated files in days
	MaxAgeDays int `json:"max_age_days,omitempty"`
	// Compress gzips rotated files
	Compress bool `json:"compress,omitempty"`
}

// Duration wraps time.Duration so configuration can say "5s" or "100ms".
// A bare number is read as seconds.
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case string:
		parsed, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", val, err)
		}
		d.Duration = parsed
		return nil
	case float64:
		d.Duration = time.Duration(val * float64(time.Second))
		return nil
	default:
		return fmt.Errorf("invalid duration value %v", v)
	}
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Default returns the configuration used when no document is provided:
// a single colourized console handler at debug, loggers at info.
func Default() *Config {
	return &Config{
		DefaultLevel: "info",
		Queue: QueueConfig{
			Capacity:         1024,
			Policy:           PolicyDrop,
			DrainGracePeriod: Duration{5 * time.Second},
		},
		Handlers: []HandlerConfig{
			{
				Kind:      KindConsole,
				Level:     "debug",
				Formatter: FormatterColorized,
				Target:    "stderr",
			},
		},
	}
}

// Load reads and validates the configuration document at path.
// Configuration errors are fatal by design: the caller should fail
// startup with the returned diagnostic.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := &Config{}
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the document against the enumerated kinds and levels
func (c *Config) Validate() error {
	if c.DefaultLevel != "" {
		if _, err := core.LevelFromString(c.DefaultLevel); err != nil {
			return fmt.Errorf("default_level: %w", err)
		}
	}

	switch c.Queue.Policy {
	case "", PolicyDrop, PolicyBlock:
	default:
		return fmt.Errorf("queue.policy: unknown policy %q", c.Queue.Policy)
	}
	if c.Queue.Capacity < 0 {
		return fmt.Errorf("queue.capacity: must not be negative")
	}
	if c.Queue.CoarseClockInterval.Duration < 0 {
		return fmt.Errorf("queue.coarse_clock_interval: must not be negative")
	}

	seen := make(map[string]bool, len(c.Loggers))
	for i, lc := range c.Loggers {
		if lc.Name == "" {
			return fmt.Errorf("loggers[%d]: name is required", i)
		}
		if seen[lc.Name] {
			return fmt.Errorf("loggers[%d]: duplicate name %q", i, lc.Name)
		}
		seen[lc.Name] = true
		if _, err := core.LevelFromString(lc.Level); err != nil {
			return fmt.Errorf("loggers[%d] (%s): %w", i, lc.Name, err)
		}
	}

	if len(c.Handlers) == 0 {
		return fmt.Errorf("handlers: at least one handler is required")
	}
	for i, hc := range c.Handlers {
		if err := hc.validate(); err != nil {
			return fmt.Errorf("handlers[%d]: %w", i, err)
		}
	}
	return nil
}

func (hc *HandlerConfig) validate() error {
	switch hc.Kind {
	case KindConsole, KindStructured:
	case "":
		return fmt.Errorf("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", hc.Kind)
	}

	minLevel := core.DebugLevel
	if hc.Level != "" {
		lvl, err := core.LevelFromString(hc.Level)
		if err != nil {
			return err
		}
		minLevel = lvl
	}
	if hc.MaxLevel != "" {
		maxLevel, err := core.LevelFromString(hc.MaxLevel)
		if err != nil {
			return fmt.Errorf("max_level: %w", err)
		}
		if maxLevel < minLevel {
			return fmt.Errorf("max_level %q is below level %q", hc.MaxLevel, hc.Level)
		}
	}

	switch hc.Formatter {
	case "", FormatterColorized, FormatterStructured:
	default:
		return fmt.Errorf("unknown formatter %q", hc.Formatter)
	}

	if hc.Kind == KindConsole {
		switch hc.Target {
		case "", "stdout", "stderr":
		default:
			return fmt.Errorf("console target must be stdout or stderr, got %q", hc.Target)
		}
	}
	if hc.Kind == KindStructured && hc.Target == "" {
		return fmt.Errorf("structured handler requires a target")
	}
	if hc.Rotation != nil && (hc.Target == "stdout" || hc.Target == "stderr" || hc.Kind == KindConsole) {
		return fmt.Errorf("rotation applies only to file targets")
	}
	return nil
}

// FileTarget reports whether the handler writes to a file path rather
// than a process stream.
func (hc *HandlerConfig) FileTarget() bool {
	return hc.Target != "" && hc.Target != "stdout" && hc.Target != "stderr"
}
