// Package logger is the emission side of the pipeline: the Registry of
// named loggers that application code acquires and logs through.
//
// A Logger is immutable after construction — its name, level, and
// queue reference never change — which makes it inherently safe for
// concurrent use without any locking on the emission path. Loggers do
// not own handlers: they apply a severity filter and push surviving
// records onto the shared dispatch queue, where the single worker fans
// them out to the configured destinations.
//
// The set of loggers is small and fixed by configuration, looked up by
// name:
//
//	log := registry.Get("db")
//	log.Info("connected", logger.String("host", host))
//
// There is deliberately no package-level default logger and no global
// mutable state: a registry is explicit, so nothing this package does
// can leak configuration into third-party code.
//
// Child loggers with extra bound fields are created via With, which
// returns a new Logger sharing the same queue:
//
//	reqLog := log.With(logger.String("request_id", id))
//
// Level checks happen before any allocation, so filtered-out messages
// cost only a single integer comparison. SlogHandler adapts a Logger
// to log/slog for stdlib call-sites.
package logger
