// Package formatter turns log records into bytes.
//
// Two formatters are provided, matching the two recognized configuration
// kinds:
//
//   - TextFormatter ("colorized") renders human-readable lines with the
//     level token colour-keyed to severity, intended for local development
//     on a terminal.
//   - JSONFormatter ("structured") renders one JSON object per line with
//     stable field names (timestamp, level, logger, message, payload,
//     error), intended for machine search and filtering.
//
// Both implement WriterFormatter, letting handlers stream formatted output
// without an intermediate byte slice. Formatting happens on the dispatch
// worker goroutine, never on the application thread that emitted the
// record.
package formatter
