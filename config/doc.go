// Package config loads and validates the JSON configuration document
// that drives the pipeline: logger names and thresholds, handler
// definitions, and the queue parameters.
//
// The document is decoded into explicit typed structs with enumerated
// handler and formatter kinds — there is no reflection-driven dynamic
// construction. Unknown fields and unknown kinds are rejected at load
// time, and any error is fatal at startup by design: a process should
// not run with a logging setup other than the one it was asked for.
package config
