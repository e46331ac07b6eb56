package core

import (
	"fmt"
	"strconv"
	"time"
)

// FieldType discriminates the value slot a Field carries.
type FieldType uint8

const (
	StringType FieldType = iota
	IntType
	Int64Type
	Float64Type
	BoolType
	TimeType
	DurationType
	ErrorType
	AnyType
)

// Field is one key/value entry of a record's structured payload. It is
// a tagged union rather than an interface{} so the common kinds carry
// no allocation: numbers, booleans, times and durations all live in
// Int64/Float64, strings and error text in Str, and only AnyType falls
// back to the interface slot.
type Field struct {
	Key     string
	Type    FieldType
	Int64   int64
	Float64 float64
	Str     string
	Any     interface{}
}

// ErrorContext reports whether the field is the conventional error
// binding (an ErrorType field under the "error" key, as produced by the
// Err helper) and returns its text. Emission lifts such a field out of
// the payload into the record's Err slot so structured output gives the
// error a stable top-level name.
func (f Field) ErrorContext() (string, bool) {
	if f.Type == ErrorType && f.Key == "error" {
		return f.Str, true
	}
	return "", false
}

// StringValue renders the field's value for human-readable output.
// Formatters that need typed output (JSON numbers, booleans) switch on
// Type directly instead.
func (f Field) StringValue() string {
	switch f.Type {
	case StringType, ErrorType:
		return f.Str
	case IntType, Int64Type:
		return strconv.FormatInt(f.Int64, 10)
	case Float64Type:
		return strconv.FormatFloat(f.Float64, 'f', -1, 64)
	case BoolType:
		return strconv.FormatBool(f.Int64 == 1)
	case DurationType:
		return time.Duration(f.Int64).String()
	case TimeType:
		return time.Unix(0, f.Int64).Format(time.RFC3339)
	case AnyType:
		return fmt.Sprint(f.Any)
	default:
		return ""
	}
}
