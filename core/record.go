package core

import (
	"sync"
	"time"
)

// Record represents a single log event with all its metadata.
// A Record is immutable once it has been handed to the dispatch pipeline;
// the dispatch worker owns it after dequeue and recycles it once every
// handler has seen it.
type Record struct {
	Time    time.Time
	Logger  string
	Level   Level
	Message string
	Fields  []Field
	// Err carries optional error context, kept separate from Fields so
	// structured output can give it a stable top-level name.
	Err string
}

// recordPool is a pool of Record objects to reduce allocations
var recordPool = sync.Pool{
	New: func() interface{} {
		return &Record{
			Fields: make([]Field, 0, 8), // Pre-allocate for 8 fields
		}
	},
}

// GetRecord retrieves a Record from the pool
func GetRecord() *Record {
	r := recordPool.Get().(*Record)
	r.Time = time.Now()
	r.Fields = r.Fields[:0]
	return r
}

// PutRecord returns a Record to the pool
func PutRecord(r *Record) {
	if r == nil {
		return
	}
	// Re-slice to zero length; GC handles reference cleanup
	r.Fields = r.Fields[:0]
	r.Logger = ""
	r.Message = ""
	r.Err = ""
	recordPool.Put(r)
}
