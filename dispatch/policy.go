package dispatch

import (
	"sync/atomic"

	"github.com/fieldline/logpipe/core"
)

// OverflowPolicy defines how Enqueue behaves when the queue is full
type OverflowPolicy int

const (
	// Drop drops the record immediately and records a one-time warning.
	// This is the default: logging must never stall the application.
	Drop OverflowPolicy = iota
	// Block waits for queue space up to BlockTimeout, then drops.
	// Blocking is always bounded.
	Block
)

// String returns the string representation of the policy
func (p OverflowPolicy) String() string {
	switch p {
	case Drop:
		return "Drop"
	case Block:
		return "Block"
	default:
		return "Unknown"
	}
}

// Stats tracks dispatch pipeline statistics
type Stats struct {
	// Separate atomic counters per level
	DroppedDebug uint64
	DroppedInfo  uint64
	DroppedWarn  uint64
	DroppedError uint64
	DroppedFatal uint64
	// BlockedTotal counts enqueues that waited for queue space
	BlockedTotal uint64
	// RejectedTotal counts enqueues refused after shutdown began
	RejectedTotal uint64
	// DiscardedTotal counts queued records abandoned when the drain
	// grace period elapsed
	DiscardedTotal uint64
	// FailedTotal counts handler emit failures
	FailedTotal uint64
	// ProcessedTotal counts records fanned out to handlers
	ProcessedTotal uint64
}

// NewStats creates a new Stats instance
func NewStats() *Stats {
	return &Stats{}
}

// IncrementDropped atomically increments the dropped counter for a level
func (s *Stats) IncrementDropped(level core.Level) {
	switch level {
	case core.DebugLevel:
		atomic.AddUint64(&s.DroppedDebug, 1)
	case core.InfoLevel:
		atomic.AddUint64(&s.DroppedInfo, 1)
	case core.WarnLevel:
		atomic.AddUint64(&s.DroppedWarn, 1)
	case core.ErrorLevel:
		atomic.AddUint64(&s.DroppedError, 1)
	default:
		atomic.AddUint64(&s.DroppedFatal, 1)
	}
}

// IncrementBlocked atomically increments the blocked counter
func (s *Stats) IncrementBlocked() {
	atomic.AddUint64(&s.BlockedTotal, 1)
}

// IncrementRejected atomically increments the rejected counter
func (s *Stats) IncrementRejected() {
	atomic.AddUint64(&s.RejectedTotal, 1)
}

// AddDiscarded atomically adds to the discarded counter
func (s *Stats) AddDiscarded(n uint64) {
	atomic.AddUint64(&s.DiscardedTotal, n)
}

// IncrementFailed atomically increments the handler failure counter
func (s *Stats) IncrementFailed() {
	atomic.AddUint64(&s.FailedTotal, 1)
}

// IncrementProcessed atomically increments the processed counter
func (s *Stats) IncrementProcessed() {
	atomic.AddUint64(&s.ProcessedTotal, 1)
}

// GetDropped returns the dropped count for a level
func (s *Stats) GetDropped(level core.Level) uint64 {
	switch level {
	case core.DebugLevel:
		return atomic.LoadUint64(&s.DroppedDebug)
	case core.InfoLevel:
		return atomic.LoadUint64(&s.DroppedInfo)
	case core.WarnLevel:
		return atomic.LoadUint64(&s.DroppedWarn)
	case core.ErrorLevel:
		return atomic.LoadUint64(&s.DroppedError)
	case core.FatalLevel:
		return atomic.LoadUint64(&s.DroppedFatal)
	default:
		return 0
	}
}

// GetTotalDropped returns the total dropped across all levels
func (s *Stats) GetTotalDropped() uint64 {
	return atomic.LoadUint64(&s.DroppedDebug) +
		atomic.LoadUint64(&s.DroppedInfo) +
		atomic.LoadUint64(&s.DroppedWarn) +
		atomic.LoadUint64(&s.DroppedError) +
		atomic.LoadUint64(&s.DroppedFatal)
}

// Snapshot is a point-in-time copy of the dispatch statistics
type Snapshot struct {
	DroppedTotal   map[core.Level]uint64
	BlockedTotal   uint64
	RejectedTotal  uint64
	DiscardedTotal uint64
	FailedTotal    uint64
	ProcessedTotal uint64
}

// GetSnapshot returns a snapshot of current statistics
func (s *Stats) GetSnapshot() Snapshot {
	return Snapshot{
		DroppedTotal: map[core.Level]uint64{
			core.DebugLevel: s.GetDropped(core.DebugLevel),
			core.InfoLevel:  s.GetDropped(core.InfoLevel),
			core.WarnLevel:  s.GetDropped(core.WarnLevel),
			core.ErrorLevel: s.GetDropped(core.ErrorLevel),
			core.FatalLevel: s.GetDropped(core.FatalLevel),
		},
		BlockedTotal:   atomic.LoadUint64(&s.BlockedTotal),
		RejectedTotal:  atomic.LoadUint64(&s.RejectedTotal),
		DiscardedTotal: atomic.LoadUint64(&s.DiscardedTotal),
		FailedTotal:    atomic.LoadUint64(&s.FailedTotal),
		ProcessedTotal: atomic.LoadUint64(&s.ProcessedTotal),
	}
}
