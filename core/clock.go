package core

import (
	"sync"
	"sync/atomic"
	"time"
)

// defaultCoarseResolution is used when no resolution is configured.
const defaultCoarseResolution = 500 * time.Microsecond

var (
	coarseOnce sync.Once
	coarseTime atomic.Pointer[time.Time]
)

// StartCoarseClock begins caching time.Now on a background goroutine at
// the given resolution, trading timestamp precision for a cheap read on
// the emission hot path. A resolution <= 0 selects the default. The
// first call wins: later calls (and their resolutions) are ignored, and
// the goroutine runs for the remaining process lifetime, which is the
// lifetime of the logging pipeline anyway.
func StartCoarseClock(resolution time.Duration) {
	coarseOnce.Do(func() {
		if resolution <= 0 {
			resolution = defaultCoarseResolution
		}
		now := time.Now()
		coarseTime.Store(&now)
		go func() {
			ticker := time.NewTicker(resolution)
			for range ticker.C {
				now := time.Now()
				coarseTime.Store(&now)
			}
		}()
	})
}

// CoarseNow returns the most recently cached time. StartCoarseClock
// must have been called first.
func CoarseNow() time.Time {
	return *coarseTime.Load()
}
