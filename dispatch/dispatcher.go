package dispatch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fieldline/logpipe/core"
	"github.com/fieldline/logpipe/handler"
)

// State describes the dispatch worker lifecycle
type State int32

const (
	// StateIdle before the worker has started
	StateIdle State = iota
	// StateRunning while the worker is draining the queue normally
	StateRunning
	// StateDraining after shutdown has been signaled, during the
	// best-effort drain of the remaining backlog
	StateDraining
	// StateStopped once the worker has exited
	StateStopped
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateRunning:
		return "Running"
	case StateDraining:
		return "Draining"
	case StateStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

// Config holds configuration for the dispatch pipeline
type Config struct {
	// Capacity is the queue capacity (default: 1024)
	Capacity int
	// Policy defines the behaviour when the queue is full (default: Drop)
	Policy OverflowPolicy
	// BlockTimeout bounds the wait under the Block policy (default: 100ms)
	BlockTimeout time.Duration
	// DrainGracePeriod bounds the best-effort drain on shutdown
	// (default: 5s)
	DrainGracePeriod time.Duration
}

// Dispatcher owns the shared record queue and the single background
// worker that fans records out to every configured handler. Many
// goroutines enqueue; exactly one goroutine dequeues, so FIFO order is
// preserved per process.
type Dispatcher struct {
	handlers []handler.Handler
	queue    chan *core.Record
	closing  chan struct{}
	done     chan struct{}

	// The worker hands records to a dedicated emit goroutine and waits
	// for the ack, so an emit that outlives the drain grace period can
	// be abandoned instead of wedging the worker.
	emitCh  chan *core.Record
	emitAck chan struct{}
	// deadline is armed once shutdown begins; worker-only access.
	deadline <-chan time.Time

	policy       OverflowPolicy
	blockTimeout time.Duration
	drainGrace   time.Duration

	accepting atomic.Bool
	state     atomic.Int32
	startOnce sync.Once
	closeOnce sync.Once

	stats *Stats

	// One-time internal warnings; failures are otherwise only counted.
	fullWarn      onceWarner
	closedWarn    onceWarner
	discardWarn   onceWarner
	handlerWarned []atomic.Bool
}

// NewDispatcher creates a dispatch pipeline over the given handlers.
// Handlers receive records in registration order. The worker is started
// lazily on first enqueue, or explicitly via Start.
func NewDispatcher(cfg Config, handlers ...handler.Handler) *Dispatcher {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1024
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainGracePeriod <= 0 {
		cfg.DrainGracePeriod = 5 * time.Second
	}

	d := &Dispatcher{
		handlers:      handlers,
		queue:         make(chan *core.Record, cfg.Capacity),
		closing:       make(chan struct{}),
		done:          make(chan struct{}),
		emitCh:        make(chan *core.Record),
		emitAck:       make(chan struct{}, 1),
		policy:        cfg.Policy,
		blockTimeout:  cfg.BlockTimeout,
		drainGrace:    cfg.DrainGracePeriod,
		stats:         NewStats(),
		handlerWarned: make([]atomic.Bool, len(handlers)),
	}
	d.accepting.Store(true)
	return d
}

// Start launches the dispatch worker. Safe to call multiple times;
// Enqueue calls it implicitly.
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		d.state.Store(int32(StateRunning))
		go d.run()
	})
}

// Enqueue hands a record to the pipeline and returns immediately. It
// performs no formatting or I/O. It returns false when the record was
// not queued (pipeline shutting down, or queue full under the Drop
// policy); ownership of the record stays with the caller in that case.
func (d *Dispatcher) Enqueue(record *core.Record) bool {
	if !d.accepting.Load() {
		d.stats.IncrementRejected()
		d.closedWarn.warnf("record from logger %q rejected, pipeline is shutting down", record.Logger)
		return false
	}

	d.Start()

	select {
	case d.queue <- record:
		return true
	default:
	}

	// Queue full
	if d.policy == Block {
		d.stats.IncrementBlocked()
		timer := time.NewTimer(d.blockTimeout)
		defer timer.Stop()
		select {
		case d.queue <- record:
			return true
		case <-timer.C:
		case <-d.closing:
		}
	}

	d.stats.IncrementDropped(record.Level)
	d.fullWarn.warnf("queue full (capacity %d), dropping records", cap(d.queue))
	return false
}

// State returns the current worker state
func (d *Dispatcher) State() State {
	return State(d.state.Load())
}

// Stats returns a snapshot of the current statistics
func (d *Dispatcher) Stats() Snapshot {
	return d.stats.GetSnapshot()
}

// DrainGracePeriod returns the configured drain bound, so callers that
// must exit (Fatal paths) can derive their own wait from the same knob.
func (d *Dispatcher) DrainGracePeriod() time.Duration {
	return d.drainGrace
}

// Shutdown stops intake, signals the worker to drain, and waits for it
// to stop. The worker exits within the grace period on its own clock,
// even when a handler never returns from Emit; the context only bounds
// how long Shutdown waits for it to report back. Remaining records are
// discarded once the grace period elapses.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.accepting.Store(false)
	d.closeOnce.Do(func() {
		// Ensure the worker exists so the state machine always
		// terminates in Stopped, even if nothing was ever logged.
		d.Start()
		close(d.closing)
	})

	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}

	var lastErr error
	for _, h := range d.handlers {
		if err := h.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// run is the dispatch worker loop. It is the only goroutine that
// dequeues records; the actual fan-out happens on the emit goroutine so
// the worker can stop on its own clock even when a handler never
// returns from Emit.
func (d *Dispatcher) run() {
	defer close(d.done)
	defer d.state.Store(int32(StateStopped))
	defer close(d.emitCh)

	go d.emitter()

	for {
		select {
		case record := <-d.queue:
			if !d.deliver(record) {
				d.discardBacklog(1)
				return
			}
		case <-d.closing:
			d.beginDrain()
			d.drain()
			return
		}
	}
}

// beginDrain transitions to Draining and arms the grace deadline. The
// deadline is armed exactly once, so a shutdown observed mid-emit and
// the drain loop share the same clock.
func (d *Dispatcher) beginDrain() {
	d.state.Store(int32(StateDraining))
	if d.deadline == nil {
		d.deadline = time.After(d.drainGrace)
	}
}

// deliver hands the record to the emit goroutine and waits for it to
// finish. While running the wait is unbounded; once shutdown begins it
// is bounded by the drain grace period, and an emit still in flight at
// the deadline is abandoned.
func (d *Dispatcher) deliver(record *core.Record) bool {
	d.emitCh <- record
	closing := d.closing
	for {
		select {
		case <-d.emitAck:
			return true
		case <-closing:
			closing = nil
			d.beginDrain()
		case <-d.deadline:
			return false
		}
	}
}

// emitter performs the fan-out. The ack channel is buffered so a late
// completion after the worker has given up parks the signal instead of
// blocking; the loop then exits on the closed channel.
func (d *Dispatcher) emitter() {
	for record := range d.emitCh {
		d.fanOut(record)
		d.emitAck <- struct{}{}
	}
}

// drain delivers the remaining backlog best-effort within the grace
// period, then abandons whatever is left.
func (d *Dispatcher) drain() {
	for {
		select {
		case record := <-d.queue:
			if !d.deliver(record) {
				d.discardBacklog(1)
				return
			}
		case <-d.deadline:
			d.discardBacklog(0)
			return
		default:
			// Queue empty
			return
		}
	}
}

// discardBacklog counts the records that will never be delivered: the
// remaining queue plus an emit abandoned in flight.
func (d *Dispatcher) discardBacklog(abandoned int) {
	if remaining := len(d.queue) + abandoned; remaining > 0 {
		d.stats.AddDiscarded(uint64(remaining))
		d.discardWarn.warnf("drain grace period elapsed, discarding %d queued records", remaining)
	}
}

// fanOut hands the record to every handler whose threshold it meets, in
// registration order. A failing handler is counted and reported once;
// it never affects delivery to the remaining handlers.
func (d *Dispatcher) fanOut(record *core.Record) {
	for i, h := range d.handlers {
		if !h.Accepts(record) {
			continue
		}
		if err := d.emit(h, record); err != nil {
			d.stats.IncrementFailed()
			if d.handlerWarned[i].CompareAndSwap(false, true) {
				diagf("handler %d failed to emit: %v", i, err)
			}
		}
	}
	d.stats.IncrementProcessed()
	core.PutRecord(record)
}

// emit calls the handler and converts a panic into an error, so a
// misbehaving handler cannot take down the worker.
func (d *Dispatcher) emit(h handler.Handler, record *core.Record) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Emit(record)
}
