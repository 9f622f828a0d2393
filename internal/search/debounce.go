// Package search coalesces bursts of search input into one applied term.
package search

import (
	"sync"
	"time"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Option configures a Debouncer.
type Option func(*Debouncer)

// WithScheduler replaces the wall-clock scheduler, mostly for tests.
func WithScheduler(s Scheduler) Option {
	return func(d *Debouncer) { d.sched = s }
}

// Debouncer forwards the latest pushed term to apply once no new term has
// arrived for the quiet interval.
type Debouncer struct {
	mu       sync.Mutex
	interval time.Duration
	apply    func(string)
	sched    Scheduler

	timer   Timer
	pending string
	armed   bool
	gen     uint64
}

func NewDebouncer(interval time.Duration, apply func(string), opts ...Option) *Debouncer {
	d := &Debouncer{
		interval: interval,
		apply:    apply,
		sched:    realScheduler{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Push records term and restarts the quiet interval. Any pending term,
// including an identical one, is replaced rather than emitted.
func (d *Debouncer) Push(term string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = term
	d.armed = true
	d.timer = d.sched.AfterFunc(d.interval, func() { d.fire(gen) })
}

// fire emits the pending term unless a later Push or Stop superseded gen.
// A timer that already started running cannot be stopped, hence the check.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if !d.armed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	term := d.pending
	d.armed = false
	d.timer = nil
	d.mu.Unlock()

	d.apply(term)
}

// Flush emits the pending term now. It reports whether there was one.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.armed {
		d.mu.Unlock()
		return false
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	term := d.pending
	d.armed = false
	d.timer = nil
	d.gen++
	d.mu.Unlock()

	d.apply(term)
	return true
}

// Stop drops the pending term without emitting it.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.armed = false
	d.timer = nil
	d.gen++
}

// Pending returns the term waiting to be applied, if any.
func (d *Debouncer) Pending() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending, d.armed
}
