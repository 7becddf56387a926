// Package debounce delays per-key values until input has been quiet for
// a fixed interval. It backs the column filters: every keystroke restarts
// that column's timer and only the last typed text is ever applied.
package debounce

import (
	"sync"
	"time"

	"github.com/imgajeed76/sheetview/internal/clock"
)

// DefaultDelay is the quiet period before a filter is applied.
const DefaultDelay = time.Second

// Debouncer owns one timer per key.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration
	apply func(key, value string)

	mu      sync.Mutex
	pending map[string]*pendingValue
}

type pendingValue struct {
	value string
	timer clock.Timer
	gen   uint64
}

// New returns a Debouncer that calls apply with the last value for a key
// once delay has passed without another Trigger for that key. apply runs
// on the clock's timer goroutine; callers that need serialization must
// hand the value over to their own event loop.
func New(c clock.Clock, delay time.Duration, apply func(key, value string)) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{
		clock:   c,
		delay:   delay,
		apply:   apply,
		pending: make(map[string]*pendingValue),
	}
}

// Delay returns the quiet period.
func (d *Debouncer) Delay() time.Duration { return d.delay }

// Trigger records value for key and restarts the key's timer. Any value
// still pending for the key is discarded.
func (d *Debouncer) Trigger(key, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var gen uint64
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		gen = p.gen + 1
	}

	p := &pendingValue{value: value, gen: gen}
	d.pending[key] = p
	p.timer = d.clock.AfterFunc(d.delay, func() { d.fire(key, gen) })
}

func (d *Debouncer) fire(key string, gen uint64) {
	d.mu.Lock()
	p, ok := d.pending[key]
	if !ok || p.gen != gen {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	d.apply(key, p.value)
}

// Pending returns the value waiting to be applied for key.
func (d *Debouncer) Pending(key string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	p, ok := d.pending[key]
	if !ok {
		return "", false
	}
	return p.value, true
}

// Cancel drops the pending value for key without applying it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if p, ok := d.pending[key]; ok {
		p.timer.Stop()
		delete(d.pending, key)
	}
}

// CancelAll drops every pending value, e.g. when a new dataset replaces
// the one the filters were typed against.
func (d *Debouncer) CancelAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, key)
	}
}
