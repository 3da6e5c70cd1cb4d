// Package debounce provides a keyed trailing-edge debouncer.
//
// Every Trigger for a key replaces the pending value and restarts that key's
// quiet period. When the quiet period elapses the callback receives the last
// value only. Cancel, Flush and Close guarantee that a replaced or disposed
// key never fires afterwards. Callbacks never run concurrently, and Flush
// returns only after any callback already under way has finished.
package debounce

import (
	"sync"
	"time"
)

type entry[V any] struct {
	timer *time.Timer
	value V
	seq   uint64
}

// Debouncer coalesces rapid updates per key
type Debouncer[K comparable, V any] struct {
	delay time.Duration
	fn    func(K, V)

	// held while fn runs
	fnMu sync.Mutex

	mu      sync.Mutex
	pending map[K]*entry[V]
	seq     uint64
	closed  bool
}

// New creates a Debouncer calling fn after delay of quiet time per key
func New[K comparable, V any](delay time.Duration, fn func(K, V)) *Debouncer[K, V] {
	return &Debouncer[K, V]{
		delay:   delay,
		fn:      fn,
		pending: make(map[K]*entry[V]),
	}
}

// Trigger schedules value for key, replacing any pending value for the same key
func (d *Debouncer[K, V]) Trigger(key K, value V) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
	}

	d.seq++
	seq := d.seq
	e := &entry[V]{value: value, seq: seq}
	e.timer = time.AfterFunc(d.delay, func() { d.fire(key, seq) })
	d.pending[key] = e
}

func (d *Debouncer[K, V]) fire(key K, seq uint64) {
	d.fnMu.Lock()
	defer d.fnMu.Unlock()

	d.mu.Lock()
	e, ok := d.pending[key]
	// A newer Trigger, Cancel or Close superseded this timer.
	if !ok || e.seq != seq || d.closed {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()

	d.fn(key, e.value)
}

// Flush fires the pending value for key immediately, on the caller's
// goroutine. It reports whether a value was pending.
func (d *Debouncer[K, V]) Flush(key K) bool {
	d.fnMu.Lock()
	defer d.fnMu.Unlock()

	d.mu.Lock()
	e, ok := d.pending[key]
	if !ok || d.closed {
		d.mu.Unlock()
		return false
	}
	e.timer.Stop()
	delete(d.pending, key)
	d.mu.Unlock()

	d.fn(key, e.value)
	return true
}

// Cancel drops the pending value for key without firing it
func (d *Debouncer[K, V]) Cancel(key K) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if e, ok := d.pending[key]; ok {
		e.timer.Stop()
		delete(d.pending, key)
	}
}

// Pending reports whether key has a value waiting for its quiet period
func (d *Debouncer[K, V]) Pending(key K) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Close cancels every pending value. Triggers after Close are ignored.
func (d *Debouncer[K, V]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
	}
	d.closed = true
}
