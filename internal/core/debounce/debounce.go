// Package debounce coalesces bursts of input into one trailing emission
package debounce

import (
	"sync"
	"time"

	ptime "showroom/internal/platform/time"
)

// Clock schedules the trailing emission; tests pass a fake
type Clock = ptime.Clock

// SystemClock is wall time
var SystemClock Clock = ptime.System

// Debouncer emits the latest pushed value once d has passed without a new push
type Debouncer[T any] struct {
	clock Clock
	d     time.Duration
	emit  func(T)

	mu      sync.Mutex
	timer   ptime.Timer
	seq     uint64
	pending bool
	last    T
	stopped bool
}

// New builds a debouncer. A non positive d emits on every push
func New[T any](clock Clock, d time.Duration, emit func(T)) *Debouncer[T] {
	if clock == nil {
		clock = SystemClock
	}
	return &Debouncer[T]{clock: clock, d: d, emit: emit}
}

// Push records v and restarts the quiet period
func (b *Debouncer[T]) Push(v T) {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	b.last, b.pending = v, true
	b.seq++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	seq := b.seq
	if b.d <= 0 {
		b.mu.Unlock()
		b.fire(seq)
		return
	}
	b.timer = b.clock.AfterFunc(b.d, func() { b.fire(seq) })
	b.mu.Unlock()
}

// Flush emits the pending value now, if there is one
func (b *Debouncer[T]) Flush() bool {
	b.mu.Lock()
	seq := b.seq
	b.mu.Unlock()
	return b.fire(seq)
}

// Pending reports whether a value is waiting for its quiet period
func (b *Debouncer[T]) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pending
}

// Cancel drops the pending value, if any; later pushes work as usual
func (b *Debouncer[T]) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = false
	b.seq++
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Stop drops any pending value; later pushes are ignored
func (b *Debouncer[T]) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	b.pending = false
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// fire emits outside the lock, and only if seq is still the latest push
func (b *Debouncer[T]) fire(seq uint64) bool {
	b.mu.Lock()
	if !b.pending || b.stopped || seq != b.seq {
		b.mu.Unlock()
		return false
	}
	v := b.last
	b.pending = false
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()
	b.emit(v)
	return true
}
