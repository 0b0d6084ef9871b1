package testkit

import (
	"slices"
	"sync"
	"time"

	ptime "showroom/internal/platform/time"
)

// FakeClock is a manual clock; timers fire only from Advance
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	c    *FakeClock
	at   time.Time
	seq  int
	fn   func()
	done bool
}

// NewFakeClock starts a clock at start
func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// AfterFunc schedules f at now+d
func (c *FakeClock) AfterFunc(d time.Duration, f func()) ptime.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	tm := &fakeTimer{c: c, at: c.now.Add(d), seq: c.seq, fn: f}
	c.timers = append(c.timers, tm)
	return tm
}

// Advance moves time forward by d and runs every timer that came due, in order.
// Callbacks run on the caller's goroutine without the clock lock held
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		idx := -1
		for i, tm := range c.timers {
			if tm.done || tm.at.After(target) {
				continue
			}
			if idx < 0 || tm.at.Before(c.timers[idx].at) ||
				(tm.at.Equal(c.timers[idx].at) && tm.seq < c.timers[idx].seq) {
				idx = i
			}
		}
		if idx < 0 {
			c.now = target
			c.prune()
			c.mu.Unlock()
			return
		}
		tm := c.timers[idx]
		tm.done = true
		if tm.at.After(c.now) {
			c.now = tm.at
		}
		c.mu.Unlock()
		tm.fn()
	}
}

// Pending reports how many timers are still scheduled
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, tm := range c.timers {
		if !tm.done {
			n++
		}
	}
	return n
}

func (c *FakeClock) prune() {
	c.timers = slices.DeleteFunc(c.timers, func(tm *fakeTimer) bool { return tm.done })
}

func (t *fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}
