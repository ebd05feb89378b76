package sched

import (
	"slices"
	"time"
)

// Manual is a deterministic Scheduler driven by a virtual clock. Posted
// tasks run immediately (after any task already running), timers fire
// only inside Advance, and Go runs work inline. Not safe for concurrent use.
type Manual struct {
	now      time.Duration
	queue    []func()
	timers   []*manualTimer
	seq      int
	draining bool
}

// NewManual returns a Manual scheduler at virtual time zero.
func NewManual() *Manual {
	return &Manual{}
}

type manualTimer struct {
	m       *Manual
	due     time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	if t.stopped {
		return false
	}
	t.stopped = true
	t.m.timers = slices.DeleteFunc(t.m.timers, func(o *manualTimer) bool { return o == t })
	return true
}

// Post runs fn now, or after the current task when called from a task.
func (m *Manual) Post(fn func()) {
	m.queue = append(m.queue, fn)
	if !m.draining {
		m.drain()
	}
}

func (m *Manual) drain() {
	m.draining = true
	defer func() { m.draining = false }()
	for len(m.queue) > 0 {
		fn := m.queue[0]
		m.queue = m.queue[1:]
		fn()
	}
}

// Do runs fn synchronously.
func (m *Manual) Do(fn func()) {
	if m.draining {
		fn()
		return
	}
	m.Post(fn)
}

// Go runs work inline.
func (m *Manual) Go(work func()) {
	work()
}

// AfterFunc schedules fn at now+d on the virtual clock.
func (m *Manual) AfterFunc(d time.Duration, fn func()) Timer {
	m.seq++
	t := &manualTimer{m: m, due: m.now + max(d, 0), seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

// Advance moves the clock forward by d, firing due timers in order.
// Timers scheduled by fired tasks also fire if they fall within d.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		t := m.earliest()
		if t == nil || t.due > target {
			break
		}
		t.Stop()
		m.now = t.due
		m.Post(t.fn)
	}
	m.now = target
}

func (m *Manual) earliest() *manualTimer {
	var next *manualTimer
	for _, t := range m.timers {
		if next == nil || t.due < next.due || (t.due == next.due && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

// Now returns the virtual time elapsed since creation.
func (m *Manual) Now() time.Duration { return m.now }

// Pending returns the number of armed timers.
func (m *Manual) Pending() int { return len(m.timers) }

var _ Scheduler = (*Manual)(nil)
