// Package sched serializes engine work onto one logical thread.
//
// All unit, queue and coordinator state is touched only from tasks run by a
// Scheduler, so handlers never interleave.
package sched

import "time"

// Timer is a cancellable delayed task.
type Timer interface {
	// Stop prevents the task from running. It reports whether the call
	// stopped the task before it ran.
	Stop() bool
}

// Scheduler runs tasks one at a time.
type Scheduler interface {
	// Post enqueues fn to run after the tasks already queued.
	Post(fn func())
	// AfterFunc enqueues fn once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
	// Do runs fn and waits for it. It must not be called from a task.
	Do(fn func())
	// Go runs blocking work off the task thread. The work reports back
	// through Post.
	Go(work func())
}
