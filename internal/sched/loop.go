package sched

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by Close on a loop that is already closed.
var ErrClosed = errors.New("loop closed")

// Loop is a Scheduler backed by a single goroutine draining an unbounded
// task queue. Posting never blocks, so tasks may post follow-up tasks.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	wake   chan struct{}
	done   chan struct{}
	closed atomic.Bool
	wg     sync.WaitGroup
}

// NewLoop starts a loop goroutine.
func NewLoop() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.done:
			return
		case <-l.wake:
		}
		for {
			fn, ok := l.pop()
			if !ok {
				break
			}
			fn()
			if l.closed.Load() {
				return
			}
		}
	}
}

func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	fn := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return fn, true
}

// Post enqueues fn. Posting to a closed loop is a no-op.
func (l *Loop) Post(fn func()) {
	if l.closed.Load() {
		return
	}
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it to finish or for the loop to close.
func (l *Loop) Do(fn func()) {
	if l.closed.Load() {
		return
	}
	finished := make(chan struct{})
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
	case <-l.done:
	}
}

// AfterFunc posts fn after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.stopped.CompareAndSwap(false, true) {
				fn()
			}
		})
	})
	return t
}

// Go runs work on a new goroutine tracked by Close.
func (l *Loop) Go(work func()) {
	if l.closed.Load() {
		return
	}
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		work()
	}()
}

// Close stops the loop and waits for the loop goroutine and background
// work to return. Pending tasks are dropped.
func (l *Loop) Close() error {
	if !l.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}
	close(l.done)
	l.wg.Wait()

	l.mu.Lock()
	l.tasks = nil
	l.mu.Unlock()
	return nil
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
}

func (t *loopTimer) Stop() bool {
	t.timer.Stop()
	return t.stopped.CompareAndSwap(false, true)
}

var _ Scheduler = (*Loop)(nil)
