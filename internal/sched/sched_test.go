package sched

import (
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestLoop_RunsTasksInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLoop()
	var got []int
	for i := range 5 {
		l.Post(func() { got = append(got, i) })
	}
	l.Do(func() {})
	require.NoError(t, l.Close())

	assert.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestLoop_TaskCanPostWithoutBlocking(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLoop()
	var got []string
	l.Do(func() {
		got = append(got, "outer")
		l.Post(func() { got = append(got, "inner") })
	})
	l.Do(func() {})
	require.NoError(t, l.Close())

	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestLoop_AfterFunc(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := NewLoop()
		defer l.Close()

		var fired atomic.Int32
		l.AfterFunc(200*time.Millisecond, func() { fired.Add(1) })

		time.Sleep(199 * time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(0), fired.Load())

		time.Sleep(time.Millisecond)
		synctest.Wait()
		assert.Equal(t, int32(1), fired.Load())
	})
}

func TestLoop_TimerStop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		l := NewLoop()
		defer l.Close()

		var fired atomic.Bool
		timer := l.AfterFunc(time.Second, func() { fired.Store(true) })
		assert.True(t, timer.Stop())
		assert.False(t, timer.Stop())

		time.Sleep(2 * time.Second)
		synctest.Wait()
		assert.False(t, fired.Load())
	})
}

func TestLoop_CloseTwice(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLoop()
	require.NoError(t, l.Close())
	require.ErrorIs(t, l.Close(), ErrClosed)

	ran := false
	l.Post(func() { ran = true })
	l.Do(func() { ran = true })
	assert.False(t, ran)
}

func TestLoop_GoIsAwaitedByClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := NewLoop()
	var done atomic.Bool
	l.Go(func() {
		time.Sleep(10 * time.Millisecond)
		done.Store(true)
	})
	require.NoError(t, l.Close())
	assert.True(t, done.Load())
}

func TestManual_PostDuringTaskRunsAfter(t *testing.T) {
	m := NewManual()
	var got []string
	m.Post(func() {
		m.Post(func() { got = append(got, "inner") })
		got = append(got, "outer")
	})
	assert.Equal(t, []string{"outer", "inner"}, got)
}

func TestManual_AdvanceFiresInOrder(t *testing.T) {
	m := NewManual()
	var got []string
	m.AfterFunc(500*time.Millisecond, func() { got = append(got, "b") })
	m.AfterFunc(200*time.Millisecond, func() {
		got = append(got, "a")
		m.AfterFunc(200*time.Millisecond, func() { got = append(got, "a2") })
	})
	m.AfterFunc(500*time.Millisecond, func() { got = append(got, "c") })

	m.Advance(300 * time.Millisecond)
	assert.Equal(t, []string{"a"}, got)
	assert.Equal(t, 300*time.Millisecond, m.Now())

	m.Advance(time.Second)
	assert.Equal(t, []string{"a", "a2", "b", "c"}, got)
	assert.Zero(t, m.Pending())
}

func TestManual_StoppedTimerDoesNotFire(t *testing.T) {
	m := NewManual()
	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })
	assert.Equal(t, 1, m.Pending())
	assert.True(t, timer.Stop())

	m.Advance(2 * time.Second)
	assert.False(t, fired)
}
