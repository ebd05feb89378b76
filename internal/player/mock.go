// internal/player/mock.go
package player

import (
	"sync"
	"time"
)

// Mock is a test double for Player. Transport calls emit the events a
// real player would, synchronously on the calling goroutine.
type Mock struct {
	mu        sync.Mutex
	state     State
	locator   string
	position  time.Duration
	duration  time.Duration
	level     float64
	muted     bool
	loadErr   error
	playErr   error
	loadCalls []string
	playCalls int
	seekCalls []time.Duration
	onEvent   func(Event)
}

// NewMock creates a new mock player for testing.
func NewMock() *Mock {
	return &Mock{state: Stopped, level: 1}
}

func (m *Mock) emit(kind EventKind, err error) {
	m.mu.Lock()
	fn := m.onEvent
	m.mu.Unlock()
	if fn != nil {
		fn(Event{Kind: kind, Err: err})
	}
}

func (m *Mock) OnEvent(fn func(Event)) {
	m.mu.Lock()
	m.onEvent = fn
	m.mu.Unlock()
}

func (m *Mock) Load(locator string) error {
	m.mu.Lock()
	m.loadCalls = append(m.loadCalls, locator)
	m.locator = locator
	m.position = 0
	m.state = Loading
	err := m.loadErr
	m.mu.Unlock()

	m.emit(EventLoadStart, nil)
	if err != nil {
		m.mu.Lock()
		m.state = Failed
		m.mu.Unlock()
		m.emit(EventError, err)
		return err
	}

	m.mu.Lock()
	m.state = Ready
	m.mu.Unlock()
	m.emit(EventDurationChange, nil)
	m.emit(EventCanPlay, nil)
	return nil
}

func (m *Mock) Play() error {
	m.mu.Lock()
	m.playCalls++
	if m.playErr != nil {
		err := m.playErr
		m.mu.Unlock()
		return err
	}
	if m.state == Playing {
		m.mu.Unlock()
		return nil
	}
	if !m.state.HasSource() {
		m.mu.Unlock()
		return ErrNotLoaded
	}
	m.state = Playing
	m.mu.Unlock()

	m.emit(EventPlay, nil)
	return nil
}

func (m *Mock) Pause() {
	m.mu.Lock()
	if m.state != Playing {
		m.mu.Unlock()
		return
	}
	m.state = Paused
	m.mu.Unlock()
	m.emit(EventPause, nil)
}

func (m *Mock) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Stopped
	m.locator = ""
	m.position = 0
}

func (m *Mock) Seek(pos time.Duration) error {
	m.mu.Lock()
	m.seekCalls = append(m.seekCalls, pos)
	if !m.state.HasSource() {
		m.mu.Unlock()
		return ErrNotLoaded
	}
	m.position = pos
	if m.state == Ended {
		m.state = Paused
	}
	m.mu.Unlock()
	m.emit(EventSeeked, nil)
	return nil
}

func (m *Mock) SetVolume(level float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = min(max(level, 0), 1)
}

func (m *Mock) SetMuted(muted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.muted = muted
}

func (m *Mock) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Mock) Position() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.position
}

func (m *Mock) Duration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.duration
}

func (m *Mock) Buffered() int {
	if m.State().HasSource() {
		return 1
	}
	return 0
}

func (m *Mock) Close() error {
	m.Stop()
	return nil
}

// Test helpers

func (m *Mock) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func (m *Mock) SetPlayError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playErr = err
}

func (m *Mock) SetDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duration = d
}

func (m *Mock) SetPosition(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.position = d
}

func (m *Mock) Locator() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locator
}

func (m *Mock) Level() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

func (m *Mock) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

func (m *Mock) LoadCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.loadCalls...)
}

func (m *Mock) PlayCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCalls
}

func (m *Mock) SeekCalls() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.seekCalls...)
}

// SimulateTimeUpdate moves the position and reports progress.
func (m *Mock) SimulateTimeUpdate(pos time.Duration) {
	m.SetPosition(pos)
	m.emit(EventTimeUpdate, nil)
}

// SimulateEnded simulates the source playing out.
func (m *Mock) SimulateEnded() {
	m.mu.Lock()
	m.state = Ended
	m.position = m.duration
	m.mu.Unlock()
	m.emit(EventEnded, nil)
}

// SimulateError simulates a decode or network failure.
func (m *Mock) SimulateError(err error) {
	m.mu.Lock()
	m.state = Failed
	m.mu.Unlock()
	m.emit(EventError, err)
}

// SimulateWaiting simulates a buffer underrun.
func (m *Mock) SimulateWaiting() {
	m.emit(EventWaiting, nil)
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
