package state

import (
	"context"
	"sync"

	"github.com/llehouerou/duet/internal/media"
)

// Mock is a test double for Manager.
type Mock struct {
	mu            sync.Mutex
	settings      *Settings
	session       *Session
	settingsSaves int
	queueSaves    int
	saveErr       error
	closed        bool
}

// NewMock creates a new mock state manager for testing.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) LoadSettings(context.Context) (*Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return nil, nil //nolint:nilnil // no saved settings
	}
	s := *m.settings
	return &s, nil
}

func (m *Mock) SaveSettings(_ context.Context, s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settingsSaves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.settings = &s
	return nil
}

func (m *Mock) LoadQueue(context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return &Session{}, nil
	}
	s := copySession(*m.session)
	return &s, nil
}

func (m *Mock) SaveQueue(_ context.Context, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queueSaves++
	if m.saveErr != nil {
		return m.saveErr
	}
	s = copySession(s)
	m.session = &s
	return nil
}

func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func copySession(s Session) Session {
	return Session{
		Current: media.ClonePtr(s.Current),
		Queue:   media.CloneAll(s.Queue),
		Backlog: media.CloneAll(s.Backlog),
	}
}

// Test helpers

func (m *Mock) SetSettings(s *Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = s
}

func (m *Mock) SetSession(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
}

func (m *Mock) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *Mock) Settings() *Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

func (m *Mock) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Saves returns how many times settings and the queue were saved.
func (m *Mock) Saves() (settings, queue int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settingsSaves, m.queueSaves
}

func (m *Mock) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Verify Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
