package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/llehouerou/duet/internal/media"
)

// Settings holds the persisted player settings.
type Settings struct {
	Volume  int
	Muted   bool
	Repeat  media.RepeatMode
	Shuffle bool
}

// LoadSettings returns the saved settings, or nil if none were saved.
func (m *Manager) LoadSettings(ctx context.Context) (*Settings, error) {
	var s Settings
	var repeat string

	row := m.db.QueryRowContext(ctx, `SELECT volume, muted, repeat_mode, shuffle FROM settings WHERE id = 1`)
	err := row.Scan(&s.Volume, &s.Muted, &repeat, &s.Shuffle)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // no saved settings
	}
	if err != nil {
		return nil, err
	}

	if s.Repeat, err = media.ParseRepeatMode(repeat); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	return &s, nil
}

// SaveSettings persists s.
func (m *Manager) SaveSettings(ctx context.Context, s Settings) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO settings (id, volume, muted, repeat_mode, shuffle)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			volume = excluded.volume,
			muted = excluded.muted,
			repeat_mode = excluded.repeat_mode,
			shuffle = excluded.shuffle
	`, s.Volume, s.Muted, s.Repeat.String(), s.Shuffle)
	return err
}
