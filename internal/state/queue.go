package state

import (
	"context"
	"database/sql"
	"encoding/json"

	dbutil "github.com/llehouerou/duet/internal/db"
	"github.com/llehouerou/duet/internal/media"
)

const (
	listCurrent = "current"
	listQueue   = "queue"
	listBacklog = "backlog"
)

// Session is the saved queue: the current song, the queue and the backlog.
type Session struct {
	Current *media.Track
	Queue   []media.Track
	Backlog []media.Track
}

// Empty reports whether nothing was saved.
func (s Session) Empty() bool {
	return s.Current == nil && len(s.Queue) == 0 && len(s.Backlog) == 0
}

// LoadQueue returns the saved session.
func (m *Manager) LoadQueue(ctx context.Context) (*Session, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT list, track_id, path, name, artists, album, cover, duration_ms
		FROM queue_tracks
		ORDER BY list, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	s := &Session{}
	for rows.Next() {
		var list string
		var t media.Track
		var artists, album, cover sql.NullString
		var duration sql.NullInt64

		err := rows.Scan(&list, &t.ID, &t.Path, &t.Name, &artists, &album, &cover, &duration)
		if err != nil {
			return nil, err
		}

		if a := dbutil.String(artists); a != "" {
			if err := json.Unmarshal([]byte(a), &t.Artists); err != nil {
				return nil, err
			}
		}
		t.Album = dbutil.String(album)
		t.Cover = dbutil.String(cover)
		t.Duration = dbutil.Millis(duration)

		switch list {
		case listCurrent:
			s.Current = &t
		case listQueue:
			s.Queue = append(s.Queue, t)
		case listBacklog:
			s.Backlog = append(s.Backlog, t)
		}
	}
	return s, rows.Err()
}

// SaveQueue replaces the saved session.
func (m *Manager) SaveQueue(ctx context.Context, s Session) error {
	return dbutil.WithTx(ctx, m.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM queue_tracks`); err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO queue_tracks (list, position, track_id, path, name, artists, album, cover, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		insert := func(list string, tracks []media.Track) error {
			for i, t := range tracks {
				var artists sql.NullString
				if len(t.Artists) > 0 {
					b, err := json.Marshal(t.Artists)
					if err != nil {
						return err
					}
					artists = dbutil.OptString(string(b))
				}
				_, err := stmt.ExecContext(ctx, list, i, t.ID, t.Path, t.Name, artists,
					dbutil.OptString(t.Album), dbutil.OptString(t.Cover), dbutil.OptMillis(t.Duration))
				if err != nil {
					return err
				}
			}
			return nil
		}

		if s.Current != nil {
			if err := insert(listCurrent, []media.Track{*s.Current}); err != nil {
				return err
			}
		}
		if err := insert(listQueue, s.Queue); err != nil {
			return err
		}
		return insert(listBacklog, s.Backlog)
	})
}
