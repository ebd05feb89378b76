package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// Each connection to :memory: is its own database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE tracks (id TEXT PRIMARY KEY, album TEXT, duration_ms INTEGER)`)
	require.NoError(t, err)
	return db
}

func countTracks(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM tracks`).Scan(&n))
	return n
}

func insertTrack(tx *sql.Tx, id string) error {
	_, err := tx.Exec(`INSERT INTO tracks (id) VALUES (?)`, id)
	return err
}

func TestWithTx(t *testing.T) {
	errAbort := errors.New("abort")

	tests := []struct {
		name    string
		fn      func(tx *sql.Tx) error
		wantErr error
		want    int
	}{
		{
			name: "commits",
			fn: func(tx *sql.Tx) error {
				return insertTrack(tx, "a")
			},
			want: 1,
		},
		{
			name: "commits every statement",
			fn: func(tx *sql.Tx) error {
				for _, id := range []string{"a", "b", "c"} {
					if err := insertTrack(tx, id); err != nil {
						return err
					}
				}
				return nil
			},
			want: 3,
		},
		{
			name: "rolls back on error",
			fn: func(tx *sql.Tx) error {
				if err := insertTrack(tx, "a"); err != nil {
					return err
				}
				if err := insertTrack(tx, "b"); err != nil {
					return err
				}
				return errAbort
			},
			wantErr: errAbort,
		},
		{
			name: "rolls back on statement failure",
			fn: func(tx *sql.Tx) error {
				if err := insertTrack(tx, "a"); err != nil {
					return err
				}
				return insertTrack(tx, "a")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := openMemory(t)

			err := WithTx(context.Background(), db, tt.fn)

			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.want == 0:
				require.Error(t, err)
			default:
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, countTracks(t, db))
		})
	}
}

func TestWithTx_CanceledContext(t *testing.T) {
	db := openMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := WithTx(ctx, db, func(*sql.Tx) error {
		called = true
		return nil
	})

	require.Error(t, err)
	assert.False(t, called)
}

func TestOptionalColumns_RoundTrip(t *testing.T) {
	db := openMemory(t)

	err := WithTx(context.Background(), db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`INSERT INTO tracks VALUES (?, ?, ?)`,
			"full", OptString("Blue Train"), OptMillis(90500*time.Millisecond)); err != nil {
			return err
		}
		_, err := tx.Exec(`INSERT INTO tracks VALUES (?, ?, ?)`, "empty", OptString(""), OptMillis(0))
		return err
	})
	require.NoError(t, err)

	read := func(id string) (string, time.Duration, bool) {
		var album sql.NullString
		var dur sql.NullInt64
		require.NoError(t, db.QueryRow(`SELECT album, duration_ms FROM tracks WHERE id = ?`, id).Scan(&album, &dur))
		return String(album), Millis(dur), album.Valid || dur.Valid
	}

	album, dur, stored := read("full")
	assert.Equal(t, "Blue Train", album)
	assert.Equal(t, 90500*time.Millisecond, dur)
	assert.True(t, stored)

	album, dur, stored = read("empty")
	assert.Empty(t, album)
	assert.Zero(t, dur)
	assert.False(t, stored, "empty values are stored as NULL")
}

func TestReaders_Null(t *testing.T) {
	assert.Empty(t, String(sql.NullString{String: "ignored"}))
	assert.Zero(t, Millis(sql.NullInt64{Int64: 1500}))
	assert.Equal(t, 1500*time.Millisecond, Millis(sql.NullInt64{Int64: 1500, Valid: true}))
}
