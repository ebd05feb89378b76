package state

import (
	"database/sql"
)

const currentSchemaVersion = 1

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			volume INTEGER NOT NULL DEFAULT 100,
			muted INTEGER NOT NULL DEFAULT 0,
			repeat_mode TEXT NOT NULL DEFAULT 'off',
			shuffle INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS queue_tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			list TEXT NOT NULL CHECK (list IN ('current', 'queue', 'backlog')),
			position INTEGER NOT NULL,
			track_id TEXT NOT NULL,
			path TEXT NOT NULL,
			name TEXT NOT NULL,
			artists TEXT,
			album TEXT,
			cover TEXT,
			duration_ms INTEGER,
			UNIQUE(list, position)
		);

		CREATE INDEX IF NOT EXISTS idx_queue_tracks_list ON queue_tracks(list, position);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
