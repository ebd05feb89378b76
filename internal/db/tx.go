package db

import (
	"context"
	"database/sql"
	"time"
)

// WithTx runs fn in a transaction, committing when fn returns nil and
// rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// String reads an optional text column; NULL reads as "".
func String(n sql.NullString) string {
	if !n.Valid {
		return ""
	}
	return n.String
}

// Millis reads an optional millisecond column as a duration; NULL reads as 0.
func Millis(n sql.NullInt64) time.Duration {
	if !n.Valid {
		return 0
	}
	return time.Duration(n.Int64) * time.Millisecond
}

// OptString stores "" as NULL.
func OptString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// OptMillis stores a zero duration as NULL.
func OptMillis(d time.Duration) sql.NullInt64 {
	return sql.NullInt64{Int64: d.Milliseconds(), Valid: d > 0}
}
