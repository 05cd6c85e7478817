// Package sqlite implements the vector index on SQLite.
//
// SQLite is supported on a best-effort basis for development and testing only.
// Vectors are stored as little-endian float32 BLOBs and searched with a
// brute-force cosine scan in Go, which is fine for the message volumes a dev
// instance sees but does not scale like pgvector.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	// Import the SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/recall/internal/profile"
	"github.com/hrygo/recall/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a database specified by a driver-specific data source name.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// Connect to the database with some sane settings:
	// - No foreign key constraints: explicit to prevent surprises on SQLite upgrades.
	// - Journal mode set to WAL: the recommended journal mode for most applications
	//   as it prevents locking issues.
	//
	// With the `modernc.org/sqlite` driver, each pragma must be prefixed with `_pragma=`.
	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// SQLite handles concurrency differently; a single connection is optimal with WAL.
	sqliteDB.SetMaxOpenConns(1)
	sqliteDB.SetMaxIdleConns(1)
	sqliteDB.SetConnMaxLifetime(0)
	sqliteDB.SetConnMaxIdleTime(0)

	driver := DB{db: sqliteDB, profile: profile}
	return &driver, nil
}

// Migrate creates the schema.
func (d *DB) Migrate(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS chat_message (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT NOT NULL UNIQUE,
		content TEXT NOT NULL,
		author TEXT NOT NULL,
		created_at TEXT NOT NULL,
		embedding BLOB NOT NULL,
		created_ts BIGINT NOT NULL
	)`
	if _, err := d.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "failed to create chat_message table")
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}
