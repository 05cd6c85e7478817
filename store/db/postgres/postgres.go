// Package postgres implements the vector index on PostgreSQL with pgvector.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"

	"github.com/hrygo/recall/internal/profile"
	"github.com/hrygo/recall/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a connection to the PostgreSQL database specified by the DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}
	if err := pgDB.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	driver := DB{db: pgDB, profile: profile}
	return &driver, nil
}

// Migrate creates the schema. The embedding column dimension follows the
// configured embedding model, so switching models requires a reindex.
func (d *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chat_message (
			id BIGSERIAL PRIMARY KEY,
			uid TEXT NOT NULL UNIQUE,
			content TEXT NOT NULL,
			author TEXT NOT NULL,
			created_at TEXT NOT NULL,
			embedding vector(%d) NOT NULL,
			created_ts BIGINT NOT NULL
		)`, d.profile.EmbeddingDimensions),
		`CREATE INDEX IF NOT EXISTS idx_chat_message_created_ts ON chat_message (created_ts)`,
	}

	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to execute migration")
		}
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// placeholder returns the n-th positional parameter, e.g. $1.
func placeholder(n int) string {
	return "$" + fmt.Sprint(n)
}

// placeholders returns n comma-joined positional parameters, e.g. $1, $2, $3.
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}
