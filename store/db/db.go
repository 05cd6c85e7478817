// Package db provides the database driver factory.
package db

import (
	"github.com/pkg/errors"

	"github.com/hrygo/recall/internal/profile"
	"github.com/hrygo/recall/store"
	"github.com/hrygo/recall/store/db/postgres"
	"github.com/hrygo/recall/store/db/sqlite"
)

// NewDBDriver creates a new database driver based on the profile.
func NewDBDriver(profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "postgres":
		return postgres.NewDB(profile)
	case "sqlite":
		return sqlite.NewDB(profile)
	default:
		return nil, errors.Errorf("unsupported database driver: %s", profile.Driver)
	}
}
