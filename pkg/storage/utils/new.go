// Package storageutils selects a storage.Driver from configuration.
package storageutils

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/storage/inmemory"
	"github.com/papercomputeco/bridge/pkg/storage/postgres"
	"github.com/papercomputeco/bridge/pkg/storage/sqlite"
)

type NewDriverOpts struct {
	SQLitePath  string
	PostgresDSN string
	Logger      *zap.Logger
}

// NewDriver returns a SQLite driver when a path is set, a PostgreSQL driver
// when a DSN is set, and an in-memory driver otherwise. Setting both is an
// error.
func NewDriver(ctx context.Context, o *NewDriverOpts) (storage.Driver, error) {
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}

	switch {
	case o.SQLitePath != "" && o.PostgresDSN != "":
		return nil, errors.New("only one of sqlite path and postgres dsn may be set")

	case o.SQLitePath != "":
		driver, err := sqlite.NewSQLiteDriver(ctx, o.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite storer: %w", err)
		}
		log.Info("using SQLite storage", zap.String("path", o.SQLitePath))
		return driver, nil

	case o.PostgresDSN != "":
		driver, err := postgres.NewDriver(ctx, o.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL storer: %w", err)
		}
		log.Info("using PostgreSQL storage")
		return driver, nil

	default:
		log.Info("using in-memory storage")
		return inmemory.NewDriver(), nil
	}
}
