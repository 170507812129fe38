package main

import (
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/juju/errors"
	"go.uber.org/zap"

	"ddlkit/drivers/db/mysql"
	"ddlkit/drivers/db/sqlite"
	"ddlkit/internal/logger"
	"ddlkit/internal/migration"
)

// App bundles what the migrate subcommand needs.
type App struct {
	Log      *zap.SugaredLogger
	Migrator *migration.Migrator
}

// --- Providers ---

func provideLogger(cfg Config) (*zap.SugaredLogger, func()) {
	log := logger.New(cfg.LogLevel)
	return log, func() { _ = log.Sync() }
}

// provideDB opens the configured database. Includes cleanup.
func provideDB(cfg Config, log *zap.SugaredLogger) (*sqlx.DB, func(), error) {
	if cfg.DSN == "" {
		return nil, nil, errors.NotValidf("empty DSN")
	}

	var (
		db  *sqlx.DB
		err error
	)
	switch strings.ToLower(cfg.Driver) {
	case mysql.DriverName:
		db, err = mysql.Open(cfg.DSN)
	case sqlite.DriverName, "sqlite":
		db, err = sqlite.Open(cfg.DSN)
	default:
		return nil, nil, errors.NotSupportedf("driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("Connected to %s database", db.DriverName())

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Errorf("Error closing database: %v", err)
		}
	}
	return db, cleanup, nil
}
