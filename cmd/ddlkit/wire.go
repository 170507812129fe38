//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/jmoiron/sqlx"

	"ddlkit"
	"ddlkit/internal/migration"
)

// initializeApp wires the logger, database and migrator for cfg.
func initializeApp(cfg Config) (*App, func(), error) {
	wire.Build(
		provideLogger,
		provideDB,
		wire.Bind(new(ddlkit.DBAdapter), new(*sqlx.DB)),
		migration.NewMigrator,
		wire.Struct(new(App), "*"),
	)
	return nil, nil, nil
}
