package sqlite

import (
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/juju/errors"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"ddlkit"
)

const (
	DriverName = "sqlite3"

	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
)

var _ ddlkit.DBAdapter = (*sqlx.DB)(nil)

// Open connects to a SQLite database and applies the default pool settings.
// In-memory databases are pinned to one long-lived connection, since each
// connection would otherwise see its own empty database.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect(DriverName, dsn)
	if err != nil {
		return nil, errors.Annotate(err, "failed to open sqlite database")
	}
	if isMemory(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
		return db, nil
	}
	db.SetMaxOpenConns(defaultMaxOpenConns)
	db.SetMaxIdleConns(defaultMaxIdleConns)
	db.SetConnMaxLifetime(defaultConnMaxLifetime)
	return db, nil
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
