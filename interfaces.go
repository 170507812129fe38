// interfaces.go
// Core interfaces for ddlkit: Dialector, Renderer and DBAdapter.
// These are public and intended for use by callers and driver packages.

package ddlkit

import (
	"context"
	"database/sql"
)

// Dialector defines how to quote identifiers and literal values for the target SQL dialect.
type Dialector interface {
	Name() string                        // Dialect name (e.g. "mysql")
	Quote(identifier string) string      // Quote a SQL identifier (table/column/index name)
	QuoteValue(value interface{}) string // Quote a literal value (defaults, comments, enum members)
}

// Renderer is implemented by every descriptor and aggregator that produces a SQL fragment.
type Renderer interface {
	Render() (string, error)
}

// DBAdapter is the minimal database surface the migration runner needs.
// *sqlx.DB satisfies it.
type DBAdapter interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	DriverName() string
	Close() error
}
