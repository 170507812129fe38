package migration

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"time"

	"github.com/juju/errors"
	"go.uber.org/zap"

	"ddlkit"
)

const migrationsTableName = "schema_migrations"

// Migrator applies registered migrations and records them in schema_migrations.
// Statements run one at a time without a surrounding transaction.
type Migrator struct {
	Db         ddlkit.DBAdapter
	dialector  ddlkit.Dialector
	log        *zap.SugaredLogger
	logEnabled bool
	migrations map[int64]Migration
}

// NewMigrator creates a Migrator. A nil logger disables logging.
func NewMigrator(db ddlkit.DBAdapter, log *zap.SugaredLogger) *Migrator {
	m := &Migrator{
		Db:         db,
		dialector:  ddlkit.DefaultDialector(),
		log:        log,
		logEnabled: log != nil,
		migrations: make(map[int64]Migration),
	}
	return m
}

// EnableLog enables/disables logging
func (m *Migrator) EnableLog(enable bool) {
	m.logEnabled = enable && m.log != nil
}

func (m *Migrator) logf(format string, args ...interface{}) {
	if m.logEnabled {
		m.log.Infof("[Migrator] "+format, args...)
	}
}

// Register adds migrations. Versions must be positive and unique.
func (m *Migrator) Register(migrations ...Migration) error {
	for _, mig := range migrations {
		if mig.Version <= 0 {
			return errors.NotValidf("migration version %d", mig.Version)
		}
		if mig.Up == nil {
			return errors.NotValidf("migration %s without up steps", mig)
		}
		if existing, ok := m.migrations[mig.Version]; ok {
			return errors.AlreadyExistsf("migration version %d (%s, registered as %s)", mig.Version, mig.Name, existing)
		}
		m.migrations[mig.Version] = mig
	}
	return nil
}

// Migrations returns the registered migrations ordered by version.
func (m *Migrator) Migrations() []Migration {
	out := make([]Migration, 0, len(m.migrations))
	for _, mig := range m.migrations {
		out = append(out, mig)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out
}

// migrationsTable describes schema_migrations with the same builder used for user tables.
func (m *Migrator) migrationsTable() *ddlkit.Table {
	t := ddlkit.NewTable(m.dialector, migrationsTableName).IfNotExists()
	t.Columns.Varchar("version", 255).Primary()
	t.Columns.Varchar("description", 255).Nullable()
	t.Columns.Varchar("applied_at", 64)
	return t
}

func (m *Migrator) ensureMigrationsTable(ctx context.Context) error {
	m.logf("Ensuring %s table exists...", migrationsTableName)
	stmt, err := m.migrationsTable().CreateSQL()
	if err != nil {
		return errors.Annotate(err, "failed to render migrations table")
	}
	if _, err := m.Db.ExecContext(ctx, stmt); err != nil {
		return errors.Annotatef(err, "failed to create %s", migrationsTableName)
	}
	return nil
}

// AppliedVersion is a record of the schema_migrations table.
type AppliedVersion struct {
	Version     int64
	Description string
	AppliedAt   string
}

type appliedRow struct {
	Version     string         `db:"version"`
	Description sql.NullString `db:"description"`
	AppliedAt   string         `db:"applied_at"`
}

// Applied returns the recorded migrations ordered by version.
func (m *Migrator) Applied(ctx context.Context) ([]AppliedVersion, error) {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return nil, err
	}
	return m.appliedVersions(ctx)
}

func (m *Migrator) appliedVersions(ctx context.Context) ([]AppliedVersion, error) {
	q := m.dialector.Quote
	query := "SELECT " + q("version") + ", " + q("description") + ", " + q("applied_at") +
		" FROM " + q(migrationsTableName)

	var rows []appliedRow
	if err := m.Db.SelectContext(ctx, &rows, query); err != nil {
		return nil, errors.Annotate(err, "failed to query applied versions")
	}

	applied := make([]AppliedVersion, 0, len(rows))
	for _, row := range rows {
		v, err := strconv.ParseInt(row.Version, 10, 64)
		if err != nil {
			return nil, errors.NotValidf("version %q in %s", row.Version, migrationsTableName)
		}
		applied = append(applied, AppliedVersion{
			Version:     v,
			Description: row.Description.String,
			AppliedAt:   row.AppliedAt,
		})
	}
	sort.Slice(applied, func(i, j int) bool { return applied[i].Version < applied[j].Version })
	m.logf("Found %d applied migrations.", len(applied))
	return applied, nil
}

// Pending returns the registered migrations that have not been applied yet.
func (m *Migrator) Pending(ctx context.Context) ([]Migration, error) {
	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}
	return m.pending(applied), nil
}

func (m *Migrator) pending(applied []AppliedVersion) []Migration {
	done := make(map[int64]bool, len(applied))
	for _, a := range applied {
		done[a.Version] = true
	}
	var out []Migration
	for _, mig := range m.Migrations() {
		if !done[mig.Version] {
			out = append(out, mig)
		}
	}
	return out
}

// Migrate applies pending migrations in version order and returns how many ran.
// It stops at the first failure; migrations applied before it stay recorded.
func (m *Migrator) Migrate(ctx context.Context) (int, error) {
	m.logf("Starting migration process...")

	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		m.logf("No pending migrations to apply.")
		return 0, nil
	}
	m.logf("Found %d pending migrations to apply.", len(pending))

	for i, mig := range pending {
		if err := ctx.Err(); err != nil {
			return i, errors.Trace(err)
		}
		m.logf("Applying migration %d: %s...", mig.Version, mig.Name)
		if err := m.run(ctx, mig.Up); err != nil {
			return i, errors.Annotatef(err, "failed to execute migration %d (%s)", mig.Version, mig.Name)
		}
		if err := m.recordAppliedVersion(ctx, mig); err != nil {
			return i, err
		}
		m.logf("Successfully applied migration %d: %s", mig.Version, mig.Name)
	}

	m.logf("Migration process completed successfully.")
	return len(pending), nil
}

// Rollback reverts the most recently applied migration. It is a no-op when
// nothing has been applied.
func (m *Migrator) Rollback(ctx context.Context) error {
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		m.logf("No applied migrations to roll back.")
		return nil
	}

	last := applied[len(applied)-1]
	mig, ok := m.migrations[last.Version]
	if !ok {
		return errors.NotFoundf("migration %d (%s)", last.Version, last.Description)
	}
	if mig.Down == nil {
		return errors.NotSupportedf("rolling back migration %d (%s)", mig.Version, mig.Name)
	}

	m.logf("Rolling back migration %d: %s...", mig.Version, mig.Name)
	if err := m.run(ctx, mig.Down); err != nil {
		return errors.Annotatef(err, "failed to roll back migration %d (%s)", mig.Version, mig.Name)
	}
	q := m.dialector.Quote
	del := "DELETE FROM " + q(migrationsTableName) + " WHERE " + q("version") + " = ?"
	if _, err := m.Db.ExecContext(ctx, del, strconv.FormatInt(mig.Version, 10)); err != nil {
		return errors.Annotatef(err, "failed to remove version %d", mig.Version)
	}
	m.logf("Rolled back migration %d: %s", mig.Version, mig.Name)
	return nil
}

func (m *Migrator) run(ctx context.Context, steps Steps) error {
	stmts, err := steps()
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		m.logf("Executing: %s", stmt)
		if _, err := m.Db.ExecContext(ctx, stmt); err != nil {
			return errors.Annotatef(err, "SQL: %s", stmt)
		}
	}
	return nil
}

func (m *Migrator) recordAppliedVersion(ctx context.Context, mig Migration) error {
	q := m.dialector.Quote
	query := "INSERT INTO " + q(migrationsTableName) +
		" (" + q("version") + ", " + q("description") + ", " + q("applied_at") + ") VALUES (?, ?, ?)"
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := m.Db.ExecContext(ctx, query, strconv.FormatInt(mig.Version, 10), mig.Name, now); err != nil {
		return errors.Annotatef(err, "failed to record applied version %d", mig.Version)
	}
	return nil
}
