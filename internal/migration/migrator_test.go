package migration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ddlkit"
	"ddlkit/drivers/db/sqlite"
	"ddlkit/internal/logger"
)

func setupTestMigrator(t *testing.T) (*Migrator, *sqlx.DB) {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migr := NewMigrator(db, logger.Nop())
	migr.EnableLog(false)
	return migr, db
}

func usersTable() *ddlkit.Table {
	t := ddlkit.NewTable(ddlkit.MySQL, "users")
	t.Columns.Int("id").Primary()
	t.Columns.Varchar("name", 64)
	return t
}

func createUsers() Migration {
	tbl := usersTable()
	return Migration{Version: 1, Name: "create_users", Up: CreateTable(tbl), Down: DropTable(tbl)}
}

func addEmail() Migration {
	up := ddlkit.NewAlterTable(ddlkit.MySQL, "users")
	up.AddColumn(ddlkit.NewColumn(ddlkit.MySQL, "email").Type(ddlkit.TypeVarchar).Length(128).Nullable())
	down := ddlkit.NewAlterTable(ddlkit.MySQL, "users").DropColumn("email")
	return Migration{Version: 2, Name: "add_email", Up: Alter(up), Down: Alter(down)}
}

func columnNames(t *testing.T, db *sqlx.DB, table string) []string {
	t.Helper()
	var names []string
	require.NoError(t, db.SelectContext(context.Background(), &names,
		fmt.Sprintf("SELECT name FROM pragma_table_info('%s') ORDER BY cid", table)))
	return names
}

func TestMigrator_Migrate_Initial(t *testing.T) {
	migr, db := setupTestMigrator(t)
	ctx := context.Background()
	require.NoError(t, migr.Register(addEmail(), createUsers()))

	n, err := migr.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	assert.Equal(t, []string{"id", "name", "email"}, columnNames(t, db, "users"))

	applied, err := migr.Applied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, int64(1), applied[0].Version)
	assert.Equal(t, "create_users", applied[0].Description)
	assert.NotEmpty(t, applied[0].AppliedAt)
	assert.Equal(t, int64(2), applied[1].Version)
	assert.Equal(t, "add_email", applied[1].Description)
}

func TestMigrator_Migrate_AlreadyApplied(t *testing.T) {
	migr, db := setupTestMigrator(t)
	ctx := context.Background()
	require.NoError(t, migr.Register(createUsers()))

	_, err := migr.Migrate(ctx)
	require.NoError(t, err)

	n, err := migr.Migrate(ctx)
	require.NoError(t, err, "migrating again should do nothing and succeed")
	assert.Zero(t, n)

	var count []int
	require.NoError(t, db.SelectContext(ctx, &count, "SELECT COUNT(*) FROM schema_migrations"))
	assert.Equal(t, []int{1}, count)

	// A migration registered later is picked up on the next run.
	require.NoError(t, migr.Register(addEmail()))
	pending, err := migr.Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].Version)
}

func TestMigrator_Migrate_WithError(t *testing.T) {
	migr, _ := setupTestMigrator(t)
	ctx := context.Background()
	require.NoError(t, migr.Register(
		createUsers(),
		Migration{Version: 2, Name: "create_invalid", Up: Statements("CREATE TABEL invalid (id int)")},
		Migration{Version: 3, Name: "never_reached", Up: Statements("CREATE TABLE later (id int)")},
	))

	n, err := migr.Migrate(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Contains(t, err.Error(), "failed to execute migration 2 (create_invalid)")
	assert.Contains(t, err.Error(), "CREATE TABEL")

	applied, err := migr.Applied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1, "migrations before the failure stay recorded")
	assert.Equal(t, int64(1), applied[0].Version)
}

func TestMigrator_Migrate_RenderError(t *testing.T) {
	migr, _ := setupTestMigrator(t)
	empty := ddlkit.NewTable(ddlkit.MySQL, "empty")
	require.NoError(t, migr.Register(Migration{Version: 1, Name: "empty", Up: CreateTable(empty)}))

	_, err := migr.Migrate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ddlkit.ErrNoColumns)
	assert.True(t, ddlkit.IsConfiguration(err))
}

func TestMigrator_Migrate_CanceledContext(t *testing.T) {
	migr, _ := setupTestMigrator(t)
	require.NoError(t, migr.Register(createUsers()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	n, err := migr.Migrate(ctx)
	require.Error(t, err)
	assert.Zero(t, n)
}

func TestMigrator_Register(t *testing.T) {
	migr, _ := setupTestMigrator(t)

	require.NoError(t, migr.Register(createUsers()))
	err := migr.Register(Migration{Version: 1, Name: "again", Up: Statements("SELECT 1")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.AlreadyExists))

	err = migr.Register(Migration{Version: 0, Name: "zero", Up: Statements("SELECT 1")})
	assert.True(t, errors.Is(err, errors.NotValid))

	err = migr.Register(Migration{Version: 5, Name: "no_up"})
	assert.True(t, errors.Is(err, errors.NotValid))

	require.NoError(t, migr.Register(Migration{Version: 10, Name: "ten", Up: Statements("SELECT 1")}, addEmail()))
	var versions []int64
	for _, m := range migr.Migrations() {
		versions = append(versions, m.Version)
	}
	assert.Equal(t, []int64{1, 2, 10}, versions)
}

func TestMigrator_Rollback(t *testing.T) {
	migr, db := setupTestMigrator(t)
	ctx := context.Background()
	require.NoError(t, migr.Register(createUsers(), addEmail()))

	require.NoError(t, migr.Rollback(ctx), "rollback with nothing applied is a no-op")

	_, err := migr.Migrate(ctx)
	require.NoError(t, err)

	require.NoError(t, migr.Rollback(ctx))
	assert.Equal(t, []string{"id", "name"}, columnNames(t, db, "users"))
	applied, err := migr.Applied(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 1)
	assert.Equal(t, int64(1), applied[0].Version)

	require.NoError(t, migr.Rollback(ctx))
	assert.Empty(t, columnNames(t, db, "users"))
	applied, err = migr.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrator_RollbackWithoutDown(t *testing.T) {
	migr, _ := setupTestMigrator(t)
	ctx := context.Background()
	require.NoError(t, migr.Register(Migration{Version: 1, Name: "one_way", Up: Statements("CREATE TABLE t (id int)")}))
	_, err := migr.Migrate(ctx)
	require.NoError(t, err)

	err = migr.Rollback(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotSupported))
}

func TestMigrator_RollbackUnknownVersion(t *testing.T) {
	migr, db := setupTestMigrator(t)
	ctx := context.Background()
	_, err := migr.Applied(ctx)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, "INSERT INTO schema_migrations (version, description, applied_at) VALUES ('7', 'gone', 'x')")
	require.NoError(t, err)

	err = migr.Rollback(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestMigrator_FromDir(t *testing.T) {
	migr, db := setupTestMigrator(t)
	ctx := context.Background()

	dir := t.TempDir()
	files := map[string]string{
		"00001_create_users.up.sql":   "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT);",
		"00001_create_users.down.sql": "DROP TABLE users;",
		"00002_add_email.up.sql":      "ALTER TABLE users ADD COLUMN email TEXT;\n-- seed\nINSERT INTO users (id, name) VALUES (1, 'a;b');",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}

	migrations, err := FromDir(dir)
	require.NoError(t, err)
	require.NoError(t, migr.Register(migrations...))

	n, err := migr.Migrate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var names []string
	require.NoError(t, db.SelectContext(ctx, &names, "SELECT name FROM users"))
	assert.Equal(t, []string{"a;b"}, names)
}
