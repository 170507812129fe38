// Command ddlkit renders MySQL DDL from TOML schema files and applies it
// through the migration runner.
//
//	ddlkit render  --schema schema.toml [--drop]
//	ddlkit migrate --schema schema.toml | --dir migrations [--status | --rollback]
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/juju/errors"
	"github.com/spf13/pflag"

	"ddlkit"
	"ddlkit/internal/migration"
	"ddlkit/schema"
)

const usage = `usage:
  ddlkit render  --schema FILE [--drop]
  ddlkit migrate --schema FILE | --dir DIR [--status | --rollback]`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "ddlkit:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("missing command\n" + usage)
	}
	switch args[0] {
	case "render":
		return runRender(args[1:], out)
	case "migrate":
		return runMigrate(ctx, args[1:], out)
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage)
		return nil
	default:
		return errors.NotFoundf("command %q", args[0])
	}
}

func runRender(args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	addCommonFlags(fs)
	drop := fs.Bool("drop", false, "emit DROP TABLE IF EXISTS before each CREATE TABLE")
	if err := fs.Parse(args); err != nil {
		return errors.Trace(err)
	}
	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}
	if cfg.Schema == "" {
		return errors.NotValidf("render without --schema")
	}

	tables, err := loadTables(cfg.Schema)
	if err != nil {
		return err
	}
	for i, t := range tables {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if *drop {
			stmt, err := t.DropSQL(true)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s;\n", stmt)
		}
		stmt, err := t.CreateSQL()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s;\n", stmt)
	}
	return nil
}

func runMigrate(ctx context.Context, args []string, out io.Writer) error {
	fs := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	addCommonFlags(fs)
	fs.String("dir", "", "directory of <version>_<name>.(up|down).sql scripts")
	status := fs.Bool("status", false, "list migrations and whether they are applied")
	rollback := fs.Bool("rollback", false, "revert the most recently applied migration")
	if err := fs.Parse(args); err != nil {
		return errors.Trace(err)
	}
	if *status && *rollback {
		return errors.NotValidf("--status combined with --rollback")
	}
	cfg, err := loadConfig(fs)
	if err != nil {
		return err
	}

	migrations, err := loadMigrations(cfg)
	if err != nil {
		return err
	}

	app, cleanup, err := initializeApp(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := app.Migrator.Register(migrations...); err != nil {
		return err
	}

	switch {
	case *status:
		return printStatus(ctx, app.Migrator, out)
	case *rollback:
		return app.Migrator.Rollback(ctx)
	}
	n, err := app.Migrator.Migrate(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "applied %d migration(s)\n", n)
	return nil
}

func loadTables(path string) ([]*ddlkit.Table, error) {
	doc, err := schema.Load(path)
	if err != nil {
		return nil, err
	}
	return doc.Build(ddlkit.DefaultDialector())
}

// loadMigrations reads migrations from either a schema file or a script directory.
// Each schema table becomes one create/drop migration, versioned by its
// declared version or its position in the file.
func loadMigrations(cfg Config) ([]migration.Migration, error) {
	switch {
	case cfg.Schema != "" && cfg.Dir != "":
		return nil, errors.NotValidf("both --schema and --dir")
	case cfg.Dir != "":
		return migration.FromDir(cfg.Dir)
	case cfg.Schema == "":
		return nil, errors.NotValidf("migrate without --schema or --dir")
	}

	doc, err := schema.Load(cfg.Schema)
	if err != nil {
		return nil, err
	}
	tables, err := doc.Build(ddlkit.DefaultDialector())
	if err != nil {
		return nil, err
	}
	migrations := make([]migration.Migration, len(tables))
	for i, t := range tables {
		version := doc.Tables[i].Version
		if version == 0 {
			version = int64(i + 1)
		}
		migrations[i] = migration.Migration{
			Version: version,
			Name:    "create_" + t.Name(),
			Up:      migration.CreateTable(t),
			Down:    migration.DropTable(t),
		}
	}
	return migrations, nil
}

func printStatus(ctx context.Context, m *migration.Migrator, out io.Writer) error {
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	appliedAt := make(map[int64]string, len(applied))
	for _, a := range applied {
		appliedAt[a.Version] = a.AppliedAt
	}
	for _, mig := range m.Migrations() {
		if at, ok := appliedAt[mig.Version]; ok {
			fmt.Fprintf(out, "%d\t%s\tapplied %s\n", mig.Version, mig.Name, at)
			continue
		}
		fmt.Fprintf(out, "%d\t%s\tpending\n", mig.Version, mig.Name)
	}
	return nil
}
