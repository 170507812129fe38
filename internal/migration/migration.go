package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/juju/errors"

	"ddlkit"
)

// Steps produces the DDL statements of one migration direction.
// Statements are rendered when the migration runs, not when it is declared.
type Steps func() ([]string, error)

// Migration is one versioned schema change.
type Migration struct {
	Version int64
	Name    string
	Up      Steps
	Down    Steps // optional; a migration without Down cannot be rolled back
}

// CreateTable renders t.CreateSQL.
func CreateTable(t *ddlkit.Table) Steps {
	return func() ([]string, error) {
		sql, err := t.CreateSQL()
		if err != nil {
			return nil, err
		}
		return []string{sql}, nil
	}
}

// DropTable renders DROP TABLE IF EXISTS for t.
func DropTable(t *ddlkit.Table) Steps {
	return func() ([]string, error) {
		sql, err := t.DropSQL(true)
		if err != nil {
			return nil, err
		}
		return []string{sql}, nil
	}
}

// Alter renders a.SQL.
func Alter(a *ddlkit.AlterTable) Steps {
	return func() ([]string, error) {
		sql, err := a.SQL()
		if err != nil {
			return nil, err
		}
		return []string{sql}, nil
	}
}

// Statements returns fixed SQL statements.
func Statements(stmts ...string) Steps {
	return func() ([]string, error) {
		return stmts, nil
	}
}

// Chain concatenates the statements of several steps in order.
func Chain(steps ...Steps) Steps {
	return func() ([]string, error) {
		var out []string
		for _, s := range steps {
			stmts, err := s()
			if err != nil {
				return nil, err
			}
			out = append(out, stmts...)
		}
		return out, nil
	}
}

// MigrationFile is a migration script found on disk.
type MigrationFile struct {
	Version   int64
	Name      string
	Direction string // "up" or "down"
	FilePath  string
}

var migrationFilenameRegex = regexp.MustCompile(`^(\d+)_([a-zA-Z0-9_]+)\.(up|down)\.sql$`)

// DiscoverMigrations lists the migration scripts in dir ordered by version,
// "down" before "up" within a version. A missing directory yields no files.
func DiscoverMigrations(dir string) ([]MigrationFile, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []MigrationFile{}, nil
		}
		return nil, errors.Annotatef(err, "failed to read migrations directory %s", dir)
	}

	var migrations []MigrationFile
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		match := migrationFilenameRegex.FindStringSubmatch(file.Name())
		if len(match) != 4 {
			continue
		}

		// Versions that overflow int64 are skipped like any other foreign file.
		version, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			continue
		}

		migrations = append(migrations, MigrationFile{
			Version:   version,
			Name:      match[2],
			Direction: match[3],
			FilePath:  filepath.Join(dir, file.Name()),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		if migrations[i].Version != migrations[j].Version {
			return migrations[i].Version < migrations[j].Version
		}
		return migrations[i].Direction < migrations[j].Direction
	})

	return migrations, nil
}

// FromDir turns the scripts in dir into migrations. Scripts are read and split
// into statements when the migration runs.
func FromDir(dir string) ([]Migration, error) {
	files, err := DiscoverMigrations(dir)
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int64]*Migration)
	var order []int64
	for _, f := range files {
		mig, ok := byVersion[f.Version]
		if !ok {
			mig = &Migration{Version: f.Version, Name: f.Name}
			byVersion[f.Version] = mig
			order = append(order, f.Version)
		}
		if mig.Name != f.Name {
			return nil, errors.NotValidf("migration %d has conflicting names %q and %q", f.Version, mig.Name, f.Name)
		}
		switch f.Direction {
		case "up":
			mig.Up = scriptSteps(f.FilePath)
		case "down":
			mig.Down = scriptSteps(f.FilePath)
		}
	}

	migrations := make([]Migration, 0, len(order))
	for _, v := range order {
		mig := byVersion[v]
		if mig.Up == nil {
			return nil, errors.NotValidf("migration %d (%s) without an up script", mig.Version, mig.Name)
		}
		migrations = append(migrations, *mig)
	}
	return migrations, nil
}

func scriptSteps(path string) Steps {
	return func() ([]string, error) {
		script, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Annotatef(err, "failed to read migration file %s", path)
		}
		return SplitStatements(string(script)), nil
	}
}

// SplitStatements splits a script on semicolons that are outside quotes and
// comments. Comments are dropped and empty statements are skipped.
func SplitStatements(script string) []string {
	var (
		stmts []string
		cur   strings.Builder
		quote rune
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	runes := []rune(script)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if quote != 0 {
			cur.WriteRune(r)
			if r == '\\' && quote != '`' && i+1 < len(runes) {
				i++
				cur.WriteRune(runes[i])
				continue
			}
			if r == quote {
				quote = 0
			}
			continue
		}

		switch {
		case r == '\'' || r == '"' || r == '`':
			quote = r
			cur.WriteRune(r)
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-', r == '#':
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			cur.WriteRune('\n')
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			j := i + 2
			for j+1 < len(runes) && !(runes[j] == '*' && runes[j+1] == '/') {
				j++
			}
			i = j + 1
			cur.WriteRune(' ')
		case r == ';':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return stmts
}

func (m Migration) String() string {
	return fmt.Sprintf("%d_%s", m.Version, m.Name)
}
