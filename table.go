package ddlkit

import (
	"strings"

	"github.com/juju/errors"
)

// Table assembles a CREATE TABLE statement from its column list and keys.
type Table struct {
	dialector Dialector
	name      string

	Columns *Columns
	Indexes *Indexes

	ifNotExists bool
	engine      string
	charset     string
	collation   string
	comment     *string
}

// NewTable creates an empty table. A nil dialector falls back to DefaultDialector.
func NewTable(d Dialector, name string) *Table {
	if d == nil {
		d = DefaultDialector()
	}
	return &Table{
		dialector: d,
		name:      name,
		Columns:   NewColumns(d),
		Indexes:   NewIndexes(d),
	}
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// IfNotExists adds IF NOT EXISTS to CREATE TABLE.
func (t *Table) IfNotExists() *Table {
	t.ifNotExists = true
	return t
}

// Engine sets the ENGINE table option. Empty leaves it out.
func (t *Table) Engine(engine string) *Table {
	t.engine = engine
	return t
}

// Charset sets DEFAULT CHARSET. Empty leaves it out.
func (t *Table) Charset(charset string) *Table {
	t.charset = charset
	return t
}

// Collation sets COLLATE. Empty leaves it out.
func (t *Table) Collation(collation string) *Table {
	t.collation = collation
	return t
}

// Comment sets the table COMMENT.
func (t *Table) Comment(comment string) *Table {
	t.comment = &comment
	return t
}

// CreateSQL renders the CREATE TABLE statement:
//
//	CREATE TABLE `users` (
//	 `id` int NOT NULL,
//	 PRIMARY KEY (`id`)
//	) ENGINE=InnoDB
func (t *Table) CreateSQL() (string, error) {
	if t.name == "" {
		return "", ErrTableNameEmpty
	}
	if t.Columns.Len() == 0 {
		return "", errors.Annotatef(ErrNoColumns, "table %s", t.name)
	}
	columns, err := t.Columns.Render()
	if err != nil {
		return "", errors.Annotatef(err, "table %s", t.name)
	}
	body := columns
	if t.Indexes.Len() > 0 {
		indexes, err := t.Indexes.Render()
		if err != nil {
			return "", errors.Annotatef(err, "table %s", t.name)
		}
		body += clauseSeparator + indexes
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if t.ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(t.dialector.Quote(t.name))
	sb.WriteString(" (\n")
	sb.WriteString(body)
	sb.WriteString("\n)")
	sb.WriteString(t.renderOptions())
	return sb.String(), nil
}

func (t *Table) renderOptions() string {
	var sb strings.Builder
	if t.engine != "" {
		sb.WriteString(" ENGINE=" + t.engine)
	}
	if t.charset != "" {
		sb.WriteString(" DEFAULT CHARSET=" + t.charset)
	}
	if t.collation != "" {
		sb.WriteString(" COLLATE=" + t.collation)
	}
	if t.comment != nil {
		sb.WriteString(" COMMENT=" + t.dialector.QuoteValue(*t.comment))
	}
	return sb.String()
}

// DropSQL renders DROP TABLE [IF EXISTS] for the table.
func (t *Table) DropSQL(ifExists bool) (string, error) {
	if t.name == "" {
		return "", ErrTableNameEmpty
	}
	if ifExists {
		return "DROP TABLE IF EXISTS " + t.dialector.Quote(t.name), nil
	}
	return "DROP TABLE " + t.dialector.Quote(t.name), nil
}

// --- ALTER TABLE ---

// AlterTable assembles an ALTER TABLE statement out of ordered alterations.
type AlterTable struct {
	dialector   Dialector
	name        string
	alterations []func() (string, error)
}

// NewAlterTable creates an empty ALTER TABLE statement.
func NewAlterTable(d Dialector, name string) *AlterTable {
	if d == nil {
		d = DefaultDialector()
	}
	return &AlterTable{dialector: d, name: name}
}

// AddColumn appends ADD COLUMN <definition>.
func (a *AlterTable) AddColumn(c *Column) *AlterTable {
	a.alterations = append(a.alterations, func() (string, error) {
		sql, err := c.Render()
		if err != nil {
			return "", errors.Annotatef(err, "column %s", c.Name())
		}
		return "ADD COLUMN" + sql, nil
	})
	return a
}

// AddIndex appends ADD <key definition> and returns the single-key definition to configure.
func (a *AlterTable) AddIndex() *IndexDefinition {
	def := NewIndexDefinition(a.dialector)
	a.alterations = append(a.alterations, func() (string, error) {
		sql, err := def.Render()
		if err != nil {
			return "", err
		}
		return "ADD" + sql, nil
	})
	return def
}

// DropColumn adds DROP COLUMN name.
func (a *AlterTable) DropColumn(name string) *AlterTable {
	return a.addStatic("DROP COLUMN " + a.dialector.Quote(name))
}

// DropIndex adds DROP INDEX name.
func (a *AlterTable) DropIndex(name string) *AlterTable {
	return a.addStatic("DROP INDEX " + a.dialector.Quote(name))
}

// DropForeignKey adds DROP FOREIGN KEY name.
func (a *AlterTable) DropForeignKey(name string) *AlterTable {
	return a.addStatic("DROP FOREIGN KEY " + a.dialector.Quote(name))
}

// DropPrimaryKey adds DROP PRIMARY KEY.
func (a *AlterTable) DropPrimaryKey() *AlterTable {
	return a.addStatic("DROP PRIMARY KEY")
}

func (a *AlterTable) addStatic(clause string) *AlterTable {
	a.alterations = append(a.alterations, func() (string, error) { return clause, nil })
	return a
}

// SQL renders the statement, one alteration per line.
func (a *AlterTable) SQL() (string, error) {
	if a.name == "" {
		return "", ErrTableNameEmpty
	}
	if len(a.alterations) == 0 {
		return "", errors.Annotatef(ErrNoAlterSpecs, "table %s", a.name)
	}
	parts := make([]string, 0, len(a.alterations))
	for _, alteration := range a.alterations {
		sql, err := alteration()
		if err != nil {
			return "", errors.Annotatef(err, "alter table %s", a.name)
		}
		parts = append(parts, " "+sql)
	}
	return "ALTER TABLE " + a.dialector.Quote(a.name) + "\n" + strings.Join(parts, clauseSeparator), nil
}
