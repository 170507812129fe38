// Package schema loads table declarations from TOML files and turns them into
// ddlkit tables.
//
//	[[table]]
//	name = "users"
//	engine = "InnoDB"
//
//	  [[table.column]]
//	  name = "id"
//	  type = "bigint"
//	  unsigned = true
//	  auto_increment = true
//
//	  [[table.index]]
//	  kind = "primaryKey"
//	  columns = ["id"]
package schema

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/juju/errors"

	"ddlkit"
)

// Document is the root of a schema file.
type Document struct {
	Tables []Table `toml:"table"`
}

// Table declares one CREATE TABLE statement.
type Table struct {
	Name        string   `toml:"name"`
	Version     int64    `toml:"version"` // migration version, defaults to the table's position
	IfNotExists bool     `toml:"if_not_exists"`
	Engine      string   `toml:"engine"`
	Charset     string   `toml:"charset"`
	Collation   string   `toml:"collation"`
	Comment     *string  `toml:"comment"`
	Columns     []Column `toml:"column"`
	Indexes     []Index  `toml:"index"`
}

// Column mirrors the column descriptor setters.
type Column struct {
	Name          string        `toml:"name"`
	Type          string        `toml:"type"`
	Length        *int          `toml:"length"`
	Precision     *int          `toml:"precision"`
	Decimals      *int          `toml:"decimals"`
	Values        []interface{} `toml:"values"`
	Nullable      bool          `toml:"nullable"`
	Default       interface{}   `toml:"default"`
	DefaultNull   bool          `toml:"default_null"`
	DefaultRaw    string        `toml:"default_raw"` // emitted verbatim, e.g. CURRENT_TIMESTAMP
	Comment       *string       `toml:"comment"`
	Charset       string        `toml:"charset"`
	Collation     string        `toml:"collation"`
	Signed        bool          `toml:"signed"`
	Unsigned      bool          `toml:"unsigned"`
	Zerofill      bool          `toml:"zerofill"`
	AutoIncrement bool          `toml:"auto_increment"`
	Unique        bool          `toml:"unique"`
	Primary       bool          `toml:"primary"`
}

// Index declares a key. Kind is the factory method name: key, primaryKey,
// uniqueKey, fulltextKey, spatialKey or foreignKey.
type Index struct {
	Kind       string      `toml:"kind"`
	Columns    []string    `toml:"columns"`
	Name       string      `toml:"name"`
	Constraint string      `toml:"constraint"`
	References *References `toml:"references"`
	OnDelete   string      `toml:"on_delete"`
	OnUpdate   string      `toml:"on_update"`
}

// References is the target of a foreign key.
type References struct {
	Table   string   `toml:"table"`
	Columns []string `toml:"columns"`
}

// Parse decodes a schema document. Unknown keys are rejected.
func Parse(data string) (*Document, error) {
	doc := &Document{}
	md, err := toml.Decode(data, doc)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	return doc, nil
}

// Load reads and decodes the schema file at path.
func Load(path string) (*Document, error) {
	doc := &Document{}
	md, err := toml.DecodeFile(path, doc)
	if err != nil {
		return nil, errors.Annotatef(err, "schema file %s", path)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, errors.Annotatef(err, "schema file %s", path)
	}
	return doc, nil
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return errors.NotValidf("keys %s", strings.Join(keys, ", "))
}

// Build turns every declared table into a ddlkit table using d.
func (doc *Document) Build(d ddlkit.Dialector) ([]*ddlkit.Table, error) {
	tables := make([]*ddlkit.Table, 0, len(doc.Tables))
	for _, decl := range doc.Tables {
		t, err := decl.Build(d)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// Build turns the declaration into a ddlkit table.
func (decl Table) Build(d ddlkit.Dialector) (*ddlkit.Table, error) {
	if decl.Name == "" {
		return nil, ddlkit.ErrTableNameEmpty
	}
	t := ddlkit.NewTable(d, decl.Name).
		Engine(decl.Engine).
		Charset(decl.Charset).
		Collation(decl.Collation)
	if decl.IfNotExists {
		t.IfNotExists()
	}
	if decl.Comment != nil {
		t.Comment(*decl.Comment)
	}

	for _, col := range decl.Columns {
		if err := col.apply(t.Columns.Add(col.Name, col.Type)); err != nil {
			return nil, errors.Annotatef(err, "table %s: column %s", decl.Name, col.Name)
		}
	}
	for i, ix := range decl.Indexes {
		if err := ix.apply(t.Indexes); err != nil {
			return nil, errors.Annotatef(err, "table %s: index %d (%s)", decl.Name, i, ix.Kind)
		}
	}
	return t, nil
}

func (col Column) apply(c *ddlkit.Column) error {
	if col.Length != nil {
		c.Length(*col.Length)
	}
	if col.Precision != nil {
		if col.Decimals != nil {
			c.Precision(*col.Precision, *col.Decimals)
		} else {
			c.Precision(*col.Precision)
		}
	} else if col.Decimals != nil {
		return errors.NotValidf("decimals without precision")
	}
	if len(col.Values) > 0 {
		c.Values(col.Values[0], col.Values[1:]...)
	}
	if col.Nullable {
		c.Nullable()
	}

	defaults := 0
	for _, set := range []bool{col.Default != nil, col.DefaultNull, col.DefaultRaw != ""} {
		if set {
			defaults++
		}
	}
	if defaults > 1 {
		return errors.NotValidf("more than one of default, default_null and default_raw")
	}
	switch {
	case col.Default != nil:
		c.Default(col.Default)
	case col.DefaultNull:
		c.Default(nil)
	case col.DefaultRaw != "":
		c.Default(ddlkit.Raw(col.DefaultRaw))
	}

	if col.Comment != nil {
		c.Comment(*col.Comment)
	}
	if col.Charset != "" {
		c.Charset(col.Charset)
	}
	if col.Collation != "" {
		c.Collation(col.Collation)
	}
	if col.Signed {
		c.Signed()
	}
	if col.Unsigned {
		c.Unsigned()
	}
	if col.Zerofill {
		c.Zerofill()
	}
	if col.AutoIncrement {
		c.AutoIncrement()
	}
	if col.Unique {
		c.Unique()
	}
	if col.Primary {
		c.Primary()
	}
	return nil
}

func (ix Index) apply(indexes *ddlkit.Indexes) error {
	if len(ix.Columns) == 0 {
		return errors.NotValidf("index without columns")
	}
	idx, err := indexes.Call(ix.Kind, ix.Columns[0], ix.Columns[1:]...)
	if err != nil {
		return err
	}
	if ix.Name != "" {
		idx.Name(ix.Name)
	}
	if ix.Constraint != "" {
		idx.Constraint(ix.Constraint)
	}
	if ix.References != nil {
		if len(ix.References.Columns) == 0 {
			return errors.NotValidf("references without columns")
		}
		idx.References(ix.References.Table, ix.References.Columns[0], ix.References.Columns[1:]...)
	}
	if ix.OnDelete != "" {
		idx.OnDelete(ddlkit.ReferenceAction(ix.OnDelete))
	}
	if ix.OnUpdate != "" {
		idx.OnUpdate(ddlkit.ReferenceAction(ix.OnUpdate))
	}
	return nil
}
