package ddlkit

import (
	"strings"

	"github.com/juju/errors"
)

// clauseSeparator joins the clauses of a multi-member definition.
const clauseSeparator = ",\n"

// --- Columns ---

// Columns is the ordered column list of one table. It owns the descriptors its
// factory methods create.
type Columns struct {
	dialector Dialector
	columns   []*Column
}

// NewColumns creates an empty column list. A nil dialector falls back to DefaultDialector.
func NewColumns(d Dialector) *Columns {
	if d == nil {
		d = DefaultDialector()
	}
	return &Columns{dialector: d}
}

// Add registers a column of an arbitrary type and returns it for further configuration.
func (cs *Columns) Add(name, typ string) *Column {
	c := NewColumn(cs.dialector, name).Type(typ)
	cs.columns = append(cs.columns, c)
	return c
}

// Len returns the number of registered columns.
func (cs *Columns) Len() int { return len(cs.columns) }

// All returns the registered columns in declaration order.
func (cs *Columns) All() []*Column {
	return append([]*Column(nil), cs.columns...)
}

// Render joins the column clauses with ",\n".
func (cs *Columns) Render() (string, error) {
	parts := make([]string, 0, len(cs.columns))
	for _, c := range cs.columns {
		sql, err := c.Render()
		if err != nil {
			return "", errors.Annotatef(err, "column %s", c.Name())
		}
		parts = append(parts, sql)
	}
	return strings.Join(parts, clauseSeparator), nil
}

// TinyInt adds a tinyint column.
func (cs *Columns) TinyInt(name string) *Column { return cs.Add(name, TypeTinyInt) }

// SmallInt adds a smallint column.
func (cs *Columns) SmallInt(name string) *Column { return cs.Add(name, TypeSmallInt) }

// MediumInt adds a mediumint column.
func (cs *Columns) MediumInt(name string) *Column { return cs.Add(name, TypeMediumInt) }

// Int adds an int column.
func (cs *Columns) Int(name string) *Column { return cs.Add(name, TypeInt) }

// BigInt adds a bigint column.
func (cs *Columns) BigInt(name string) *Column { return cs.Add(name, TypeBigInt) }

// Bit adds a bit column.
func (cs *Columns) Bit(name string) *Column { return cs.Add(name, TypeBit) }

// Decimal adds a decimal column; digits and decimals are optional.
func (cs *Columns) Decimal(name string, precision ...int) *Column {
	return withPrecision(cs.Add(name, TypeDecimal), precision)
}

// Float adds a float column; digits and decimals are optional.
func (cs *Columns) Float(name string, precision ...int) *Column {
	return withPrecision(cs.Add(name, TypeFloat), precision)
}

// Double adds a double column; digits and decimals are optional.
func (cs *Columns) Double(name string, precision ...int) *Column {
	return withPrecision(cs.Add(name, TypeDouble), precision)
}

func withPrecision(c *Column, precision []int) *Column {
	if len(precision) == 0 {
		return c
	}
	return c.Precision(precision[0], precision[1:]...)
}

// Char adds a char(length) column.
func (cs *Columns) Char(name string, length int) *Column {
	return cs.Add(name, TypeChar).Length(length)
}

// Varchar adds a varchar(length) column.
func (cs *Columns) Varchar(name string, length int) *Column {
	return cs.Add(name, TypeVarchar).Length(length)
}

// TinyText adds a tinytext column.
func (cs *Columns) TinyText(name string) *Column { return cs.Add(name, TypeTinyText) }

// Text adds a text column.
func (cs *Columns) Text(name string) *Column { return cs.Add(name, TypeText) }

// MediumText adds a mediumtext column.
func (cs *Columns) MediumText(name string) *Column { return cs.Add(name, TypeMediumText) }

// LongText adds a longtext column.
func (cs *Columns) LongText(name string) *Column { return cs.Add(name, TypeLongText) }

// Binary adds a binary(length) column.
func (cs *Columns) Binary(name string, length int) *Column {
	return cs.Add(name, TypeBinary).Length(length)
}

// Varbinary adds a varbinary(length) column.
func (cs *Columns) Varbinary(name string, length int) *Column {
	return cs.Add(name, TypeVarbinary).Length(length)
}

// Blob adds a blob column.
func (cs *Columns) Blob(name string) *Column { return cs.Add(name, TypeBlob) }

// Enum adds an enum column with at least one member.
func (cs *Columns) Enum(name string, first interface{}, rest ...interface{}) *Column {
	return cs.Add(name, TypeEnum).Values(first, rest...)
}

// Set adds a set column with at least one member.
func (cs *Columns) Set(name string, first interface{}, rest ...interface{}) *Column {
	return cs.Add(name, TypeSet).Values(first, rest...)
}

// Date adds a date column.
func (cs *Columns) Date(name string) *Column { return cs.Add(name, TypeDate) }

// Time adds a time column.
func (cs *Columns) Time(name string) *Column { return cs.Add(name, TypeTime) }

// Datetime adds a datetime column.
func (cs *Columns) Datetime(name string) *Column { return cs.Add(name, TypeDatetime) }

// Timestamp adds a timestamp column.
func (cs *Columns) Timestamp(name string) *Column { return cs.Add(name, TypeTimestamp) }

// Year adds a year column.
func (cs *Columns) Year(name string) *Column { return cs.Add(name, TypeYear) }

// JSON adds a json column.
func (cs *Columns) JSON(name string) *Column { return cs.Add(name, TypeJSON) }

// Geometry adds a geometry column.
func (cs *Columns) Geometry(name string) *Column { return cs.Add(name, TypeGeometry) }

// Point adds a point column.
func (cs *Columns) Point(name string) *Column { return cs.Add(name, TypePoint) }

// --- Index factories ---

// indexSink is a container the key factory methods register new descriptors in.
type indexSink interface {
	dialect() Dialector
	add(idx *Index)
}

func createIndex(s indexSink, kind KeyKind, column string, columns []string) *Index {
	idx := NewIndex(s.dialect(), kind, column, columns...)
	s.add(idx)
	return idx
}

// factoryMethods maps the method names accepted by Call to key kinds.
var factoryMethods = map[string]KeyKind{
	"key":         KindKey,
	"primaryKey":  KindPrimaryKey,
	"uniqueKey":   KindUniqueKey,
	"fulltextKey": KindFulltextKey,
	"foreignKey":  KindForeignKey,
	"spatialKey":  KindSpatialKey,
}

func callFactory(s indexSink, method string, column string, columns []string) (*Index, error) {
	kind, ok := factoryMethods[method]
	if !ok {
		return nil, errors.NotFoundf("method %q", method)
	}
	return createIndex(s, kind, column, columns), nil
}

// --- Indexes ---

// Indexes is the ordered set of keys of one table. The zero value is an empty
// set using DefaultDialector.
type Indexes struct {
	dialector Dialector
	indexes   []*Index
}

// NewIndexes creates an empty key set. A nil dialector falls back to DefaultDialector.
func NewIndexes(d Dialector) *Indexes {
	if d == nil {
		d = DefaultDialector()
	}
	return &Indexes{dialector: d}
}

func (is *Indexes) dialect() Dialector {
	if is.dialector == nil {
		is.dialector = DefaultDialector()
	}
	return is.dialector
}

func (is *Indexes) add(idx *Index) { is.indexes = append(is.indexes, idx) }

// Key adds a plain KEY.
func (is *Indexes) Key(column string, columns ...string) *Index {
	return createIndex(is, KindKey, column, columns)
}

// PrimaryKey adds a PRIMARY KEY.
func (is *Indexes) PrimaryKey(column string, columns ...string) *Index {
	return createIndex(is, KindPrimaryKey, column, columns)
}

// UniqueKey adds a UNIQUE KEY.
func (is *Indexes) UniqueKey(column string, columns ...string) *Index {
	return createIndex(is, KindUniqueKey, column, columns)
}

// FulltextKey adds a FULLTEXT KEY.
func (is *Indexes) FulltextKey(column string, columns ...string) *Index {
	return createIndex(is, KindFulltextKey, column, columns)
}

// SpatialKey adds a SPATIAL KEY.
func (is *Indexes) SpatialKey(column string, columns ...string) *Index {
	return createIndex(is, KindSpatialKey, column, columns)
}

// ForeignKey adds a FOREIGN KEY. References must be set before rendering.
func (is *Indexes) ForeignKey(column string, columns ...string) *Index {
	return createIndex(is, KindForeignKey, column, columns)
}

// Call invokes the factory method named method ("key", "primaryKey", "uniqueKey",
// "fulltextKey", "foreignKey" or "spatialKey"). Any other name fails with a NotFound error.
func (is *Indexes) Call(method string, column string, columns ...string) (*Index, error) {
	return callFactory(is, method, column, columns)
}

// Len returns the number of registered keys.
func (is *Indexes) Len() int { return len(is.indexes) }

// All returns the registered keys in declaration order.
func (is *Indexes) All() []*Index {
	return append([]*Index(nil), is.indexes...)
}

// Render joins the key clauses with ",\n".
func (is *Indexes) Render() (string, error) {
	parts := make([]string, 0, len(is.indexes))
	for _, idx := range is.indexes {
		sql, err := idx.Render()
		if err != nil {
			return "", errors.Annotatef(err, "%s (%s)", idx.Kind(), strings.Join(idx.columns, ", "))
		}
		parts = append(parts, sql)
	}
	return strings.Join(parts, clauseSeparator), nil
}

// --- IndexDefinition ---

// IndexDefinition holds exactly one key, as used by ALTER TABLE ... ADD.
// Each factory call replaces the previous key.
type IndexDefinition struct {
	dialector Dialector
	index     *Index
}

// NewIndexDefinition creates an empty single-key definition.
func NewIndexDefinition(d Dialector) *IndexDefinition {
	if d == nil {
		d = DefaultDialector()
	}
	return &IndexDefinition{dialector: d}
}

func (def *IndexDefinition) dialect() Dialector {
	if def.dialector == nil {
		def.dialector = DefaultDialector()
	}
	return def.dialector
}

func (def *IndexDefinition) add(idx *Index) { def.index = idx }

// Key sets a plain KEY.
func (def *IndexDefinition) Key(column string, columns ...string) *Index {
	return createIndex(def, KindKey, column, columns)
}

// PrimaryKey sets a PRIMARY KEY.
func (def *IndexDefinition) PrimaryKey(column string, columns ...string) *Index {
	return createIndex(def, KindPrimaryKey, column, columns)
}

// UniqueKey sets a UNIQUE KEY.
func (def *IndexDefinition) UniqueKey(column string, columns ...string) *Index {
	return createIndex(def, KindUniqueKey, column, columns)
}

// FulltextKey sets a FULLTEXT KEY.
func (def *IndexDefinition) FulltextKey(column string, columns ...string) *Index {
	return createIndex(def, KindFulltextKey, column, columns)
}

// SpatialKey sets a SPATIAL KEY.
func (def *IndexDefinition) SpatialKey(column string, columns ...string) *Index {
	return createIndex(def, KindSpatialKey, column, columns)
}

// ForeignKey sets a FOREIGN KEY. References must be set before rendering.
func (def *IndexDefinition) ForeignKey(column string, columns ...string) *Index {
	return createIndex(def, KindForeignKey, column, columns)
}

// Call invokes the factory method named method, like Indexes.Call.
func (def *IndexDefinition) Call(method string, column string, columns ...string) (*Index, error) {
	return callFactory(def, method, column, columns)
}

// Index returns the configured key, or nil.
func (def *IndexDefinition) Index() *Index { return def.index }

// Render returns the configured key clause, failing when no key was configured.
func (def *IndexDefinition) Render() (string, error) {
	if def.index == nil {
		return "", ErrNoKeyConfigured
	}
	return def.index.Render()
}
