package ddlkit

import (
	"strconv"
	"strings"
)

// Column describes one table column and renders its definition clause.
type Column struct {
	dialector Dialector
	name      string
	typ       string

	length    *int
	precision *int
	decimals  *int
	values    []interface{}

	nullable   bool
	hasDefault bool
	defaultVal interface{}
	comment    *string

	charset   string
	collation string

	signed        bool
	unsigned      bool
	zerofill      bool
	autoIncrement bool

	unique  bool
	primary bool
}

// NewColumn creates a column descriptor. The column renders NOT NULL unless Nullable is called.
// A nil dialector falls back to DefaultDialector.
func NewColumn(d Dialector, name string) *Column {
	if d == nil {
		d = DefaultDialector()
	}
	return &Column{dialector: d, name: name}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// TypeName returns the configured type name.
func (c *Column) TypeName() string { return c.typ }

// Family returns the type family selected by the type name.
func (c *Column) Family() Family { return FamilyOf(c.typ) }

// Type sets the SQL type name (e.g. "int", "varchar").
func (c *Column) Type(typ string) *Column {
	c.typ = typ
	return c
}

// Length sets a scalar length, display width or fractional seconds precision.
// On decimal types it renders as (max), like Precision without decimals.
func (c *Column) Length(n int) *Column {
	c.length = &n
	return c
}

// Precision sets the (max[,decimals]) length of decimal and float columns.
func (c *Column) Precision(digits int, decimals ...int) *Column {
	c.precision = &digits
	c.decimals = nil
	if len(decimals) > 0 {
		d := decimals[0]
		c.decimals = &d
	}
	return c
}

// Values sets the members of an enum or set column. At least one value is required.
func (c *Column) Values(first interface{}, rest ...interface{}) *Column {
	c.values = append([]interface{}{first}, rest...)
	return c
}

// Nullable lets the column hold NULL.
func (c *Column) Nullable() *Column {
	c.nullable = true
	return c
}

// NotNull reverts Nullable; columns are NOT NULL by default.
func (c *Column) NotNull() *Column {
	c.nullable = false
	return c
}

// Default sets the default value. nil renders DEFAULT NULL; use Raw for expressions.
func (c *Column) Default(value interface{}) *Column {
	c.hasDefault = true
	c.defaultVal = value
	return c
}

// Comment sets the COMMENT clause.
func (c *Column) Comment(comment string) *Column {
	c.comment = &comment
	return c
}

// Charset sets CHARACTER SET on string and list columns.
func (c *Column) Charset(charset string) *Column {
	c.charset = charset
	return c
}

// Collation sets COLLATE on string and list columns.
func (c *Column) Collation(collation string) *Column {
	c.collation = collation
	return c
}

// Signed adds the signed attribute to numeric columns.
func (c *Column) Signed() *Column {
	c.signed = true
	return c
}

// Unsigned adds the unsigned attribute to numeric columns.
func (c *Column) Unsigned() *Column {
	c.unsigned = true
	return c
}

// Zerofill adds the zerofill attribute to numeric columns.
func (c *Column) Zerofill() *Column {
	c.zerofill = true
	return c
}

// AutoIncrement adds AUTO_INCREMENT to numeric columns.
func (c *Column) AutoIncrement() *Column {
	c.autoIncrement = true
	return c
}

// Unique adds an inline UNIQUE KEY to the column.
func (c *Column) Unique() *Column {
	c.unique = true
	return c
}

// Primary adds an inline PRIMARY KEY to the column.
func (c *Column) Primary() *Column {
	c.primary = true
	return c
}

// --- Rendering ---

type columnStep struct {
	applies func(c *Column) bool
	render  func(c *Column) (string, error)
}

func always(*Column) bool { return true }

// columnPipeline is the fixed clause order of a column definition.
var columnPipeline = []columnStep{
	{always, (*Column).renderName},
	{always, (*Column).renderType},
	{always, (*Column).renderLength},
	{always, (*Column).renderTypeAttributes},
	{always, (*Column).renderNull},
	{func(c *Column) bool { return c.hasDefault }, (*Column).renderDefault},
	{func(c *Column) bool { return c.comment != nil }, (*Column).renderComment},
	{func(c *Column) bool { return c.unique }, (*Column).renderUniqueKey},
	{func(c *Column) bool { return c.primary }, (*Column).renderPrimaryKey},
}

// Render returns the column definition clause, e.g. " `id` int unsigned NOT NULL".
// A missing type fails before any other step.
func (c *Column) Render() (string, error) {
	if strings.TrimSpace(c.typ) == "" {
		return "", ErrTypeEmpty
	}
	var sb strings.Builder
	for _, step := range columnPipeline {
		if !step.applies(c) {
			continue
		}
		part, err := step.render(c)
		if err != nil {
			return "", err
		}
		sb.WriteString(part)
	}
	return sb.String(), nil
}

func (c *Column) renderName() (string, error) {
	if c.name == "" {
		return "", ErrNameEmpty
	}
	return " " + c.dialector.Quote(c.name), nil
}

func (c *Column) renderType() (string, error) {
	if strings.TrimSpace(c.typ) == "" {
		return "", ErrTypeEmpty
	}
	return " " + c.typ, nil
}

func (c *Column) renderLength() (string, error) {
	f := c.Family()
	shape := traitsOf(f).length
	if err := c.checkLengthSettings(f, shape); err != nil {
		return "", err
	}
	switch shape {
	case lengthPrecision:
		if c.length != nil {
			return "(" + strconv.Itoa(*c.length) + ")", nil
		}
		return c.renderPrecision(), nil
	case lengthList:
		return c.renderValues()
	case lengthNone:
		return "", nil
	default:
		if c.length == nil {
			return "", nil
		}
		return "(" + strconv.Itoa(*c.length) + ")", nil
	}
}

// checkLengthSettings rejects length, precision and values the family has no slot for.
func (c *Column) checkLengthSettings(f Family, shape lengthShape) error {
	if c.length != nil && shape != lengthScalar && shape != lengthPrecision {
		return unsupportedError("length", f)
	}
	if c.precision != nil && shape != lengthPrecision {
		return unsupportedError("precision", f)
	}
	if c.length != nil && c.precision != nil {
		return ErrLengthConflict
	}
	if len(c.values) > 0 && shape != lengthList {
		return unsupportedError("values", f)
	}
	return nil
}

func (c *Column) renderPrecision() string {
	if c.precision == nil {
		return ""
	}
	if c.decimals == nil {
		return "(" + strconv.Itoa(*c.precision) + ")"
	}
	return "(" + strconv.Itoa(*c.precision) + "," + strconv.Itoa(*c.decimals) + ")"
}

func (c *Column) renderValues() (string, error) {
	if len(c.values) == 0 {
		return "", ErrValuesEmpty
	}
	quoted := make([]string, len(c.values))
	for i, v := range c.values {
		quoted[i] = c.dialector.QuoteValue(v)
	}
	return "(" + strings.Join(quoted, ", ") + ")", nil
}

func (c *Column) renderTypeAttributes() (string, error) {
	var sb strings.Builder
	for _, attr := range traitsOf(c.Family()).attributes {
		if attr.present(c) {
			sb.WriteString(attr.render(c))
		}
	}
	return sb.String(), nil
}

func (c *Column) renderNull() (string, error) {
	if c.nullable {
		return " NULL", nil
	}
	return " NOT NULL", nil
}

func (c *Column) renderDefault() (string, error) {
	return " DEFAULT " + c.dialector.QuoteValue(c.defaultVal), nil
}

func (c *Column) renderComment() (string, error) {
	return " COMMENT " + c.dialector.QuoteValue(*c.comment), nil
}

func (c *Column) renderUniqueKey() (string, error) {
	return " UNIQUE KEY", nil
}

func (c *Column) renderPrimaryKey() (string, error) {
	return " PRIMARY KEY", nil
}
