package ddlkit

import (
	"strconv"
	"strings"
)

// Column type names understood by the family lookup. Any other name is accepted
// and rendered as FamilyOther.
const (
	TypeTinyInt    = "tinyint"
	TypeSmallInt   = "smallint"
	TypeMediumInt  = "mediumint"
	TypeInt        = "int"
	TypeInteger    = "integer"
	TypeBigInt     = "bigint"
	TypeDecimal    = "decimal"
	TypeNumeric    = "numeric"
	TypeFloat      = "float"
	TypeDouble     = "double"
	TypeReal       = "real"
	TypeBit        = "bit"
	TypeChar       = "char"
	TypeVarchar    = "varchar"
	TypeTinyText   = "tinytext"
	TypeText       = "text"
	TypeMediumText = "mediumtext"
	TypeLongText   = "longtext"
	TypeBinary     = "binary"
	TypeVarbinary  = "varbinary"
	TypeTinyBlob   = "tinyblob"
	TypeBlob       = "blob"
	TypeMediumBlob = "mediumblob"
	TypeLongBlob   = "longblob"
	TypeEnum       = "enum"
	TypeSet        = "set"
	TypeDate       = "date"
	TypeTime       = "time"
	TypeDatetime   = "datetime"
	TypeTimestamp  = "timestamp"
	TypeYear       = "year"
	TypeJSON       = "json"
	TypeGeometry   = "geometry"
	TypePoint      = "point"
	TypeLineString = "linestring"
	TypePolygon    = "polygon"
)

// Family groups column types that share length shape and type attributes.
type Family int

const (
	FamilyOther Family = iota
	FamilyInteger
	FamilyDecimal
	FamilyString
	FamilyBinary
	FamilyList
	FamilyTemporal
	FamilySpatial
	FamilyJSON
)

var familyNames = map[Family]string{
	FamilyOther:    "other",
	FamilyInteger:  "integer",
	FamilyDecimal:  "decimal",
	FamilyString:   "string",
	FamilyBinary:   "binary",
	FamilyList:     "list",
	FamilyTemporal: "temporal",
	FamilySpatial:  "spatial",
	FamilyJSON:     "json",
}

// String returns the lower-case family name.
func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return "family(" + strconv.Itoa(int(f)) + ")"
}

var typeFamilies = map[string]Family{
	TypeTinyInt:    FamilyInteger,
	TypeSmallInt:   FamilyInteger,
	TypeMediumInt:  FamilyInteger,
	TypeInt:        FamilyInteger,
	TypeInteger:    FamilyInteger,
	TypeBigInt:     FamilyInteger,
	TypeDecimal:    FamilyDecimal,
	TypeNumeric:    FamilyDecimal,
	TypeFloat:      FamilyDecimal,
	TypeDouble:     FamilyDecimal,
	TypeReal:       FamilyDecimal,
	TypeChar:       FamilyString,
	TypeVarchar:    FamilyString,
	TypeTinyText:   FamilyString,
	TypeText:       FamilyString,
	TypeMediumText: FamilyString,
	TypeLongText:   FamilyString,
	TypeBinary:     FamilyBinary,
	TypeVarbinary:  FamilyBinary,
	TypeTinyBlob:   FamilyBinary,
	TypeBlob:       FamilyBinary,
	TypeMediumBlob: FamilyBinary,
	TypeLongBlob:   FamilyBinary,
	TypeEnum:       FamilyList,
	TypeSet:        FamilyList,
	TypeDate:       FamilyTemporal,
	TypeTime:       FamilyTemporal,
	TypeDatetime:   FamilyTemporal,
	TypeTimestamp:  FamilyTemporal,
	TypeYear:       FamilyTemporal,
	TypeJSON:       FamilyJSON,
	TypeGeometry:   FamilySpatial,
	TypePoint:      FamilySpatial,
	TypeLineString: FamilySpatial,
	TypePolygon:    FamilySpatial,
}

// FamilyOf returns the family of a column type name. Lookup is case-insensitive.
func FamilyOf(typ string) Family {
	return typeFamilies[strings.ToLower(strings.TrimSpace(typ))]
}

// lengthShape selects how the length step renders for a family.
type lengthShape int

const (
	lengthScalar lengthShape = iota
	lengthPrecision
	lengthList
	lengthNone
)

// attribute is one optional type attribute: present reports whether it was set,
// render produces its fragment.
type attribute struct {
	present func(c *Column) bool
	render  func(c *Column) string
}

type familyTraits struct {
	length     lengthShape
	attributes []attribute
}

// Numeric flags render in slot order: signed, unsigned, zerofill, AUTO_INCREMENT.
var numericAttributes = []attribute{
	{
		present: func(c *Column) bool { return c.signed },
		render:  func(c *Column) string { return " signed" },
	},
	{
		present: func(c *Column) bool { return c.unsigned },
		render:  func(c *Column) string { return " unsigned" },
	},
	{
		present: func(c *Column) bool { return c.zerofill },
		render:  func(c *Column) string { return " zerofill" },
	},
	{
		present: func(c *Column) bool { return c.autoIncrement },
		render:  func(c *Column) string { return " AUTO_INCREMENT" },
	},
}

var stringAttributes = []attribute{
	{
		present: func(c *Column) bool { return c.charset != "" },
		render:  func(c *Column) string { return " CHARACTER SET " + c.dialector.QuoteValue(c.charset) },
	},
	{
		present: func(c *Column) bool { return c.collation != "" },
		render:  func(c *Column) string { return " COLLATE " + c.dialector.QuoteValue(c.collation) },
	},
}

var families = map[Family]familyTraits{
	FamilyOther:    {length: lengthScalar},
	FamilyInteger:  {length: lengthScalar, attributes: numericAttributes},
	FamilyDecimal:  {length: lengthPrecision, attributes: numericAttributes},
	FamilyString:   {length: lengthScalar, attributes: stringAttributes},
	FamilyBinary:   {length: lengthScalar},
	FamilyList:     {length: lengthList, attributes: stringAttributes},
	FamilyTemporal: {length: lengthScalar},
	FamilySpatial:  {length: lengthNone},
	FamilyJSON:     {length: lengthNone},
}

func traitsOf(f Family) familyTraits {
	if t, ok := families[f]; ok {
		return t
	}
	return families[FamilyOther]
}
