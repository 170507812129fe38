package ddlkit

import (
	"strings"
)

// KeyKind is the key type clause of an index definition.
type KeyKind string

const (
	KindKey         KeyKind = "KEY"
	KindPrimaryKey  KeyKind = "PRIMARY KEY"
	KindUniqueKey   KeyKind = "UNIQUE KEY"
	KindFulltextKey KeyKind = "FULLTEXT KEY"
	KindSpatialKey  KeyKind = "SPATIAL KEY"
	KindForeignKey  KeyKind = "FOREIGN KEY"
)

// Index describes one key of a table and renders its definition clause.
// Its column list is fixed at construction.
type Index struct {
	dialector Dialector
	kind      KeyKind
	name      string
	columns   []string

	constraint string

	referenceTable   string
	referenceColumns []string
	onDelete         *ReferenceAction
	onUpdate         *ReferenceAction
}

// NewIndex creates an index of the given kind over at least one column.
// A nil dialector falls back to DefaultDialector.
func NewIndex(d Dialector, kind KeyKind, column string, columns ...string) *Index {
	if d == nil {
		d = DefaultDialector()
	}
	return &Index{
		dialector: d,
		kind:      kind,
		columns:   append([]string{column}, columns...),
	}
}

// NewKey creates a plain KEY descriptor.
func NewKey(d Dialector, column string, columns ...string) *Index {
	return NewIndex(d, KindKey, column, columns...)
}

// NewPrimaryKey creates a PRIMARY KEY descriptor.
func NewPrimaryKey(d Dialector, column string, columns ...string) *Index {
	return NewIndex(d, KindPrimaryKey, column, columns...)
}

// NewUniqueKey creates a UNIQUE KEY descriptor.
func NewUniqueKey(d Dialector, column string, columns ...string) *Index {
	return NewIndex(d, KindUniqueKey, column, columns...)
}

// NewFulltextKey creates a FULLTEXT KEY descriptor.
func NewFulltextKey(d Dialector, column string, columns ...string) *Index {
	return NewIndex(d, KindFulltextKey, column, columns...)
}

// NewSpatialKey creates a SPATIAL KEY descriptor.
func NewSpatialKey(d Dialector, column string, columns ...string) *Index {
	return NewIndex(d, KindSpatialKey, column, columns...)
}

// NewForeignKey creates a FOREIGN KEY descriptor. References must be set before rendering.
func NewForeignKey(d Dialector, column string, columns ...string) *Index {
	return NewIndex(d, KindForeignKey, column, columns...)
}

// Kind returns the key kind.
func (i *Index) Kind() KeyKind { return i.kind }

// Columns returns a copy of the indexed columns.
func (i *Index) Columns() []string {
	return append([]string(nil), i.columns...)
}

// Name sets the index name.
func (i *Index) Name(name string) *Index {
	i.name = name
	return i
}

// Constraint sets the CONSTRAINT name. It only renders for primary, unique and foreign keys.
func (i *Index) Constraint(name string) *Index {
	i.constraint = name
	return i
}

// References sets the referenced table and columns of a foreign key.
func (i *Index) References(table string, column string, columns ...string) *Index {
	i.referenceTable = table
	i.referenceColumns = append([]string{column}, columns...)
	return i
}

// OnDelete sets the ON DELETE action. The value is validated when rendering.
func (i *Index) OnDelete(action ReferenceAction) *Index {
	i.onDelete = &action
	return i
}

// OnUpdate sets the ON UPDATE action. The value is validated when rendering.
func (i *Index) OnUpdate(action ReferenceAction) *Index {
	i.onUpdate = &action
	return i
}

// --- Rendering ---

type indexRenderFunc func(i *Index) (string, error)

type indexStep struct {
	applies func(i *Index) bool
	render  indexRenderFunc
}

type kindTraits struct {
	constraint bool        // accepts a CONSTRAINT name
	attributes []indexStep // type attributes appended after the column list
}

var foreignKeyAttributes = []indexStep{
	{func(*Index) bool { return true }, (*Index).renderReferences},
	{func(i *Index) bool { return i.onDelete != nil }, (*Index).renderOnDelete},
	{func(i *Index) bool { return i.onUpdate != nil }, (*Index).renderOnUpdate},
}

var kinds = map[KeyKind]kindTraits{
	KindKey:         {},
	KindPrimaryKey:  {constraint: true},
	KindUniqueKey:   {constraint: true},
	KindFulltextKey: {},
	KindSpatialKey:  {},
	KindForeignKey:  {constraint: true, attributes: foreignKeyAttributes},
}

// indexPipeline is the fixed clause order of an index definition.
var indexPipeline = []indexStep{
	{func(*Index) bool { return true }, withConstraint((*Index).renderType)},
	{func(i *Index) bool { return i.name != "" }, (*Index).renderName},
	{func(*Index) bool { return true }, (*Index).renderColumns},
	{func(*Index) bool { return true }, (*Index).renderTypeAttributes},
}

// Render returns the index definition clause, e.g. " UNIQUE KEY `email` (`email`)".
func (i *Index) Render() (string, error) {
	return renderSteps(i, indexPipeline)
}

func renderSteps(i *Index, steps []indexStep) (string, error) {
	var sb strings.Builder
	for _, step := range steps {
		if !step.applies(i) {
			continue
		}
		part, err := step.render(i)
		if err != nil {
			return "", err
		}
		sb.WriteString(part)
	}
	return sb.String(), nil
}

// withConstraint prefixes the rendered key type with CONSTRAINT <name> when the
// kind accepts one and a name was set.
func withConstraint(next indexRenderFunc) indexRenderFunc {
	return func(i *Index) (string, error) {
		typ, err := next(i)
		if err != nil {
			return "", err
		}
		if i.constraint == "" || !kinds[i.kind].constraint {
			return typ, nil
		}
		return " CONSTRAINT " + i.dialector.Quote(i.constraint) + typ, nil
	}
}

func (i *Index) renderType() (string, error) {
	if i.kind == "" {
		return "", ErrKeyTypeNotSet
	}
	if _, ok := kinds[i.kind]; !ok {
		return "", configError("key type " + string(i.kind) + " is not supported")
	}
	return " " + string(i.kind), nil
}

func (i *Index) renderName() (string, error) {
	return " " + i.dialector.Quote(i.name), nil
}

func (i *Index) renderColumns() (string, error) {
	return " (" + quoteIdentifiers(i.dialector, i.columns) + ")", nil
}

func (i *Index) renderTypeAttributes() (string, error) {
	return renderSteps(i, kinds[i.kind].attributes)
}

func (i *Index) renderReferences() (string, error) {
	if i.referenceTable == "" {
		return "", ErrReferencesNotSet
	}
	return " REFERENCES " + i.dialector.Quote(i.referenceTable) +
		" (" + quoteIdentifiers(i.dialector, i.referenceColumns) + ")", nil
}

func (i *Index) renderOnDelete() (string, error) {
	action, err := ParseReferenceAction(string(*i.onDelete))
	if err != nil {
		return "", err
	}
	return " ON DELETE " + string(action), nil
}

func (i *Index) renderOnUpdate() (string, error) {
	action, err := ParseReferenceAction(string(*i.onUpdate))
	if err != nil {
		return "", err
	}
	return " ON UPDATE " + string(action), nil
}
