package schema

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	ErrUnknownCatalog = errors.New("unknown catalog")
	ErrNotFound       = errors.New("record not found")
	ErrDuplicate      = errors.New("record already exists")
)

// Order is one ORDER BY clause of a catalog's listing.
type Order struct {
	Column string
	Desc   bool
}

// Definition declares one catalog: its table binding, columns, unique key and
// search surface. Definitions are built once at startup and never mutated.
type Definition struct {
	Key        string
	Label      string
	Table      string
	Fields     []Field
	UniqueKey  []string
	Searchable []string
	// OrderBy overrides the default freshness ordering (updated_at DESC,
	// id DESC). Geography levels order by their hierarchy codes instead.
	OrderBy []Order

	fieldIndex  map[string]*Field
	headerIndex map[string]*Field
}

type DefinitionOption func(*Definition)

func WithSearchable(fields ...string) DefinitionOption {
	return func(d *Definition) { d.Searchable = fields }
}

func WithOrderBy(orders ...Order) DefinitionOption {
	return func(d *Definition) { d.OrderBy = orders }
}

// NewDefinition panics on declaration mistakes: catalogs are a fixed,
// code-declared vocabulary, so a bad declaration is a programmer error caught
// at startup.
func NewDefinition(key, label, table string, fields []Field, uniqueKey []string, opts ...DefinitionOption) *Definition {
	if key == "" || table == "" {
		panic(fmt.Sprintf("catalog %q: key and table are required", key))
	}
	if len(uniqueKey) == 0 {
		panic(fmt.Sprintf("catalog %q: unique key must not be empty", key))
	}
	d := &Definition{
		Key:         key,
		Label:       label,
		Table:       table,
		Fields:      fields,
		UniqueKey:   uniqueKey,
		fieldIndex:  make(map[string]*Field, len(fields)),
		headerIndex: make(map[string]*Field),
	}
	for _, opt := range opts {
		opt(d)
	}

	for i := range d.Fields {
		f := &d.Fields[i]
		if _, exists := d.fieldIndex[f.Name]; exists {
			panic(fmt.Sprintf("catalog %q: duplicate field %q", key, f.Name))
		}
		d.fieldIndex[f.Name] = f
		if f.Derived {
			continue
		}
		d.indexHeader(f, f.Name)
		for _, synonym := range f.Synonyms {
			d.indexHeader(f, synonym)
		}
	}

	for _, name := range d.UniqueKey {
		if _, ok := d.fieldIndex[name]; !ok {
			panic(fmt.Sprintf("catalog %q: unique key references unknown field %q", key, name))
		}
	}
	for _, name := range d.Searchable {
		if _, ok := d.fieldIndex[name]; !ok {
			panic(fmt.Sprintf("catalog %q: searchable references unknown field %q", key, name))
		}
	}
	for _, order := range d.OrderBy {
		if _, ok := d.fieldIndex[order.Column]; !ok {
			panic(fmt.Sprintf("catalog %q: order by references unknown field %q", key, order.Column))
		}
	}
	return d
}

func (d *Definition) indexHeader(f *Field, header string) {
	normalized := NormalizeHeader(header)
	if normalized == "" {
		panic(fmt.Sprintf("catalog %q: field %q has an empty header spelling", d.Key, f.Name))
	}
	if existing, ok := d.headerIndex[normalized]; ok && existing != f {
		panic(fmt.Sprintf("catalog %q: header %q is claimed by both %q and %q", d.Key, header, existing.Name, f.Name))
	}
	d.headerIndex[normalized] = f
}

// Field returns the field declaration by name.
func (d *Definition) Field(name string) (*Field, bool) {
	f, ok := d.fieldIndex[name]
	return f, ok
}

// MatchHeaders maps spreadsheet columns to fields via normalized lookup.
// The first column matching a field wins that field's slot; columns matching
// nothing are ignored. The second result lists required fields left unmatched.
func (d *Definition) MatchHeaders(headers []string) (map[int]*Field, []string) {
	slots := make(map[int]*Field)
	matched := make(map[string]bool)
	for i, header := range headers {
		normalized := NormalizeHeader(header)
		if normalized == "" {
			continue
		}
		f, ok := d.headerIndex[normalized]
		if !ok || matched[f.Name] {
			continue
		}
		slots[i] = f
		matched[f.Name] = true
	}

	var missing []string
	for i := range d.Fields {
		f := &d.Fields[i]
		if f.Required && !f.Derived && !matched[f.Name] {
			missing = append(missing, f.Name)
		}
	}
	return slots, missing
}

// Registry is the fixed key → Definition mapping built at process start.
type Registry struct {
	defs  []*Definition
	byKey map[string]*Definition
}

func NewRegistry(defs ...*Definition) *Registry {
	r := &Registry{byKey: make(map[string]*Definition, len(defs))}
	for _, def := range defs {
		if _, exists := r.byKey[def.Key]; exists {
			panic(fmt.Sprintf("duplicate catalog key %q", def.Key))
		}
		r.byKey[def.Key] = def
		r.defs = append(r.defs, def)
	}
	return r
}

func (r *Registry) Get(key string) (*Definition, error) {
	def, ok := r.byKey[key]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCatalog, "%q", key)
	}
	return def, nil
}

// All returns the definitions in registration order.
func (r *Registry) All() []*Definition {
	return r.defs
}
