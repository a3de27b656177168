package schema

// Kind is the semantic type of a catalog column.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindDecimal
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	default:
		return "text"
	}
}

// Field describes one column of a catalog: its semantic type, constraints and
// the alternate spreadsheet header spellings it is recognized under.
// Fields are immutable after registration.
type Field struct {
	Name      string
	Kind      Kind
	Required  bool
	Derived   bool
	MaxLength int
	Precision int
	Scale     int
	Synonyms  []string
}

type FieldOption func(*Field)

func Required() FieldOption {
	return func(f *Field) { f.Required = true }
}

// Derived marks a field whose value is computed by the system on every write.
// Caller-supplied values are ignored and spreadsheet headers never bind to it.
func Derived() FieldOption {
	return func(f *Field) { f.Derived = true }
}

func MaxLength(n int) FieldOption {
	return func(f *Field) { f.MaxLength = n }
}

func Precision(precision, scale int) FieldOption {
	return func(f *Field) {
		f.Precision = precision
		f.Scale = scale
	}
}

func Synonyms(synonyms ...string) FieldOption {
	return func(f *Field) { f.Synonyms = append(f.Synonyms, synonyms...) }
}

func Text(name string, opts ...FieldOption) Field {
	return newField(name, KindText, opts...)
}

func Integer(name string, opts ...FieldOption) Field {
	return newField(name, KindInteger, opts...)
}

func Decimal(name string, opts ...FieldOption) Field {
	return newField(name, KindDecimal, opts...)
}

func newField(name string, kind Kind, opts ...FieldOption) Field {
	f := Field{Name: name, Kind: kind}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}
