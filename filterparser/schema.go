package filterparser

// FieldKind selects the comparator family used for a column's values.
type FieldKind int

const (
	// KindText fields compare as strings.
	KindText FieldKind = iota

	// KindInt fields compare as tolerantly parsed integers.
	KindInt

	// KindDuration fields hold nanosecond magnitudes and accept mm:ss style
	// search values.
	KindDuration

	// KindRating fields hold the internal 0-1 float scale and accept 0-5
	// star search values.
	KindRating
)

/*
Schema describes the filterable columns of one record shape: which names are
addressable with column:value syntax, how each column's values are
interpreted, and the ordered field set a bare term is matched against.
*/
type Schema struct {
	fields []Field
	byName map[string]Field
}

// Field declares one filterable column.
type Field struct {
	// Name is the lowercase column name used in filter strings.
	Name string

	// Kind selects the comparator family for the column.
	Kind FieldKind
}

// NewSchema builds a Schema over the given fields. Declaration order is
// preserved; it is the order bare terms probe fields in.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{
		fields: append([]Field(nil), fields...),
		byName: make(map[string]Field, len(fields)),
	}
	for _, f := range fields {
		s.byName[f.Name] = f
	}
	return s
}

// Lookup resolves a lowercase column name to its declaration.
func (s *Schema) Lookup(name string) (Field, bool) {
	f, ok := s.byName[name]
	return f, ok
}

// Fields returns the schema's columns in declared order.
func (s *Schema) Fields() []Field {
	return s.fields
}

func (s *Schema) fieldNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}
