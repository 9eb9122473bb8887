package core

import (
	"fmt"
	"strings"
)

// ColumnKind describes how the values of a column are typed.
// It replaces ad hoc "is this column numeric?" name checks: the codec and the
// quantity normalizer both consult the kind stored in the Schema.
type ColumnKind int

const (
	KindText ColumnKind = iota
	KindInteger
	KindDecimal
)

func (k ColumnKind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	default:
		return "text"
	}
}

// Default column names of the master stock sheet.
const (
	DefaultRefColumn = "REFERÊNCIA"
	DefaultQtyColumn = "QtdEstoqueAtual"
)

// DefaultColumnKinds lists the numeric columns of the stock sheet.
// Every other column is text.
var DefaultColumnKinds = map[string]ColumnKind{
	"QtdEstoqueAtual": KindInteger,
	"Preço":           KindDecimal,
	"ML":              KindDecimal,
	"PRECO_APRAZO":    KindDecimal,
	"IPI":             KindDecimal,
	"EstMínimo":       KindDecimal,
}

// Column is one schema entry: machine name, human label and value kind.
type Column struct {
	Name  string
	Label string
	Kind  ColumnKind
}

// Schema is the canonical two-row header of a stock sheet.
// It is immutable once loaded.
//
// Columns with an empty machine name are layout padding: they keep their
// position on write but never carry data.
type Schema struct {
	columns []Column
	index   map[string]int
}

type schemaOptions struct {
	kinds map[string]ColumnKind
}

// SchemaOption customizes schema loading.
type SchemaOption func(*schemaOptions)

// WithColumnKinds assigns value kinds by machine name.
// Names absent from the map are text columns.
func WithColumnKinds(kinds map[string]ColumnKind) SchemaOption {
	return func(o *schemaOptions) {
		o.kinds = kinds
	}
}

// LoadSchema builds a Schema from the machine-name header row and the
// display-label header row.
//
// Returns a *SchemaError if the rows differ in length or if a non-empty
// machine name appears more than once.
func LoadSchema(machine, labels []string, opts ...SchemaOption) (*Schema, error) {
	o := schemaOptions{kinds: DefaultColumnKinds}
	for _, opt := range opts {
		opt(&o)
	}

	if len(machine) != len(labels) {
		return nil, &SchemaError{
			Reason: fmt.Sprintf("header rows differ in length: %d machine names, %d labels", len(machine), len(labels)),
		}
	}

	s := &Schema{
		columns: make([]Column, len(machine)),
		index:   make(map[string]int, len(machine)),
	}

	var dups []string
	for i, name := range machine {
		if name != "" {
			if _, seen := s.index[name]; seen {
				dups = append(dups, name)
				continue
			}
			s.index[name] = i
		}
		s.columns[i] = Column{
			Name:  name,
			Label: labels[i],
			Kind:  o.kinds[name],
		}
	}

	if len(dups) > 0 {
		return nil, &SchemaError{
			Reason:  "duplicate machine names",
			Columns: dups,
		}
	}

	return s, nil
}

// ColumnOrder returns the machine names in canonical order.
func (s *Schema) ColumnOrder() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Labels returns the display-label row exactly as loaded.
func (s *Schema) Labels() []string {
	labels := make([]string, len(s.columns))
	for i, c := range s.columns {
		labels[i] = c.Label
	}
	return labels
}

// Columns returns a copy of the column descriptors.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Len returns the number of columns, padding included.
func (s *Schema) Len() int { return len(s.columns) }

// Has reports whether name is a non-empty machine name of the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Kind returns the value kind of a column. Unknown columns are text.
func (s *Schema) Kind(name string) ColumnKind {
	if i, ok := s.index[name]; ok {
		return s.columns[i].Kind
	}
	return KindText
}

// DisplayLabel returns the human label paired with name, falling back to
// the machine name when the label is empty or the column is unknown.
func (s *Schema) DisplayLabel(name string) string {
	if i, ok := s.index[name]; ok {
		if label := strings.TrimSpace(s.columns[i].Label); label != "" {
			return s.columns[i].Label
		}
	}
	return name
}

// Equal reports whether two schemas have the same columns in the same order.
func (s *Schema) Equal(o *Schema) bool {
	if s == nil || o == nil {
		return s == o
	}
	if len(s.columns) != len(o.columns) {
		return false
	}
	for i := range s.columns {
		if s.columns[i] != o.columns[i] {
			return false
		}
	}
	return true
}
