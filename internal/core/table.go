package core

// Row maps machine column names to cell values.
type Row map[string]Cell

// Clone returns an independent copy of the row.
func (r Row) Clone() Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Get returns the cell for name, or an empty cell when absent.
func (r Row) Get(name string) Cell {
	return r[name]
}

// Table is an ordered list of rows plus the column order they are laid out in.
//
// A table is aligned to a schema when Columns equals the schema's column
// order and every row has exactly those keys. Aligned tables are the only
// ones the codec will encode.
type Table struct {
	Columns []string
	Rows    []Row
}

// NewTable returns an empty table laid out in the schema's column order.
func NewTable(s *Schema) Table {
	return Table{Columns: s.ColumnOrder()}
}

// Len returns the number of data rows.
func (t Table) Len() int { return len(t.Rows) }

// Clone deep-copies the table so the copy can be mutated independently.
func (t Table) Clone() Table {
	out := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// HasColumn reports whether name is one of the table's columns.
func (t Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AlignedTo reports whether the table satisfies the schema's layout:
// same columns in the same order, and every row keyed by exactly those names.
func (t Table) AlignedTo(s *Schema) bool {
	order := s.ColumnOrder()
	if len(order) != len(t.Columns) {
		return false
	}
	for i := range order {
		if order[i] != t.Columns[i] {
			return false
		}
	}

	names := uniqueNames(order)
	for _, r := range t.Rows {
		if len(r) != len(names) {
			return false
		}
		for name := range names {
			if _, ok := r[name]; !ok {
				return false
			}
		}
	}
	return true
}

// Align re-lays the table out in the schema's column order: columns the
// schema does not declare are dropped, missing ones are inserted empty.
// Padding columns (empty machine name) never carry data.
// Align is idempotent and never mutates its input.
func Align(t Table, s *Schema) Table {
	order := s.ColumnOrder()
	names := uniqueNames(order)

	out := Table{
		Columns: order,
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, src := range t.Rows {
		row := make(Row, len(names))
		for name := range names {
			if name == "" {
				row[name] = EmptyCell()
				continue
			}
			row[name] = src[name]
		}
		out.Rows[i] = row
	}
	return out
}

func uniqueNames(order []string) map[string]struct{} {
	names := make(map[string]struct{}, len(order))
	for _, n := range order {
		names[n] = struct{}{}
	}
	return names
}
