package core

// merge.go reconciles invoice rows into the master stock table.
//
// Rows are matched by the trimmed text of the reference column. A match adds
// the incoming quantity to the existing one and leaves every other column of
// the existing row as it was. Anything that does not match (including rows
// with a blank reference) is appended. Matching runs against the table as it
// grows, so two invoice lines for the same new product collapse into one row.

// MergeStats counts what a merge did. It is informational only.
type MergeStats struct {
	Matched  int
	Appended int
}

// Engine merges incoming rows into a table by reference key.
type Engine struct {
	refColumn string
	qtyColumn string
}

// NewEngine returns an engine keyed on refColumn that accumulates qtyColumn.
// Blank names fall back to DefaultRefColumn and DefaultQtyColumn.
func NewEngine(refColumn, qtyColumn string) *Engine {
	if refColumn == "" {
		refColumn = DefaultRefColumn
	}
	if qtyColumn == "" {
		qtyColumn = DefaultQtyColumn
	}
	return &Engine{refColumn: refColumn, qtyColumn: qtyColumn}
}

// RefColumn returns the merge key column.
func (e *Engine) RefColumn() string { return e.refColumn }

// QtyColumn returns the additive quantity column.
func (e *Engine) QtyColumn() string { return e.qtyColumn }

// Merge folds incoming into existing and returns a new table aligned to
// schema. Neither argument is modified. Merge never fails: bad quantities
// count as zero and missing columns are filled with empty cells.
func (e *Engine) Merge(existing Table, incoming []Row, schema *Schema) (Table, MergeStats) {
	var stats MergeStats

	acc := existing.Clone()
	if !acc.HasColumn(e.qtyColumn) {
		acc.Columns = append(acc.Columns, e.qtyColumn)
	}
	for _, r := range acc.Rows {
		r[e.qtyColumn] = QuantityCell(r[e.qtyColumn])
	}

	// First occurrence of a key wins when the existing table already holds
	// duplicates; later copies are carried through untouched.
	index := make(map[string]int, len(acc.Rows)+len(incoming))
	for i, r := range acc.Rows {
		key := r[e.refColumn].Key()
		if key == "" {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	for _, in := range incoming {
		key := in[e.refColumn].Key()
		if key != "" {
			if i, ok := index[key]; ok {
				row := acc.Rows[i]
				sum := addQuantities(ToInteger(row[e.qtyColumn]), ToInteger(in[e.qtyColumn]))
				row[e.qtyColumn] = IntCell(sum)
				stats.Matched++
				continue
			}
		}

		row := in.Clone()
		row[e.qtyColumn] = QuantityCell(in[e.qtyColumn])
		acc.Rows = append(acc.Rows, row)
		if key != "" {
			index[key] = len(acc.Rows) - 1
		}
		stats.Appended++
	}

	out := Align(acc, schema)
	if schema.Has(e.qtyColumn) {
		for _, r := range out.Rows {
			r[e.qtyColumn] = QuantityCell(r[e.qtyColumn])
		}
	}
	return out, stats
}

// addQuantities sums two non-negative quantities, saturating at MaxInt64.
func addQuantities(a, b int64) int64 {
	if s := a + b; s >= a {
		return s
	}
	return 1<<63 - 1
}
