package core

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// HeaderRows is the number of header rows that precede data in a grid.
const HeaderRows = 2

// Codec converts between string grids (the persisted form of a sheet) and
// typed tables. Row 0 of a grid holds machine names, row 1 display labels,
// and every following row is data.
type Codec struct {
	opts []SchemaOption
}

// NewCodec returns a codec that loads schemas with opts.
func NewCodec(opts ...SchemaOption) *Codec {
	return &Codec{opts: opts}
}

// Decoded is the result of decoding a grid.
type Decoded struct {
	Schema *Schema
	Table  Table

	// FromTemplate is set when the primary grid was unusable and the
	// template grid was decoded instead.
	FromTemplate bool
}

// Decode parses a grid into a schema and an aligned table.
//
// Header rows of different lengths are padded with blanks to the longer one,
// since sheet APIs drop trailing empty cells. Data rows are padded or cut to
// the schema width. A cell becomes Integer or Decimal only when its column
// kind says so and its text is exactly the canonical rendering of that
// number; everything else stays Text so decoding never loses information.
func (c *Codec) Decode(grid [][]string) (*Schema, Table, error) {
	if len(grid) < HeaderRows {
		return nil, Table{}, &FormatError{Rows: len(grid)}
	}

	width := max(len(grid[0]), len(grid[1]))
	schema, err := LoadSchema(padRow(grid[0], width), padRow(grid[1], width), c.opts...)
	if err != nil {
		return nil, Table{}, err
	}

	cols := schema.Columns()
	t := NewTable(schema)
	t.Rows = make([]Row, 0, len(grid)-HeaderRows)
	for _, raw := range grid[HeaderRows:] {
		row := make(Row, len(cols))
		for i, col := range cols {
			if col.Name == "" {
				row[""] = EmptyCell()
				continue
			}
			var s string
			if i < len(raw) {
				s = raw[i]
			}
			row[col.Name] = decodeCell(s, col.Kind)
		}
		t.Rows = append(t.Rows, row)
	}
	return schema, t, nil
}

// DecodeWithFallback decodes primary, or template when primary is too short
// to hold a header. The template must satisfy the same contract; its own
// FormatError or SchemaError is returned as-is.
func (c *Codec) DecodeWithFallback(primary, template [][]string) (Decoded, error) {
	s, t, err := c.Decode(primary)
	if err == nil {
		return Decoded{Schema: s, Table: t}, nil
	}
	if !IsFormatError(err) {
		return Decoded{}, err
	}

	s, t, err = c.Decode(template)
	if err != nil {
		return Decoded{}, fmt.Errorf("decode template: %w", err)
	}
	return Decoded{Schema: s, Table: t, FromTemplate: true}, nil
}

// Encode renders a table as a grid: the two header rows followed by one row
// per data row. Empty cells are written as "".
//
// A table that is not aligned to s is refused with ErrMisaligned.
func (c *Codec) Encode(s *Schema, t Table) ([][]string, error) {
	if !t.AlignedTo(s) {
		return nil, ErrMisaligned
	}

	order := s.ColumnOrder()
	grid := make([][]string, 0, HeaderRows+len(t.Rows))
	grid = append(grid, order, s.Labels())
	for _, r := range t.Rows {
		line := make([]string, len(order))
		for i, name := range order {
			if name == "" {
				continue
			}
			line[i] = r[name].String()
		}
		grid = append(grid, line)
	}
	return grid, nil
}

func decodeCell(s string, kind ColumnKind) Cell {
	if s == "" {
		return EmptyCell()
	}
	switch kind {
	case KindInteger:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(n, 10) == s {
			return IntCell(n)
		}
	case KindDecimal:
		if d, err := decimal.NewFromString(s); err == nil && exponentInRange(d) && d.String() == s {
			return DecimalCell(d)
		}
	}
	return TextCell(s)
}

func padRow(row []string, width int) []string {
	if len(row) >= width {
		return row
	}
	out := make([]string, width)
	copy(out, row)
	return out
}
