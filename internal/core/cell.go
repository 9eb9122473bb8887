package core

// cell.go defines the tagged cell value held by every row.
//
// A stock sheet mixes blank cells, free text and numbers that arrive either
// as real numbers (JSON from the normalization webhook) or as text typed by
// a person (the spreadsheet itself). Cell keeps those cases apart so that
// conversions can be explicit and total:
//
//   - Empty:   nothing in the cell (encodes as "")
//   - Text:    any non-empty string, kept verbatim
//   - Integer: whole numbers (quantities)
//   - Decimal: prices and other fractional values

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CellKind tags the variant stored in a Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellInteger
	CellDecimal
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellText:
		return "text"
	case CellInteger:
		return "integer"
	case CellDecimal:
		return "decimal"
	default:
		return "unknown"
	}
}

// Cell is a single spreadsheet value. The zero value is an empty cell.
type Cell struct {
	kind CellKind
	text string
	num  int64
	dec  decimal.Decimal
}

// EmptyCell returns a cell with no value.
func EmptyCell() Cell { return Cell{} }

// TextCell returns a text cell. The empty string yields an empty cell.
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{kind: CellText, text: s}
}

// IntCell returns an integer cell.
func IntCell(n int64) Cell { return Cell{kind: CellInteger, num: n} }

// DecimalCell returns a decimal cell.
func DecimalCell(d decimal.Decimal) Cell { return Cell{kind: CellDecimal, dec: d} }

// CellFromAny converts a loosely typed value (typically decoded JSON) into a Cell.
// Integral floats become integers; NaN and nil become empty.
func CellFromAny(v any) Cell {
	switch t := v.(type) {
	case nil:
		return Cell{}
	case Cell:
		return t
	case string:
		return TextCell(t)
	case bool:
		return TextCell(strconv.FormatBool(t))
	case int:
		return IntCell(int64(t))
	case int32:
		return IntCell(int64(t))
	case int64:
		return IntCell(t)
	case float32:
		return cellFromFloat(float64(t))
	case float64:
		return cellFromFloat(t)
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return IntCell(n)
		}
		if d, err := decimal.NewFromString(t.String()); err == nil && exponentInRange(d) {
			return DecimalCell(d)
		}
		return TextCell(t.String())
	case decimal.Decimal:
		if !exponentInRange(t) {
			return Cell{}
		}
		return DecimalCell(t)
	default:
		return TextCell(fmt.Sprint(t))
	}
}

func cellFromFloat(f float64) Cell {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Cell{}
	}
	if f == math.Trunc(f) && f >= -(1<<63) && f < (1<<63) {
		return IntCell(int64(f))
	}
	d := decimal.NewFromFloat(f)
	if !exponentInRange(d) {
		return TextCell(strconv.FormatFloat(f, 'g', -1, 64))
	}
	return DecimalCell(d)
}

// Kind reports which variant the cell holds.
func (c Cell) Kind() CellKind { return c.kind }

// IsEmpty reports whether the cell holds no value.
func (c Cell) IsEmpty() bool { return c.kind == CellEmpty }

// Int returns the integer payload. Only meaningful for CellInteger.
func (c Cell) Int() int64 { return c.num }

// Decimal returns the decimal payload. Only meaningful for CellDecimal.
func (c Cell) Decimal() decimal.Decimal { return c.dec }

// String renders the cell the way it is written to a sheet.
// Empty cells render as "" and never as a placeholder token.
func (c Cell) String() string {
	switch c.kind {
	case CellText:
		return c.text
	case CellInteger:
		return strconv.FormatInt(c.num, 10)
	case CellDecimal:
		return c.dec.String()
	default:
		return ""
	}
}

// Key returns the trimmed text form used as a merge key.
func (c Cell) Key() string {
	return strings.TrimSpace(c.String())
}

// Equal reports whether two cells hold the same variant and value.
func (c Cell) Equal(o Cell) bool {
	if c.kind != o.kind {
		return false
	}
	switch c.kind {
	case CellText:
		return c.text == o.text
	case CellInteger:
		return c.num == o.num
	case CellDecimal:
		return c.dec.Equal(o.dec)
	default:
		return true
	}
}

// MarshalJSON writes integers and decimals as JSON numbers, text as strings
// and empty cells as null.
func (c Cell) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case CellText:
		return json.Marshal(c.text)
	case CellInteger:
		return []byte(strconv.FormatInt(c.num, 10)), nil
	case CellDecimal:
		return []byte(c.dec.String()), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts any JSON scalar.
func (c *Cell) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("decode cell: %w", err)
	}
	*c = CellFromAny(v)
	return nil
}
