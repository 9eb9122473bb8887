package core

// quantity.go converts quantity and price cells into canonical numbers.
//
// Stock sheets are edited by hand and fed by invoices from different
// locales, so numbers show up as "12", "12,0", "1,5", " 7 ", "" or as
// already-typed values. Both conversions are total: anything that does not
// parse becomes zero, so a single bad cell never stalls a merge.
//
// Rules:
//   - "," is read as a decimal point before parsing
//   - ToInteger truncates toward zero ("1,5" -> 1, "-0,9" -> 0)
//   - quantities are never negative; negative results clamp to 0
//   - exponents beyond ±maxExponent do not parse ("1e999999999" -> 0)

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericRegex validates a number after comma-to-point normalization.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// maxExponent bounds the decimal exponent of any number the package
// accepts. Rescaling a decimal materializes 10^exponent as a big integer.
const maxExponent = 64

var (
	maxInt64Dec = decimal.NewFromInt(math.MaxInt64)
)

// exponentInRange reports whether d can be rescaled, rendered and compared
// in bounded time.
func exponentInRange(d decimal.Decimal) bool {
	e := d.Exponent()
	return e >= -maxExponent && e <= maxExponent
}

// ToInteger converts a quantity cell to a non-negative integer.
// Empty, missing and unparseable values yield 0.
func ToInteger(c Cell) int64 {
	var d decimal.Decimal
	switch c.Kind() {
	case CellInteger:
		return clampQuantity(c.Int())
	case CellDecimal:
		d = c.Decimal()
		if !exponentInRange(d) {
			return 0
		}
	case CellText:
		parsed, ok := ParseNumber(c.String())
		if !ok {
			return 0
		}
		d = parsed
	default:
		return 0
	}

	d = d.Truncate(0)
	if d.GreaterThan(maxInt64Dec) {
		return math.MaxInt64
	}
	return clampQuantity(d.IntPart())
}

// ToDecimal converts a price-like cell to a decimal.
// Empty, missing and unparseable values yield 0.
func ToDecimal(c Cell) decimal.Decimal {
	switch c.Kind() {
	case CellInteger:
		return decimal.NewFromInt(c.Int())
	case CellDecimal:
		return c.Decimal()
	case CellText:
		if d, ok := ParseNumber(c.String()); ok {
			return d
		}
	}
	return decimal.Zero
}

// QuantityCell returns the canonical integer cell for any quantity value.
func QuantityCell(c Cell) Cell {
	return IntCell(ToInteger(c))
}

// NormalizeCell coerces a cell to the canonical form of its column kind.
// Integer columns always yield an integer cell. Decimal columns yield a
// decimal when the value parses and keep it as-is otherwise. Blank cells in
// text and decimal columns stay empty.
func NormalizeCell(c Cell, kind ColumnKind) Cell {
	switch kind {
	case KindInteger:
		return QuantityCell(c)
	case KindDecimal:
		switch c.Kind() {
		case CellInteger:
			return DecimalCell(decimal.NewFromInt(c.Int()))
		case CellText:
			if d, ok := ParseNumber(c.String()); ok {
				return DecimalCell(d)
			}
		}
		return c
	default:
		return c
	}
}

// ParseNumber parses a locale-tolerant number: surrounding space is ignored
// and "," is treated as a decimal point. Reports false for anything else,
// including exponents beyond ±maxExponent.
func ParseNumber(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	s = strings.ReplaceAll(s, ",", ".")
	if !numericRegex.MatchString(s) {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !exponentInRange(d) {
		return decimal.Zero, false
	}
	return d, true
}

func clampQuantity(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}
