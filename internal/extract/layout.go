package extract

import (
	"math"
	"sort"
	"strings"
)

// fragment is one positioned piece of text on a page. PDF y grows upward.
type fragment struct {
	X, Y     float64
	W        float64
	FontSize float64
	S        string
}

// line is a set of fragments sharing a baseline, left to right.
type line struct {
	Y     float64
	Frags []fragment
}

// cell is a run of fragments close enough to read as one value.
type cell struct {
	X0, X1 float64
	Text   string
}

const (
	// Gaps between fragments, in points. Below spaceGap two fragments are
	// one word; below cellGap they are words of the same cell.
	spaceGap = 1.0
	cellGap  = 6.0
)

// groupLines buckets fragments whose Y lies within tolerance of a line's
// first fragment, top of the page first.
func groupLines(frags []fragment, tolerance float64) []line {
	sorted := make([]fragment, 0, len(frags))
	for _, f := range frags {
		if strings.TrimSpace(f.S) == "" && f.S != " " {
			continue
		}
		sorted = append(sorted, f)
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Y > sorted[j].Y })

	var lines []line
	for _, f := range sorted {
		n := len(lines)
		if n > 0 && math.Abs(lines[n-1].Y-f.Y) <= tolerance {
			lines[n-1].Frags = append(lines[n-1].Frags, f)
			continue
		}
		lines = append(lines, line{Y: f.Y, Frags: []fragment{f}})
	}

	for i := range lines {
		sort.SliceStable(lines[i].Frags, func(a, b int) bool {
			return lines[i].Frags[a].X < lines[i].Frags[b].X
		})
	}
	return lines
}

// cells splits a line at horizontal gaps wider than cellGap.
func (l line) cells() []cell {
	var (
		out     []cell
		cur     *cell
		b       strings.Builder
		pending bool // saw an explicit space
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Text = strings.TrimSpace(b.String())
		if cur.Text != "" {
			out = append(out, *cur)
		}
		cur = nil
		b.Reset()
	}

	for _, f := range l.Frags {
		if strings.TrimSpace(f.S) == "" {
			pending = true
			continue
		}
		end := f.X + f.W
		if cur != nil {
			gap := f.X - cur.X1
			switch {
			case gap > cellGap:
				flush()
			case gap > spaceGap || pending:
				b.WriteByte(' ')
			}
		}
		pending = false
		if cur == nil {
			cur = &cell{X0: f.X, X1: end}
		}
		b.WriteString(f.S)
		if end > cur.X1 {
			cur.X1 = end
		}
	}
	flush()
	return out
}

func (l line) fontSize() float64 {
	var size float64
	for _, f := range l.Frags {
		size = math.Max(size, f.FontSize)
	}
	return size
}

// squash folds case and whitespace for header comparisons.
func squash(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// column returns the index of the header cell c overlaps most, or the
// nearest one by center when it overlaps none.
func column(headers []cell, c cell) int {
	best, bestOverlap := -1, 0.0
	for i, h := range headers {
		overlap := math.Min(h.X1, c.X1) - math.Max(h.X0, c.X0)
		if overlap > bestOverlap {
			best, bestOverlap = i, overlap
		}
	}
	if best >= 0 {
		return best
	}

	mid := (c.X0 + c.X1) / 2
	bestDist := math.Inf(1)
	for i, h := range headers {
		if d := math.Abs((h.X0+h.X1)/2 - mid); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// productTable scans the lines of one page for a header row containing
// marker and returns one record per product row under it. Lines with an
// empty marker column directly below a record are continuation lines and
// extend that record's fields; any other such line ends the table.
func productTable(lines []line, marker string) (records []map[string]any, found bool) {
	want := squash(marker)

	var (
		headers  []cell
		keyCol   = -1
		current  map[string]any
		previous line
	)
	for _, ln := range lines {
		cells := ln.cells()

		if idx := headerIndex(cells, want); idx >= 0 {
			headers, keyCol, current, found = cells, idx, nil, true
			previous = ln
			continue
		}
		if headers == nil {
			continue
		}

		values := make([]string, len(headers))
		for _, c := range cells {
			i := column(headers, c)
			if values[i] != "" {
				values[i] += " "
			}
			values[i] += c.Text
		}

		switch {
		case values[keyCol] != "":
			current = make(map[string]any, len(headers))
			for i, h := range headers {
				current[h.Text] = values[i]
			}
			records = append(records, current)
		case current != nil && previous.Y-ln.Y <= 2*math.Max(ln.fontSize(), previous.fontSize()):
			for i, h := range headers {
				if values[i] == "" {
					continue
				}
				if s, _ := current[h.Text].(string); s != "" {
					values[i] = s + " " + values[i]
				}
				current[h.Text] = values[i]
			}
		case len(records) > 0:
			// Table ended; a repeated header restarts it.
			headers, current = nil, nil
		}
		previous = ln
	}
	return records, found
}

func headerIndex(cells []cell, marker string) int {
	for i, c := range cells {
		if squash(c.Text) == marker {
			return i
		}
	}
	return -1
}
