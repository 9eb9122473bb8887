// Package extract pulls product tables out of invoice PDFs.
//
// The extractor reads positioned text with github.com/ledongthuc/pdf,
// groups it into lines by baseline, and finds the table whose header row
// contains a marker column ("COD. PROD." on Brazilian DANFE invoices).
// Each row under the header becomes a record keyed by header text. The
// result is raw: normalization to stock sheet fields happens downstream.
package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrNoProductTable is returned when no page has a header row with the marker.
var ErrNoProductTable = errors.New("no product table found")

// ErrNotPDF is returned for documents without a PDF signature.
var ErrNotPDF = errors.New("not a pdf document")

// Defaults for Options.
const (
	DefaultHeaderMarker = "COD. PROD."
	DefaultRowTolerance = 2.0
)

// Options tunes table detection.
type Options struct {
	HeaderMarker string
	// RowTolerance is the vertical distance, in points, within which text
	// belongs to the same line.
	RowTolerance float64
}

// PDF extracts product rows from PDF invoices. Safe for concurrent use.
type PDF struct {
	marker    string
	tolerance float64
}

// New returns an extractor; zero options take the defaults.
func New(opts Options) *PDF {
	if opts.HeaderMarker == "" {
		opts.HeaderMarker = DefaultHeaderMarker
	}
	if opts.RowTolerance <= 0 {
		opts.RowTolerance = DefaultRowTolerance
	}
	return &PDF{marker: opts.HeaderMarker, tolerance: opts.RowTolerance}
}

// ExtractRows returns one record per product row across all pages.
func (p *PDF) ExtractRows(ctx context.Context, document []byte) (records []map[string]any, err error) {
	if !bytes.HasPrefix(bytes.TrimLeft(document, "\x00\t\r\n "), []byte("%PDF")) {
		return nil, ErrNotPDF
	}

	// The pdf package panics on some malformed streams.
	defer func() {
		if r := recover(); r != nil {
			records, err = nil, fmt.Errorf("read pdf: malformed document: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}

	found := false
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		rows, ok := productTable(groupLines(pageFragments(page), p.tolerance), p.marker)
		found = found || ok
		records = append(records, rows...)
	}

	if !found {
		return nil, ErrNoProductTable
	}
	return records, nil
}

func pageFragments(page pdf.Page) []fragment {
	texts := page.Content().Text
	frags := make([]fragment, 0, len(texts))
	for _, t := range texts {
		frags = append(frags, fragment{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S})
	}
	return frags
}
