package sheets

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadGrid parses a CSV sheet. A leading UTF-8 BOM (added by Windows
// spreadsheet programs) is dropped and invalid UTF-8 is replaced with '?'.
// Rows may differ in length; the codec pads them.
func ReadGrid(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	data = bytes.ToValidUTF8(data, []byte("?"))

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	grid, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid csv: %w", err)
	}
	return grid, nil
}

// WriteGrid writes grid as CSV. A row holding a single empty field is
// written as "" so that it reads back as a row instead of a skipped blank
// line.
func WriteGrid(w io.Writer, grid [][]string) error {
	cw := csv.NewWriter(w)
	for _, row := range grid {
		if len(row) > 1 || (len(row) == 1 && row[0] != "") {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("write csv: %w", err)
			}
			continue
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		if _, err := io.WriteString(w, "\"\"\n"); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// encodeGrid renders grid as CSV bytes.
func encodeGrid(grid [][]string) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteGrid(&buf, grid); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
