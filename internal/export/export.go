// Package export writes an encoded stock grid as a downloadable file.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/stockbook/internal/sheets"
)

// SheetName is the worksheet name of exported workbooks.
const SheetName = "EstoqueAtualizado"

// Format is an export file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatXLSX, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want xlsx or csv)", s)
	}
}

// ContentType returns the MIME type for downloads.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// FileName returns the download name for base, e.g. "estoque.xlsx".
func (f Format) FileName(base string) string {
	return base + "." + string(f)
}

// Write writes grid to w in format f.
func Write(w io.Writer, f Format, grid [][]string) error {
	switch f {
	case FormatXLSX:
		return XLSX(w, grid)
	case FormatCSV:
		return CSV(w, grid)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// XLSX writes grid as a single-sheet workbook. Every cell is stored as
// text so references with leading zeros survive.
func XLSX(w io.Writer, grid [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("xlsx: %w", err)
	}

	for r, row := range grid {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("xlsx: %w", err)
			}
			if err := f.SetCellStr(SheetName, cell, v); err != nil {
				return fmt.Errorf("xlsx: set %s: %w", cell, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

// CSV writes grid with a UTF-8 BOM so spreadsheet programs detect the
// encoding of accented labels.
func CSV(w io.Writer, grid [][]string) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("csv: %w", err)
	}
	return sheets.WriteGrid(w, grid)
}
