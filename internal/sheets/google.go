package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Google stores sheets as tabs of one Google Sheets spreadsheet.
type Google struct {
	values        *gsheets.SpreadsheetsValuesService
	spreadsheetID string
}

// GoogleCredentials selects how the client authenticates. File wins over JSON.
type GoogleCredentials struct {
	File string
	JSON string
}

// NewGoogle connects to the spreadsheet. Extra options (endpoint, HTTP
// client) are appended after the credential option.
func NewGoogle(ctx context.Context, spreadsheetID string, creds GoogleCredentials, opts ...option.ClientOption) (*Google, error) {
	if spreadsheetID == "" {
		return nil, errors.New("google sheets: spreadsheet id is required")
	}

	var all []option.ClientOption
	switch {
	case creds.File != "":
		all = append(all, option.WithCredentialsFile(creds.File))
	case creds.JSON != "":
		all = append(all, option.WithCredentialsJSON([]byte(creds.JSON)))
	}
	all = append(all, opts...)

	svc, err := gsheets.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("google sheets client: %w", err)
	}
	return &Google{values: svc.Spreadsheets.Values, spreadsheetID: spreadsheetID}, nil
}

// sheetRange quotes a tab name for A1 notation.
func sheetRange(name, cells string) string {
	r := "'" + strings.ReplaceAll(name, "'", "''") + "'"
	if cells != "" {
		r += "!" + cells
	}
	return r
}

// ReadSheet reads every populated cell of the tab as formatted text.
// The API drops trailing empty rows and cells; the codec pads them back.
func (g *Google) ReadSheet(ctx context.Context, name string) ([][]string, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	resp, err := g.values.Get(g.spreadsheetID, sheetRange(name, "")).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, g.mapError(name, err)
	}

	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		grid[i] = make([]string, len(row))
		for j, v := range row {
			if v != nil {
				grid[i][j] = fmt.Sprint(v)
			}
		}
	}
	return grid, nil
}

// WriteSheet clears the tab and writes grid from A1. Values are entered as
// if typed, so numbers stay numeric in the spreadsheet UI.
//
// The grid is staged before the clear. If the clear succeeds and the
// update fails, the tab is left empty and *PartialWriteError is returned.
func (g *Google) WriteSheet(ctx context.Context, name string, grid [][]string) error {
	if err := validName(name); err != nil {
		return err
	}

	vr := &gsheets.ValueRange{
		MajorDimension: "ROWS",
		Values:         make([][]interface{}, len(grid)),
	}
	for i, row := range grid {
		vr.Values[i] = make([]interface{}, len(row))
		for j, v := range row {
			vr.Values[i][j] = v
		}
	}

	_, err := g.values.Clear(g.spreadsheetID, sheetRange(name, ""), &gsheets.ClearValuesRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return g.mapError(name, err)
	}

	_, err = g.values.Update(g.spreadsheetID, sheetRange(name, "A1"), vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return &PartialWriteError{Sheet: name, Err: err}
	}
	return nil
}

// Close is a no-op; the client holds no connections of its own.
func (g *Google) Close() error { return nil }

// mapError turns the API's "Unable to parse range" for a missing tab into
// ErrSheetNotFound.
func (g *Google) mapError(name string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) &&
		apiErr.Code == http.StatusBadRequest &&
		strings.Contains(apiErr.Message, "Unable to parse range") {
		return fmt.Errorf("%s: %w", name, ErrSheetNotFound)
	}
	return fmt.Errorf("google sheets %q: %w", name, err)
}
