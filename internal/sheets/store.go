// Package sheets provides the backends that hold stock sheets as string grids.
//
// Every backend implements core.SheetStore: ReadSheet returns the full grid
// of a named sheet, WriteSheet replaces it. Backends stage the new grid
// before touching the stored one. Where the underlying service cannot swap
// atomically (Google Sheets clears, then writes), a failure between the two
// steps is reported as *PartialWriteError so callers know the sheet may be
// empty.
package sheets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/stockbook/internal/core"
)

// ErrSheetNotFound is returned when a named sheet does not exist.
var ErrSheetNotFound = core.ErrSheetNotFound

// ErrInvalidName is returned for sheet names that cannot be mapped to a key.
var ErrInvalidName = errors.New("invalid sheet name")

// Store is a sheet backend that may hold connections.
type Store interface {
	core.SheetStore
	Close() error
}

// PartialWriteError reports a write that cleared the stored sheet but did
// not complete. The sheet must be rewritten before the data is safe.
type PartialWriteError struct {
	Sheet string
	Err   error
}

func (e *PartialWriteError) Error() string {
	return fmt.Sprintf("partial write: sheet %q was cleared but not rewritten: %v", e.Sheet, e.Err)
}

func (e *PartialWriteError) Unwrap() error { return e.Err }

// validName rejects names that would escape a directory or key prefix.
func validName(name string) error {
	if strings.TrimSpace(name) == "" ||
		strings.ContainsAny(name, `/\`) ||
		name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// copyGrid returns a deep copy so callers never share backing arrays with a store.
func copyGrid(grid [][]string) [][]string {
	out := make([][]string, len(grid))
	for i, row := range grid {
		out[i] = append([]string(nil), row...)
	}
	return out
}
