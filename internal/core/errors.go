package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMisaligned is returned when a table that does not match its schema
// column-for-column is about to be encoded. Such a table is never persisted.
var ErrMisaligned = errors.New("table misaligned with schema")

// ErrNoResult marks a collaborator call (extraction, normalization) that
// produced nothing usable. The batch is skipped; nothing is merged.
var ErrNoResult = errors.New("no result from collaborator")

// SchemaError reports malformed header rows.
type SchemaError struct {
	Reason  string
	Columns []string // Offending machine names, if any
}

func (e *SchemaError) Error() string {
	if len(e.Columns) > 0 {
		return fmt.Sprintf("schema error: %s: %s", e.Reason, strings.Join(e.Columns, ", "))
	}
	return "schema error: " + e.Reason
}

// FormatError reports a grid that cannot hold a two-row header.
type FormatError struct {
	Rows int // Number of rows supplied
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("format error: grid has %d row(s), need at least 2 header rows", e.Rows)
}

// IsFormatError reports whether err is or wraps a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}

// IsSchemaError reports whether err is or wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// ErrSheetNotFound is returned by stores when a named sheet does not exist.
// Load treats a missing master sheet like an empty one.
var ErrSheetNotFound = errors.New("sheet not found")
