package core

import (
	"context"
	"time"
)

// SheetStore reads and fully overwrites named sheets held as string grids.
// Satisfied by every backend in internal/sheets.
type SheetStore interface {
	ReadSheet(ctx context.Context, name string) ([][]string, error)
	WriteSheet(ctx context.Context, name string, grid [][]string) error
}

// Extractor pulls raw product records out of an invoice document.
// Returning no records (or ErrNoResult) means the document had no product table.
type Extractor interface {
	ExtractRows(ctx context.Context, document []byte) ([]map[string]any, error)
}

// Normalizer maps raw extracted records to records carrying the external
// field names listed in ExternalFieldNames.
type Normalizer interface {
	Normalize(ctx context.Context, records []map[string]any) ([]map[string]any, error)
}

// Invoice is one uploaded document plus the fields stamped on its rows.
type Invoice struct {
	Name         string // File name, for reporting only
	Data         []byte
	Manufacturer string
	Supplier     string
}

// Snapshot is the session's view of the master sheet.
//
// Header is the schema the master sheet is written with. Model is the
// schema of the template sheet; imports merge against it and the result is
// re-aligned to Header before saving.
type Snapshot struct {
	Header       *Schema
	Model        *Schema
	Table        Table
	LoadedAt     time.Time
	FromTemplate bool // Master sheet was unusable; Header and Table came from the template
}

// BatchStatus is the outcome of one invoice within an import.
type BatchStatus string

const (
	BatchMerged  BatchStatus = "merged"
	BatchSkipped BatchStatus = "skipped"
)

// BatchResult reports what happened to one invoice.
type BatchResult struct {
	Invoice  string      `json:"invoice"`
	Status   BatchStatus `json:"status"`
	Rows     int         `json:"rows"`
	Matched  int         `json:"matched"`
	Appended int         `json:"appended"`
	Error    string      `json:"error,omitempty"`
	Code     string      `json:"code,omitempty"` // Support code of Error, see MapError
}

// ImportReport summarizes an import cycle.
type ImportReport struct {
	ImportID  string        `json:"import_id"`
	Batches   []BatchResult `json:"batches"`
	Merged    int           `json:"merged"`
	Skipped   int           `json:"skipped"`
	Saved     bool          `json:"saved"`
	TotalRows int           `json:"total_rows"`
	Duration  time.Duration `json:"duration"`
}

// ServiceConfig holds sheet names, merge columns and timeouts for a Service.
type ServiceConfig struct {
	MasterSheet   string
	TemplateSheet string
	RefColumn     string
	QtyColumn     string
	ColumnKinds   map[string]ColumnKind

	StoreTimeout     time.Duration // Per read/write call
	ExtractTimeout   time.Duration
	NormalizeTimeout time.Duration

	CycleWait time.Duration // How long a cycle waits for a running one
}

// Defaults applied by NewService to zero fields of ServiceConfig.
const (
	DefaultMasterSheet      = "EstoqueMestre"
	DefaultTemplateSheet    = "PlanilhaModelo"
	DefaultStoreTimeout     = 30 * time.Second
	DefaultExtractTimeout   = 60 * time.Second
	DefaultNormalizeTimeout = 300 * time.Second
	DefaultCycleWait        = 5 * time.Second
)

func (c ServiceConfig) withDefaults() ServiceConfig {
	if c.MasterSheet == "" {
		c.MasterSheet = DefaultMasterSheet
	}
	if c.TemplateSheet == "" {
		c.TemplateSheet = DefaultTemplateSheet
	}
	if c.RefColumn == "" {
		c.RefColumn = DefaultRefColumn
	}
	if c.QtyColumn == "" {
		c.QtyColumn = DefaultQtyColumn
	}
	if c.ColumnKinds == nil {
		c.ColumnKinds = DefaultColumnKinds
	}
	if c.StoreTimeout <= 0 {
		c.StoreTimeout = DefaultStoreTimeout
	}
	if c.ExtractTimeout <= 0 {
		c.ExtractTimeout = DefaultExtractTimeout
	}
	if c.NormalizeTimeout <= 0 {
		c.NormalizeTimeout = DefaultNormalizeTimeout
	}
	if c.CycleWait <= 0 {
		c.CycleWait = DefaultCycleWait
	}
	return c
}
