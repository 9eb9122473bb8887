package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/JonMunkholm/stockbook/internal/logging"
	"github.com/google/uuid"
)

// Service runs load, import and save cycles against a sheet store.
//
// Service holds no table state of its own: every operation takes the
// caller's Snapshot and returns a new one. Callers own the snapshot they
// hold; the service only serializes cycles that write to the store.
type Service struct {
	store      SheetStore
	extractor  Extractor
	normalizer Normalizer

	cfg     ServiceConfig
	codec   *Codec
	engine  *Engine
	limiter *CycleLimiter
	now     func() time.Time
}

// NewService creates a Service. A nil extractor makes Import fail every
// batch; a nil normalizer passes extracted records through unchanged.
func NewService(store SheetStore, extractor Extractor, normalizer Normalizer, cfg ServiceConfig) (*Service, error) {
	if store == nil {
		return nil, errors.New("new service: sheet store is required")
	}
	cfg = cfg.withDefaults()

	return &Service{
		store:      store,
		extractor:  extractor,
		normalizer: normalizer,
		cfg:        cfg,
		codec:      NewCodec(WithColumnKinds(cfg.ColumnKinds)),
		engine:     NewEngine(cfg.RefColumn, cfg.QtyColumn),
		limiter:    NewCycleLimiter(cfg.CycleWait),
		now:        time.Now,
	}, nil
}

// Config returns the effective configuration, defaults applied.
func (s *Service) Config() ServiceConfig { return s.cfg }

// Codec returns the codec used for every sheet the service touches.
func (s *Service) Codec() *Codec { return s.codec }

// CycleStatus reports whether a cycle is running.
func (s *Service) CycleStatus() CycleStatus { return s.limiter.Status() }

// WaitForCycles blocks until the running cycle, if any, completes.
func (s *Service) WaitForCycles(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

// Load reads the template and master sheets and returns a fresh snapshot.
//
// The template sheet must decode; it defines the model schema imports merge
// against. A master sheet that is missing or has fewer than two rows is
// replaced by the template (FromTemplate is set). Any other master error is
// returned.
func (s *Service) Load(ctx context.Context) (Snapshot, error) {
	id := uuid.New().String()
	logger := logging.WithFields(ctx, "cycle_id", id, "op", "load")

	if err := s.limiter.Acquire(ctx, id); err != nil {
		return Snapshot{}, err
	}
	defer s.limiter.Release()
	ctx = ContextWithCycleID(ctx, id)

	template, err := s.read(ctx, s.cfg.TemplateSheet)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read template sheet %q: %w", s.cfg.TemplateSheet, err)
	}
	model, _, err := s.codec.Decode(template)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode template sheet %q: %w", s.cfg.TemplateSheet, err)
	}

	master, err := s.read(ctx, s.cfg.MasterSheet)
	if err != nil && !errors.Is(err, ErrSheetNotFound) {
		return Snapshot{}, fmt.Errorf("read master sheet %q: %w", s.cfg.MasterSheet, err)
	}

	d, err := s.codec.DecodeWithFallback(master, template)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode master sheet %q: %w", s.cfg.MasterSheet, err)
	}

	snap := Snapshot{
		Header:       d.Schema,
		Model:        model,
		Table:        d.Table,
		LoadedAt:     s.now(),
		FromTemplate: d.FromTemplate,
	}

	if d.FromTemplate {
		logger.Warn("master sheet unusable, using template",
			"master", s.cfg.MasterSheet,
			"template", s.cfg.TemplateSheet,
		)
	}
	logger.Info("stock loaded",
		"rows", snap.Table.Len(),
		"columns", snap.Header.Len(),
	)
	return snap, nil
}

// Import merges every invoice into the snapshot's table and saves the result.
//
// Batches whose extraction or normalization fails or returns nothing are
// skipped and listed in the report. If no batch merged, nothing is written
// and snap is returned as-is. If the save fails, snap is returned as-is
// along with the error: nothing from this import is kept.
func (s *Service) Import(ctx context.Context, snap Snapshot, invoices []Invoice) (Snapshot, ImportReport, error) {
	start := s.now()
	id := uuid.New().String()
	report := ImportReport{ImportID: id}
	logger := logging.WithFields(ctx, "import_id", id)

	if snap.Header == nil {
		return snap, report, errors.New("import: snapshot not loaded")
	}
	model := snap.Model
	if model == nil {
		model = snap.Header
	}

	if err := s.limiter.Acquire(ctx, id); err != nil {
		return snap, report, err
	}
	defer s.limiter.Release()
	ctx = ContextWithCycleID(ctx, id)

	logger.Info("import started", "invoices", len(invoices))

	table := snap.Table
	for _, inv := range invoices {
		res := BatchResult{Invoice: inv.Name}

		rows, err := s.batchRows(ctx, inv)
		if err != nil {
			res.Status = BatchSkipped
			res.Error = err.Error()
			res.Code = MapError(err).Code
			report.Skipped++
			report.Batches = append(report.Batches, res)
			logger.Warn("invoice skipped", "invoice", inv.Name, "error", err)
			continue
		}

		merged, stats := s.engine.Merge(table, rows, model)
		table = merged

		res.Status = BatchMerged
		res.Rows = len(rows)
		res.Matched = stats.Matched
		res.Appended = stats.Appended
		report.Merged++
		report.Batches = append(report.Batches, res)
		logger.Info("invoice merged",
			"invoice", inv.Name,
			"rows", len(rows),
			"matched", stats.Matched,
			"appended", stats.Appended,
		)
	}

	if report.Merged == 0 {
		report.Duration = s.now().Sub(start)
		report.TotalRows = snap.Table.Len()
		logger.Info("import finished without changes", "skipped", report.Skipped)
		return snap, report, nil
	}

	out := Align(table, snap.Header)
	if s.cfg.QtyColumn != "" && snap.Header.Has(s.cfg.QtyColumn) {
		for _, r := range out.Rows {
			r[s.cfg.QtyColumn] = QuantityCell(r[s.cfg.QtyColumn])
		}
	}

	if err := s.save(ctx, snap.Header, out); err != nil {
		report.Duration = s.now().Sub(start)
		report.TotalRows = snap.Table.Len()
		logger.Error("import save failed", "error", err)
		return snap, report, err
	}

	report.Saved = true
	report.TotalRows = out.Len()
	report.Duration = s.now().Sub(start)
	logger.Info("import saved",
		"merged", report.Merged,
		"skipped", report.Skipped,
		"rows", report.TotalRows,
		"duration_ms", report.Duration.Milliseconds(),
	)

	return Snapshot{
		Header:   snap.Header,
		Model:    snap.Model,
		Table:    out,
		LoadedAt: s.now(),
	}, report, nil
}

// Save fully overwrites the master sheet with the snapshot's table.
func (s *Service) Save(ctx context.Context, snap Snapshot) error {
	if snap.Header == nil {
		return errors.New("save: snapshot not loaded")
	}

	id := uuid.New().String()
	if err := s.limiter.Acquire(ctx, id); err != nil {
		return err
	}
	defer s.limiter.Release()

	if err := s.save(ContextWithCycleID(ctx, id), snap.Header, snap.Table); err != nil {
		return err
	}
	logging.WithFields(ctx, "cycle_id", id).Info("stock saved", "rows", snap.Table.Len())
	return nil
}

// ReplaceRows swaps the snapshot's rows for rows (the manual edit path),
// aligns them to the header schema and saves. On failure snap is returned
// unchanged.
func (s *Service) ReplaceRows(ctx context.Context, snap Snapshot, rows []Row) (Snapshot, error) {
	if snap.Header == nil {
		return snap, errors.New("replace rows: snapshot not loaded")
	}

	t := Align(Table{Columns: snap.Header.ColumnOrder(), Rows: rows}, snap.Header)
	for _, col := range snap.Header.Columns() {
		if col.Kind != KindInteger {
			continue
		}
		for _, r := range t.Rows {
			r[col.Name] = NormalizeCell(r[col.Name], col.Kind)
		}
	}

	next := snap
	next.Table = t
	if err := s.Save(ctx, next); err != nil {
		return snap, err
	}
	next.LoadedAt = s.now()
	next.FromTemplate = false
	return next, nil
}

// Export encodes the snapshot as a grid for offline files.
func (s *Service) Export(snap Snapshot) ([][]string, error) {
	if snap.Header == nil {
		return nil, errors.New("export: snapshot not loaded")
	}
	return s.codec.Encode(snap.Header, snap.Table)
}

func (s *Service) batchRows(ctx context.Context, inv Invoice) ([]Row, error) {
	if s.extractor == nil {
		return nil, errors.New("extract rows: no extractor configured")
	}

	ectx, cancel := context.WithTimeout(ctx, s.cfg.ExtractTimeout)
	records, err := s.extractor.ExtractRows(ectx, inv.Data)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("extract rows: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("extract rows: %w", ErrNoResult)
	}

	if s.normalizer != nil {
		nctx, cancel := context.WithTimeout(ctx, s.cfg.NormalizeTimeout)
		records, err = s.normalizer.Normalize(nctx, records)
		cancel()
		if err != nil {
			return nil, fmt.Errorf("normalize rows: %w", err)
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("normalize rows: %w", ErrNoResult)
		}
	}

	rows := RowsFromRecords(records, s.cfg.QtyColumn)
	StampRows(rows, map[string]string{
		ManufacturerColumn: inv.Manufacturer,
		SupplierColumn:     inv.Supplier,
	})
	return rows, nil
}

func (s *Service) read(ctx context.Context, name string) ([][]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	return s.store.ReadSheet(ctx, name)
}

// save encodes before touching the store so a misaligned table never
// reaches WriteSheet.
func (s *Service) save(ctx context.Context, schema *Schema, t Table) error {
	grid, err := s.codec.Encode(schema, t)
	if err != nil {
		return fmt.Errorf("encode master sheet: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.store.WriteSheet(ctx, s.cfg.MasterSheet, grid); err != nil {
		return fmt.Errorf("write master sheet %q: %w", s.cfg.MasterSheet, err)
	}
	return nil
}
