package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/stockbook/internal/core"
)

type columnJSON struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
}

type stockResponse struct {
	Columns      []columnJSON `json:"columns"`
	Rows         []core.Row   `json:"rows"`
	LoadedAt     time.Time    `json:"loaded_at"`
	FromTemplate bool         `json:"from_template"`
}

func columnsJSON(s *core.Schema) []columnJSON {
	cols := dataColumns(s)
	out := make([]columnJSON, len(cols))
	for i, c := range cols {
		out[i] = columnJSON{Name: c.Name, Label: c.Label, Kind: c.Kind.String()}
	}
	return out
}

func newStockResponse(snap core.Snapshot) stockResponse {
	rows := make([]core.Row, 0, snap.Table.Len())
	for _, r := range snap.Table.Rows {
		out := make(core.Row, len(r))
		for k, v := range r {
			if k != "" {
				out[k] = v
			}
		}
		rows = append(rows, out)
	}
	return stockResponse{
		Columns:      columnsJSON(snap.Header),
		Rows:         rows,
		LoadedAt:     snap.LoadedAt,
		FromTemplate: snap.FromTemplate,
	}
}

// handleGetStock returns the current table.
func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	snap, loaded := s.stock.get()
	if !loaded {
		respondError(w, r, errNotLoaded, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, newStockResponse(snap))
}

type replaceRequest struct {
	Rows []core.Row `json:"rows"`
}

// handleReplaceStock replaces every row with the request's rows and saves.
// Unknown fields are dropped and missing ones left empty.
func (s *Server) handleReplaceStock(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	var req replaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid stock payload: %w", err), http.StatusBadRequest)
		return
	}

	ctx, cancel := cycleContext(r, s.cfg.Server.RequestTimeout)
	defer cancel()

	next, err := s.mutate(ctx, true, func(ctx context.Context, snap core.Snapshot) (core.Snapshot, error) {
		return s.service.ReplaceRows(ctx, snap, req.Rows)
	})
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, newStockResponse(next))
}

// handleReload discards the session snapshot and reads the sheets again.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := cycleContext(r, s.cfg.Server.RequestTimeout)
	defer cancel()

	next, err := s.mutate(ctx, false, func(ctx context.Context, _ core.Snapshot) (core.Snapshot, error) {
		return s.service.Load(ctx)
	})
	if err != nil {
		respondError(w, r, err, 0)
		return
	}
	writeJSON(w, r, http.StatusOK, newStockResponse(next))
}

type schemaResponse struct {
	Header        []columnJSON `json:"header"`
	Model         []columnJSON `json:"model"`
	RefColumn     string       `json:"ref_column"`
	QtyColumn     string       `json:"qty_column"`
	MasterSheet   string       `json:"master_sheet"`
	TemplateSheet string       `json:"template_sheet"`
}

// handleSchema describes the master and template headers.
func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	snap, loaded := s.stock.get()
	if !loaded {
		respondError(w, r, errNotLoaded, 0)
		return
	}

	cfg := s.service.Config()
	writeJSON(w, r, http.StatusOK, schemaResponse{
		Header:        columnsJSON(snap.Header),
		Model:         columnsJSON(snap.Model),
		RefColumn:     cfg.RefColumn,
		QtyColumn:     cfg.QtyColumn,
		MasterSheet:   cfg.MasterSheet,
		TemplateSheet: cfg.TemplateSheet,
	})
}
