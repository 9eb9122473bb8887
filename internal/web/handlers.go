package web

import (
	"net/http"

	"github.com/JonMunkholm/stockbook/internal/core"
	"github.com/JonMunkholm/stockbook/internal/web/templates"
)

// handleDashboard renders the stock page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, loaded := s.stock.get()
	data := templates.DashboardData{
		Loaded:   loaded,
		Busy:     s.writes.Busy(),
		MaxFiles: s.cfg.Upload.MaxFiles,
	}

	if loaded {
		cols := dataColumns(snap.Header)
		for _, c := range cols {
			data.Columns = append(data.Columns, templates.Column{Name: c.Name, Label: c.Label})
		}
		data.Rows = make([][]string, 0, snap.Table.Len())
		for _, row := range snap.Table.Rows {
			vals := make([]string, len(cols))
			for i, c := range cols {
				vals[i] = row.Get(c.Name).String()
			}
			data.Rows = append(data.Rows, vals)
		}
		data.LoadedAt = snap.LoadedAt
		data.FromTemplate = snap.FromTemplate
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(data).Render(r.Context(), w); err != nil {
		respondError(w, r, err, http.StatusInternalServerError)
	}
}

type healthResponse struct {
	Status string           `json:"status"`
	Loaded bool             `json:"loaded"`
	Rows   int              `json:"rows"`
	Cycle  core.CycleStatus `json:"cycle"`
}

// handleHealth reports liveness plus whether a sheet is loaded.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, loaded := s.stock.get()
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status: "ok",
		Loaded: loaded,
		Rows:   snap.Table.Len(),
		Cycle:  s.service.CycleStatus(),
	})
}

// dataColumns returns the schema columns that carry data, skipping padding.
func dataColumns(s *core.Schema) []core.Column {
	if s == nil {
		return nil
	}
	var out []core.Column
	for _, c := range s.Columns() {
		if c.Name != "" {
			out = append(out, c)
		}
	}
	return out
}
