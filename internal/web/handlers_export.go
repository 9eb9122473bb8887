package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/stockbook/internal/export"
)

const exportBaseName = "estoque_atualizado"

// handleExport downloads the current table in format f.
func (s *Server) handleExport(f export.Format) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, loaded := s.stock.get()
		if !loaded {
			respondError(w, r, errNotLoaded, 0)
			return
		}

		grid, err := s.service.Export(snap)
		if err != nil {
			respondError(w, r, err, 0)
			return
		}

		var buf bytes.Buffer
		if err := export.Write(&buf, f, grid); err != nil {
			respondError(w, r, err, http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", f.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.FileName(exportBaseName)))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.Write(buf.Bytes())
	}
}
