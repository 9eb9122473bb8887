package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/stockbook/internal/core"
)

// multipartMemory is how much of an import form is buffered in memory;
// the rest spills to temporary files.
const multipartMemory = 32 << 20

type importResponse struct {
	core.ImportReport
	Rows int `json:"rows"`
}

// handleImport merges uploaded invoices into the stock and saves.
//
// Form fields: files (one or more PDFs), and for the n-th file (0-based)
// manufacturer_<n> / supplier_<n>, falling back to manufacturer / supplier.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		// multipart does not always wrap the reader error.
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, r, fmt.Errorf("file too large: %w", err), http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("invalid import form: %w", err), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	switch {
	case len(files) == 0:
		respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	case s.cfg.Upload.MaxFiles > 0 && len(files) > s.cfg.Upload.MaxFiles:
		respondError(w, r, fmt.Errorf("too many files: %d > %d", len(files), s.cfg.Upload.MaxFiles), http.StatusBadRequest)
		return
	}

	invoices, err := readInvoices(r.MultipartForm, files)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	ctx, cancel := cycleContext(r, s.cfg.Server.RequestTimeout)
	defer cancel()

	var report core.ImportReport
	next, err := s.mutate(ctx, true, func(ctx context.Context, snap core.Snapshot) (core.Snapshot, error) {
		out, rep, err := s.service.Import(ctx, snap, invoices)
		report = rep
		return out, err
	})
	if err != nil {
		respondError(w, r, err, 0)
		return
	}

	writeJSON(w, r, http.StatusOK, importResponse{ImportReport: report, Rows: next.Table.Len()})
}

func readInvoices(form *multipart.Form, files []*multipart.FileHeader) ([]core.Invoice, error) {
	invoices := make([]core.Invoice, 0, len(files))
	for i, fh := range files {
		data, err := readPart(fh)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		invoices = append(invoices, core.Invoice{
			Name:         fh.Filename,
			Data:         data,
			Manufacturer: formField(form, "manufacturer", i),
			Supplier:     formField(form, "supplier", i),
		})
	}
	return invoices, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// formField returns name_<i> if set, else name.
func formField(form *multipart.Form, name string, i int) string {
	if v := first(form.Value[name+"_"+strconv.Itoa(i)]); v != "" {
		return v
	}
	return first(form.Value[name])
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}
