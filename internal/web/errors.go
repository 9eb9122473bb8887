package web

// errors.go turns handler errors into responses.
//
//  1. Handler calls respondError(w, r, err, status); status 0 derives one
//     from the error with statusFor.
//  2. core.MapError picks the user message and support code.
//  3. The technical error is logged with the request id.
//  4. API routes get an ErrorResponse; browser routes get an error page.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/stockbook/internal/core"
	"github.com/JonMunkholm/stockbook/internal/logging"
	"github.com/JonMunkholm/stockbook/internal/sheets"
	"github.com/JonMunkholm/stockbook/internal/web/templates"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes a user-facing error response.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if status == 0 {
		status = statusFor(err)
	}
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	log := logger.Error
	if status < http.StatusInternalServerError {
		log = logger.Warn
	}
	log("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	)

	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var partial *sheets.PartialWriteError
	var maxBytes *http.MaxBytesError

	switch {
	case errors.Is(err, core.ErrCycleBusy):
		return http.StatusConflict
	case errors.Is(err, errNotLoaded):
		return http.StatusServiceUnavailable
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &partial):
		return http.StatusBadGateway
	case core.IsFormatError(err), core.IsSchemaError(err), errors.Is(err, core.ErrMisaligned):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrSheetNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// wantsJSON reports whether the client expects a JSON error.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
