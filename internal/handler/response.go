package handler

// RESPONSE HELPERS:
// Every handler in this package answers through writeJSON and writeError so
// the API has exactly one success shape per resource and one error shape:
//
//	{"error": "validation_error", "message": "text: this field is required",
//	 "fields": {"text": ["this field is required"]}}
//
// "fields" only appears on validation errors. Clients that only read
// "error" and "message" still get something they can show.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/yatube/internal/apperror"
)

// MaxBodyBytes caps a request body. It leaves room for a base64 image at
// media.MaxImageSize plus the rest of the payload.
const MaxBodyBytes = 8 << 20

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error   string              `json:"error"`            // machine-readable kind, e.g. "not_found"
	Message string              `json:"message"`          // human-readable description
	Fields  map[string][]string `json:"fields,omitempty"` // per-field validation messages
}

// writeJSON sends data with the given status. Headers must be set before
// WriteHeader; anything set afterwards is silently dropped.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// The status line is already out; logging is all that is left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps an error from the service layer to a status code.
//
// The service layer never mentions HTTP. It returns apperror kinds, possibly
// wrapped several times ("updating post: %w"), and errors.Is walks the chain
// down to the sentinel:
//
//	ErrValidation   → 400
//	ErrUnauthorized → 401
//	ErrForbidden    → 403
//	ErrNotFound     → 404
//	ErrConflict     → 409
//
// Anything else is a 500 with a generic message; the raw error may contain
// SQL or file paths and was already logged by the service.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
			errorType = "unauthorized"
			w.Header().Set("WWW-Authenticate", `Bearer realm="api"`)
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
			errorType = "conflict"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Fields:  appErr.Fields,
		})
		return
	}

	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred",
	})
}

// NotFound answers requests for paths no route matches.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Error:   "not_found",
		Message: "not found",
	})
}

// MethodNotAllowed answers a known path requested with a method it does not
// support.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
		Error:   "method_not_allowed",
		Message: fmt.Sprintf("method %q not allowed", r.Method),
	})
}

// decodeJSON reads the request body into dst. An empty body decodes as {}
// so that missing fields surface as "this field is required" rather than as
// a parse error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	err := json.NewDecoder(r.Body).Decode(dst)
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return nil
	default:
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ValidationFailed(apperror.NonFieldErrors, "request body is too large")
		}
		return apperror.ValidationFailed(apperror.NonFieldErrors, "JSON parse error - "+err.Error())
	}
}

// idParam reads a positive integer URL parameter. Anything else cannot name
// a row, so it is reported as not found.
func idParam(r *http.Request, name, resource string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.NotFound(resource, raw)
	}
	return id, nil
}
