package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/arueda/gestion/internal/apperr"
	"github.com/arueda/gestion/internal/auth"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

// writeError maps classified errors onto HTTP status codes. Unclassified
// errors are reported as 500 without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindPermission:
		status = http.StatusForbidden
	case apperr.KindConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decode reads a JSON request body into dst, rejecting unknown fields.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid request body: %v", err)
	}
	return nil
}
