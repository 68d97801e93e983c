package handler

// RESPONSE HELPERS:
// Every handler writes through writeJSON and Responder.writeError so that
// success and error bodies have one shape across the API:
//
//	{"error": "not_found", "message": "share link not found"}
//	{"error": "validation_error", "message": "email is required", "field": "email"}
//
// STATUS CODE MODES:
// Deployed web clients were built against a server that answered with some
// non-standard codes (411 for bad input, 208 for a taken email, 404 for a
// wrong password). StatusLegacy keeps those; StatusStandard uses the
// conventional ones. The error kind string is the same in both modes.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/second-brain/internal/apperror"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// StatusMode selects the HTTP status codes used for application errors.
type StatusMode string

const (
	StatusLegacy   StatusMode = "legacy"
	StatusStandard StatusMode = "standard"
)

// ParseStatusMode parses a STATUS_CODES value.
func ParseStatusMode(s string) (StatusMode, error) {
	switch StatusMode(s) {
	case StatusLegacy, StatusStandard:
		return StatusMode(s), nil
	default:
		return "", fmt.Errorf("handler: unknown status mode %q (want %q or %q)", s, StatusLegacy, StatusStandard)
	}
}

// ErrorResponse is the error body returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`           // machine-readable kind, e.g. "not_found"
	Message string `json:"message"`         // human-readable description
	Field   string `json:"field,omitempty"` // offending input field, for validation errors
}

// MessageResponse is the body of operations that return only a confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// errorKind maps one sentinel to its wire name and status in each mode.
type errorKind struct {
	sentinel error
	name     string
	legacy   int
	standard int
}

// errorKinds is checked in order with errors.Is; the first match wins.
var errorKinds = []errorKind{
	{apperror.ErrValidation, "validation_error", http.StatusLengthRequired, http.StatusBadRequest},
	{apperror.ErrDuplicateAccount, "duplicate_account", http.StatusAlreadyReported, http.StatusConflict},
	{apperror.ErrInvalidCredentials, "invalid_credentials", http.StatusNotFound, http.StatusUnauthorized},
	{apperror.ErrUnauthenticated, "unauthorized", http.StatusUnauthorized, http.StatusUnauthorized},
	{apperror.ErrNotFound, "not_found", http.StatusNotFound, http.StatusNotFound},
	{apperror.ErrConflict, "conflict", http.StatusConflict, http.StatusConflict},
}

// legacyOverride replaces the legacy status for one sentinel on one route.
// The public share route answered an unknown hash with 411, not 404.
type legacyOverride struct {
	sentinel error
	status   int
}

// Responder writes error responses according to a StatusMode.
type Responder struct {
	mode   StatusMode
	logger *slog.Logger
}

// NewResponder creates a Responder. An empty mode means StatusLegacy.
func NewResponder(mode StatusMode, logger *slog.Logger) *Responder {
	if mode == "" {
		mode = StatusLegacy
	}
	return &Responder{mode: mode, logger: logger}
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set before the body is written; once Encode
// writes, later header changes are silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps an error from the service layer to a status and body.
//
// errors.Is walks the Unwrap chain, so a service error like
// fmt.Errorf("...: %w", apperror.ValidationFailed(...)) still matches
// ErrValidation. Anything without a known sentinel is a 500 whose details
// are logged, never sent: raw driver errors can contain SQL or file paths.
func (rs *Responder) writeError(w http.ResponseWriter, r *http.Request, err error, overrides ...legacyOverride) {
	for _, kind := range errorKinds {
		if !errors.Is(err, kind.sentinel) {
			continue
		}

		status := kind.standard
		if rs.mode == StatusLegacy {
			status = kind.legacy
			for _, o := range overrides {
				if errors.Is(err, o.sentinel) {
					status = o.status
				}
			}
		}

		body := ErrorResponse{Error: kind.name, Message: err.Error()}
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			body.Message = appErr.Message
			body.Field = appErr.Field
		}
		writeJSON(w, status, body)
		return
	}

	rs.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("requestID", middleware.GetReqID(r.Context())),
		slog.String("error", err.Error()),
	)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}

// decodeJSON reads a JSON body into dst. A malformed, oversized or
// multi-value body is reported as a validation error on "body".
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("body", "request body too large")
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "request body is required")
		default:
			return apperror.ValidationFailed("body", "invalid JSON body")
		}
	}
	if dec.More() {
		return apperror.ValidationFailed("body", "request body must be a single JSON object")
	}
	return nil
}
