package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"eld-trip-service/internal/domain"
)

// errorResponse is the JSON body for every non-2xx response:
// {"error": {"code": "...", "message": "..."}}.
type errorResponse struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v as the response body with the given status.
// Encoding failures are logged; the status line has already been sent,
// so there is nothing else to do for the client.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "encode response",
			"method", r.Method, "path", r.URL.Path, "error", err)
	}
}

// writeError maps a service error onto the HTTP status and error code the
// API contract defines for each sentinel, and writes the JSON error body.
// Unrecognized errors become an opaque 500 so internals never leak.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeErrorBody(w, r, http.StatusNotFound, "not_found", "trip not found")
	case errors.Is(err, domain.ErrValidation):
		writeErrorBody(w, r, http.StatusUnprocessableEntity, "validation_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrCompliance):
		writeErrorBody(w, r, http.StatusUnprocessableEntity, "compliance_error", unwrapMessage(err))
	case errors.Is(err, domain.ErrInvalidState):
		writeErrorBody(w, r, http.StatusUnprocessableEntity, "invalid_state", unwrapMessage(err))
	case errors.Is(err, domain.ErrConcurrency):
		writeErrorBody(w, r, http.StatusConflict, "conflict", unwrapMessage(err))
	case errors.Is(err, domain.ErrRouting):
		writeErrorBody(w, r, http.StatusBadGateway, "routing_error", unwrapMessage(err))
	default:
		slog.ErrorContext(r.Context(), "unhandled error",
			"method", r.Method, "path", r.URL.Path, "error", err)
		writeErrorBody(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// writeRequestError rejects a request before it reaches the service layer
// (e.g. missing driver header, malformed body or URL parameter).
func writeRequestError(w http.ResponseWriter, r *http.Request, message string) {
	writeErrorBody(w, r, http.StatusUnprocessableEntity, "validation_error", message)
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	writeJSON(w, r, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// Services wrap as "service.TripService.X: detail: validation error" and the
// routing layer as "routing.Y: routing error: detail". The call-site prefix is
// context for logs; the client only needs the detail.
func unwrapMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	sentinels := []string{
		domain.ErrValidation.Error(),
		domain.ErrCompliance.Error(),
		domain.ErrInvalidState.Error(),
		domain.ErrConcurrency.Error(),
		domain.ErrRouting.Error(),
	}
	// Detail after the sentinel.
	for _, sentinel := range sentinels {
		marker := sentinel + ": "
		if i := strings.LastIndex(msg, marker); i >= 0 && i+len(marker) < len(msg) {
			return msg[i+len(marker):]
		}
	}
	// Detail before a trailing sentinel, minus the call-site prefix.
	for _, sentinel := range sentinels {
		suffix := ": " + sentinel
		if strings.HasSuffix(msg, suffix) {
			detail := strings.TrimSuffix(msg, suffix)
			if i := strings.Index(detail, ": "); i >= 0 {
				return detail[i+2:]
			}
			return sentinel
		}
	}
	return msg
}
