package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"go.klb.dev/clipstream/internal/history"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encode JSON response", "err", err)
		}
	}
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: msg})
}

// writeError maps store errors to HTTP statuses. Storage failures are logged
// and reported without their details.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, history.ErrNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "not_found", Message: err.Error()})
	case errors.Is(err, history.ErrEmptyContent), errors.Is(err, history.ErrEmptyKey):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
	case errors.Is(err, history.ErrDuplicateContent):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: "conflict", Message: history.ErrDuplicateContent.Error()})
	default:
		slog.Error("request failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error", Message: "an internal error occurred"})
	}
}
