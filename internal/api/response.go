package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/Veraticus/rupee-flow/internal/common"
	"github.com/Veraticus/rupee-flow/internal/processing"
	"github.com/Veraticus/rupee-flow/internal/storage"
)

// errBadRequest marks client mistakes that are not covered by a domain
// sentinel, such as malformed JSON.
var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("Failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, common.ErrEmptyMessage),
		errors.Is(err, storage.ErrInvalidMessage),
		errors.Is(err, storage.ErrInvalidLimit),
		errors.Is(err, storage.ErrEmptyString):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, processing.ErrAlreadyProcessed):
		return http.StatusConflict
	case errors.Is(err, common.ErrCircuitOpen), errors.Is(err, common.ErrDatabaseBusy):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a JSON body into v. An empty body is accepted when
// allowEmpty is set and leaves v untouched.
func decodeJSON(r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON: %w", errBadRequest, err)
	}
	return nil
}
