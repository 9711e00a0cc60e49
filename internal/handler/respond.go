package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/yourorg/staffdesk/internal/domain"
)

// ErrorResponse is the JSON body for every failure
type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps the domain error taxonomy to HTTP status codes. Anything
// outside the taxonomy is a storage or internal failure and becomes a 500
// without leaking stack detail.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrPolicy):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAuth):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	}
	writeJSON(w, status, ErrorResponse{Message: err.Error()})
}
