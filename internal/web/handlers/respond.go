package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/omnarkhede/volunteerhub/pkg/core/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps the service error taxonomy to HTTP status codes.
// Store failures are logged with detail but clients get a generic message.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, services.ErrUnauthenticated.Error())
	case errors.Is(err, services.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAlreadyApplied):
		writeError(w, http.StatusConflict, services.ErrAlreadyApplied.Error())
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, services.ErrNotFound.Error())
	default:
		logger.Error("Store operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
