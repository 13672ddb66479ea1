package api

import (
	"encoding/json"
	"net/http"

	apperrors "coachhub/internal/errors"

	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to its status and writes {"error": ...}. Server-side
// failures are logged with the full error; the client only sees a safe message.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	status := apperrors.StatusCode(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	writeJSON(w, status, ErrorResponse{Error: apperrors.PublicMessage(err)})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.NewValidationError("", "invalid request body")
	}
	return nil
}
