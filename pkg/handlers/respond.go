package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"lunori/pkg/errors"
)

// writeJSON writes a JSON response body with the given status
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError funnels every error response through one place: structured
// app errors keep their category's status and message, anything else
// becomes an opaque 500. The internal error is logged, never sent to the
// client.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	if appErr, ok := err.(*errors.AppError); ok {
		status = appErr.HTTPStatus()
		message = appErr.Message
	}

	logger.Error("request failed",
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)

	writeJSON(w, status, map[string]interface{}{
		"error":  message,
		"status": status,
	})
}
