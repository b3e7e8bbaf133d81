// File: internal/handlers/log_handler.go
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rfaizy/govassist/internal/middleware"
)

// frontendEvent is a log record reported by the chat page, typically a
// script error or a failed fetch the page recovered from.
type frontendEvent struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Context any    `json:"context,omitempty"`
}

// LogFrontendEvent accepts browser-side log records and writes them into the
// server log, tagged with the reporting client.
func LogFrontendEvent(w http.ResponseWriter, r *http.Request) {
	var event frontendEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if event.Message == "" {
		writeError(w, "message is required", http.StatusBadRequest)
		return
	}

	clientID, _ := r.Context().Value(middleware.ClientIDKey).(string)

	logFn := slog.Info
	switch event.Level {
	case "error":
		logFn = slog.Error
	case "warn":
		logFn = slog.Warn
	}
	logFn("CLIENT_LOG",
		slog.String("client_id", clientID),
		slog.String("message", event.Message),
		slog.Any("context", event.Context),
	)

	w.WriteHeader(http.StatusNoContent)
}
