// File: internal/handlers/helpers.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	chatcore "github.com/rfaizy/govassist/internal/services/chat"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeChatError maps store errors onto HTTP statuses.
func writeChatError(w http.ResponseWriter, err error) {
	var chatErr *chatcore.ChatError
	if errors.As(err, &chatErr) {
		switch chatErr.Type {
		case chatcore.ErrTypeValidation:
			writeError(w, chatErr.Message, http.StatusBadRequest)
			return
		case chatcore.ErrTypeConflict:
			writeError(w, chatErr.Message, http.StatusConflict)
			return
		case chatcore.ErrTypeNotFound:
			writeError(w, chatErr.Message, http.StatusNotFound)
			return
		}
	}
	writeError(w, "Internal server error", http.StatusInternalServerError)
}
