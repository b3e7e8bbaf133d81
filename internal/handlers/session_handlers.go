// File: internal/handlers/session_handlers.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/rfaizy/govassist/internal/domain"
	"github.com/rfaizy/govassist/internal/services"
	"github.com/rfaizy/govassist/internal/services/gate"
	"github.com/rfaizy/govassist/internal/services/markdown"
)

type SessionHandler struct {
	Store    *services.SessionStore
	Renderer *markdown.Renderer
}

func NewSessionHandler(store *services.SessionStore, renderer *markdown.Renderer) *SessionHandler {
	return &SessionHandler{
		Store:    store,
		Renderer: renderer,
	}
}

// messageView is a chat message plus its markdown rendered for the page.
// Only assistant content is rendered; user text is shown verbatim.
type messageView struct {
	domain.ChatMessage
	ContentHTML string `json:"contentHtml,omitempty"`
}

func (h *SessionHandler) viewOf(msg domain.ChatMessage) messageView {
	view := messageView{ChatMessage: msg}
	if msg.Role == domain.RoleAssistant {
		view.ContentHTML = h.Renderer.Render(msg.Content)
	}
	return view
}

func (h *SessionHandler) viewsOf(messages []domain.ChatMessage) []messageView {
	views := make([]messageView, 0, len(messages))
	for _, msg := range messages {
		views = append(views, h.viewOf(msg))
	}
	return views
}

// GetSessions returns the session collection, most recent first.
func (h *SessionHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.Store.Sessions(r.Context())
	if err != nil {
		writeError(w, "Could not retrieve sessions", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sessions":        sessions,
		"activeSessionId": h.Store.ActiveSessionID(),
	})
}

// StartNewSession returns the UI to home state without deleting anything.
func (h *SessionHandler) StartNewSession(w http.ResponseWriter, r *http.Request) {
	h.Store.StartNewSession()
	w.WriteHeader(http.StatusNoContent)
}

// SelectSession makes an existing session the displayed one.
func (h *SessionHandler) SelectSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Store.SelectSession(r.Context(), id); err != nil {
		writeChatError(w, err)
		return
	}

	messages, err := h.Store.ActiveMessages(r.Context())
	if err != nil {
		writeError(w, "Could not retrieve messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activeSessionId": h.Store.ActiveSessionID(),
		"messages":        h.viewsOf(messages),
	})
}

// BeginTitleEdit opens the title-edit state for a session.
func (h *SessionHandler) BeginTitleEdit(w http.ResponseWriter, r *http.Request) {
	h.Store.BeginTitleEdit(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// CancelTitleEdit abandons an open title edit.
func (h *SessionHandler) CancelTitleEdit(w http.ResponseWriter, r *http.Request) {
	h.Store.CancelTitleEdit(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// RenameSession replaces a session title.
func (h *SessionHandler) RenameSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	if err := h.Store.RenameSession(r.Context(), id, req.Title); err != nil {
		writeChatError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RequestDelete arms the two-phase delete for a session.
func (h *SessionHandler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Store.RequestDelete(r.Context(), id); err != nil {
		writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"pendingDelete": id})
}

// ConfirmDelete executes a previously requested delete.
func (h *SessionHandler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.Store.ConfirmDelete(r.Context(), id); err != nil {
		writeChatError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CancelDelete disarms a pending delete.
func (h *SessionHandler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.Store.CancelDelete(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// GetMessages returns the active conversation.
func (h *SessionHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.Store.ActiveMessages(r.Context())
	if err != nil {
		writeError(w, "Could not retrieve messages", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"activeSessionId": h.Store.ActiveSessionID(),
		"messages":        h.viewsOf(messages),
	})
}

// SendMessage appends a user message and the assistant's reply.
func (h *SessionHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.Store.SendMessage(r.Context(), req.Text)
	if err != nil {
		writeChatError(w, err)
		return
	}

	response := map[string]interface{}{
		"sessionId":          result.SessionID,
		"userMessage":        h.viewOf(*result.UserMessage),
		"documentsRetrieved": result.DocumentsRetrieved,
		"discarded":          result.Discarded,
	}
	if result.AssistantMessage != nil {
		response["assistantMessage"] = h.viewOf(*result.AssistantMessage)
	}
	writeJSON(w, http.StatusOK, response)
}

// RunAction evaluates the context gate and runs a quick action.
func (h *SessionHandler) RunAction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActionType string `json:"action_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Bad Request", http.StatusBadRequest)
		return
	}

	result, err := h.Store.RunAction(r.Context(), gate.Action(req.ActionType))
	if err != nil {
		writeChatError(w, err)
		return
	}

	response := map[string]interface{}{
		"sessionId":  result.SessionID,
		"actionType": result.ActionType,
		"forwarded":  result.Forwarded,
		"discarded":  result.Discarded,
	}
	if result.AssistantMessage != nil {
		response["assistantMessage"] = h.viewOf(*result.AssistantMessage)
	}
	writeJSON(w, http.StatusOK, response)
}
