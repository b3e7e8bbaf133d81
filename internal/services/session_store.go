// File: internal/services/session_store.go
package services

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/rfaizy/govassist/internal/domain"
	"github.com/rfaizy/govassist/internal/repository/message"
	"github.com/rfaizy/govassist/internal/repository/session"
	"github.com/rfaizy/govassist/internal/services/assistant"
	chatcore "github.com/rfaizy/govassist/internal/services/chat"
	"github.com/rfaizy/govassist/internal/services/gate"
)

// SessionStore owns the session collection, the active-session pointer and
// the transient UI state around them (in-flight send, title edit, pending
// delete). It is the only writer of that state; everything it changes is
// written through to the repositories immediately, so the displayed
// conversation and the persisted one never diverge.
type SessionStore struct {
	sessionRepo session.SessionRepository
	messageRepo message.MessageRepository
	provider    assistant.Provider
	gate        *gate.Gate
	logger      Logger

	mu        sync.Mutex
	activeID  string // "" = home state, no session selected
	inFlight  string // session id of the pending remote call, "" when idle
	editingID string // session id whose title is mid-edit, "" otherwise

	// Two-phase delete: idle -> pending(sessionID) -> confirmed/cancelled.
	pendingDeleteID string
}

// SendResult describes the outcome of one send: the appended messages, the
// retrieval count reported by the backend, and whether the reply had to be
// discarded because its session disappeared while the call was in flight.
type SendResult struct {
	SessionID          string              `json:"sessionId"`
	UserMessage        *domain.ChatMessage `json:"userMessage"`
	AssistantMessage   *domain.ChatMessage `json:"assistantMessage,omitempty"`
	DocumentsRetrieved int                 `json:"documentsRetrieved"`
	Discarded          bool                `json:"discarded,omitempty"`
}

// ActionResult describes the outcome of a quick-action request.
type ActionResult struct {
	SessionID        string              `json:"sessionId"`
	ActionType       gate.Action         `json:"actionType"`
	Forwarded        bool                `json:"forwarded"`
	AssistantMessage *domain.ChatMessage `json:"assistantMessage,omitempty"`
	Discarded        bool                `json:"discarded,omitempty"`
}

func NewSessionStore(
	sessionRepo session.SessionRepository,
	messageRepo message.MessageRepository,
	provider assistant.Provider,
	actionGate *gate.Gate,
	logger Logger,
) (*SessionStore, error) {
	if sessionRepo == nil {
		return nil, chatcore.NewValidationError("constructor", "session repository is required")
	}
	if messageRepo == nil {
		return nil, chatcore.NewValidationError("constructor", "message repository is required")
	}
	if provider == nil {
		return nil, chatcore.NewValidationError("constructor", "assistant provider is required")
	}
	if actionGate == nil {
		return nil, chatcore.NewValidationError("constructor", "action gate is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	return &SessionStore{
		sessionRepo: sessionRepo,
		messageRepo: messageRepo,
		provider:    provider,
		gate:        actionGate,
		logger:      logger,
	}, nil
}

// Load verifies the persisted collection is readable at startup. An empty or
// freshly created store is not an error; the UI simply starts in home state.
func (s *SessionStore) Load(ctx context.Context) error {
	sessions, err := s.sessionRepo.FindAll(ctx)
	if err != nil {
		return chatcore.NewStorageError("load", "could not load session collection", err)
	}
	s.logger.Info("session store loaded", "sessions", len(sessions))
	return nil
}

// Sessions returns the persisted collection, most recently created first.
func (s *SessionStore) Sessions(ctx context.Context) ([]domain.ChatSession, error) {
	sessions, err := s.sessionRepo.FindAll(ctx)
	if err != nil {
		return nil, chatcore.NewStorageError("sessions", "could not list sessions", err)
	}
	return sessions, nil
}

// ActiveSessionID returns the id of the displayed session, or "" in home state.
func (s *SessionStore) ActiveSessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// PendingDeleteID returns the session awaiting delete confirmation, if any.
func (s *SessionStore) PendingDeleteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingDeleteID
}

// ActiveMessages returns the conversation of the active session, or an empty
// list in home state. The returned list is always exactly the persisted
// messages of the active session.
func (s *SessionStore) ActiveMessages(ctx context.Context) ([]domain.ChatMessage, error) {
	s.mu.Lock()
	activeID := s.activeID
	s.mu.Unlock()

	if activeID == "" {
		return []domain.ChatMessage{}, nil
	}

	messages, err := s.messageRepo.FindBySessionID(ctx, activeID)
	if err != nil {
		return nil, chatcore.NewStorageError("active_messages", "could not load messages", err)
	}
	return messages, nil
}

// StartNewSession returns the UI to home state. No session is deleted; the
// next SendMessage will lazily create a fresh one.
func (s *SessionStore) StartNewSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = ""
	s.editingID = ""
}

// SelectSession makes an existing session the active one. Selecting is a
// no-op while that session's title is being edited, so a click on the
// sidebar row cannot tear down an open edit field.
func (s *SessionStore) SelectSession(ctx context.Context, id string) error {
	exists, err := s.sessionRepo.ExistsByID(ctx, id)
	if err != nil {
		return chatcore.NewStorageError("select_session", "could not check session", err)
	}
	if !exists {
		return chatcore.NewNotFoundError("select_session", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editingID == id {
		return nil
	}
	s.activeID = id
	return nil
}

// BeginTitleEdit marks a session title as mid-edit.
func (s *SessionStore) BeginTitleEdit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editingID = id
}

// CancelTitleEdit abandons an open title edit.
func (s *SessionStore) CancelTitleEdit(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editingID == id {
		s.editingID = ""
	}
}

// RenameSession replaces a session title and closes the edit state. An empty
// title after trimming is rejected; messages and createdAt are untouched.
func (s *SessionStore) RenameSession(ctx context.Context, id, newTitle string) error {
	trimmed := strings.TrimSpace(newTitle)
	if trimmed == "" {
		return chatcore.NewValidationError("rename_session", "title cannot be empty")
	}

	if err := s.sessionRepo.Rename(ctx, id, trimmed); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return chatcore.NewNotFoundError("rename_session", id)
		}
		return chatcore.NewStorageError("rename_session", "could not rename session", err)
	}

	s.mu.Lock()
	if s.editingID == id {
		s.editingID = ""
	}
	s.mu.Unlock()
	return nil
}

// RequestDelete arms the delete confirmation for a session. Nothing is
// removed until ConfirmDelete; a single click can never destroy a session.
func (s *SessionStore) RequestDelete(ctx context.Context, id string) error {
	exists, err := s.sessionRepo.ExistsByID(ctx, id)
	if err != nil {
		return chatcore.NewStorageError("request_delete", "could not check session", err)
	}
	if !exists {
		return chatcore.NewNotFoundError("request_delete", id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pendingDeleteID = id
	return nil
}

// CancelDelete disarms a pending delete.
func (s *SessionStore) CancelDelete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingDeleteID == id {
		s.pendingDeleteID = ""
	}
}

// ConfirmDelete executes a previously requested delete. Deleting the active
// session resets the UI to home state. Irreversible once confirmed.
func (s *SessionStore) ConfirmDelete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.pendingDeleteID != id {
		s.mu.Unlock()
		return chatcore.NewConflictError("confirm_delete", "no delete pending for session", id)
	}
	s.pendingDeleteID = ""
	s.mu.Unlock()

	if err := s.sessionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return chatcore.NewNotFoundError("confirm_delete", id)
		}
		return chatcore.NewStorageError("confirm_delete", "could not delete session", err)
	}

	s.mu.Lock()
	if s.activeID == id {
		s.activeID = ""
	}
	s.mu.Unlock()

	s.logger.Info("session deleted", "session_id", id)
	return nil
}

// SendMessage appends a user message to the active conversation (creating
// the session lazily on the first message), calls the remote chat service
// and appends its reply. A failed call still appends a fixed apology, so the
// user is never left without a response. Only one remote call may be in
// flight at a time.
func (s *SessionStore) SendMessage(ctx context.Context, text string) (*SendResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, chatcore.NewValidationError("send_message", "message cannot be empty")
	}

	s.mu.Lock()
	if s.inFlight != "" {
		inFlight := s.inFlight
		s.mu.Unlock()
		return nil, chatcore.NewConflictError("send_message", "a message send is already in flight", inFlight)
	}

	targetID := s.activeID
	created := targetID == ""
	if created {
		targetID = uuid.NewString()
	}
	s.inFlight = targetID
	s.mu.Unlock()

	// Past this point the in-flight marker must always be cleared.
	defer func() {
		s.mu.Lock()
		s.inFlight = ""
		s.mu.Unlock()
	}()

	if created {
		newSession := &domain.ChatSession{
			ID:    targetID,
			Title: domain.TitleFromMessage(trimmed),
		}
		if _, err := s.sessionRepo.Create(ctx, newSession); err != nil {
			return nil, chatcore.NewStorageError("send_message", "could not create session", err)
		}
		s.mu.Lock()
		s.activeID = targetID
		s.mu.Unlock()
		s.logger.Info("session created", "session_id", targetID, "title", newSession.Title)
	}

	history, err := s.messageRepo.FindBySessionID(ctx, targetID)
	if err != nil {
		return nil, chatcore.NewStorageError("send_message", "could not load history", err)
	}

	userMsg := &domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: targetID,
		Role:      domain.RoleUser,
		Content:   trimmed,
	}
	if _, err := s.messageRepo.Create(ctx, userMsg); err != nil {
		return nil, chatcore.NewStorageError("send_message", "could not store message", err)
	}

	result := &SendResult{SessionID: targetID, UserMessage: userMsg}

	resp, chatErr := s.provider.Chat(ctx, assistant.ChatRequest{
		Query:               trimmed,
		ConversationHistory: chatcore.BuildHistory(history),
	})

	answer := chatcore.ChatApology
	var citations []domain.Citation
	if chatErr != nil {
		s.logger.Error("chat call failed", "session_id", targetID, "error", chatErr)
	} else {
		answer = resp.Answer
		citations = citationsFromSources(resp.Sources)
		result.DocumentsRetrieved = resp.DocumentsRetrieved
	}

	reply, appended, err := s.appendAssistantReply(ctx, targetID, answer, citations)
	if err != nil {
		return nil, err
	}
	if !appended {
		result.Discarded = true
		return result, nil
	}
	result.AssistantMessage = reply
	return result, nil
}

// RunAction evaluates the context gate for the active conversation. When the
// gate passes, the request is forwarded to the remote analysis service with
// the full transcript as context; otherwise a canned guidance message naming
// the action is appended locally and no remote call is made.
func (s *SessionStore) RunAction(ctx context.Context, action gate.Action) (*ActionResult, error) {
	if !action.IsValid() {
		return nil, chatcore.NewValidationError("run_action", "unknown action type")
	}

	s.mu.Lock()
	if s.inFlight != "" {
		inFlight := s.inFlight
		s.mu.Unlock()
		return nil, chatcore.NewConflictError("run_action", "a request is already in flight", inFlight)
	}
	targetID := s.activeID
	if targetID == "" {
		s.mu.Unlock()
		return nil, chatcore.NewValidationError("run_action", "no active session")
	}
	s.inFlight = targetID
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.inFlight = ""
		s.mu.Unlock()
	}()

	history, err := s.messageRepo.FindBySessionID(ctx, targetID)
	if err != nil {
		return nil, chatcore.NewStorageError("run_action", "could not load history", err)
	}

	result := &ActionResult{SessionID: targetID, ActionType: action}

	verdict := s.gate.Evaluate(history)
	if !verdict.Sufficient {
		s.logger.Info("action gated: insufficient context",
			"session_id", targetID, "action", string(action))
		reply, appended, err := s.appendAssistantReply(ctx, targetID,
			gate.InsufficientContextMessage(action), nil)
		if err != nil {
			return nil, err
		}
		result.AssistantMessage = reply
		result.Discarded = !appended
		return result, nil
	}

	result.Forwarded = true
	resp, actionErr := s.provider.Action(ctx, assistant.ActionRequest{
		Query:      chatcore.LastUserQuery(history),
		Context:    chatcore.BuildTranscript(history),
		ActionType: string(action),
	})

	content := chatcore.ActionApology
	if actionErr != nil {
		s.logger.Error("action call failed",
			"session_id", targetID, "action", string(action), "error", actionErr)
	} else {
		content = resp.Result
	}

	reply, appended, err := s.appendAssistantReply(ctx, targetID, content, nil)
	if err != nil {
		return nil, err
	}
	if !appended {
		result.Discarded = true
		return result, nil
	}
	result.AssistantMessage = reply
	return result, nil
}

// appendAssistantReply persists an assistant message unless its session was
// deleted while the originating call was in flight, in which case the reply
// is dropped instead of landing in whatever session is active now.
func (s *SessionStore) appendAssistantReply(ctx context.Context, sessionID, content string, citations []domain.Citation) (*domain.ChatMessage, bool, error) {
	exists, err := s.sessionRepo.ExistsByID(ctx, sessionID)
	if err != nil {
		return nil, false, chatcore.NewStorageError("append_reply", "could not check session", err)
	}
	if !exists {
		s.logger.Warn("discarding stale reply for deleted session", "session_id", sessionID)
		return nil, false, nil
	}

	reply := &domain.ChatMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   content,
		Citations: citations,
	}
	if _, err := s.messageRepo.Create(ctx, reply); err != nil {
		return nil, false, chatcore.NewStorageError("append_reply", "could not store reply", err)
	}
	return reply, true, nil
}

func citationsFromSources(sources []assistant.Source) []domain.Citation {
	if len(sources) == 0 {
		return nil
	}
	citations := make([]domain.Citation, 0, len(sources))
	for i, src := range sources {
		citations = append(citations, domain.Citation{
			Label:    src.ID,
			Title:    src.Title,
			URL:      src.URL,
			Snippet:  src.Snippet,
			Position: i,
		})
	}
	return citations
}
