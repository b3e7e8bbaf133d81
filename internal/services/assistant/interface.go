// File: internal/services/assistant/interface.go
package assistant

import "context"

// HistoryMessage is one prior conversation turn sent to the chat endpoint.
type HistoryMessage struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// ChatRequest is the payload of the remote /chat endpoint.
type ChatRequest struct {
	Query               string           `json:"query"`
	ConversationHistory []HistoryMessage `json:"conversation_history"`
}

// Source describes one retrieved document reference in a chat response.
type Source struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// ChatResponse is the payload returned by the remote /chat endpoint.
type ChatResponse struct {
	Answer             string   `json:"answer"`
	DocumentsRetrieved int      `json:"documents_retrieved"`
	Sources            []Source `json:"sources,omitempty"`
}

// ActionRequest is the payload of the remote /action endpoint.
type ActionRequest struct {
	Query      string `json:"query"`
	Context    string `json:"context"`
	ActionType string `json:"action_type"`
}

// ActionResponse is the payload returned by the remote /action endpoint.
type ActionResponse struct {
	Result     string `json:"result"`
	ActionType string `json:"action_type"`
}

// Provider is the client for the remote retrieval-augmented-generation
// service. The service itself is an opaque collaborator: this package only
// speaks its JSON contract.
type Provider interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Action(ctx context.Context, req ActionRequest) (*ActionResponse, error)
	HealthCheck(ctx context.Context) error
}
