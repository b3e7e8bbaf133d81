// File: internal/services/assistant/client.go
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

type HTTPProvider struct {
	config *Config
	client *http.Client
}

func NewHTTPProvider(config *Config) *HTTPProvider {
	return &HTTPProvider{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

func (p *HTTPProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, &AssistantError{Type: ErrTypeValidation, Message: "query cannot be empty"}
	}

	// Only the trailing window of the conversation is sent; the backend
	// prompt builder ignores anything older anyway.
	if len(req.ConversationHistory) > p.config.HistoryLimit {
		req.ConversationHistory = req.ConversationHistory[len(req.ConversationHistory)-p.config.HistoryLimit:]
	}

	var resp ChatResponse
	if err := p.post(ctx, "/chat", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *HTTPProvider) Action(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, &AssistantError{Type: ErrTypeValidation, Message: "query cannot be empty"}
	}
	if req.ActionType == "" {
		return nil, &AssistantError{Type: ErrTypeValidation, Message: "action_type cannot be empty"}
	}

	var resp ActionResponse
	if err := p.post(ctx, "/action", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (p *HTTPProvider) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+"/health", nil)
	if err != nil {
		return &AssistantError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return &AssistantError{Type: ErrTypeNetwork, Message: "health check failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &AssistantError{Type: ErrTypeService, Code: resp.StatusCode, Message: "service unhealthy"}
	}
	return nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, payload, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &AssistantError{Type: ErrTypeValidation, Message: "invalid payload", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return &AssistantError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return &AssistantError{Type: ErrTypeNetwork, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(resp.Body)
		return &AssistantError{
			Type:    ErrTypeService,
			Code:    resp.StatusCode,
			Message: string(responseBody),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &AssistantError{Type: ErrTypeService, Message: "malformed response body", Cause: err}
	}
	return nil
}
