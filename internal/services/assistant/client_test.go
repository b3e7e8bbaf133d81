// File: internal/services/assistant/client_test.go
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 5 * time.Second
	return cfg
}

func requireAssistantErrType(t *testing.T, err error, want ErrorType) *AssistantError {
	t.Helper()
	var aErr *AssistantError
	require.ErrorAs(t, err, &aErr)
	require.Equal(t, want, aErr.Type)
	return aErr
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate(), "base URL is required")

	cfg.BaseURL = "http://localhost:8000"
	assert.NoError(t, cfg.Validate())

	cfg.HistoryLimit = 0
	assert.Error(t, cfg.Validate())
}

func TestChat(t *testing.T) {
	var gotReq ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(ChatResponse{
			Answer:             "The PDMA coordinates flood response.",
			DocumentsRetrieved: 3,
			Sources:            []Source{{ID: "1", Title: "PDMA", URL: "https://pdma.gkp.pk"}},
		})
	}))
	defer srv.Close()

	p := NewHTTPProvider(testConfig(srv.URL))
	resp, err := p.Chat(context.Background(), ChatRequest{
		Query: "Who coordinates flood response?",
		ConversationHistory: []HistoryMessage{
			{Role: "user", Content: "hello"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "The PDMA coordinates flood response.", resp.Answer)
	assert.Equal(t, 3, resp.DocumentsRetrieved)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "PDMA", resp.Sources[0].Title)

	assert.Equal(t, "Who coordinates flood response?", gotReq.Query)
	require.Len(t, gotReq.ConversationHistory, 1)
}

func TestChatTrimsHistory(t *testing.T) {
	var gotReq ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(ChatResponse{Answer: "ok"})
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.HistoryLimit = 10
	p := NewHTTPProvider(cfg)

	history := make([]HistoryMessage, 25)
	for i := range history {
		history[i] = HistoryMessage{Role: "user", Content: fmt.Sprintf("turn %d", i)}
	}

	_, err := p.Chat(context.Background(), ChatRequest{Query: "q", ConversationHistory: history})
	require.NoError(t, err)

	require.Len(t, gotReq.ConversationHistory, 10)
	assert.Equal(t, "turn 15", gotReq.ConversationHistory[0].Content, "trailing window is kept")
	assert.Equal(t, "turn 24", gotReq.ConversationHistory[9].Content)
}

func TestChatValidation(t *testing.T) {
	p := NewHTTPProvider(testConfig("http://localhost:1"))

	_, err := p.Chat(context.Background(), ChatRequest{Query: "   "})
	requireAssistantErrType(t, err, ErrTypeValidation)
}

func TestChatServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewHTTPProvider(testConfig(srv.URL))
	_, err := p.Chat(context.Background(), ChatRequest{Query: "q"})
	aErr := requireAssistantErrType(t, err, ErrTypeService)
	assert.Equal(t, http.StatusInternalServerError, aErr.Code)
}

func TestChatNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	p := NewHTTPProvider(testConfig(srv.URL))
	_, err := p.Chat(context.Background(), ChatRequest{Query: "q"})
	requireAssistantErrType(t, err, ErrTypeNetwork)
}

func TestChatMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	p := NewHTTPProvider(testConfig(srv.URL))
	_, err := p.Chat(context.Background(), ChatRequest{Query: "q"})
	requireAssistantErrType(t, err, ErrTypeService)
}

func TestAction(t *testing.T) {
	var gotReq ActionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/action", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		json.NewEncoder(w).Encode(ActionResponse{Result: "## Feasibility\n...", ActionType: gotReq.ActionType})
	}))
	defer srv.Close()

	p := NewHTTPProvider(testConfig(srv.URL))
	resp, err := p.Action(context.Background(), ActionRequest{
		Query:      "flood shelters",
		Context:    "User: flood shelters\nAssistant: ...",
		ActionType: "feasibility",
	})
	require.NoError(t, err)
	assert.Equal(t, "## Feasibility\n...", resp.Result)
	assert.Equal(t, "feasibility", resp.ActionType)
	assert.Equal(t, "feasibility", gotReq.ActionType)
}

func TestActionValidation(t *testing.T) {
	p := NewHTTPProvider(testConfig("http://localhost:1"))

	_, err := p.Action(context.Background(), ActionRequest{Query: "", ActionType: "feasibility"})
	requireAssistantErrType(t, err, ErrTypeValidation)

	_, err = p.Action(context.Background(), ActionRequest{Query: "q", ActionType: ""})
	requireAssistantErrType(t, err, ErrTypeValidation)
}

func TestHealthCheck(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/health", r.URL.Path)
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		p := NewHTTPProvider(testConfig(srv.URL))
		assert.NoError(t, p.HealthCheck(context.Background()))
	})

	t.Run("unhealthy", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		p := NewHTTPProvider(testConfig(srv.URL))
		err := p.HealthCheck(context.Background())
		requireAssistantErrType(t, err, ErrTypeService)
	})
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	fastRetry := &RetryConfig{MaxAttempts: 3, Delay: time.Millisecond}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(ctx, fastRetry, func(ctx context.Context) error {
			attempts++
			if attempts < 3 {
				return &AssistantError{Type: ErrTypeNetwork, Message: "transient"}
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		attempts := 0
		boom := &AssistantError{Type: ErrTypeService, Code: 502, Message: "bad gateway"}
		err := RetryWithBackoff(ctx, fastRetry, func(ctx context.Context) error {
			attempts++
			return boom
		})
		assert.Equal(t, 3, attempts)
		requireAssistantErrType(t, err, ErrTypeService)
	})

	t.Run("validation errors are not retried", func(t *testing.T) {
		attempts := 0
		err := RetryWithBackoff(ctx, fastRetry, func(ctx context.Context) error {
			attempts++
			return &AssistantError{Type: ErrTypeValidation, Message: "empty query"}
		})
		assert.Equal(t, 1, attempts)
		requireAssistantErrType(t, err, ErrTypeValidation)
	})

	t.Run("cancelled context stops the loop", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		attempts := 0
		err := RetryWithBackoff(cancelled, &RetryConfig{MaxAttempts: 5, Delay: time.Minute}, func(ctx context.Context) error {
			attempts++
			return errors.New("down")
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts, "no second attempt after cancellation")
	})
}

func TestWithRetryProvider(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "warming up", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(ChatResponse{Answer: "recovered"})
	}))
	defer srv.Close()

	p := WithRetry(NewHTTPProvider(testConfig(srv.URL)), &RetryConfig{MaxAttempts: 2, Delay: time.Millisecond})
	resp, err := p.Chat(context.Background(), ChatRequest{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Answer)
	assert.Equal(t, 2, calls)
}
