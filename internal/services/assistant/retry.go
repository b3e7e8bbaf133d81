// File: internal/services/assistant/retry.go
package assistant

import (
	"context"
	"errors"
	"time"
)

// RetryConfig defines simple retry behavior
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultRetryConfig provides sensible defaults
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts: 2,
		Delay:       500 * time.Millisecond,
	}
}

// RetryWithBackoff executes a function with simple retry logic
func RetryWithBackoff(ctx context.Context, config *RetryConfig, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		// Don't retry non-retryable errors
		var assistantErr *AssistantError
		if errors.As(err, &assistantErr) {
			if assistantErr.Type == ErrTypeConfig || assistantErr.Type == ErrTypeValidation {
				return err
			}
		}

		// Don't wait after last attempt
		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(config.Delay):
			}
		}
	}

	return lastErr
}

// retryingProvider wraps a Provider with transient-failure retries.
type retryingProvider struct {
	inner Provider
	retry *RetryConfig
}

// WithRetry decorates a Provider so transient network and service failures
// are retried before the Session Store falls back to an apology message.
func WithRetry(inner Provider, retry *RetryConfig) Provider {
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	return &retryingProvider{inner: inner, retry: retry}
}

func (p *retryingProvider) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp *ChatResponse
	err := RetryWithBackoff(ctx, p.retry, func(ctx context.Context) error {
		var innerErr error
		resp, innerErr = p.inner.Chat(ctx, req)
		return innerErr
	})
	return resp, err
}

func (p *retryingProvider) Action(ctx context.Context, req ActionRequest) (*ActionResponse, error) {
	var resp *ActionResponse
	err := RetryWithBackoff(ctx, p.retry, func(ctx context.Context) error {
		var innerErr error
		resp, innerErr = p.inner.Action(ctx, req)
		return innerErr
	})
	return resp, err
}

func (p *retryingProvider) HealthCheck(ctx context.Context) error {
	return p.inner.HealthCheck(ctx)
}
