// File: internal/services/assistant/config.go
package assistant

import (
	"fmt"
	"time"
)

type Config struct {
	BaseURL      string        // Base URL of the remote RAG service
	Timeout      time.Duration // Per-request timeout
	MaxRetries   int           // Maximum retry attempts for transient failures
	RetryDelay   time.Duration // Delay between retries
	HistoryLimit int           // Trailing messages of history sent with each chat call
}

func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("ASSISTANT_BASE_URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 1 {
		return fmt.Errorf("max_retries must be at least 1")
	}
	if c.HistoryLimit <= 0 {
		return fmt.Errorf("history_limit must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:      120 * time.Second,
		MaxRetries:   2,
		RetryDelay:   500 * time.Millisecond,
		HistoryLimit: 10,
	}
}
