package message

import (
	"context"

	"github.com/rfaizy/govassist/internal/domain"
)

// MessageRepository handles message data operations. Messages are append-only:
// there is no update path, and deletion only happens with the owning session.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.ChatMessage) (*domain.ChatMessage, error)
	FindBySessionID(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
	CountBySessionID(ctx context.Context, sessionID string) (int64, error)
}
