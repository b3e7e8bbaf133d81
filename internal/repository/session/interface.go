package session

import (
	"context"

	"github.com/rfaizy/govassist/internal/domain"
)

// SessionRepository handles chat session data operations.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.ChatSession) (*domain.ChatSession, error)
	FindByID(ctx context.Context, id string) (*domain.ChatSession, error)
	FindAll(ctx context.Context) ([]domain.ChatSession, error)
	Rename(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
}
