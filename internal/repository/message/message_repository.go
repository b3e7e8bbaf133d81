// File: internal/repository/message/message_repository.go

package message

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rfaizy/govassist/internal/domain"
	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

// Create persists a message together with its citations, if any. The citation
// Position field preserves the backend's source ordering.
func (r *gormMessageRepository) Create(ctx context.Context, message *domain.ChatMessage) (*domain.ChatMessage, error) {
	if err := r.validateMessageInput(message); err != nil {
		log.Printf("[MessageRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	for i := range message.Citations {
		message.Citations[i].MessageID = message.ID
		message.Citations[i].Position = i
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		log.Printf("[MessageRepository] Database error during message creation for session %s: %v", message.SessionID, err)
		return nil, errors.New("database error creating message")
	}

	return message, nil
}

// FindBySessionID returns the full conversation in insertion order, with
// citations attached in their original ordering.
func (r *gormMessageRepository) FindBySessionID(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if sessionID == "" {
		return nil, errors.New("invalid session ID")
	}

	var messages []domain.ChatMessage
	err := r.db.WithContext(ctx).
		Preload("Citations", func(db *gorm.DB) *gorm.DB {
			return db.Order("citations.position ASC")
		}).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error finding messages for session %s: %v", sessionID, err)
		return nil, errors.New("database error fetching messages")
	}
	return messages, nil
}

func (r *gormMessageRepository) CountBySessionID(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, errors.New("invalid session ID")
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ChatMessage{}).
		Where("session_id = ?", sessionID).
		Count(&count).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error counting messages for session %s: %v", sessionID, err)
		return 0, errors.New("database error counting messages")
	}
	return count, nil
}

func (r *gormMessageRepository) validateMessageInput(message *domain.ChatMessage) error {
	if message == nil {
		return errors.New("message cannot be nil")
	}
	if message.ID == "" {
		return errors.New("message ID is required")
	}
	if message.SessionID == "" {
		return errors.New("session ID is required")
	}
	if message.Role != domain.RoleUser && message.Role != domain.RoleAssistant {
		return fmt.Errorf("invalid role %q", message.Role)
	}
	if message.Content == "" {
		return errors.New("content cannot be empty")
	}
	if message.Role == domain.RoleUser && len(message.Citations) > 0 {
		return errors.New("citations are assistant-only")
	}
	return nil
}
