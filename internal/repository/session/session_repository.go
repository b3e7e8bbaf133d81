// File: internal/repository/session/session_repository.go

package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/rfaizy/govassist/internal/domain"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("session not found")

type gormSessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &gormSessionRepository{db: db}
}

// Create persists a new session record.
func (r *gormSessionRepository) Create(ctx context.Context, session *domain.ChatSession) (*domain.ChatSession, error) {
	if err := r.validateSessionInput(session); err != nil {
		log.Printf("[SessionRepository] Validation failed: %v", err)
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		log.Printf("[SessionRepository] Database error during session creation %s: %v", session.ID, err)
		return nil, errors.New("database error creating session")
	}

	return session, nil
}

func (r *gormSessionRepository) FindByID(ctx context.Context, id string) (*domain.ChatSession, error) {
	if id == "" {
		return nil, errors.New("invalid session ID")
	}

	var session domain.ChatSession
	err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		log.Printf("[SessionRepository] FindByID database error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &session, nil
}

// FindAll returns every session, most recently created first. The sidebar
// ordering contract: new sessions are inserted at the front of the list.
func (r *gormSessionRepository) FindAll(ctx context.Context) ([]domain.ChatSession, error) {
	var sessions []domain.ChatSession
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Find(&sessions).Error
	if err != nil {
		log.Printf("[SessionRepository] Database error listing sessions: %v", err)
		return nil, errors.New("database error fetching sessions")
	}
	return sessions, nil
}

// Rename replaces a session title. Messages and createdAt are untouched.
func (r *gormSessionRepository) Rename(ctx context.Context, id, title string) error {
	if id == "" {
		return errors.New("invalid session ID")
	}
	if err := r.validateTitle(title); err != nil {
		return fmt.Errorf("title validation: %w", err)
	}

	result := r.db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Where("id = ?", id).
		Update("title", title)
	if result.Error != nil {
		log.Printf("[SessionRepository] Database error renaming session %s: %v", id, result.Error)
		return errors.New("database error renaming session")
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Delete removes a session together with its messages and their citations.
// Messages do not exist independently of their owning session once persisted.
func (r *gormSessionRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("invalid session ID")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var messageIDs []string
		if err := tx.Model(&domain.ChatMessage{}).
			Where("session_id = ?", id).
			Pluck("id", &messageIDs).Error; err != nil {
			return err
		}
		if len(messageIDs) > 0 {
			if err := tx.Where("message_id IN ?", messageIDs).
				Delete(&domain.Citation{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("session_id = ?", id).
			Delete(&domain.ChatMessage{}).Error; err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&domain.ChatSession{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSessionNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		log.Printf("[SessionRepository] Database error deleting session %s: %v", id, err)
		return errors.New("database error deleting session")
	}

	log.Printf("[SessionRepository] Session deleted: %s", id)
	return nil
}

// ExistsByID checks existence without loading the record. Used to discard
// assistant replies that resolve after their session was deleted.
func (r *gormSessionRepository) ExistsByID(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, errors.New("invalid session ID")
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.ChatSession{}).
		Where("id = ?", id).
		Count(&count).Error
	if err != nil {
		log.Printf("[SessionRepository] Database error checking session existence %s: %v", id, err)
		return false, errors.New("database error checking session existence")
	}
	return count > 0, nil
}

func (r *gormSessionRepository) validateSessionInput(session *domain.ChatSession) error {
	if session == nil {
		return errors.New("session cannot be nil")
	}
	if session.ID == "" {
		return errors.New("session ID is required")
	}
	return r.validateTitle(session.Title)
}

func (r *gormSessionRepository) validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.New("title cannot be empty")
	}
	if len(title) > 200 {
		return errors.New("title must be 200 characters or less")
	}
	return nil
}
