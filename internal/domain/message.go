// File: internal/domain/message.go
package domain

import "time"

// Message roles. A message is fixed at creation and never edited afterwards.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message within a session. Messages are
// append-only: once created neither content nor role ever changes.
type ChatMessage struct {
	ID        string     `json:"id" gorm:"primarykey"`
	SessionID string     `json:"sessionId" gorm:"not null;index"`
	Role      string     `json:"role" gorm:"not null"` // "user" or "assistant"
	Content   string     `json:"content" gorm:"not null"`
	CreatedAt time.Time  `json:"timestamp"`
	Citations []Citation `json:"sources,omitempty" gorm:"foreignKey:MessageID"`
}
