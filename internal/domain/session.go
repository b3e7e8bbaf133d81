// File: internal/domain/session.go
package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// TitleMaxLen is the number of characters of the first user message kept as
// the session title before the ellipsis is applied.
const TitleMaxLen = 30

// ChatSession represents a single persisted conversation thread.
type ChatSession struct {
	ID        string    `json:"id" gorm:"primarykey"`
	Title     string    `json:"title" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// TitleFromMessage derives a session title from the first user message of a
// new conversation: the text truncated to TitleMaxLen characters, with an
// ellipsis marker when anything was cut.
func TitleFromMessage(text string) string {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= TitleMaxLen {
		return trimmed
	}

	var b strings.Builder
	count := 0
	for _, r := range trimmed {
		if count >= TitleMaxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String() + "..."
}
