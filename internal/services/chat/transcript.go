// File: internal/services/chat/transcript.go
package chat

import (
	"strings"
	"time"

	"github.com/rfaizy/govassist/internal/domain"
	"github.com/rfaizy/govassist/internal/services/assistant"
)

// BuildHistory converts stored messages into the wire form of the remote
// chat endpoint's conversation_history field.
func BuildHistory(messages []domain.ChatMessage) []assistant.HistoryMessage {
	history := make([]assistant.HistoryMessage, 0, len(messages))
	for _, msg := range messages {
		history = append(history, assistant.HistoryMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return history
}

// BuildTranscript renders the full conversation as newline-joined labeled
// turns. This is the context string forwarded with action requests.
func BuildTranscript(messages []domain.ChatMessage) string {
	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(roleLabel(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String()
}

// LastUserQuery returns the content of the most recent user message, the
// query an action request is anchored to.
func LastUserQuery(messages []domain.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == domain.RoleUser {
			return messages[i].Content
		}
	}
	return ""
}

func roleLabel(role string) string {
	if role == domain.RoleUser {
		return "User"
	}
	return "Assistant"
}
