// File: internal/services/chat/templates.go
package chat

// Canned assistant replies. Remote-call failures are never surfaced as
// crashes: the flow always ends with a message appended to the conversation.
const (
	// ChatApology replaces the assistant reply when the chat call fails.
	ChatApology = "I apologize, but I'm having trouble processing your request " +
		"right now. Please try again in a moment."

	// ActionApology replaces the analysis result when the action call fails.
	ActionApology = "I apologize, but I'm experiencing a technical difficulty " +
		"with the specialized analysis. Please try again in a moment."
)
