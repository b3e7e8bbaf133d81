// File: internal/services/gate/gate.go
package gate

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rfaizy/govassist/internal/domain"
)

// Action is a secondary analysis transformation applied to conversation
// context, distinct from the primary chat turn.
type Action string

const (
	ActionFeasibility     Action = "feasibility"
	ActionCaseStudy       Action = "case_study"
	ActionExecutiveReport Action = "executive_report"
)

func (a Action) IsValid() bool {
	switch a {
	case ActionFeasibility, ActionCaseStudy, ActionExecutiveReport:
		return true
	}
	return false
}

// Label returns the action name for user-facing text, with word separators
// normalized ("case_study" -> "case study").
func (a Action) Label() string {
	return strings.ReplaceAll(string(a), "_", " ")
}

// Verdict is the outcome of evaluating a conversation against the rule table.
type Verdict struct {
	Sufficient           bool
	HasSimpleContent     bool
	HasGovernmentContent bool
	IsDetailedRequest    bool
}

// Gate decides whether a conversation carries enough government-policy
// substance to justify forwarding an action request to the remote analysis
// service. It is a pure function of the message history and the rule table.
type Gate struct {
	rules *Rules
}

func NewGate(rules *Rules) *Gate {
	return &Gate{rules: rules}
}

// Evaluate inspects the last few user messages of the history.
//
// The conversation is insufficient only when it is made of short greetings or
// acknowledgments AND mentions no domain term AND contains no explicit ask
// for detail. Everything else errs toward sufficient, so a legitimate request
// is never blocked by a false negative.
func (g *Gate) Evaluate(history []domain.ChatMessage) Verdict {
	recent := g.recentUserMessages(history)
	if len(recent) == 0 {
		return Verdict{Sufficient: false}
	}

	v := Verdict{
		HasSimpleContent:     g.hasSimpleContent(recent),
		HasGovernmentContent: g.hasGovernmentContent(recent),
		IsDetailedRequest:    g.isDetailedRequest(recent),
	}
	v.Sufficient = !v.HasSimpleContent || v.HasGovernmentContent || v.IsDetailedRequest
	return v
}

// recentUserMessages selects the last few user-authored messages in
// chronological order.
func (g *Gate) recentUserMessages(history []domain.ChatMessage) []string {
	var selected []string
	for _, msg := range history {
		if msg.Role == domain.RoleUser {
			selected = append(selected, msg.Content)
		}
	}
	if len(selected) > g.rules.RecentUserMessages {
		selected = selected[len(selected)-g.rules.RecentUserMessages:]
	}
	return selected
}

func (g *Gate) hasSimpleContent(messages []string) bool {
	for _, msg := range messages {
		trimmed := strings.TrimSpace(msg)
		if utf8.RuneCountInString(trimmed) <= g.rules.ShortMessageMaxLen {
			return true
		}
		if containsAny(trimmed, g.rules.GreetingPatterns) {
			return true
		}
	}
	return false
}

func (g *Gate) hasGovernmentContent(messages []string) bool {
	for _, msg := range messages {
		if containsAny(msg, g.rules.DomainKeywords) {
			return true
		}
	}
	return false
}

func (g *Gate) isDetailedRequest(messages []string) bool {
	combined := strings.Join(messages, " ")
	return containsAny(combined, g.rules.DetailKeywords)
}

// containsAny does case-insensitive substring matching without word
// boundaries, so keyword fragments inside longer words also match.
func containsAny(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// InsufficientContextMessage is the local reply returned instead of calling
// the remote analysis service when the gate decides against forwarding.
func InsufficientContextMessage(action Action) string {
	label := action.Label()
	return fmt.Sprintf("I'd be glad to prepare a **%s** for you, but I need a bit more "+
		"context first. Please ask me about a specific government policy, program, "+
		"department, or service — for example flood response, district development, "+
		"or a provincial health initiative — and then request the %s again.",
		label, label)
}
