// File: internal/domain/citation.go
package domain

// Citation is a reference attached to an assistant message, pointing to a
// source document retrieved by the backend. Label is only unique within one
// message's source list. URL is advisory: the UI opens a placeholder route
// instead of navigating to it.
type Citation struct {
	ID        uint   `json:"-" gorm:"primarykey"`
	MessageID string `json:"-" gorm:"not null;index"`
	Label     string `json:"id" gorm:"not null"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	Snippet   string `json:"snippet"`
	Position  int    `json:"-" gorm:"not null"`
}
