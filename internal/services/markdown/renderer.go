// File: internal/services/markdown/renderer.go
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Renderer converts assistant markdown into HTML for the chat page. The
// backend answers in GitHub-flavored markdown and leans heavily on tables,
// so the GFM extension set is required. Raw HTML in answers is escaped.
type Renderer struct {
	md goldmark.Markdown
}

func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
			),
		),
	}
}

// Render converts markdown source to HTML. On conversion failure the raw
// source is returned so the UI still shows something readable.
func (r *Renderer) Render(source string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return source
	}
	return buf.String()
}
