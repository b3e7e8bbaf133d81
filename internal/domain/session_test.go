// File: internal/domain/session_test.go
package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short message kept whole", "flood update", "flood update"},
		{"exactly the limit", strings.Repeat("a", 30), strings.Repeat("a", 30)},
		{"one over the limit", strings.Repeat("a", 31), strings.Repeat("a", 30) + "..."},
		{"long message truncated", "What rehabilitation programs exist for flood victims?", "What rehabilitation programs e..."},
		{"surrounding whitespace trimmed", "  hello there  ", "hello there"},
		{"multibyte runes counted as characters", strings.Repeat("م", 31), strings.Repeat("م", 30) + "..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, TitleFromMessage(tc.in))
		})
	}
}
