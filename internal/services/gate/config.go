// File: internal/services/gate/config.go
package gate

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// Rules is the configuration table behind the context gate. The lists are
// static data, not logic: tuning them never touches the decision flow.
type Rules struct {
	ShortMessageMaxLen int      `yaml:"short_message_max_len"`
	RecentUserMessages int      `yaml:"recent_user_messages"`
	GreetingPatterns   []string `yaml:"greeting_patterns"`
	DomainKeywords     []string `yaml:"domain_keywords"`
	DetailKeywords     []string `yaml:"detail_keywords"`
}

func (r *Rules) Validate() error {
	if r.ShortMessageMaxLen <= 0 {
		return fmt.Errorf("short_message_max_len must be positive")
	}
	if r.RecentUserMessages <= 0 {
		return fmt.Errorf("recent_user_messages must be positive")
	}
	if len(r.DomainKeywords) == 0 {
		return fmt.Errorf("domain_keywords cannot be empty")
	}
	if len(r.DetailKeywords) == 0 {
		return fmt.Errorf("detail_keywords cannot be empty")
	}
	return nil
}

// DefaultRules returns the embedded rule table.
func DefaultRules() (*Rules, error) {
	return parseRules(defaultRulesYAML)
}

// LoadRules reads a rule table from a YAML file, for tuning the keyword
// lists without a rebuild.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gate rules %s: %w", path, err)
	}
	return parseRules(data)
}

func parseRules(data []byte) (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing gate rules: %w", err)
	}
	if err := rules.Validate(); err != nil {
		return nil, fmt.Errorf("invalid gate rules: %w", err)
	}
	return &rules, nil
}
