package entity

import (
	"fmt"
	"path"
	"strings"
)

// Patterns is a list of case-insensitive class name globs such as
// "trigger_*".
type Patterns []string

// Validate checks every pattern for syntax errors.
func (p Patterns) Validate() error {
	for _, pat := range p {
		if _, err := path.Match(strings.ToLower(pat), ""); err != nil {
			return fmt.Errorf("class pattern %q: %w", pat, err)
		}
	}
	return nil
}

// Match reports whether class matches any pattern. Malformed patterns never
// match.
func (p Patterns) Match(class string) bool {
	class = strings.ToLower(class)
	for _, pat := range p {
		if ok, err := path.Match(strings.ToLower(pat), class); err == nil && ok {
			return true
		}
	}
	return false
}
