// Package sanitize strips markup from user-supplied profile text before it
// reaches the record store.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer cleans free-text fields (biography, username, caption).
type TextSanitizer interface {
	Text(raw string) string
}

type strictSanitizer struct {
	policy *bluemonday.Policy
}

// maxPasses bounds the strip/unescape loop for deeply entity-encoded input.
const maxPasses = 8

var angleBrackets = strings.NewReplacer("<", "", ">", "")

// NewStrict returns a sanitizer that removes every HTML element and keeps the
// text content. Entities are decoded so plain text such as "a & b" round-trips
// unchanged. Decoding can expose new markup, so stripping repeats until the
// output stops changing; Text(Text(x)) == Text(x).
func NewStrict() TextSanitizer {
	return &strictSanitizer{policy: bluemonday.StrictPolicy()}
}

// Text is safe for concurrent use; the same input always yields the same output.
func (s *strictSanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}

	out := raw
	for i := 0; i < maxPasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(out)))
		if next == out {
			return out
		}
		out = next
	}
	return angleBrackets.Replace(out)
}
