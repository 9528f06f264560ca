package util

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = newStrictPolicy()

func newStrictPolicy() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}

// StripHTML removes every tag from s and returns readable plain text with
// entities decoded and whitespace collapsed.
func StripHTML(s string) string {
	if s == "" {
		return ""
	}
	text := html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}

// Truncate cuts s to at most max characters without splitting a rune.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// Deref returns the pointed-to string, or fallback for nil and blank values.
func Deref(s *string, fallback string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return fallback
	}
	return *s
}
