package parser

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var wsRe = regexp.MustCompile(`\s+`)

// normalizeWhitespace collapses runs of whitespace to a single space
// and trims the ends.
func normalizeWhitespace(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// postprocess drops blanks and fragments under minLen, then drops
// case-insensitive duplicates, preserving first-seen order. Shared by
// all three per-source parsers instead of repeating the same
// filter/dedup loop in each.
func postprocess(paragraphs []string, minLen int) []string {
	seen := make(map[string]bool, len(paragraphs))
	out := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = normalizeWhitespace(p)
		if utf8.RuneCountInString(p) < minLen {
			continue
		}
		key := strings.ToLower(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, p)
	}
	return out
}
