// Package parser implements the per-source text extractors: a fixed
// registry of {Encyclopedia, ArticleSite, BlogSite} variants.
package parser

import "fmt"

// Parser extracts clean, deduplicated plain text from a source's raw
// HTML payload. Implementations are pure functions of the input
// (no I/O) except the encyclopedia parser, whose two-phase render
// fetch is modeled as a worker-side pre-step (see internal/parser/wikiapi.go).
type Parser interface {
	// Parse extracts a clean paragraph stream and joins it, dropping
	// fragments below the source's minimum paragraph length. Never
	// errors on empty input — it returns an empty string.
	Parse(rawHTML string) string

	// MinWords is the per-source minimum word count threshold a
	// worker compares word_count against before accepting a fetch.
	MinWords() int
}

// Registry maps source tag to its Parser.
type Registry map[string]Parser

// NewRegistry builds the fixed three-source registry with the
// per-source minimum word counts from configuration.
func NewRegistry(minWords map[string]int) Registry {
	return Registry{
		"wiki":       &EncyclopediaParser{minWords: minWords["wiki"]},
		"championat": &ArticleSiteParser{minWords: minWords["championat"]},
		"sportsru":   &BlogSiteParser{minWords: minWords["sportsru"]},
	}
}

// Get returns the Parser for source, or an error if the source isn't registered.
func (r Registry) Get(source string) (Parser, error) {
	p, ok := r[source]
	if !ok {
		return nil, fmt.Errorf("no parser registered for source %q", source)
	}
	return p, nil
}
