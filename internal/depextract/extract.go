// Package depextract recovers declared dependency identifiers from build
// descriptor text with regular-expression heuristics. It does not parse
// the descriptor language; malformed input simply yields fewer matches.
package depextract

import (
	"github.com/1homsi/buildeval/internal/depset"
)

// DefaultDialect is the pattern table used by Extract.
const DefaultDialect = "kotlin-dsl"

// Strategy turns descriptor text into a dependency set. Implementations
// must never fail: text without declarations yields an empty set.
type Strategy interface {
	Extract(text string) depset.Set
}

// Hit is a single identifier match and the pattern that produced it.
type Hit struct {
	Pattern string
	Value   string
}

// Extractor applies a PatternSet. It is immutable and safe to share.
type Extractor struct {
	patterns *PatternSet
}

var _ Strategy = (*Extractor)(nil)

func New(ps *PatternSet) *Extractor {
	return &Extractor{patterns: ps}
}

var defaultExtractor = New(MustLoadPatterns(DefaultDialect))

// Default returns the extractor for DefaultDialect.
func Default() *Extractor {
	return defaultExtractor
}

// Extract runs the default extractor over text.
func Extract(text string) depset.Set {
	return defaultExtractor.Extract(text)
}

// Extract returns the union of every pattern match and every block re-scan
// match in text.
func (e *Extractor) Extract(text string) depset.Set {
	out := depset.New()
	for _, h := range e.Hits(text) {
		out.Add(h.Value)
	}
	return out
}

// Hits lists matches in pattern order, then block re-scan matches.
// Duplicates are kept so callers can see which idioms fired.
func (e *Extractor) Hits(text string) []Hit {
	var hits []Hit
	for _, p := range e.patterns.Patterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			hits = append(hits, Hit{Pattern: p.ID, Value: m[1]})
		}
	}
	for _, b := range e.patterns.Blocks {
		for _, body := range b.re.FindAllStringSubmatch(text, -1) {
			for _, m := range b.rescan.FindAllStringSubmatch(body[1], -1) {
				hits = append(hits, Hit{Pattern: b.ID, Value: m[1]})
			}
		}
	}
	return hits
}
