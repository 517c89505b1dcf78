// Package textmetric scores surface similarity between a golden text and a
// generated text.
package textmetric

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Similarity returns 2*M/T where M is the number of characters in the
// matching blocks found by Ratcliff/Obershelp sequence matching and T is the
// combined length of both texts. Two empty texts score 1.
//
// The matcher runs over runes with the popular-element junk heuristic
// enabled, so the result is not strictly symmetric for long texts.
func Similarity(a, b string) float64 {
	m := difflib.NewMatcher(runes(a), runes(b))
	return m.Ratio()
}

func runes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "")
}

// NGramScore is a precision-only overlap of unique unigrams and bigrams of
// candidate against reference, averaged. A candidate without tokens scores 0;
// a candidate with a single token has bigram precision 0.
func NGramScore(reference, candidate string) float64 {
	refTokens := strings.Fields(reference)
	candTokens := strings.Fields(candidate)
	if len(candTokens) == 0 {
		return 0
	}

	p1 := precision(unigrams(refTokens), unigrams(candTokens))
	p2 := precision(bigrams(refTokens), bigrams(candTokens))
	return (p1 + p2) / 2
}

type bigram [2]string

func unigrams(tokens []string) map[string]bool {
	out := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		out[t] = true
	}
	return out
}

func bigrams(tokens []string) map[bigram]bool {
	out := make(map[bigram]bool)
	for i := 0; i+1 < len(tokens); i++ {
		out[bigram{tokens[i], tokens[i+1]}] = true
	}
	return out
}

func precision[K comparable](ref, cand map[K]bool) float64 {
	if len(cand) == 0 {
		return 0
	}
	hits := 0
	for k := range cand {
		if ref[k] {
			hits++
		}
	}
	return float64(hits) / float64(len(cand))
}
