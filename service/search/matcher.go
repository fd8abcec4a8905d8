// Package search decides whether a free-text query matches a product. Matching
// is accent and case insensitive, order independent across query words, and
// tolerant to small typos in longer words.
package search

import (
	"strings"
	"unicode/utf8"
)

// SmartSearchMatch reports whether searchTerm matches the concatenation of
// fields. An empty (after normalization) term matches everything. A phrase
// contained verbatim in the normalized fields matches; otherwise every query
// token must match at least one field token.
func SmartSearchMatch(searchTerm string, fields ...string) bool {
	term := Normalize(searchTerm)
	if term == "" {
		return true
	}

	text := Normalize(strings.Join(fields, " "))
	if strings.Contains(text, term) {
		return true
	}

	queryTokens := strings.Fields(term)
	textTokens := strings.Fields(text)
	if len(queryTokens) == 0 || len(textTokens) == 0 {
		return false
	}

	for _, q := range queryTokens {
		if !tokenMatchesAny(q, textTokens) {
			return false
		}
	}
	return true
}

func tokenMatchesAny(term string, tokens []string) bool {
	for _, token := range tokens {
		if tokenMatches(term, token) {
			return true
		}
	}
	return false
}

func tokenMatches(term, token string) bool {
	if term == token || strings.Contains(token, term) || strings.Contains(term, token) {
		return true
	}
	longest := max(utf8.RuneCountInString(term), utf8.RuneCountInString(token))
	return Levenshtein(term, token) <= Threshold(longest)
}

// CreateSearchableText joins the fields that take part in a search with
// single spaces.
func CreateSearchableText(fields ...string) string {
	return strings.Join(fields, " ")
}
