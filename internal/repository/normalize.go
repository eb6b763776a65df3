package repository

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldSearch lowercases a string and strips diacritics so "Pérez"
// matches a search for "perez".
func foldSearch(s string) string {
	folded, _, err := transform.String(foldTransformer, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// matchesQuery reports whether any of the fields contains the folded
// query. An empty query matches everything.
func matchesQuery(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	q := foldSearch(query)
	for _, f := range fields {
		if strings.Contains(foldSearch(f), q) {
			return true
		}
	}
	return false
}
