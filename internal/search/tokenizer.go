package search

import (
	"strings"
	"unicode"

	"github.com/reiver/go-porterstemmer"
	"golang.org/x/text/unicode/norm"
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "and": true, "or": true, "but": true, "is": true, "are": true, "in": true,
	"on": true, "it": true, "this": true, "that": true, "to": true, "for": true, "of": true, "with": true,
	"as": true, "at": true, "by": true, "be": true, "was": true, "were": true, "from": true,
}

// tokenize lower-cases, strips markup-ish punctuation, filters stop words
// and stems the remainder. Indexing and querying share this path so query
// terms meet index terms in the same shape.
func tokenize(text string) []string {
	text = norm.NFC.String(strings.ToLower(text))

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	var tokens []string
	for _, token := range strings.Fields(b.String()) {
		if len(token) <= 1 || stopWords[token] {
			continue
		}
		stemmed := porterstemmer.StemString(token)
		if len(stemmed) <= 1 {
			continue
		}
		tokens = append(tokens, stemmed)
	}
	return tokens
}
