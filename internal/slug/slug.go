// Package slug assigns URL-safe, unique identifiers to content records.
//
// A Registry is scoped to exactly one build pass; constructing a fresh
// Registry per pass replaces any reset discipline and prevents slugs from a
// previous pass from leaking spurious suffixes into the next one.
package slug

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize converts s into a lower-case, accent-stripped, URL-safe token.
// Runs of non-alphanumeric characters collapse into a single hyphen.
func Normalize(s string) string {
	stripped, _, err := transform.String(deaccent, s)
	if err != nil {
		// Transform only fails on malformed input; fall back to the raw string.
		stripped = s
	}

	var b strings.Builder
	b.Grow(len(stripped))
	pendingHyphen := false
	for _, r := range strings.ToLower(stripped) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}
	return b.String()
}

// Registry tracks slugs assigned during a single build pass.
type Registry struct {
	seen     map[string]struct{}
	ordinals map[string]int
}

// NewRegistry returns an empty registry for one build pass.
func NewRegistry() *Registry {
	return &Registry{
		seen:     make(map[string]struct{}),
		ordinals: make(map[string]int),
	}
}

// Register normalizes candidate and returns a slug unique within the pass.
// An empty normalized candidate falls through to fallback, then to
// "<namespace>-<ordinal>". Colliding slugs get "-2", "-3", ... suffixes in
// first-seen order.
func (r *Registry) Register(candidate, fallback, namespace string) string {
	base := Normalize(candidate)
	if base == "" {
		base = Normalize(fallback)
	}
	if base == "" {
		r.ordinals[namespace]++
		base = fmt.Sprintf("%s-%d", namespace, r.ordinals[namespace])
	}

	unique := base
	for n := 2; ; n++ {
		if _, taken := r.seen[unique]; !taken {
			break
		}
		unique = fmt.Sprintf("%s-%d", base, n)
	}
	r.seen[unique] = struct{}{}
	return unique
}

// Has reports whether a slug has been assigned in this pass.
func (r *Registry) Has(slug string) bool {
	_, ok := r.seen[slug]
	return ok
}

// Len returns the number of slugs assigned so far.
func (r *Registry) Len() int {
	return len(r.seen)
}
