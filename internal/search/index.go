package search

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/quillworks/pressbuild/internal/errors"
)

// Field names indexed for every document, in scoring order.
var indexedFields = []string{"title", "subtitle", "content", "tags", "author"}

// Options configures one index build. Zero values take the defaults, which
// mirror the weights the site's client-side search has always shipped with.
type Options struct {
	MaxBytes  int
	Fuzziness float64
	Prefix    bool
	Boosts    map[string]float64
}

// DefaultOptions returns the standard build options: 500KB budget, title
// boosted 3x, subtitle 1.5x, fuzzy factor 0.2, prefix matching on.
func DefaultOptions() Options {
	return Options{
		MaxBytes:  500_000,
		Fuzziness: 0.2,
		Prefix:    true,
		Boosts: map[string]float64{
			"title":    3,
			"subtitle": 1.5,
			"content":  1,
			"tags":     1,
			"author":   1,
		},
	}
}

// Index is an inverted index over mapped documents.
type Index struct {
	Fields    []string                  `json:"fields"`
	Boosts    map[string]float64        `json:"boosts"`
	Fuzziness float64                   `json:"fuzziness"`
	Prefix    bool                      `json:"prefix"`
	DocCount  int                       `json:"docCount"`
	Terms     map[string]postings       `json:"terms"`
	Stored    map[string]StoredDocument `json:"stored"`
}

// postings maps document id to per-field term frequency.
type postings map[string]map[string]int

// StoredDocument is the display subset of a document kept inside the index
// so result lists render without a second lookup.
type StoredDocument struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	URL      string `json:"url"`
}

// Artifact is the serialized index plus the raw documents it was built from.
type Artifact struct {
	SerializedIndex []byte
	Documents       []Document
}

// Build constructs the index over all documents in one batch and serializes
// it. A serialized index larger than the byte budget is a fatal build error;
// the fix is upstream (fewer documents or lighter fields), never a silently
// oversized artifact.
func Build(docs []Document, opts Options) (*Artifact, error) {
	defaults := DefaultOptions()
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = defaults.MaxBytes
	}
	if opts.Fuzziness == 0 {
		opts.Fuzziness = defaults.Fuzziness
	}
	if opts.Boosts == nil {
		opts.Boosts = defaults.Boosts
	}

	ix := &Index{
		Fields:    indexedFields,
		Boosts:    opts.Boosts,
		Fuzziness: opts.Fuzziness,
		Prefix:    opts.Prefix,
		DocCount:  len(docs),
		Terms:     make(map[string]postings),
		Stored:    make(map[string]StoredDocument, len(docs)),
	}

	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if seen[doc.ID] {
			return nil, errors.ValidationError(fmt.Sprintf("duplicate document id %q", doc.ID))
		}
		seen[doc.ID] = true
		ix.add(doc)
	}

	serialized, err := json.Marshal(ix)
	if err != nil {
		return nil, fmt.Errorf("serialize index: %w", err)
	}

	if len(serialized) > opts.MaxBytes {
		return nil, errors.Fatal(errors.CategoryBudget,
			fmt.Sprintf("serialized search index is %d bytes, budget is %d", len(serialized), opts.MaxBytes)).
			WithContext("documents", len(docs))
	}

	return &Artifact{SerializedIndex: serialized, Documents: docs}, nil
}

func (ix *Index) add(doc Document) {
	ix.Stored[doc.ID] = StoredDocument{
		Type:     doc.Type,
		Title:    doc.Title,
		Subtitle: doc.Subtitle,
		URL:      doc.URL,
	}

	fieldText := map[string]string{
		"title":    doc.Title,
		"subtitle": doc.Subtitle,
		"content":  doc.Content,
		"tags":     doc.Tags,
		"author":   doc.Author,
	}
	for _, field := range ix.Fields {
		for _, term := range tokenize(fieldText[field]) {
			p, ok := ix.Terms[term]
			if !ok {
				p = make(postings)
				ix.Terms[term] = p
			}
			if p[doc.ID] == nil {
				p[doc.ID] = make(map[string]int)
			}
			p[doc.ID][field]++
		}
	}
}

// Load deserializes an index previously produced by Build.
func Load(serialized []byte) (*Index, error) {
	var ix Index
	if err := json.Unmarshal(serialized, &ix); err != nil {
		return nil, fmt.Errorf("deserialize index: %w", err)
	}
	return &ix, nil
}

// Result is one scored hit.
type Result struct {
	ID    string
	Score float64
	Doc   StoredDocument
}

// Match-type score multipliers. Exact matches dominate, prefix matches
// count partially, fuzzy matches least.
const (
	exactWeight  = 1.0
	prefixWeight = 0.5
	fuzzyWeight  = 0.3
)

// Search runs a weighted lexical query: exact term hits, prefix hits when
// enabled, and bounded-edit-distance fuzzy hits. Results sort by descending
// score, ties broken by id for stability.
func (ix *Index) Search(query string) []Result {
	scores := make(map[string]float64)

	for _, term := range tokenize(query) {
		ix.scoreTerm(term, scores)
	}

	results := make([]Result, 0, len(scores))
	for id, score := range scores {
		results = append(results, Result{ID: id, Score: score, Doc: ix.Stored[id]})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	return results
}

func (ix *Index) scoreTerm(term string, scores map[string]float64) {
	if p, ok := ix.Terms[term]; ok {
		ix.accumulate(p, exactWeight, scores)
	}

	maxDist := ix.maxEditDistance(term)
	for candidate, p := range ix.Terms {
		if candidate == term {
			continue
		}
		if ix.Prefix && strings.HasPrefix(candidate, term) {
			ix.accumulate(p, prefixWeight, scores)
			continue
		}
		if maxDist > 0 && withinEditDistance(term, candidate, maxDist) {
			ix.accumulate(p, fuzzyWeight, scores)
		}
	}
}

func (ix *Index) accumulate(p postings, weight float64, scores map[string]float64) {
	for id, fields := range p {
		for field, freq := range fields {
			boost := ix.Boosts[field]
			if boost == 0 {
				boost = 1
			}
			scores[id] += weight * boost * float64(freq)
		}
	}
}

// maxEditDistance mirrors the fractional-fuzziness convention: the allowed
// distance grows with term length but is capped at 2 edits.
func (ix *Index) maxEditDistance(term string) int {
	if ix.Fuzziness <= 0 {
		return 0
	}
	d := int(math.Ceil(ix.Fuzziness * float64(len(term))))
	if d > 2 {
		d = 2
	}
	return d
}

// withinEditDistance reports whether Levenshtein(a, b) <= limit, with early
// exit on the length difference.
func withinEditDistance(a, b string, limit int) bool {
	la, lb := len(a), len(b)
	if la-lb > limit || lb-la > limit {
		return false
	}

	prev := make([]int, lb+1)
	cur := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		cur[0] = i
		rowMin := cur[0]
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min3(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
			if cur[j] < rowMin {
				rowMin = cur[j]
			}
		}
		if rowMin > limit {
			return false
		}
		prev, cur = cur, prev
	}
	return prev[lb] <= limit
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
