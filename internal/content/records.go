// Package content loads the content tree into normalized in-memory records.
package content

import (
	"time"

	"github.com/quillworks/pressbuild/internal/readingtime"
)

// Article is one normalized markdown article. Records are created once per
// source file during loading and are immutable for the rest of the pass.
type Article struct {
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Excerpt      string          `json:"excerpt"`
	RawContent   string          `json:"-"`
	Tags         []string        `json:"tags"`
	PublishedAt  *time.Time      `json:"publishedAt"`
	UpdatedAt    *time.Time      `json:"updatedAt"`
	Version      int             `json:"version"`
	Revisions    []RevisionEntry `json:"revisionHistory"`
	Reading      readingtime.Stats `json:"readingStats"`
	URL          string          `json:"url"`
	AuthorHandle string          `json:"authorHandle"`
	AuthorName   string          `json:"authorName"`
	Publication  string          `json:"publication,omitempty"`
	CoverImage   string          `json:"coverImage,omitempty"`
	// CoverMarkup is the responsive <picture> fragment for CoverImage. It is
	// filled by the build pass, not by the loader.
	CoverMarkup string `json:"coverMarkup,omitempty"`
	Status       string          `json:"status,omitempty"`
	Featured     bool            `json:"featured,omitempty"`
	CanonicalURL string          `json:"canonicalUrl,omitempty"`
	SourcePath   string          `json:"-"`
}

// RevisionEntry is one entry of an article's revision history.
type RevisionEntry struct {
	Version   int        `json:"version"`
	UpdatedAt *time.Time `json:"updatedAt"`
	Notes     string     `json:"notes"`
}

// JSONRecord is a loosely-typed author, publication or topic record.
type JSONRecord struct {
	ID   string         `json:"id"`
	Data map[string]any `json:"data"`
}

// String returns the string value stored under key, or empty.
func (r JSONRecord) String(key string) string {
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

// Strings returns the string slice stored under key; non-string entries are
// dropped rather than failing, keeping downstream indexing total.
func (r JSONRecord) Strings(key string) []string {
	raw, ok := r.Data[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// TagEntry groups the articles sharing one normalized tag.
type TagEntry struct {
	Tag   string     `json:"tag"`
	Slug  string     `json:"slug"`
	Items []*Article `json:"items"`
}

// Record kinds recognized by the loader.
const (
	KindAuthors      = "authors"
	KindPublications = "publications"
	KindTopics       = "topics"
)
