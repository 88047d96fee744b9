// Package search builds the client-consumed full-text index over all
// content records.
package search

import (
	"strings"

	"github.com/quillworks/pressbuild/internal/content"
	"github.com/quillworks/pressbuild/internal/slug"
)

// Document is the uniform projection of an article, author or topic record.
// The ID is namespaced by type because it is the index primary key.
type Document struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
	Tags     string `json:"tags"`
	Author   string `json:"author"`
	URL      string `json:"url"`
}

// MapAll projects all record sets into documents, in a deterministic order:
// articles first, then authors, then topics, each in input order. Optional
// fields map to empty strings, never to null, so indexing stays total.
func MapAll(articles []*content.Article, authors, topics []content.JSONRecord) []Document {
	docs := make([]Document, 0, len(articles)+len(authors)+len(topics))

	for _, a := range articles {
		docs = append(docs, Document{
			ID:       "article:" + a.Slug,
			Type:     "article",
			Title:    a.Title,
			Subtitle: a.Excerpt,
			Content:  a.RawContent,
			Tags:     strings.Join(a.Tags, " "),
			Author:   a.AuthorName,
			URL:      a.URL,
		})
	}

	for _, rec := range authors {
		docs = append(docs, Document{
			ID:       "author:" + rec.ID,
			Type:     "author",
			Title:    rec.String("name"),
			Subtitle: rec.String("bio"),
			Content:  rec.String("bio"),
			Tags:     strings.Join(rec.Strings("interests"), " "),
			Author:   rec.String("name"),
			URL:      "/authors/" + rec.String("handle") + "/",
		})
	}

	for _, rec := range topics {
		docs = append(docs, Document{
			ID:       "topic:" + rec.ID,
			Type:     "topic",
			Title:    rec.String("name"),
			Subtitle: rec.String("description"),
			Content:  rec.String("description"),
			Tags:     strings.Join(rec.Strings("related"), " "),
			Author:   "",
			URL:      "/tags/" + topicSlug(rec) + "/",
		})
	}

	return docs
}

func topicSlug(rec content.JSONRecord) string {
	if s := rec.String("slug"); s != "" {
		return s
	}
	if s := slug.Normalize(rec.String("name")); s != "" {
		return s
	}
	return rec.ID
}
