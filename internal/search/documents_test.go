package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/pressbuild/internal/content"
)

func TestMapAll_Articles(t *testing.T) {
	articles := []*content.Article{{
		Slug:       "hello-world",
		Title:      "Hello World",
		Excerpt:    "An intro.",
		RawContent: "Full body text.",
		Tags:       []string{"go", "testing"},
		AuthorName: "Jane Doe",
		URL:        "/articles/hello-world/",
	}}

	docs := MapAll(articles, nil, nil)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "article:hello-world", doc.ID)
	assert.Equal(t, "article", doc.Type)
	assert.Equal(t, "An intro.", doc.Subtitle)
	assert.Equal(t, "go testing", doc.Tags)
	assert.Equal(t, "Jane Doe", doc.Author)
}

func TestMapAll_AuthorRoundTrip(t *testing.T) {
	authors := []content.JSONRecord{{
		ID: "a1",
		Data: map[string]any{
			"name":      "Jane Doe",
			"handle":    "jdoe",
			"bio":       "Writes about Go.",
			"interests": []any{"go", "distributed systems"},
		},
	}}

	docs := MapAll(nil, authors, nil)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "author:a1", doc.ID)
	assert.Equal(t, "/authors/jdoe/", doc.URL)
	assert.Equal(t, "Jane Doe", doc.Title)
	assert.Equal(t, "Writes about Go.", doc.Content)
	assert.Equal(t, "go distributed systems", doc.Tags)
}

func TestMapAll_TopicURLAndSlugFallbacks(t *testing.T) {
	topics := []content.JSONRecord{
		{ID: "t1", Data: map[string]any{"name": "Web Dev", "slug": "web-dev"}},
		{ID: "t2", Data: map[string]any{"name": "Data Eng"}},
		{ID: "t3", Data: map[string]any{}},
	}

	docs := MapAll(nil, nil, topics)
	require.Len(t, docs, 3)

	assert.Equal(t, "/tags/web-dev/", docs[0].URL)
	assert.Equal(t, "/tags/data-eng/", docs[1].URL, "slug derives from the name when absent")
	assert.Equal(t, "/tags/t3/", docs[2].URL, "id is the last resort")
}

func TestMapAll_AbsentOptionalsAreEmptyStrings(t *testing.T) {
	topics := []content.JSONRecord{{ID: "t1", Data: map[string]any{"name": "Go"}}}

	docs := MapAll(nil, nil, topics)
	require.Len(t, docs, 1)

	assert.Equal(t, "", docs[0].Subtitle)
	assert.Equal(t, "", docs[0].Tags)
	assert.Equal(t, "", docs[0].Author)
}

func TestMapAll_DeterministicOrder(t *testing.T) {
	articles := []*content.Article{{Slug: "a"}, {Slug: "b"}}
	authors := []content.JSONRecord{{ID: "x", Data: map[string]any{}}}
	topics := []content.JSONRecord{{ID: "y", Data: map[string]any{}}}

	docs := MapAll(articles, authors, topics)
	require.Len(t, docs, 4)
	assert.Equal(t, []string{"article:a", "article:b", "author:x", "topic:y"},
		[]string{docs[0].ID, docs[1].ID, docs[2].ID, docs[3].ID})
}
