package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagged(slug string, tags ...string) *Article {
	return &Article{Slug: slug, Tags: tags}
}

func TestBuildTagIndex_GroupsByNormalizedSlug(t *testing.T) {
	articles := []*Article{
		tagged("a", "Web Dev"),
		tagged("b", "web-dev"),
		tagged("c", "WEB DEV!"),
	}

	entries := BuildTagIndex(articles)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, "web-dev", entry.Slug)
	assert.Equal(t, "Web Dev", entry.Tag, "first-seen spelling wins")
	require.Len(t, entry.Items, 3)
}

func TestBuildTagIndex_FirstInsertionOrder(t *testing.T) {
	articles := []*Article{
		tagged("a", "Go", "Testing"),
		tagged("b", "Databases", "Go"),
	}

	entries := BuildTagIndex(articles)
	require.Len(t, entries, 3)

	assert.Equal(t, "go", entries[0].Slug)
	assert.Equal(t, "testing", entries[1].Slug)
	assert.Equal(t, "databases", entries[2].Slug)
}

func TestBuildTagIndex_SkipsUnaddressableTags(t *testing.T) {
	articles := []*Article{tagged("a", "!!!", "Real Tag")}

	entries := BuildTagIndex(articles)
	require.Len(t, entries, 1)
	assert.Equal(t, "real-tag", entries[0].Slug)
}

func TestBuildTagIndex_NoTags(t *testing.T) {
	assert.Empty(t, BuildTagIndex([]*Article{tagged("a")}))
}
