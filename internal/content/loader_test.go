package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/pressbuild/internal/errors"
	"github.com/quillworks/pressbuild/internal/readingtime"
	"github.com/quillworks/pressbuild/internal/slug"
)

func newTestLoader(t *testing.T, root string) *Loader {
	t.Helper()
	return NewLoader(root, slug.NewRegistry(), readingtime.NewEstimator())
}

func writeFile(t *testing.T, root string, rel string, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

const minimalArticle = `---
title: %s
slug: %s
author-handle: jdoe
date-published: %s
excerpt: A short excerpt.
tags:
  - Web Dev
version: 1
---
Body text for the article.
`

func article(title, slugField, date string) string {
	out := minimalArticle
	for _, v := range []string{title, slugField, date} {
		out = replaceFirst(out, "%s", v)
	}
	return out
}

func replaceFirst(s, old, new string) string {
	for i := 0; i+len(old) <= len(s); i++ {
		if s[i:i+len(old)] == old {
			return s[:i] + new + s[i+len(old):]
		}
	}
	return s
}

func TestArticles_MissingDirectoryIsEmpty(t *testing.T) {
	loader := newTestLoader(t, t.TempDir())

	articles, err := loader.Articles()
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestArticles_SortedByPublishedDateDescending(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "articles/old.md", article("Old", "old", "2023-01-01"))
	writeFile(t, root, "articles/new.md", article("New", "new", "2025-06-15"))
	writeFile(t, root, "articles/undated.md", `---
title: Undated
slug: undated
---
No date at all.
`)

	loader := newTestLoader(t, root)
	articles, err := loader.Articles()
	require.NoError(t, err)
	require.Len(t, articles, 3)

	assert.Equal(t, "new", articles[0].Slug)
	assert.Equal(t, "old", articles[1].Slug)
	assert.Equal(t, "undated", articles[2].Slug, "undated articles sort last")
}

func TestArticles_NormalizesFields(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "articles/post.md", article("Hello World", "", "2024-03-10"))
	writeFile(t, root, "authors/jdoe.json", `{"id": "a1", "handle": "jdoe", "name": "Jane Doe"}`)

	loader := newTestLoader(t, root)
	articles, err := loader.Articles()
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "hello-world", a.Slug, "slug falls back to the title")
	assert.Equal(t, "/articles/hello-world/", a.URL)
	assert.Equal(t, "jdoe", a.AuthorHandle)
	assert.Equal(t, "Jane Doe", a.AuthorName, "handle resolves to the author name")
	assert.Equal(t, []string{"Web Dev"}, a.Tags)
	assert.Equal(t, 1, a.Version)
	require.NotNil(t, a.PublishedAt)
	assert.Equal(t, "2024-03-10", a.PublishedAt.Format("2006-01-02"))
	assert.Greater(t, a.Reading.Words, 0)
	assert.NotEmpty(t, a.Reading.Text)
}

func TestArticles_SyntheticRevisionHistory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "articles/post.md", `---
title: Versioned
slug: versioned
date-published: 2024-01-01
updated-date: 2024-02-02
version: 3
---
Body.
`)

	loader := newTestLoader(t, root)
	articles, err := loader.Articles()
	require.NoError(t, err)

	revs := articles[0].Revisions
	require.Len(t, revs, 1)
	assert.Equal(t, 3, revs[0].Version)
	assert.Equal(t, "Initial import", revs[0].Notes)
	require.NotNil(t, revs[0].UpdatedAt)
	assert.Equal(t, "2024-02-02", revs[0].UpdatedAt.Format("2006-01-02"))
}

func TestArticles_ExplicitRevisionHistoryKept(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "articles/post.md", `---
title: Versioned
slug: versioned
version: 2
revision-history:
  - version: 1
    updated-date: 2024-01-01
    notes: First draft
  - version: 2
    updated-date: 2024-05-05
    notes: Second pass
---
Body.
`)

	loader := newTestLoader(t, root)
	articles, err := loader.Articles()
	require.NoError(t, err)

	revs := articles[0].Revisions
	require.Len(t, revs, 2)
	assert.Equal(t, "First draft", revs[0].Notes)
	assert.Equal(t, 2, revs[1].Version)
}

func TestArticles_DateFallbackChain(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "articles/legacy.md", `---
title: Legacy
slug: legacy
date: 2020-09-09
---
Body.
`)

	loader := newTestLoader(t, root)
	articles, err := loader.Articles()
	require.NoError(t, err)

	require.NotNil(t, articles[0].PublishedAt)
	assert.Equal(t, "2020-09-09", articles[0].PublishedAt.Format("2006-01-02"))
}

func TestArticles_MemoizedWithinPass(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "articles/post.md", article("Post", "post", "2024-01-01"))

	loader := newTestLoader(t, root)
	first, err := loader.Articles()
	require.NoError(t, err)

	// A second call must not re-read disk: deleting the tree does not change
	// the memoized result.
	require.NoError(t, os.RemoveAll(filepath.Join(root, "articles")))
	second, err := loader.Articles()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestArticles_SlugCollisionsGetSuffixes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "articles/a.md", article("Same", "same", "2024-01-03"))
	writeFile(t, root, "articles/b.md", article("Same", "same", "2024-01-02"))
	writeFile(t, root, "articles/c.md", article("Same", "same", "2024-01-01"))

	loader := newTestLoader(t, root)
	articles, err := loader.Articles()
	require.NoError(t, err)
	require.Len(t, articles, 3)

	slugs := []string{articles[0].Slug, articles[1].Slug, articles[2].Slug}
	assert.ElementsMatch(t, []string{"same", "same-2", "same-3"}, slugs)
}

func TestRecords_MissingDirectoryIsEmpty(t *testing.T) {
	loader := newTestLoader(t, t.TempDir())

	records, err := loader.Records(KindTopics)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestRecords_IDFallsBackToPath(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "topics/nested/go.json", `{"name": "Go"}`)

	loader := newTestLoader(t, root)
	records, err := loader.Records(KindTopics)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "nested/go", records[0].ID)
	assert.Equal(t, "Go", records[0].String("name"))
}

func TestRecords_DuplicateIDIsValidationError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "authors/a.json", `{"id": "dup", "name": "A"}`)
	writeFile(t, root, "authors/b.json", `{"id": "dup", "name": "B"}`)

	loader := newTestLoader(t, root)
	_, err := loader.Records(KindAuthors)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}
