package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodArticle = `---
title: Shipping Fast
slug: shipping-fast
author-handle: alex
publication: pub-1
date-published: 2025-03-01
updated-date: 2025-03-04
excerpt: How we ship.
cover-image: /assets/cover.png
reading-time: 4
tags:
  - process
  - speed
status: published
featured: false
canonical-url: https://example.com/shipping-fast
version: 2
revision-history:
  - version: 1
    updated-date: 2025-03-01
    note: Initial import
  - version: 2
    updated-date: 2025-03-04
---
Body text.
`

const goodAuthor = `{
  "id": "author-1",
  "handle": "alex",
  "name": "Alex Rivera",
  "bio": "Writes about infra.",
  "avatar": "/assets/alex.png",
  "social-links": {},
  "settings": {}
}`

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestRun_CleanTreePasses(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "articles/shipping-fast.md", goodArticle)
	writeFile(t, root, "authors/alex.json", goodAuthor)

	report, err := New(root).Run()
	require.NoError(t, err)
	assert.True(t, report.Ok())
	assert.Equal(t, 2, report.FilesChecked)
}

func TestRun_MissingDirectoriesAreNotErrors(t *testing.T) {
	report, err := New(t.TempDir()).Run()
	require.NoError(t, err)
	assert.True(t, report.Ok())
	assert.Zero(t, report.FilesChecked)
}

func TestRun_ReportsMissingFrontmatterKeys(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "articles/bare.md", "---\ntitle: Bare\n---\nBody.\n")

	report, err := New(root).Run()
	require.NoError(t, err)
	require.Len(t, report.Issues, 1) // absent tags/version are only reported as missing keys

	issue := report.Issues[0]
	assert.Equal(t, "required_keys", issue.Rule)
	assert.Equal(t, "articles/bare.md", issue.Path)
	assert.Contains(t, issue.Message, "author-handle")
	assert.Contains(t, issue.Message, "revision-history")
	assert.NotContains(t, issue.Message, "title")
}

func TestTagsRule(t *testing.T) {
	assert.Nil(t, TagsRule{}.Check(Document{Fields: map[string]any{"tags": []any{"go", "infra"}}}))
	assert.Equal(t, []string{"tags must be an array"},
		TagsRule{}.Check(Document{Fields: map[string]any{"tags": "go"}}))
	assert.Equal(t, []string{"tags[1] must be a string"},
		TagsRule{}.Check(Document{Fields: map[string]any{"tags": []any{"go", 7}}}))
}

func TestVersionRule(t *testing.T) {
	assert.Nil(t, VersionRule{}.Check(Document{Fields: map[string]any{"version": 3}}))
	assert.NotEmpty(t, VersionRule{}.Check(Document{Fields: map[string]any{"version": 0}}))
	assert.NotEmpty(t, VersionRule{}.Check(Document{Fields: map[string]any{"version": "two"}}))
	assert.NotEmpty(t, VersionRule{}.Check(Document{Fields: map[string]any{"version": 1.5}}))
}

func TestRevisionHistoryRule(t *testing.T) {
	ok := map[string]any{"revision-history": []any{
		map[string]any{"version": 1, "updated-date": "2025-01-01"},
	}}
	assert.Nil(t, RevisionHistoryRule{}.Check(Document{Fields: ok}))

	bad := map[string]any{"revision-history": []any{
		map[string]any{"version": 1},
		"not an object",
	}}
	msgs := RevisionHistoryRule{}.Check(Document{Fields: bad})
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0], "revision-history[0] missing updated-date")
	assert.Contains(t, msgs[1], "revision-history[1] must be an object")
}

func TestRun_ReportsJSONProblems(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "authors/broken.json", "{not json")
	writeFile(t, root, "topics/thin.json", `{"id": "t-1", "name": "Go"}`)

	report, err := New(root).Run()
	require.NoError(t, err)
	require.Len(t, report.Issues, 2)
	assert.Equal(t, "json", report.Issues[0].Rule)
	assert.Equal(t, "required_keys", report.Issues[1].Rule)
	assert.Contains(t, report.Issues[1].Message, "parent-topic")
}

func TestRun_FlagsDuplicateIDs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "authors/a.json", goodAuthor)
	writeFile(t, root, "authors/b.json", goodAuthor)

	report, err := New(root).Run()
	require.NoError(t, err)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, "duplicate_id", report.Issues[0].Rule)
	assert.Equal(t, "authors/b.json", report.Issues[0].Path)
	assert.Contains(t, report.Issues[0].Message, `"author-1"`)
	assert.Contains(t, report.Issues[0].Message, "authors/a.json")
}
