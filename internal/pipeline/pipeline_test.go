package pipeline

import (
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/pressbuild/internal/config"
	"github.com/quillworks/pressbuild/internal/errors"
)

const articleOne = `---
title: Go Concurrency Patterns
slug: go-concurrency
author-handle: alex
date-published: 2025-04-02
updated-date: 2025-04-05
excerpt: Channels and pipelines in practice.
tags:
  - go
  - concurrency
version: 1
---
A long enough body about goroutines and channels.
`

const articleTwo = `---
title: Caching Strategies
author-handle: alex
date-published: 2025-01-10
excerpt: When to cache and when not to.
tags:
  - go
  - caching
version: 2
---
Body about caches.
`

func seedContent(t *testing.T, root string) {
	t.Helper()
	write := func(rel, body string) {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	write("articles/go-concurrency.md", articleOne)
	write("articles/caching.md", articleTwo)
	write("authors/alex.json", `{"id": "author-1", "handle": "alex", "name": "Alex Rivera", "bio": "Infra."}`)
	write("publications/daily.json", `{"id": "pub-1", "name": "The Daily Build", "slug": "daily-build"}`)
	write("topics/go.json", `{"id": "topic-1", "name": "Go", "slug": "go"}`)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Content.Root = t.TempDir()
	cfg.Output.Directory = t.TempDir()
	cfg.Images.AssetRoot = t.TempDir()
	cfg.Images.Formats = []string{"jpeg"}
	cfg.Images.Widths = []int{100}
	seedContent(t, cfg.Content.Root)
	return cfg
}

func TestRun_WritesAllArtifacts(t *testing.T) {
	cfg := testConfig(t)

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, report.Outcome)
	assert.NotEmpty(t, report.PassID)
	assert.Equal(t, 2, report.Articles)
	assert.Equal(t, 1, report.Authors)
	assert.Equal(t, 1, report.Publications)
	assert.Equal(t, 1, report.Topics)
	assert.Equal(t, 3, report.Tags) // go, concurrency, caching
	assert.Equal(t, 4, report.SearchDocs)
	assert.Positive(t, report.IndexBytes)

	for _, name := range []string{"content-index.json", "search-index.json", "search-docs.json", "build-report.json"} {
		assert.FileExists(t, filepath.Join(cfg.Output.Directory, name))
	}
}

func TestRun_ContentIndexShape(t *testing.T) {
	cfg := testConfig(t)

	report, err := New(cfg).Run(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "content-index.json"))
	require.NoError(t, err)

	var index struct {
		PassID   string `json:"passId"`
		Articles []struct {
			Slug string `json:"slug"`
			URL  string `json:"url"`
		} `json:"articles"`
		Tags []struct {
			Slug string `json:"slug"`
		} `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(raw, &index))

	assert.Equal(t, report.PassID, index.PassID)
	require.Len(t, index.Articles, 2)
	// Newest first.
	assert.Equal(t, "go-concurrency", index.Articles[0].Slug)
	assert.Equal(t, "/articles/go-concurrency/", index.Articles[0].URL)
	assert.Equal(t, "caching-strategies", index.Articles[1].Slug)
}

func TestRun_IndexBudgetFailureReportsFailedOutcome(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.MaxIndexBytes = 10

	report, err := New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryBudget))
	assert.Equal(t, OutcomeFailed, report.Outcome)
	assert.NoFileExists(t, filepath.Join(cfg.Output.Directory, "search-index.json"))
}

func TestRun_CleanRemovesStaleOutput(t *testing.T) {
	cfg := testConfig(t)
	cfg.Output.Clean = true
	stale := filepath.Join(cfg.Output.Directory, "stale.html")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	_, err := New(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
	assert.FileExists(t, filepath.Join(cfg.Output.Directory, "content-index.json"))
}

func TestRun_GeneratesCoverVariants(t *testing.T) {
	cfg := testConfig(t)

	coverPath := filepath.Join(cfg.Images.AssetRoot, "covers", "go.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(coverPath), 0o755))
	f, err := os.Create(coverPath)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 200, 120))))
	require.NoError(t, f.Close())

	withCover := `---
title: Covered Story
author-handle: alex
date-published: 2025-05-01
excerpt: Has a cover.
tags:
  - go
cover-image: covers/go.png
version: 1
---
Body.
`
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Content.Root, "articles", "covered.md"), []byte(withCover), 0o644))

	_, err = New(cfg).Run(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(cfg.Output.Directory, "content-index.json"))
	require.NoError(t, err)
	var index struct {
		Articles []struct {
			Slug        string `json:"slug"`
			CoverMarkup string `json:"coverMarkup"`
		} `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(raw, &index))

	found := false
	for _, a := range index.Articles {
		if a.Slug == "covered-story" {
			found = true
			assert.Contains(t, a.CoverMarkup, "<picture>")
			assert.Contains(t, a.CoverMarkup, `alt="Covered Story"`)
		}
	}
	assert.True(t, found)
}

func TestRun_MissingCoverAssetFails(t *testing.T) {
	cfg := testConfig(t)
	missing := `---
title: Ghost Cover
author-handle: alex
date-published: 2025-05-01
excerpt: Cover does not exist.
tags:
  - go
cover-image: covers/ghost.png
version: 1
---
Body.
`
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Content.Root, "articles", "ghost.md"), []byte(missing), 0o644))

	_, err := New(cfg).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryResource))
}
