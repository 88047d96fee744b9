package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/quillworks/pressbuild/internal/errors"
	"github.com/quillworks/pressbuild/internal/frontmatter"
	"github.com/quillworks/pressbuild/internal/logfields"
	"github.com/quillworks/pressbuild/internal/readingtime"
	"github.com/quillworks/pressbuild/internal/slug"
)

// Loader walks one content tree and memoizes the parsed records for the
// lifetime of a single build pass. Construct a fresh Loader (and Registry)
// per pass; there is no cross-pass state to invalidate.
type Loader struct {
	root      string
	registry  *slug.Registry
	estimator *readingtime.Estimator

	articles       []*Article
	articlesLoaded bool
	records        map[string][]JSONRecord
}

// NewLoader creates a loader rooted at the content directory.
func NewLoader(root string, registry *slug.Registry, estimator *readingtime.Estimator) *Loader {
	return &Loader{
		root:      root,
		registry:  registry,
		estimator: estimator,
		records:   make(map[string][]JSONRecord),
	}
}

// Articles loads, normalizes and sorts all markdown articles. Repeated calls
// within one pass return the memoized slice without touching disk.
func (l *Loader) Articles() ([]*Article, error) {
	if l.articlesLoaded {
		return l.articles, nil
	}

	paths, err := walkTree(filepath.Join(l.root, "articles"), isMarkdown)
	if err != nil {
		return nil, err
	}

	authorNames, err := l.authorNames()
	if err != nil {
		return nil, err
	}

	articles := make([]*Article, 0, len(paths))
	for _, path := range paths {
		article, err := l.loadArticle(path, authorNames)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	sortArticles(articles)

	slog.Debug("Articles loaded", logfields.Count(len(articles)), logfields.Path(l.root))
	l.articles = articles
	l.articlesLoaded = true
	return articles, nil
}

// Records loads the JSON records of one kind (authors, publications, topics).
// A missing subdirectory yields an empty slice. Duplicate ids across files
// are a validation error rather than silent last-write-wins.
func (l *Loader) Records(kind string) ([]JSONRecord, error) {
	if cached, ok := l.records[kind]; ok {
		return cached, nil
	}

	base := filepath.Join(l.root, kind)
	paths, err := walkTree(base, func(p string) bool { return strings.HasSuffix(p, ".json") })
	if err != nil {
		return nil, err
	}

	seen := make(map[string]string, len(paths))
	records := make([]JSONRecord, 0, len(paths))
	for _, path := range paths {
		rec, err := loadJSONRecord(base, path)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[rec.ID]; dup {
			return nil, errors.ValidationError(
				fmt.Sprintf("duplicate %s id %q in %s (already defined in %s)", kind, rec.ID, path, prev))
		}
		seen[rec.ID] = path
		records = append(records, rec)
	}

	l.records[kind] = records
	return records, nil
}

func (l *Loader) loadArticle(path string, authorNames map[string]string) (*Article, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryFileSystem, "read article").WithContext("path", path)
	}

	fields, body, err := frontmatter.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, errors.SeverityFatal, "parse frontmatter").WithContext("path", path)
	}

	rel, err := filepath.Rel(filepath.Join(l.root, "articles"), path)
	if err != nil {
		rel = filepath.Base(path)
	}
	pathFallback := strings.TrimSuffix(strings.TrimSuffix(rel, ".mdx"), ".md")

	stats, err := l.estimator.Estimate(body)
	if err != nil {
		return nil, fmt.Errorf("estimate reading time for %s: %w", path, err)
	}

	published := timeField(fields, "date-published", "published-at", "date", "created")
	updated := timeField(fields, "updated-date", "updated-at", "modified")

	version := intField(fields, "version")
	if version < 1 {
		version = 1
	}

	handle := stringField(fields, "author-handle")
	name := authorNames[handle]
	if name == "" {
		name = handle
	}

	candidate := stringField(fields, "slug")
	if candidate == "" {
		candidate = stringField(fields, "title")
	}
	assigned := l.registry.Register(candidate, pathFallback, "article")

	article := &Article{
		Slug:         assigned,
		Title:        stringField(fields, "title"),
		Excerpt:      stringField(fields, "excerpt"),
		RawContent:   string(body),
		Tags:         stringsField(fields, "tags"),
		PublishedAt:  published,
		UpdatedAt:    updated,
		Version:      version,
		Revisions:    revisionsField(fields, version, updated, published),
		Reading:      stats,
		URL:          "/articles/" + assigned + "/",
		AuthorHandle: handle,
		AuthorName:   name,
		Publication:  stringField(fields, "publication"),
		CoverImage:   stringField(fields, "cover-image"),
		Status:       stringField(fields, "status"),
		Featured:     boolField(fields, "featured"),
		CanonicalURL: stringField(fields, "canonical-url"),
		SourcePath:   path,
	}
	return article, nil
}

func (l *Loader) authorNames() (map[string]string, error) {
	authors, err := l.Records(KindAuthors)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(authors))
	for _, a := range authors {
		if handle := a.String("handle"); handle != "" {
			names[handle] = a.String("name")
		}
	}
	return names, nil
}

func loadJSONRecord(base, path string) (JSONRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return JSONRecord{}, errors.WrapFatal(err, errors.CategoryFileSystem, "read record").WithContext("path", path)
	}

	data, err := decodeJSONMap(raw)
	if err != nil {
		return JSONRecord{}, errors.Wrap(err, errors.CategoryValidation, errors.SeverityFatal, "parse record").WithContext("path", path)
	}

	id, _ := data["id"].(string)
	if id == "" {
		rel, relErr := filepath.Rel(base, path)
		if relErr != nil {
			rel = filepath.Base(path)
		}
		id = strings.TrimSuffix(filepath.ToSlash(rel), ".json")
	}

	return JSONRecord{ID: id, Data: data}, nil
}

// walkTree returns all matching files under dir in lexicographic path
// order. Directory listing order is not stable across platforms, so the
// result is sorted explicitly to keep pass output deterministic.
func walkTree(dir string, match func(string) bool) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && match(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

func isMarkdown(path string) bool {
	return strings.HasSuffix(path, ".md") || strings.HasSuffix(path, ".mdx")
}

// sortArticles orders by published date descending. Articles without a date
// sort as if dated at the epoch, i.e. last. Ties break on slug to keep the
// ordering total.
func sortArticles(articles []*Article) {
	at := func(a *Article) time.Time {
		if a.PublishedAt == nil {
			return time.Time{}
		}
		return *a.PublishedAt
	}
	sort.SliceStable(articles, func(i, j int) bool {
		ti, tj := at(articles[i]), at(articles[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return articles[i].Slug < articles[j].Slug
	})
}

func revisionsField(fields map[string]any, version int, updated, published *time.Time) []RevisionEntry {
	raw, ok := fields["revision-history"].([]any)
	if !ok || len(raw) == 0 {
		at := updated
		if at == nil {
			at = published
		}
		return []RevisionEntry{{Version: version, UpdatedAt: at, Notes: "Initial import"}}
	}

	entries := make([]RevisionEntry, 0, len(raw))
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		entries = append(entries, RevisionEntry{
			Version:   intField(m, "version"),
			UpdatedAt: timeField(m, "updated-date"),
			Notes:     stringField(m, "notes"),
		})
	}
	return entries
}
