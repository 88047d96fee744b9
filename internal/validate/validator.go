package validate

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quillworks/pressbuild/internal/content"
	"github.com/quillworks/pressbuild/internal/errors"
	"github.com/quillworks/pressbuild/internal/frontmatter"
	"github.com/quillworks/pressbuild/internal/logfields"
)

var articleRequiredKeys = []string{
	"title", "slug", "author-handle", "publication", "date-published",
	"updated-date", "excerpt", "cover-image", "reading-time", "tags",
	"status", "featured", "canonical-url", "version", "revision-history",
}

var jsonRequiredKeys = map[string][]string{
	content.KindAuthors:      {"id", "handle", "name", "bio", "avatar", "social-links", "settings"},
	content.KindPublications: {"id", "name", "slug", "description", "logo", "founded-date", "team"},
	content.KindTopics:       {"id", "name", "slug", "description", "parent-topic", "meta"},
}

// Report aggregates every finding from one validation run.
type Report struct {
	Issues       []Issue
	FilesChecked int
}

// Ok reports whether the run found no issues.
func (r *Report) Ok() bool { return len(r.Issues) == 0 }

func (r *Report) add(issues ...Issue) {
	r.Issues = append(r.Issues, issues...)
}

// Validator walks a content root and checks every article and JSON record
// against the editorial rules.
type Validator struct {
	root     string
	articles *RuleChain
}

// New creates a validator for the given content root.
func New(root string) *Validator {
	return &Validator{
		root: root,
		articles: NewRuleChain(
			RequiredKeysRule{Keys: articleRequiredKeys},
			TagsRule{},
			VersionRule{},
			RevisionHistoryRule{},
		),
	}
}

// Run validates the whole tree. The returned error covers I/O problems only;
// content findings land in the report.
func (v *Validator) Run() (*Report, error) {
	report := &Report{}

	if err := v.checkArticles(report); err != nil {
		return nil, err
	}
	for _, kind := range []string{content.KindAuthors, content.KindPublications, content.KindTopics} {
		if err := v.checkRecords(report, kind); err != nil {
			return nil, err
		}
	}

	slog.Info("Content validation finished",
		logfields.Count(report.FilesChecked), slog.Int("issues", len(report.Issues)))
	return report, nil
}

func (v *Validator) checkArticles(report *Report) error {
	return v.walk(filepath.Join(v.root, "articles"), isMarkdown, func(path string) error {
		report.FilesChecked++
		raw, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapFatal(err, errors.CategoryFileSystem, "read article")
		}
		fields, _, err := frontmatter.Parse(raw)
		if err != nil {
			report.add(Issue{Path: v.rel(path), Rule: "frontmatter", Message: err.Error()})
			return nil
		}
		report.add(v.articles.Check(Document{Path: v.rel(path), Fields: fields})...)
		return nil
	})
}

func (v *Validator) checkRecords(report *Report, kind string) error {
	chain := NewRuleChain(RequiredKeysRule{Keys: jsonRequiredKeys[kind]})
	seen := make(map[string]string) // id -> first path

	err := v.walk(filepath.Join(v.root, kind), isJSON, func(path string) error {
		report.FilesChecked++
		raw, err := os.ReadFile(path)
		if err != nil {
			return errors.WrapFatal(err, errors.CategoryFileSystem, "read record")
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err != nil {
			report.add(Issue{Path: v.rel(path), Rule: "json", Message: "invalid JSON: " + err.Error()})
			return nil
		}
		report.add(chain.Check(Document{Path: v.rel(path), Fields: fields})...)

		if id, ok := fields["id"].(string); ok && id != "" {
			if first, dup := seen[id]; dup {
				report.add(Issue{
					Path:    v.rel(path),
					Rule:    "duplicate_id",
					Message: fmt.Sprintf("duplicate %s id %q (first seen in %s)", kind, id, first),
				})
			} else {
				seen[id] = v.rel(path)
			}
		}
		return nil
	})
	return err
}

// walk visits matching files under dir in a stable order. A missing dir is
// not an error; the tree may legitimately omit a kind.
func (v *Validator) walk(dir string, match func(string) bool, visit func(string) error) error {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() && match(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryFileSystem, "walk content tree").WithContext("dir", dir)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if err := visit(p); err != nil {
			return err
		}
	}
	return nil
}

func (v *Validator) rel(path string) string {
	if rel, err := filepath.Rel(v.root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".mdx"
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
