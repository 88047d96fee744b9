// Package pipeline orchestrates one full build pass: load content, derive
// the tag and search indexes, generate image variants and write the output
// artifacts.
package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quillworks/pressbuild/internal/config"
	"github.com/quillworks/pressbuild/internal/content"
	"github.com/quillworks/pressbuild/internal/errors"
	"github.com/quillworks/pressbuild/internal/images"
	"github.com/quillworks/pressbuild/internal/logfields"
	"github.com/quillworks/pressbuild/internal/metrics"
	"github.com/quillworks/pressbuild/internal/readingtime"
	"github.com/quillworks/pressbuild/internal/search"
	"github.com/quillworks/pressbuild/internal/slug"
	"github.com/quillworks/pressbuild/internal/workspace"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Report summarizes one completed pass. It is persisted next to the build
// artifacts and published on the event bus when events are configured.
type Report struct {
	SchemaVersion int       `json:"schemaVersion"`
	PassID        string    `json:"passId"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	Outcome       string    `json:"outcome"`
	Articles      int       `json:"articles"`
	Authors       int       `json:"authors"`
	Publications  int       `json:"publications"`
	Topics        int       `json:"topics"`
	Tags          int       `json:"tags"`
	SearchDocs    int       `json:"searchDocs"`
	IndexBytes    int       `json:"indexBytes"`
}

// Duration returns the wall time of the pass.
func (r *Report) Duration() time.Duration { return r.End.Sub(r.Start) }

// Runner executes build passes. Each pass builds its own loader, slug
// registry and image pipeline, so repeated runs never see stale memoized
// state from an earlier pass.
type Runner struct {
	cfg *config.Config
}

// New creates a runner for the given configuration.
func New(cfg *config.Config) *Runner {
	return &Runner{cfg: cfg}
}

// Run executes one pass. The report is returned alongside the error for
// failed passes so callers can still publish the outcome.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{
		SchemaVersion: 1,
		PassID:        uuid.NewString(),
		Start:         time.Now(),
		Outcome:       OutcomeFailed,
	}

	err := r.run(ctx, report)
	report.End = time.Now()

	metrics.BuildsTotal.WithLabelValues(report.Outcome).Inc()
	metrics.BuildDuration.Observe(report.Duration().Seconds())

	if err != nil {
		slog.Error("Build pass failed",
			logfields.Pass(report.PassID),
			logfields.DurationMS(float64(report.Duration().Milliseconds())),
			logfields.Error(err))
		return report, err
	}

	slog.Info("Build pass completed",
		logfields.Pass(report.PassID),
		logfields.Count(report.Articles),
		logfields.Bytes(report.IndexBytes),
		logfields.DurationMS(float64(report.Duration().Milliseconds())))
	return report, nil
}

func (r *Runner) run(ctx context.Context, report *Report) error {
	root, err := workspace.Resolve(ctx, r.cfg.Content)
	if err != nil {
		return err
	}

	outDir := r.cfg.Output.Directory
	if r.cfg.Output.Clean {
		if err := cleanDir(outDir); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return errors.WrapFatal(err, errors.CategoryFileSystem, "create output directory")
	}

	loader := content.NewLoader(root, slug.NewRegistry(), r.estimator())

	articles, err := loader.Articles()
	if err != nil {
		return err
	}
	authors, err := loader.Records(content.KindAuthors)
	if err != nil {
		return err
	}
	publications, err := loader.Records(content.KindPublications)
	if err != nil {
		return err
	}
	topics, err := loader.Records(content.KindTopics)
	if err != nil {
		return err
	}

	if err := r.generateCovers(ctx, articles, outDir); err != nil {
		return err
	}

	tags := content.BuildTagIndex(articles)
	docs := search.MapAll(articles, authors, topics)
	artifact, err := search.Build(docs, r.searchOptions())
	if err != nil {
		return err
	}

	report.Articles = len(articles)
	report.Authors = len(authors)
	report.Publications = len(publications)
	report.Topics = len(topics)
	report.Tags = len(tags)
	report.SearchDocs = len(docs)
	report.IndexBytes = len(artifact.SerializedIndex)
	metrics.IndexBytes.Set(float64(report.IndexBytes))

	index := contentIndex{
		PassID:       report.PassID,
		GeneratedAt:  time.Now().UTC(),
		Articles:     articles,
		Tags:         tags,
		Authors:      authors,
		Publications: publications,
		Topics:       topics,
	}
	if err := writeJSON(filepath.Join(outDir, "content-index.json"), index); err != nil {
		return err
	}
	if err := writeArtifact(filepath.Join(outDir, "search-index.json"), artifact.SerializedIndex); err != nil {
		return err
	}
	if err := writeJSON(filepath.Join(outDir, "search-docs.json"), artifact.Documents); err != nil {
		return err
	}

	report.Outcome = OutcomeSuccess
	if err := writeJSON(filepath.Join(outDir, "build-report.json"), report); err != nil {
		return err
	}
	return nil
}

// generateCovers runs the image pipeline over every article cover, storing
// the rendered fragment back on the article record.
func (r *Runner) generateCovers(ctx context.Context, articles []*content.Article, outDir string) error {
	withCovers := 0
	for _, a := range articles {
		if a.CoverImage != "" {
			withCovers++
		}
	}
	if withCovers == 0 {
		return nil
	}

	imgs, err := images.New(r.cfg.Images, outDir)
	if err != nil {
		return err
	}
	defer imgs.Close()

	for _, a := range articles {
		if a.CoverImage == "" {
			continue
		}
		ref := strings.TrimPrefix(a.CoverImage, "/")
		markup, err := imgs.Generate(ctx, ref, images.Options{Alt: a.Title})
		if err != nil {
			if pe, ok := err.(*errors.PipelineError); ok {
				return pe.WithContext("slug", a.Slug)
			}
			return err
		}
		a.CoverMarkup = markup
	}

	slog.Debug("Cover variants generated", logfields.Count(withCovers))
	return nil
}

func (r *Runner) estimator() *readingtime.Estimator {
	est := readingtime.NewEstimator()
	rc := r.cfg.Reading
	if rc.WordsPerMinute > 0 {
		est.WordsPerMinute = rc.WordsPerMinute
	}
	if rc.FirstImageSeconds > 0 {
		est.Weights.FirstImage = rc.FirstImageSeconds
	}
	if rc.AdditionalImageSeconds > 0 {
		est.Weights.AdditionalImage = rc.AdditionalImageSeconds
	}
	if rc.CodeBlockSeconds > 0 {
		est.Weights.CodeBlock = rc.CodeBlockSeconds
	}
	if rc.QuoteSeconds > 0 {
		est.Weights.Quote = rc.QuoteSeconds
	}
	return est
}

func (r *Runner) searchOptions() search.Options {
	sc := r.cfg.Search
	return search.Options{
		MaxBytes:  sc.MaxIndexBytes,
		Fuzziness: sc.Fuzziness,
		Prefix:    sc.PrefixEnabled(),
		Boosts: map[string]float64{
			"title":    sc.Boosts.Title,
			"subtitle": sc.Boosts.Subtitle,
			"content":  sc.Boosts.Content,
			"tags":     sc.Boosts.Tags,
			"author":   sc.Boosts.Author,
		},
	}
}

// contentIndex is the shape of content-index.json.
type contentIndex struct {
	PassID       string               `json:"passId"`
	GeneratedAt  time.Time            `json:"generatedAt"`
	Articles     []*content.Article   `json:"articles"`
	Tags         []content.TagEntry   `json:"tags"`
	Authors      []content.JSONRecord `json:"authors"`
	Publications []content.JSONRecord `json:"publications"`
	Topics       []content.JSONRecord `json:"topics"`
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryInternal, "marshal artifact").WithContext("path", path)
	}
	return writeArtifact(path, data)
}

// writeArtifact writes atomically: readers of the output dir never observe a
// half-written artifact.
func writeArtifact(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryFileSystem, "create artifact temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.WrapFatal(err, errors.CategoryFileSystem, "write artifact").WithContext("path", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapFatal(err, errors.CategoryFileSystem, "finalize artifact")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapFatal(err, errors.CategoryFileSystem, "move artifact into place")
	}
	return nil
}

// cleanDir removes the directory contents but keeps the directory itself, so
// a server holding it open keeps a valid working directory.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.WrapFatal(err, errors.CategoryFileSystem, "read output directory")
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return errors.WrapFatal(err, errors.CategoryFileSystem, "clean output directory")
		}
	}
	return nil
}
