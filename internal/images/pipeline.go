package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/quillworks/pressbuild/internal/config"
	"github.com/quillworks/pressbuild/internal/errors"
	"github.com/quillworks/pressbuild/internal/logfields"
	"github.com/quillworks/pressbuild/internal/metrics"
)

// Variant is one generated (width, format) rendition.
type Variant struct {
	Width  int
	Format Format
	URL    string
}

// Pipeline generates responsive image variants under a content-hash-keyed
// cache. It owns the cache directory exclusively; callers only ever see the
// returned markup and URLs.
type Pipeline struct {
	resolver  *Resolver
	outputDir string
	urlBase   string
	defaults  Options

	// sem caps simultaneous encodes pipeline-wide. Once an encode is
	// admitted it runs to completion; there is no cancellation.
	sem *semaphore.Weighted

	// group de-duplicates concurrent requests for the same
	// (source, options) pair so they share one result instead of racing.
	group singleflight.Group

	manifest *Manifest
}

// New builds the pipeline from config. outputRoot is the site output
// directory; variants land under outputRoot/<cfg.OutputDir>.
func New(cfg config.ImagesConfig, outputRoot string) (*Pipeline, error) {
	defaults, err := defaultsFromConfig(cfg)
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryConfig, "image pipeline config")
	}

	outputDir := filepath.Join(outputRoot, filepath.FromSlash(cfg.OutputDir))
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryFileSystem, "create image output dir")
	}

	fetchDir := filepath.Join(outputRoot, ".fetch-cache")
	p := &Pipeline{
		resolver:  NewResolver(cfg.AssetRoot, fetchDir),
		outputDir: outputDir,
		urlBase:   strings.TrimSuffix(cfg.URLBase, "/"),
		defaults:  defaults,
		sem:       semaphore.NewWeighted(int64(cfg.Concurrency)),
	}

	manifest, err := OpenManifest(filepath.Join(outputDir, "variants.db"))
	if err != nil {
		return nil, err
	}
	p.manifest = manifest
	return p, nil
}

// Close releases pipeline resources.
func (p *Pipeline) Close() error {
	if p.manifest != nil {
		return p.manifest.Close()
	}
	return nil
}

// Generate resolves ref, produces every configured (width, format) variant
// and returns the embeddable markup. Failure of any single encode is fatal
// for the image; no degraded fallback is substituted.
func (p *Pipeline) Generate(ctx context.Context, ref string, opts Options) (string, error) {
	opts = opts.withDefaults(p.defaults)

	if strings.TrimSpace(opts.Alt) == "" {
		return "", errors.Fatal(errors.CategoryContract, "image embed requires a non-empty accessibility description").
			WithContext("ref", ref)
	}

	src, err := p.resolver.Resolve(ctx, ref)
	if err != nil {
		return "", err
	}

	key := src.Path + "|" + opts.hash()
	result, err, _ := p.group.Do(key, func() (any, error) {
		return p.generateVariants(ctx, src, opts)
	})
	if err != nil {
		return "", err
	}

	return renderMarkup(result.([]Variant), opts), nil
}

func (p *Pipeline) generateVariants(ctx context.Context, src *ResolvedSource, opts Options) ([]Variant, error) {
	raw, err := os.ReadFile(src.Path)
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryResource, "read image source").WithContext("path", src.Path)
	}
	sum := sha256.Sum256(raw)
	hash := hex.EncodeToString(sum[:6])

	if src.Subdir != "" {
		if err := os.MkdirAll(filepath.Join(p.outputDir, filepath.FromSlash(src.Subdir)), 0o750); err != nil {
			return nil, errors.WrapFatal(err, errors.CategoryFileSystem, "create variant subdir")
		}
	}

	var decoded image.Image // lazily decoded on the first cache miss

	variants := make([]Variant, 0, len(opts.Widths)*len(opts.Formats))
	for _, format := range opts.Formats {
		for _, width := range opts.Widths {
			name := fmt.Sprintf("%s-%s-%dw.%s", src.Base, hash, width, format.Ext())
			rel := path.Join(src.Subdir, name)
			out := filepath.Join(p.outputDir, filepath.FromSlash(rel))

			if _, statErr := os.Stat(out); statErr == nil {
				metrics.CacheHitsTotal.Inc()
			} else {
				if decoded == nil {
					if decoded, err = decodeSource(src.Path); err != nil {
						return nil, errors.WrapFatal(err, errors.CategoryEncode, "decode image source").
							WithContext("path", src.Path)
					}
				}
				if err := p.encodeVariant(ctx, decoded, width, format, out); err != nil {
					return nil, err
				}
				metrics.EncodesTotal.WithLabelValues(string(format)).Inc()
				if p.manifest != nil {
					if err := p.manifest.Record(ctx, hash, src.Path, width, format, rel); err != nil {
						slog.Warn("Failed to record variant in manifest", logfields.File(rel), logfields.Error(err))
					}
				}
			}

			variants = append(variants, Variant{Width: width, Format: format, URL: p.urlBase + "/" + rel})
		}
	}
	return variants, nil
}

// encodeVariant performs one gated encode. The semaphore acquire suspends
// the caller until a slot frees up.
func (p *Pipeline) encodeVariant(ctx context.Context, src image.Image, width int, format Format, out string) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	tmp, err := os.CreateTemp(filepath.Dir(out), ".encode-*")
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryFileSystem, "create variant temp file")
	}

	resized := resizeTo(src, width)
	if err := encodeTo(tmp, resized, format); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.WrapFatal(err, errors.CategoryEncode, "encode image variant").
			WithContext("format", string(format)).WithContext("width", width)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapFatal(err, errors.CategoryFileSystem, "finalize variant")
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		os.Remove(tmp.Name())
		return errors.WrapFatal(err, errors.CategoryFileSystem, "move variant into cache")
	}

	slog.Debug("Encoded image variant",
		logfields.File(filepath.Base(out)), logfields.Width(width), logfields.Format(string(format)))
	return nil
}
