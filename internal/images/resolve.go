package images

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/quillworks/pressbuild/internal/errors"
	"github.com/quillworks/pressbuild/internal/logfields"
	"github.com/quillworks/pressbuild/internal/retry"
	"github.com/quillworks/pressbuild/internal/slug"
)

// ResolvedSource is a source image the pipeline can read locally. Remote
// references are fetched into the cache once; local references must already
// exist under the asset root.
type ResolvedSource struct {
	// Path is the local path holding the source bytes.
	Path string
	// Subdir namespaces the derived variants under the output directory
	// (empty for local sources, "remote/<host>" for remote ones).
	Subdir string
	// Base is the variant file base name, derived from the source name.
	Base string
}

// Resolver turns image references into readable local sources.
type Resolver struct {
	AssetRoot string
	FetchDir  string
	Client    *http.Client
	Policy    retry.Policy
}

// NewResolver builds a resolver with the default fetch client and policy.
func NewResolver(assetRoot, fetchDir string) *Resolver {
	return &Resolver{
		AssetRoot: assetRoot,
		FetchDir:  fetchDir,
		Client:    &http.Client{Timeout: 30 * time.Second},
		Policy:    retry.DefaultPolicy(),
	}
}

// Resolve distinguishes remote references (absolute URLs) from local ones.
// A missing local source is a fatal resource error, never a skip.
func (r *Resolver) Resolve(ctx context.Context, ref string) (*ResolvedSource, error) {
	if isRemote(ref) {
		return r.resolveRemote(ctx, ref)
	}
	return r.resolveLocal(ref)
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func (r *Resolver) resolveLocal(ref string) (*ResolvedSource, error) {
	p := filepath.Join(r.AssetRoot, filepath.FromSlash(strings.TrimPrefix(ref, "/")))
	if _, err := os.Stat(p); err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryResource, "image source not found").
			WithContext("ref", ref).WithContext("path", p)
	}
	return &ResolvedSource{Path: p, Base: baseName(ref)}, nil
}

func (r *Resolver) resolveRemote(ctx context.Context, ref string) (*ResolvedSource, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return nil, errors.WrapFatal(err, errors.CategoryResource, "invalid remote image reference").
			WithContext("ref", ref)
	}

	sum := sha256.Sum256([]byte(ref))
	cached := filepath.Join(r.FetchDir, hex.EncodeToString(sum[:])+path.Ext(u.Path))

	if _, statErr := os.Stat(cached); statErr != nil {
		if err := r.fetch(ctx, ref, cached); err != nil {
			return nil, err
		}
	}

	return &ResolvedSource{
		Path:   cached,
		Subdir: path.Join("remote", u.Host),
		Base:   baseName(u.Path),
	}, nil
}

func (r *Resolver) fetch(ctx context.Context, ref, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return errors.WrapFatal(err, errors.CategoryFileSystem, "create fetch cache dir")
	}

	var lastErr error
	for attempt := 0; attempt <= r.Policy.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("Retrying remote image fetch", logfields.Source(ref), slog.Int("attempt", attempt))
			select {
			case <-time.After(r.Policy.Delay(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if lastErr = r.fetchOnce(ctx, ref, dest); lastErr == nil {
			return nil
		}
	}
	return errors.WrapFatal(lastErr, errors.CategoryNetwork, "fetch remote image").WithContext("ref", ref)
}

func (r *Resolver) fetchOnce(ctx context.Context, ref, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return err
	}
	resp, err := r.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".fetch-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

// baseName derives the slug-safe variant base name from a reference path.
func baseName(ref string) string {
	name := path.Base(strings.TrimSuffix(ref, "/"))
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	if s := slug.Normalize(name); s != "" {
		return s
	}
	return "image"
}
