// Package workspace resolves the content root for a pass. Local roots pass
// through untouched; git-sourced content is cloned or fast-forwarded into a
// workspace checkout first.
package workspace

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/quillworks/pressbuild/internal/config"
	"github.com/quillworks/pressbuild/internal/errors"
	"github.com/quillworks/pressbuild/internal/logfields"
)

// Resolve returns the content root directory for the given configuration.
// When content.source names a git URL, the repository is synced into
// content.workspace and the root is resolved inside the checkout.
func Resolve(ctx context.Context, cfg config.ContentConfig) (string, error) {
	if cfg.Source == "" {
		return cfg.Root, nil
	}

	checkout, err := sync(ctx, cfg)
	if err != nil {
		return "", err
	}
	return filepath.Join(checkout, cfg.Root), nil
}

func sync(ctx context.Context, cfg config.ContentConfig) (string, error) {
	checkout := filepath.Join(cfg.Workspace, "checkout")

	if _, err := os.Stat(filepath.Join(checkout, ".git")); err == nil {
		return checkout, update(ctx, checkout, cfg)
	}
	return checkout, clone(ctx, checkout, cfg)
}

func clone(ctx context.Context, checkout string, cfg config.ContentConfig) error {
	if err := os.RemoveAll(checkout); err != nil {
		return errors.WrapFatal(err, errors.CategoryFileSystem, "reset workspace checkout")
	}
	if err := os.MkdirAll(filepath.Dir(checkout), 0o750); err != nil {
		return errors.WrapFatal(err, errors.CategoryFileSystem, "create workspace")
	}

	opts := &git.CloneOptions{URL: cfg.Source}
	if cfg.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + cfg.Branch)
		opts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, checkout, false, opts)
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryGit, "clone content source").
			WithContext("url", cfg.Source)
	}

	if ref, err := repo.Head(); err == nil {
		slog.Info("Content source cloned",
			logfields.Source(cfg.Source),
			slog.String("commit", ref.Hash().String()[:8]),
			logfields.Path(checkout))
	}
	return nil
}

func update(ctx context.Context, checkout string, cfg config.ContentConfig) error {
	repo, err := git.PlainOpen(checkout)
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryGit, "open workspace checkout")
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return errors.WrapFatal(err, errors.CategoryGit, "open worktree")
	}

	opts := &git.PullOptions{RemoteName: "origin"}
	if cfg.Branch != "" {
		opts.ReferenceName = plumbing.ReferenceName("refs/heads/" + cfg.Branch)
		opts.SingleBranch = true
	}

	if err := worktree.PullContext(ctx, opts); err != nil {
		if err == git.NoErrAlreadyUpToDate {
			slog.Debug("Content source already up to date", logfields.Source(cfg.Source))
			return nil
		}
		return errors.WrapFatal(err, errors.CategoryGit, "update content source").
			WithContext("url", cfg.Source)
	}

	slog.Info("Content source updated", logfields.Source(cfg.Source), logfields.Path(checkout))
	return nil
}
