package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillworks/pressbuild/internal/config"
)

func TestResolve_LocalRootPassesThrough(t *testing.T) {
	root, err := Resolve(context.Background(), config.ContentConfig{Root: "content"})
	require.NoError(t, err)
	assert.Equal(t, "content", root)
}

// initSourceRepo creates a local git repository with one committed file.
func initSourceRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "content", "articles"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "articles", "a.md"), []byte("---\ntitle: A\n---\nBody.\n"), 0o644))

	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(".")
	require.NoError(t, err)
	_, err = wt.Commit("add content", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestResolve_ClonesGitSource(t *testing.T) {
	source := initSourceRepo(t)
	workspaceDir := t.TempDir()

	cfg := config.ContentConfig{
		Root:      "content",
		Source:    source,
		Workspace: workspaceDir,
	}

	root, err := Resolve(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(workspaceDir, "checkout", "content"), root)
	assert.FileExists(t, filepath.Join(root, "articles", "a.md"))
}

func TestResolve_SecondRunReusesCheckout(t *testing.T) {
	source := initSourceRepo(t)
	workspaceDir := t.TempDir()

	cfg := config.ContentConfig{Root: "content", Source: source, Workspace: workspaceDir}

	_, err := Resolve(context.Background(), cfg)
	require.NoError(t, err)

	root, err := Resolve(context.Background(), cfg)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, "articles", "a.md"))
}
