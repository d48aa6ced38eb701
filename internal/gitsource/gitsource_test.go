package gitsource

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// initLocalRepo creates a repository with a single commit on master.
func initLocalRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("# test\n"), 0o644))
	wt, err := repo.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("README.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial commit", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return dir
}

func TestClone_LocalBranch(t *testing.T) {
	srcDir := initLocalRepo(t)
	destPath := filepath.Join(t.TempDir(), "clone")

	require.NoError(t, NewSource().Clone(context.Background(), srcDir, destPath, "master"))
	assert.FileExists(t, filepath.Join(destPath, "README.md"))
}

func TestClone_MissingBranch(t *testing.T) {
	srcDir := initLocalRepo(t)
	destPath := filepath.Join(t.TempDir(), "clone")

	err := NewSource().Clone(context.Background(), srcDir, destPath, "does-not-exist")
	require.Error(t, err)
}

func TestClone_Tag(t *testing.T) {
	srcDir := initLocalRepo(t)
	repo, err := git.PlainOpen(srcDir)
	require.NoError(t, err)
	head, err := repo.Head()
	require.NoError(t, err)
	_, err = repo.CreateTag("1.0.0", head.Hash(), nil)
	require.NoError(t, err)

	destPath := filepath.Join(t.TempDir(), "clone")
	require.NoError(t, NewSource().Clone(context.Background(), srcDir, destPath, "1.0.0"))
	assert.FileExists(t, filepath.Join(destPath, "README.md"))
}

func TestClone_ReplacesExistingDirectory(t *testing.T) {
	srcDir := initLocalRepo(t)
	destPath := filepath.Join(t.TempDir(), "clone")
	require.NoError(t, os.MkdirAll(destPath, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(destPath, "stale.txt"), []byte("old"), 0o644))

	require.NoError(t, NewSource().Clone(context.Background(), srcDir, destPath, "master"))
	assert.NoFileExists(t, filepath.Join(destPath, "stale.txt"))
}

func TestTokenAuth(t *testing.T) {
	t.Setenv(TokenEnvVar, "")
	assert.Nil(t, tokenAuth())

	t.Setenv(TokenEnvVar, "secret")
	auth := tokenAuth()
	require.NotNil(t, auth)
}

func TestIsRefNotFound(t *testing.T) {
	assert.False(t, isRefNotFound(nil))
	assert.True(t, isRefNotFound(plumbing.ErrReferenceNotFound))
	assert.True(t, isRefNotFound(git.NoMatchingRefSpecError{}))
	assert.False(t, isRefNotFound(assert.AnError))
}
