package publish

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelocate(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "pkg", "doc_output", "html")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "sub"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.html"), []byte("<html></html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "sub", "page.html"), []byte("<html></html>"), 0o644))

	dst := filepath.Join(base, "output", "foxy", "pkg")
	require.NoError(t, NewPublisher().Relocate(src, dst))

	assert.FileExists(t, filepath.Join(dst, "index.html"))
	assert.FileExists(t, filepath.Join(dst, "sub", "page.html"))
	// The toolchain output no longer exists under its original path.
	assert.NoDirExists(t, src)
}

func TestRelocate_MissingSource(t *testing.T) {
	base := t.TempDir()
	err := NewPublisher().Relocate(filepath.Join(base, "nope"), filepath.Join(base, "dst"))
	require.Error(t, err)
}

func TestWriteVersionIndex(t *testing.T) {
	destDir := t.TempDir()
	data := VersionIndexData{
		RepoName:      "my_repo",
		Version:       "foxy",
		Packages:      []string{"pkg_a", "pkg_b"},
		OtherVersions: []string{"rolling", "eloquent"},
	}

	path, err := NewPublisher().WriteVersionIndex(data, destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "index.html"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(content)
	assert.Contains(t, html, "my_repo")
	assert.Contains(t, html, "Version: foxy")
	assert.Contains(t, html, `<a href="pkg_a/index.html">pkg_a</a>`)
	assert.Contains(t, html, `<a href="pkg_b/index.html">pkg_b</a>`)
	assert.Contains(t, html, `<a href="../rolling/index.html">rolling</a>`)
	assert.Contains(t, html, `<a href="../eloquent/index.html">eloquent</a>`)
}

func TestWriteVersionIndex_NoOtherVersions(t *testing.T) {
	destDir := t.TempDir()
	data := VersionIndexData{RepoName: "my_repo", Version: "foxy", Packages: []string{"pkg_a"}}

	path, err := NewPublisher().WriteVersionIndex(data, destDir)
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "Other versions")
}

func TestWriteVersionIndex_Deterministic(t *testing.T) {
	data := VersionIndexData{
		RepoName:  "my_repo",
		Version:   "foxy",
		Packages:  []string{"pkg_a"},
		Timestamp: IndexTimestamp(time.Date(2020, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	p := NewPublisher()

	first, err := p.WriteVersionIndex(data, t.TempDir())
	require.NoError(t, err)
	second, err := p.WriteVersionIndex(data, t.TempDir())
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestWriteRedirect(t *testing.T) {
	destDir := t.TempDir()

	path, err := NewPublisher().WriteRedirect("foxy", destDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(destDir, "index.html"), path)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	html := string(content)
	assert.Contains(t, html, `url=foxy/index.html`)
	assert.Contains(t, html, `<a href="foxy/index.html">`)
}

func TestWriteRedirect_UnwritableDestination(t *testing.T) {
	_, err := NewPublisher().WriteRedirect("foxy", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}

func TestIndexTimestamp(t *testing.T) {
	ts := IndexTimestamp(time.Date(2020, 6, 1, 12, 30, 45, 0, time.UTC))
	assert.Equal(t, "on 2020-06-01 at 12:30:45 +0000", ts)
}
