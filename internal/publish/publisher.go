// Package publish relocates generated documentation trees into the public
// output and renders the navigation pages (per-version index, top-level
// redirect) from embedded templates.
package publish

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"text/template"
	"time"

	builderrors "github.com/christophebedard/gen-docs/internal/errors"
	"github.com/christophebedard/gen-docs/internal/logfields"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// VersionIndexData is the data rendered into one version's package listing.
type VersionIndexData struct {
	RepoName      string
	Version       string
	Packages      []string
	OtherVersions []string
	Timestamp     string
}

// Publisher moves toolchain output into the public tree and writes the
// navigation pages.
type Publisher struct {
	tmpl *template.Template
}

// NewPublisher creates a Publisher with the embedded templates parsed.
func NewPublisher() *Publisher {
	return &Publisher{
		tmpl: template.Must(template.ParseFS(templateFS, "templates/*.tmpl")),
	}
}

// Relocate moves the toolchain output directory to its public location. The
// source no longer exists under its original path afterwards. Falls back to
// copy-and-remove when the two paths are on different filesystems.
func (p *Publisher) Relocate(outputDir, publicDir string) error {
	if err := os.MkdirAll(filepath.Dir(publicDir), 0o750); err != nil {
		return builderrors.Wrap(err, builderrors.CategoryFileSystem, builderrors.SeverityError, "failed to create public directory")
	}
	if err := os.Rename(outputDir, publicDir); err != nil {
		if err := copyTree(outputDir, publicDir); err != nil {
			return builderrors.Wrap(err, builderrors.CategoryFileSystem, builderrors.SeverityError, "failed to relocate documentation output")
		}
		if err := os.RemoveAll(outputDir); err != nil {
			return builderrors.Wrap(err, builderrors.CategoryFileSystem, builderrors.SeverityError, "failed to remove relocated output")
		}
	}
	slog.Debug("Relocated documentation output", logfields.Path(publicDir))
	return nil
}

// WriteVersionIndex renders the package listing page for one version into
// destDir/index.html and returns its path.
func (p *Publisher) WriteVersionIndex(data VersionIndexData, destDir string) (string, error) {
	if data.Timestamp == "" {
		data.Timestamp = IndexTimestamp(time.Now())
	}
	return p.render("packages_list.html.tmpl", data, filepath.Join(destDir, "index.html"))
}

// WriteRedirect renders a page redirecting to targetRelativeURL into
// destDir/index.html and returns its path.
func (p *Publisher) WriteRedirect(targetRelativeURL, destDir string) (string, error) {
	data := struct{ URL string }{URL: targetRelativeURL}
	return p.render("redirect.html.tmpl", data, filepath.Join(destDir, "index.html"))
}

// IndexTimestamp formats the generation timestamp embedded in index pages.
func IndexTimestamp(t time.Time) string {
	return t.UTC().Format("on 2006-01-02 at 15:04:05 +0000")
}

// render expands a template into destPath. Zero bytes written is a failure:
// an empty navigation page makes the whole tree unusable.
func (p *Publisher) render(name string, data any, destPath string) (string, error) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", builderrors.WrapFatal(err, builderrors.CategoryPublish, "failed to render "+name)
	}
	if buf.Len() == 0 {
		return "", builderrors.Fatal(builderrors.CategoryPublish, "rendered empty page from "+name)
	}
	if err := os.WriteFile(destPath, buf.Bytes(), 0o644); err != nil {
		return "", builderrors.WrapFatal(err, builderrors.CategoryPublish, "failed to write "+destPath)
	}
	return destPath, nil
}

// copyTree recursively copies a directory.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = in.Close()
	}()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return out.Close()
}
