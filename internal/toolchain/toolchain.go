// Package toolchain invokes the external documentation generators with
// version metadata injected through their own configuration files.
package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	builderrors "github.com/christophebedard/gen-docs/internal/errors"
	"github.com/christophebedard/gen-docs/internal/logfields"
)

// externalTagBaseURL maps symbols from the external reference tag file to
// their online documentation.
const externalTagBaseURL = "http://en.cppreference.com/w/"

// DoxygenParams carries the overrides appended to a package's Doxyfile
// ahead of execution. Empty fields are not appended.
type DoxygenParams struct {
	// ProjectNumber is the version displayed by doxygen (PROJECT_NUMBER).
	ProjectNumber string
	// TagfilePath is where this package's own cross-reference tag file is
	// generated (GENERATE_TAGFILE), so later packages can link into it.
	TagfilePath string
	// ExternalTagfile is the shared reference tag file wired in as an
	// additional TAGFILES source.
	ExternalTagfile string
}

// SphinxParams carries the version strings appended to a package's
// docs/source/conf.py ahead of execution.
type SphinxParams struct {
	Version string
	Release string
}

// Runner invokes external documentation tools. A single nonzero exit is a
// definitive failure for that package; no retries.
type Runner struct {
	debug bool
}

// NewRunner creates a Runner. With debug enabled, tool output is passed
// through to the process streams instead of being captured.
func NewRunner(debug bool) *Runner {
	return &Runner{debug: debug}
}

// CheckTools verifies that the required external binaries are on PATH.
func (r *Runner) CheckTools() error {
	for _, tool := range []string{"doxygen", "make", "sphinx-build"} {
		if _, err := exec.LookPath(tool); err != nil {
			return builderrors.WrapFatal(err, builderrors.CategoryToolchain, "could not find "+tool)
		}
	}
	return nil
}

// DoxygenOutputDir is where doxygen emits its HTML tree for a package.
func DoxygenOutputDir(packageDir string) string {
	return filepath.Join(packageDir, "doc_output", "html")
}

// SphinxOutputDir is where the sphinx html target emits its tree.
func SphinxOutputDir(packageDir string) string {
	return filepath.Join(packageDir, "docs", "build", "html")
}

// RunDoxygen appends the parameter overrides to the package's Doxyfile and
// runs doxygen in the package directory.
func (r *Runner) RunDoxygen(ctx context.Context, packageDir string, params DoxygenParams) error {
	if err := appendDoxyfileParams(packageDir, params); err != nil {
		return builderrors.Wrap(err, builderrors.CategoryToolchain, builderrors.SeverityError, "failed to append Doxyfile parameters")
	}
	return r.run(ctx, packageDir, "doxygen")
}

// RunSphinx appends the version strings to the package's sphinx
// configuration and runs the html build target under docs/.
func (r *Runner) RunSphinx(ctx context.Context, packageDir string, params SphinxParams) error {
	if err := appendSphinxParams(packageDir, params); err != nil {
		return builderrors.Wrap(err, builderrors.CategoryToolchain, builderrors.SeverityError, "failed to append sphinx parameters")
	}
	return r.run(ctx, filepath.Join(packageDir, "docs"), "make", "html")
}

// run executes the tool, capturing output unless debug passthrough is on.
func (r *Runner) run(ctx context.Context, dir string, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	slog.Debug("Running toolchain command", slog.String("cmd", strings.Join(cmd.Args, " ")), logfields.Path(dir))

	if r.debug {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stdout
		if err := cmd.Run(); err != nil {
			return builderrors.Wrap(err, builderrors.CategoryToolchain, builderrors.SeverityError, name+" failed")
		}
		return nil
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		slog.Warn("Toolchain command failed",
			slog.String("cmd", strings.Join(cmd.Args, " ")),
			slog.String("output", strings.TrimSpace(string(output))))
		return builderrors.Wrap(err, builderrors.CategoryToolchain, builderrors.SeverityError, name+" failed")
	}
	return nil
}

// appendDoxyfileParams appends override lines to the package's Doxyfile.
// Later assignments win in doxygen, so appending overrides existing values.
func appendDoxyfileParams(packageDir string, params DoxygenParams) error {
	var lines []string
	if params.ProjectNumber != "" {
		lines = append(lines, fmt.Sprintf("PROJECT_NUMBER = %q", params.ProjectNumber))
	}
	if params.TagfilePath != "" {
		lines = append(lines, fmt.Sprintf("GENERATE_TAGFILE = %q", params.TagfilePath))
	}
	if params.ExternalTagfile != "" {
		lines = append(lines, fmt.Sprintf("TAGFILES += \"%s=%s\"", params.ExternalTagfile, externalTagBaseURL))
	}
	return appendLines(filepath.Join(packageDir, "Doxyfile"), lines)
}

// appendSphinxParams appends version/release assignments to conf.py.
func appendSphinxParams(packageDir string, params SphinxParams) error {
	var lines []string
	if params.Version != "" {
		lines = append(lines, fmt.Sprintf("version = '%s'", params.Version))
	}
	if params.Release != "" {
		lines = append(lines, fmt.Sprintf("release = '%s'", params.Release))
	}
	return appendLines(filepath.Join(packageDir, "docs", "source", "conf.py"), lines)
}

func appendLines(path string, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()
	for _, line := range lines {
		slog.Debug("Appending parameter", logfields.Path(path), slog.String("param", line))
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("failed to append to %s: %w", path, err)
		}
	}
	return nil
}
