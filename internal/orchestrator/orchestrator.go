// Package orchestrator drives the full version x package build matrix:
// configuration, reference archive, per-version clones, per-package toolchain
// runs, and the terminal publishing steps.
package orchestrator

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/christophebedard/gen-docs/internal/config"
	builderrors "github.com/christophebedard/gen-docs/internal/errors"
	"github.com/christophebedard/gen-docs/internal/foundation"
	"github.com/christophebedard/gen-docs/internal/gitsource"
	"github.com/christophebedard/gen-docs/internal/logfields"
	"github.com/christophebedard/gen-docs/internal/pkgscan"
	"github.com/christophebedard/gen-docs/internal/publish"
	"github.com/christophebedard/gen-docs/internal/refarchive"
	"github.com/christophebedard/gen-docs/internal/toolchain"
	"github.com/christophebedard/gen-docs/internal/workspace"
)

// Cloner clones the repository at one version into a workspace directory.
type Cloner interface {
	Clone(ctx context.Context, url, destPath, branch string) error
}

// ArchiveFetcher ensures the shared external reference tag file is present.
type ArchiveFetcher interface {
	Ensure(ctx context.Context, url, entryPath, destDir string) (string, error)
}

// PackageScanner locates packages and classifies their toolchain.
type PackageScanner interface {
	Discover(repoDir string) ([]string, error)
	Detect(packageDir string) pkgscan.DocsKind
	ManifestVersion(packageDir string) (string, error)
}

// ToolRunner invokes the external documentation generators.
type ToolRunner interface {
	CheckTools() error
	RunDoxygen(ctx context.Context, packageDir string, params toolchain.DoxygenParams) error
	RunSphinx(ctx context.Context, packageDir string, params toolchain.SphinxParams) error
}

// SitePublisher relocates output and writes the navigation pages.
type SitePublisher interface {
	Relocate(outputDir, publicDir string) error
	WriteVersionIndex(data publish.VersionIndexData, destDir string) (string, error)
	WriteRedirect(targetRelativeURL, destDir string) (string, error)
}

// Options configures one build run.
type Options struct {
	ConfigPath       string
	OutputDir        string
	ReposDir         string
	DataDir          string
	ArchiveURL       string
	OverrideVersions []string
	Debug            bool
}

// Summary reports what a completed run produced.
type Summary struct {
	RunID     string
	Generated bool
	IndexPath string // top-level redirect, set when Generated
	Versions  int    // versions with at least one succeeded package
	Succeeded int
	Skipped   int
	Failed    int
}

// Orchestrator sequences the whole build. Strictly single-threaded; external
// tool invocations block until completion.
type Orchestrator struct {
	opts      Options
	runID     string
	ws        *workspace.Manager
	fetcher   ArchiveFetcher
	cloner    Cloner
	scanner   PackageScanner
	runner    ToolRunner
	publisher SitePublisher
}

// New creates an Orchestrator wired with the real collaborators.
func New(opts Options) *Orchestrator {
	if opts.ArchiveURL == "" {
		opts.ArchiveURL = refarchive.DefaultArchiveURL
	}
	return &Orchestrator{
		opts:      opts,
		runID:     uuid.NewString(),
		ws:        workspace.NewManager(opts.OutputDir, opts.ReposDir),
		fetcher:   refarchive.NewFetcher(nil),
		cloner:    gitsource.NewSource(),
		scanner:   pkgscan.NewScanner(),
		runner:    toolchain.NewRunner(opts.Debug),
		publisher: publish.NewPublisher(),
	}
}

// Collaborator injection for testing.

func (o *Orchestrator) WithFetcher(f ArchiveFetcher) *Orchestrator  { o.fetcher = f; return o }
func (o *Orchestrator) WithCloner(c Cloner) *Orchestrator           { o.cloner = c; return o }
func (o *Orchestrator) WithScanner(s PackageScanner) *Orchestrator  { o.scanner = s; return o }
func (o *Orchestrator) WithRunner(r ToolRunner) *Orchestrator       { o.runner = r; return o }
func (o *Orchestrator) WithPublisher(p SitePublisher) *Orchestrator { o.publisher = p; return o }

// Execute runs the full pipeline. Fatal failures (bad config, missing tools,
// reference archive, clone, publish) surface as Err; per-package failures are
// recorded in the Summary and processing continues. An empty run (nothing
// generated) is Ok with Generated=false.
func (o *Orchestrator) Execute(ctx context.Context) foundation.Result[Summary, error] {
	log := slog.With(logfields.RunID(o.runID))

	raw, err := config.Load(o.opts.ConfigPath)
	if err != nil {
		return foundation.Err[Summary](err)
	}
	cfg, vr := config.Validate(raw)
	if !vr.Valid {
		return foundation.Err[Summary, error](
			builderrors.WrapFatal(vr.ToError(), builderrors.CategoryValidation, "invalid configuration"))
	}
	overridden := len(o.opts.OverrideVersions) > 0
	cfg = cfg.ApplyVersionOverride(o.opts.OverrideVersions)
	logConfiguration(log, cfg, overridden)

	if err := o.runner.CheckTools(); err != nil {
		return foundation.Err[Summary](err)
	}

	if o.ws.Stale() {
		log.Info("Cleaning up directories left over from an earlier run")
		if err := o.ws.Clean(); err != nil {
			return foundation.Err[Summary, error](
				builderrors.WrapFatal(err, builderrors.CategoryFileSystem, "pre-run cleanup failed"))
		}
	}
	if err := o.ws.Create(); err != nil {
		return foundation.Err[Summary, error](
			builderrors.WrapFatal(err, builderrors.CategoryFileSystem, "workspace creation failed"))
	}

	// Tag file paths are handed to doxygen, which runs with the package
	// directory as its working directory, so they must be absolute.
	if abs, err := filepath.Abs(o.opts.DataDir); err == nil {
		o.opts.DataDir = abs
	}
	tagfilePath, err := o.fetcher.Ensure(ctx, o.opts.ArchiveURL, refarchive.TagfileName, o.opts.DataDir)
	if err != nil {
		return foundation.Err[Summary](err)
	}

	summary := Summary{RunID: o.runID}
	result := NewRunResult()

	for _, v := range cfg.Docs.Versions {
		repoDir := o.ws.VersionRepoDir(v.Name)
		log.Info("Cloning repository", logfields.Version(v.Name), logfields.URL(cfg.Docs.Repo))
		if err := o.cloner.Clone(ctx, cfg.Docs.Repo, repoDir, v.Name); err != nil {
			return foundation.Err[Summary](err)
		}

		packages := v.Packages
		if len(packages) == 0 {
			packages, err = o.scanner.Discover(repoDir)
			if err != nil {
				return foundation.Err[Summary, error](
					builderrors.WrapFatal(err, builderrors.CategoryFileSystem, "package discovery failed"))
			}
			if len(packages) == 0 {
				log.Warn("Could not find any packages, skipping version", logfields.Version(v.Name))
				continue
			}
			log.Info("Found packages", logfields.Version(v.Name), logfields.Count(len(packages)))
		}

		for _, pkg := range packages {
			switch o.processPackage(ctx, log, v.Name, pkg, repoDir, tagfilePath, result) {
			case OutcomeSucceeded:
				summary.Succeeded++
			case OutcomeSkippedNoToolchain:
				summary.Skipped++
			case OutcomeFailed:
				summary.Failed++
			}
		}
	}

	if result.Empty() {
		log.Warn("Did not generate any documentation")
		return foundation.Ok[Summary, error](summary)
	}
	summary.Versions = len(result.Versions())

	repoName := repoNameFromURL(cfg.Docs.Repo, result)
	for _, v := range result.Versions() {
		data := publish.VersionIndexData{
			RepoName:      repoName,
			Version:       v,
			Packages:      result.Packages(v),
			OtherVersions: result.OtherVersions(v),
		}
		if _, err := o.publisher.WriteVersionIndex(data, o.ws.VersionOutputDir(v)); err != nil {
			return foundation.Err[Summary](err)
		}
	}

	defaultVersion := result.DefaultVersion()
	log.Info("Creating redirect to default version", logfields.Version(defaultVersion))
	indexPath, err := o.publisher.WriteRedirect(defaultVersion, o.ws.OutputRoot())
	if err != nil {
		return foundation.Err[Summary](err)
	}

	summary.Generated = true
	summary.IndexPath = indexPath
	return foundation.Ok[Summary, error](summary)
}

// processPackage runs one package build attempt end to end. Failures are
// recoverable: they are logged and the loop continues with the next package.
func (o *Orchestrator) processPackage(ctx context.Context, log *slog.Logger, version, pkg, repoDir, tagfilePath string, result *RunResult) PackageOutcome {
	packageDir := filepath.Join(repoDir, pkg)
	plog := log.With(logfields.Version(version), logfields.Package(pkg))

	var outputDir string
	switch kind := o.scanner.Detect(packageDir); kind {
	case pkgscan.KindDoxygen:
		plog.Info("Running toolchain for package", logfields.Kind(string(kind)))
		params := toolchain.DoxygenParams{
			ProjectNumber:   version,
			TagfilePath:     filepath.Join(o.opts.DataDir, pkg+".tag"),
			ExternalTagfile: tagfilePath,
		}
		if err := o.runner.RunDoxygen(ctx, packageDir, params); err != nil {
			plog.Warn("Toolchain run failed", logfields.Error(err))
			return OutcomeFailed
		}
		outputDir = toolchain.DoxygenOutputDir(packageDir)

	case pkgscan.KindSphinx:
		plog.Info("Running toolchain for package", logfields.Kind(string(kind)))
		release, err := o.scanner.ManifestVersion(packageDir)
		if err != nil {
			plog.Debug("Could not read manifest version", logfields.Error(err))
		}
		if err := o.runner.RunSphinx(ctx, packageDir, toolchain.SphinxParams{Version: version, Release: release}); err != nil {
			plog.Warn("Toolchain run failed", logfields.Error(err))
			return OutcomeFailed
		}
		outputDir = toolchain.SphinxOutputDir(packageDir)

	default:
		plog.Warn("Could not find documentation toolchain for package")
		return OutcomeSkippedNoToolchain
	}

	publicDir := filepath.Join(o.ws.VersionOutputDir(version), pkg)
	if err := o.publisher.Relocate(outputDir, publicDir); err != nil {
		plog.Warn("Failed to relocate documentation output", logfields.Error(err))
		return OutcomeFailed
	}

	result.Append(version, pkg)
	return OutcomeSucceeded
}

// repoNameFromURL extracts the repository name from its URL, stripping a
// trailing .git. When the URL has no usable last segment, the name of the
// first package of the default version is used instead.
func repoNameFromURL(repoURL string, result *RunResult) string {
	name := repoURL
	if idx := strings.LastIndex(repoURL, "/"); idx >= 0 {
		name = repoURL[idx+1:]
	}
	name = strings.TrimSuffix(name, ".git")
	if name != "" {
		return name
	}
	return result.Packages(result.DefaultVersion())[0]
}

// logConfiguration echoes the effective version/package configuration.
func logConfiguration(log *slog.Logger, cfg *config.Config, overridden bool) {
	for _, v := range cfg.Docs.Versions {
		packages := "(all)"
		if len(v.Packages) > 0 {
			packages = strings.Join(v.Packages, ", ")
		}
		log.Info("Configured version",
			logfields.Version(v.Name),
			slog.String("packages", packages),
			slog.Bool("overridden", overridden))
	}
}
