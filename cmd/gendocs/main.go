package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/christophebedard/gen-docs/internal/logfields"
	"github.com/christophebedard/gen-docs/internal/orchestrator"
	"github.com/christophebedard/gen-docs/internal/workspace"
)

// reposDirName is the scratch directory holding per-version clones. It is not
// part of the published artifact and is removed by clean.
const reposDirName = "repos"

var CLI struct {
	Config string `short:"c" help:"Path to the configuration file" default:"gen_docs.yml"`
	Debug  bool   `short:"d" help:"Print output from external toolchain commands"`

	Build struct {
		Output  string   `short:"o" help:"Base directory in which to put the generated documentation" default:"output"`
		DataDir string   `help:"Directory caching the external reference tag file across runs" default:"data"`
		Version []string `help:"Override the configured versions with custom versions"`
	} `cmd:"" default:"withargs" help:"Generate documentation for the configured versions and packages"`

	Clean struct {
		Output string `short:"o" help:"Base directory of the generated documentation" default:"output"`
	} `cmd:"" help:"Remove directories and files created by a previous run"`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("gendocs"),
		kong.Description("Generate multi-version API documentation for the packages of a repository."))

	logLevel := slog.LevelInfo
	if CLI.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	switch ctx.Command() {
	case "build":
		os.Exit(runBuild())
	case "clean":
		os.Exit(runClean())
	}
}

func runBuild() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	orch := orchestrator.New(orchestrator.Options{
		ConfigPath:       CLI.Config,
		OutputDir:        CLI.Build.Output,
		ReposDir:         reposDirName,
		DataDir:          CLI.Build.DataDir,
		OverrideVersions: CLI.Build.Version,
		Debug:            CLI.Debug,
	})

	exitCode := 0
	orch.Execute(ctx).Match(
		func(s orchestrator.Summary) {
			if !s.Generated {
				slog.Warn("Nothing was generated",
					slog.Int("skipped", s.Skipped),
					slog.Int("failed", s.Failed))
				return
			}
			indexPath := s.IndexPath
			if abs, err := filepath.Abs(indexPath); err == nil {
				indexPath = abs
			}
			slog.Info("Generation done",
				slog.String("index", "file://"+indexPath),
				slog.Int("versions", s.Versions),
				slog.Int("packages", s.Succeeded),
				slog.Int("skipped", s.Skipped),
				slog.Int("failed", s.Failed))
		},
		func(err error) {
			slog.Error("Build failed", logfields.Error(err))
			exitCode = 1
		},
	)
	return exitCode
}

func runClean() int {
	ws := workspace.NewManager(CLI.Clean.Output, reposDirName)
	if err := ws.Clean(); err != nil {
		slog.Error("Clean failed", logfields.Error(err))
		return 1
	}
	return 0
}
