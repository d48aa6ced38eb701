// Package workspace owns the filesystem roots of one build run: the public
// output tree and the scratch directory holding per-version clones.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/christophebedard/gen-docs/internal/logfields"
)

// Manager handles the output and repos directories for a run.
type Manager struct {
	outputRoot string
	reposRoot  string
}

// NewManager creates a workspace manager for the given roots.
func NewManager(outputRoot, reposRoot string) *Manager {
	return &Manager{
		outputRoot: outputRoot,
		reposRoot:  reposRoot,
	}
}

// OutputRoot returns the root of the published documentation tree.
func (m *Manager) OutputRoot() string { return m.outputRoot }

// ReposRoot returns the root of the per-version clone scratch space.
func (m *Manager) ReposRoot() string { return m.reposRoot }

// VersionOutputDir returns the public output directory for one version.
func (m *Manager) VersionOutputDir(version string) string {
	return filepath.Join(m.outputRoot, version)
}

// VersionRepoDir returns the clone directory for one version.
func (m *Manager) VersionRepoDir(version string) string {
	return filepath.Join(m.reposRoot, version)
}

// Stale reports whether either root is left over from an earlier run.
func (m *Manager) Stale() bool {
	for _, dir := range []string{m.outputRoot, m.reposRoot} {
		if _, err := os.Stat(dir); err == nil {
			return true
		}
	}
	return false
}

// Clean removes both roots. Safe to call when neither exists.
func (m *Manager) Clean() error {
	for _, dir := range []string{m.outputRoot, m.reposRoot} {
		slog.Info("Removing directory", logfields.Path(dir))
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove %s: %w", dir, err)
		}
	}
	return nil
}

// Create creates both roots.
func (m *Manager) Create() error {
	for _, dir := range []string{m.outputRoot, m.reposRoot} {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create workspace directory %s: %w", dir, err)
		}
	}
	slog.Debug("Created workspace", logfields.Path(m.outputRoot))
	return nil
}
