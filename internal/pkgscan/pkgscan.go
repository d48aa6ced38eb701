// Package pkgscan enumerates packages in a cloned repository and classifies
// their documentation toolchain.
package pkgscan

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// ManifestName is the file marking a directory as a package.
const ManifestName = "package.xml"

// DocsKind classifies a package's documentation build method.
type DocsKind string

const (
	KindDoxygen DocsKind = "doxygen"
	KindSphinx  DocsKind = "sphinx"
	KindNone    DocsKind = "none"
)

// Scanner locates packages and detects their toolchain.
type Scanner struct{}

// NewScanner creates a Scanner.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Discover returns the packages under repoDir: immediate subdirectories that
// are not hidden and contain a package manifest. The order follows the
// directory listing; it only affects display order in the generated index.
func (s *Scanner) Discover(repoDir string) ([]string, error) {
	entries, err := os.ReadDir(repoDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read repository directory: %w", err)
	}

	var packages []string
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name()[0] == '.' {
			continue
		}
		manifest := filepath.Join(repoDir, entry.Name(), ManifestName)
		if _, err := os.Stat(manifest); err == nil {
			packages = append(packages, entry.Name())
		}
	}
	return packages, nil
}

// Detect classifies a package directory. A Doxyfile directly in the package
// directory wins over a Sphinx Makefile under docs/; a package containing
// both is deliberately classified as doxygen.
func (s *Scanner) Detect(packageDir string) DocsKind {
	if _, err := os.Stat(filepath.Join(packageDir, "Doxyfile")); err == nil {
		return KindDoxygen
	}
	// For now a Makefile under docs/ implies sphinx
	if _, err := os.Stat(filepath.Join(packageDir, "docs", "Makefile")); err == nil {
		return KindSphinx
	}
	return KindNone
}

// manifest is the subset of the package manifest we care about.
type manifest struct {
	XMLName xml.Name `xml:"package"`
	Version string   `xml:"version"`
}

// ManifestVersion reads the package's version from its manifest file, used as
// the sphinx release string. An empty version is not an error; the manifest
// may simply not declare one.
func (s *Scanner) ManifestVersion(packageDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(packageDir, ManifestName))
	if err != nil {
		return "", fmt.Errorf("failed to read package manifest: %w", err)
	}
	var m manifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return "", fmt.Errorf("failed to parse package manifest: %w", err)
	}
	return m.Version, nil
}
