package config

// Config is the validated build configuration.
type Config struct {
	Docs DocsConfig
}

// DocsConfig holds the repository URL and the versions to build.
type DocsConfig struct {
	// Repo is the URL of the repository containing the packages.
	Repo string
	// Versions lists the branches/tags to build, in configuration order.
	Versions []VersionSpec
}

// VersionSpec names one version (branch or tag) and optionally pins the
// packages to build for it. A nil Packages slice means "discover packages
// in the cloned repository".
type VersionSpec struct {
	Name     string
	Packages []string
}

// Discover reports whether packages should be discovered for this version.
func (v VersionSpec) Discover() bool { return len(v.Packages) == 0 }

// ApplyVersionOverride returns a new Config in which every configured version
// is replaced by the given names, each mapped to automatic package discovery.
// It is a pure transformation: the receiver is not modified. An empty override
// returns the receiver unchanged.
func (c *Config) ApplyVersionOverride(names []string) *Config {
	if len(names) == 0 {
		return c
	}
	out := &Config{Docs: DocsConfig{Repo: c.Docs.Repo}}
	out.Docs.Versions = make([]VersionSpec, 0, len(names))
	for _, name := range names {
		out.Docs.Versions = append(out.Docs.Versions, VersionSpec{Name: name})
	}
	return out
}
