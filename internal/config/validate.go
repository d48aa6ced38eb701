package config

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/christophebedard/gen-docs/internal/foundation"
)

// Validate enforces the structural invariants of the configuration document:
// a top-level 'docs' mapping with a non-empty 'repo' string and a non-empty
// 'versions' mapping of string version names to an optional package list
// (a bare string counts as a singleton list). All violations are collected
// and reported together. On success a fresh Config is produced; the raw
// document is never mutated.
func Validate(raw *Raw) (*Config, foundation.ValidationResult) {
	var errs []foundation.FieldError
	fail := func(field, code, message string) {
		errs = append(errs, foundation.NewFieldError(field, code, message))
	}

	root := documentRoot(&raw.doc)
	if root == nil || root.Kind != yaml.MappingNode {
		fail("docs", "missing", "missing top-level 'docs' key")
		return nil, foundation.Invalid(errs...)
	}

	docs := mappingValue(root, "docs")
	if docs == nil || docs.Kind != yaml.MappingNode {
		fail("docs", "missing", "missing top-level 'docs' key")
		return nil, foundation.Invalid(errs...)
	}

	cfg := &Config{}

	repo := mappingValue(docs, "repo")
	if repo == nil || repo.Kind != yaml.ScalarNode || repo.Tag != "!!str" || repo.Value == "" {
		fail("docs.repo", "missing", "missing 'repo' under 'docs'")
	} else {
		cfg.Docs.Repo = repo.Value
	}

	versions := mappingValue(docs, "versions")
	if versions == nil || versions.Kind != yaml.MappingNode || len(versions.Content) == 0 {
		fail("docs.versions", "missing", "missing or empty 'versions' under 'docs'")
	} else {
		for i := 0; i+1 < len(versions.Content); i += 2 {
			key, val := versions.Content[i], versions.Content[i+1]
			if key.Kind != yaml.ScalarNode || key.Tag != "!!str" {
				fail("docs.versions", "invalid_version",
					fmt.Sprintf("versions have to be strings, invalid version: %s", key.Value))
				continue
			}
			packages, ok := packageList(key.Value, val, fail)
			if !ok {
				continue
			}
			cfg.Docs.Versions = append(cfg.Docs.Versions, VersionSpec{
				Name:     key.Value,
				Packages: packages,
			})
		}
	}

	if len(errs) > 0 {
		return nil, foundation.Invalid(errs...)
	}
	return cfg, foundation.Valid()
}

// packageList normalizes one version's value node: absent/null means discover,
// a bare string is a singleton list, a sequence must contain only strings.
func packageList(version string, val *yaml.Node, fail func(field, code, message string)) ([]string, bool) {
	field := "docs.versions." + version
	switch {
	case val == nil || val.Tag == "!!null":
		return nil, true
	case val.Kind == yaml.ScalarNode && val.Tag == "!!str":
		return []string{val.Value}, true
	case val.Kind == yaml.SequenceNode:
		packages := make([]string, 0, len(val.Content))
		for _, item := range val.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				fail(field, "invalid_package",
					fmt.Sprintf("packages have to be strings, invalid package: %s", item.Value))
				return nil, false
			}
			packages = append(packages, item.Value)
		}
		return packages, true
	default:
		fail(field, "invalid_package", "packages have to be a string or a list of strings")
		return nil, false
	}
}

// documentRoot unwraps the document node produced by yaml.Unmarshal into a
// *yaml.Node, returning nil for an empty document.
func documentRoot(doc *yaml.Node) *yaml.Node {
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil
	}
	return doc.Content[0]
}

// mappingValue returns the value node for a key in a mapping node, or nil.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}
