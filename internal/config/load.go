package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/christophebedard/gen-docs/internal/errors"
	"github.com/christophebedard/gen-docs/internal/logfields"
)

// Raw is a parsed but not yet validated configuration document.
type Raw struct {
	doc yaml.Node
}

// Load reads and parses the configuration file. Environment variables from
// .env/.env.local are loaded first (without overriding the process
// environment), and variable references in the YAML content are expanded.
// Validation is a separate step; see Validate.
func Load(path string) (*Raw, error) {
	loadEnvFile()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryConfig, "failed to read configuration file")
	}

	expanded := os.ExpandEnv(string(data))

	var raw Raw
	if err := yaml.Unmarshal([]byte(expanded), &raw.doc); err != nil {
		return nil, errors.WrapFatal(err, errors.CategoryConfig, "failed to parse configuration file")
	}
	return &raw, nil
}

// loadEnvFile loads environment variables from .env/.env.local files.
// It attempts each supported filename in order and stops at the first one
// that parses. Existing process environment variables are not overwritten.
func loadEnvFile() {
	for _, envPath := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envPath); err == nil {
			slog.Debug("Loaded environment variables", logfields.Path(envPath))
			return
		}
	}
}
