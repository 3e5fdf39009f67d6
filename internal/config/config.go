// Package config loads the pagesmith site configuration.
package config

import (
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "config.yaml"

// Config represents the complete site configuration
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Content   ContentConfig   `yaml:"content"`
	Templates TemplatesConfig `yaml:"templates"`
	Output    OutputConfig    `yaml:"output"`
	Build     BuildConfig     `yaml:"build"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ContentConfig controls content resolution.
type ContentConfig struct {
	SourceDir       string `yaml:"source_dir"`       // Root of the content tree
	PagesDir        string `yaml:"pages_dir"`        // First path component of the pages collection
	DefaultLanguage string `yaml:"default_language"` // BCP 47 tag given to every document
	Sanitize        bool   `yaml:"sanitize"`         // Filter rendered Markdown through bluemonday
	NarrowFloats    bool   `yaml:"narrow_floats"`    // Truncate float front matter values to integers
}

// TemplatesConfig locates templates and data files. Relative paths are
// resolved against the source directory.
type TemplatesConfig struct {
	Dir     string `yaml:"dir"`
	DataDir string `yaml:"data_dir"`
}

// OutputConfig represents output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
	Clean     bool   `yaml:"clean"`    // Clean output directory before build
	Manifest  bool   `yaml:"manifest"` // Write manifest.json next to the pages
}

// BuildConfig controls the build driver.
type BuildConfig struct {
	Workers  int  `yaml:"workers"`   // 0 means one per CPU
	FailFast bool `yaml:"fail_fast"` // Abort on the first failing document
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Load reads the configuration file at path.
//
// .env and .env.local are loaded first without overriding the process
// environment, then ${VAR} references in the file are expanded. Defaults are
// applied before validation.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path) // #nosec G304 -- config path is user supplied
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").
				WithContext("path", path).
				Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", path).
			Fatal().
			Build()
	}

	cfg, err := Parse(data)
	if err != nil {
		if ce, ok := errors.AsClassified(err); ok {
			return nil, ce.WithContext("path", path)
		}
		return nil, err
	}

	slog.Debug("Loaded configuration", logfields.Path(path))
	return cfg, nil
}

// Parse decodes raw YAML, expanding environment references, applying defaults
// and validating the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := base()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").
			Fatal().
			UserAction().
			Build()
	}

	applyDefaults(cfg)
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
