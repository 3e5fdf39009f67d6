package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Init writes an example configuration file to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
	}

	example := Default()
	example.Site = SiteConfig{
		Title:       "My Site",
		Description: "Built with pagesmith",
		BaseURL:     "",
		URL:         "https://example.com",
		Language:    DefaultLanguage,
		Params: map[string]any{
			"author": "${SITE_AUTHOR}",
		},
	}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
