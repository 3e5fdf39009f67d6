package config

import (
	"path/filepath"

	"golang.org/x/text/language"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// validate checks settings that defaults cannot repair and canonicalizes
// enum-like values.
func validate(cfg *Config) error {
	for field, tag := range map[string]string{
		"content.default_language": cfg.Content.DefaultLanguage,
		"site.language":            cfg.Site.Language,
	} {
		if _, err := language.Parse(tag); err != nil {
			return errors.WrapError(err, errors.CategoryConfig, "invalid language tag").
				WithContext("field", field).
				WithContext("value", tag).
				Fatal().
				UserAction().
				Build()
		}
	}

	level, err := logLevelNormalizer.Parse(string(cfg.Logging.Level))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid logging.level").
			Fatal().
			UserAction().
			Build()
	}
	cfg.Logging.Level = level

	format, err := logFormatNormalizer.Parse(string(cfg.Logging.Format))
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid logging.format").
			Fatal().
			UserAction().
			Build()
	}
	cfg.Logging.Format = format

	if filepath.Clean(cfg.Output.Directory) == filepath.Clean(cfg.Content.SourceDir) {
		return errors.ConfigError("output.directory must differ from content.source_dir").
			WithContext("value", cfg.Output.Directory).
			Build()
	}
	return nil
}
