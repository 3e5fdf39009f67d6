package config

// Default values.
const (
	DefaultSiteTitle       = "My Site"
	DefaultSourceDir       = "."
	DefaultPagesDir        = "_pages"
	DefaultLanguage        = "en"
	DefaultTemplatesDir    = "templates"
	DefaultDataDir         = "_data"
	DefaultOutputDirectory = "./public"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := base()
	applyDefaults(cfg)
	return cfg
}

// base holds the defaults that cannot be told apart from an explicit zero
// value after decoding. Parse decodes on top of it.
func base() *Config {
	return &Config{
		Output: OutputConfig{
			Clean:    true,
			Manifest: true,
		},
	}
}

// applyDefaults fills settings left empty by the file.
func applyDefaults(cfg *Config) {
	if cfg.Site.Title == "" {
		cfg.Site.Title = DefaultSiteTitle
	}

	if cfg.Content.SourceDir == "" {
		cfg.Content.SourceDir = DefaultSourceDir
	}
	if cfg.Content.PagesDir == "" {
		cfg.Content.PagesDir = DefaultPagesDir
	}
	if cfg.Content.DefaultLanguage == "" {
		cfg.Content.DefaultLanguage = DefaultLanguage
	}
	if cfg.Site.Language == "" {
		cfg.Site.Language = cfg.Content.DefaultLanguage
	}

	if cfg.Templates.Dir == "" {
		cfg.Templates.Dir = DefaultTemplatesDir
	}
	if cfg.Templates.DataDir == "" {
		cfg.Templates.DataDir = DefaultDataDir
	}

	if cfg.Output.Directory == "" {
		cfg.Output.Directory = DefaultOutputDirectory
	}

	if cfg.Build.Workers < 0 {
		cfg.Build.Workers = 0
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	}
}
