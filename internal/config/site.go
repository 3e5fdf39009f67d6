package config

// SiteConfig is the site-wide configuration handed to templates as `site`.
type SiteConfig struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description,omitempty"`
	BaseURL     string         `yaml:"base_url,omitempty"` // Path prefix for relative_url, e.g. "/blog"
	URL         string         `yaml:"url,omitempty"`      // Scheme and host for absolute_url
	Language    string         `yaml:"language,omitempty"`
	Params      map[string]any `yaml:"params,omitempty"`
}

// Map exposes the site settings to templates under their YAML names.
// Params is never nil so templates can index into it safely.
func (s SiteConfig) Map() map[string]any {
	params := s.Params
	if params == nil {
		params = map[string]any{}
	}
	return map[string]any{
		"title":       s.Title,
		"description": s.Description,
		"base_url":    s.BaseURL,
		"url":         s.URL,
		"language":    s.Language,
		"params":      params,
	}
}
