package templates

import (
	"strings"
	"text/template"
)

// helperFuncs are the functions available to every template. The piped value
// is the last argument, so `{{ .page.link | relative_url "/blog" }}` works.
func helperFuncs() template.FuncMap {
	return template.FuncMap{
		"escape":       escape,
		"relative_url": relativeURL,
		"absolute_url": absoluteURL,
	}
}

// escape HTML-escapes strings; other values are returned unchanged.
func escape(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return template.HTMLEscapeString(s)
}

// relativeURL prefixes root-relative strings with base.
func relativeURL(base string, v any) any {
	s, ok := v.(string)
	if !ok || !strings.HasPrefix(s, "/") {
		return v
	}
	return base + s
}

// absoluteURL prefixes any string with siteURL.
func absoluteURL(siteURL string, v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	return siteURL + s
}
