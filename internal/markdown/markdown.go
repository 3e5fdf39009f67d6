// Package markdown converts Markdown bodies to HTML.
//
// Conversion is CommonMark plus strikethrough, footnotes, tables and task
// lists. Raw HTML in the source passes through unchanged unless a sanitizer
// is enabled.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Converter renders Markdown to HTML. It is safe for concurrent use.
type Converter struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// Option configures a Converter.
type Option func(*Converter)

// WithSanitizer filters the rendered HTML through a user-generated-content
// policy that also keeps task list checkboxes.
func WithSanitizer() Option {
	return func(c *Converter) {
		p := bluemonday.UGCPolicy()
		p.AllowElements("input")
		p.AllowAttrs("type", "checked", "disabled").OnElements("input")
		p.AllowAttrs("class").Globally()
		c.policy = p
	}
}

// New builds a Converter.
func New(opts ...Option) *Converter {
	c := &Converter{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.Strikethrough,
				extension.Footnote,
				extension.Table,
				extension.TaskList,
			),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert renders body to an HTML fragment.
func (c *Converter) Convert(body []byte) (string, error) {
	var buf bytes.Buffer
	if err := c.md.Convert(body, &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	if c.policy != nil {
		return c.policy.Sanitize(buf.String()), nil
	}
	return buf.String(), nil
}
