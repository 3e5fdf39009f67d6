package frontmatter

import (
	"fmt"

	"git.home.luguber.info/inful/pagesmith/internal/value"
)

// Keys pulled out of the front matter into first-class fields.
const (
	KeyTitle  = "title"
	KeyLayout = "layout"
	KeyLang   = "lang"
)

// FrontMatter is the metadata block of a content file.
//
// Title, Layout and Lang are nil when the key is absent or does not hold a
// string. Extra holds every other top-level key and never contains the three
// recognized keys.
type FrontMatter struct {
	Title  *string
	Layout *string
	Lang   *string
	Extra  value.Map
}

// Option tunes front matter extraction.
type Option func(*extractOptions)

type extractOptions struct {
	narrowFloats bool
}

// WithFloatNarrowing truncates floating point extras to integers.
func WithFloatNarrowing() Option {
	return func(o *extractOptions) { o.narrowFloats = true }
}

// Extract walks the top level of fields. Recognized keys are kept only when
// their value is a string; a recognized key with any other value is dropped.
func Extract(fields map[string]any, opts ...Option) (FrontMatter, error) {
	var o extractOptions
	for _, opt := range opts {
		opt(&o)
	}

	fm := FrontMatter{Extra: value.Map{}}
	for key, raw := range fields {
		switch key {
		case KeyTitle:
			fm.Title = stringField(raw)
		case KeyLayout:
			fm.Layout = stringField(raw)
		case KeyLang:
			fm.Lang = stringField(raw)
		default:
			v, err := value.FromAny(raw)
			if err != nil {
				return FrontMatter{}, fmt.Errorf("front matter key %q: %w", key, err)
			}
			if o.narrowFloats {
				v = value.Narrow(v)
			}
			fm.Extra[key] = v
		}
	}
	return fm, nil
}

// Parse parses a raw YAML block and extracts a FrontMatter from it.
func Parse(raw []byte, opts ...Option) (FrontMatter, error) {
	fields, err := ParseYAML(raw)
	if err != nil {
		return FrontMatter{}, err
	}
	return Extract(fields, opts...)
}

func stringField(raw any) *string {
	s, ok := raw.(string)
	if !ok {
		return nil
	}
	return &s
}

// LayoutOr returns the layout name, or def when none is set.
func (fm FrontMatter) LayoutOr(def string) string {
	if fm.Layout == nil {
		return def
	}
	return *fm.Layout
}

// Fields flattens the front matter into the map exposed to templates as `page`.
// Extras come first; title, layout and lang are always present and empty when
// unset, so they print as nothing and test false.
func (fm FrontMatter) Fields() map[string]any {
	out := make(map[string]any, len(fm.Extra)+3)
	for k, v := range fm.Extra {
		out[k] = v.Interface()
	}
	out[KeyTitle] = optional(fm.Title)
	out[KeyLayout] = optional(fm.Layout)
	out[KeyLang] = optional(fm.Lang)
	return out
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
