// Package templates renders resolved documents through named text/template
// files, exposing page metadata, site settings, data sets and translations.
package templates

import (
	"bytes"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/sitedata"
)

const (
	// DefaultTemplatesDir is the templates directory below the source root.
	DefaultTemplatesDir = "templates"
	// DefaultDataDir is the data directory below the source root.
	DefaultDataDir = "_data"
	// DefaultLayout is used when a document does not name a layout.
	DefaultLayout = "default"

	templateExt = ".html"
)

// Context keys visible to templates.
const (
	KeyPage         = "page"
	KeyContent      = "content"
	KeySite         = "site"
	KeyData         = "data"
	KeyLang         = "lang"
	KeyTranslations = "t"
	KeyLanguageURLs = "language_urls"
)

// Context is the data a template executes against.
type Context map[string]any

// Renderer holds the compiled template set and the data table. Both are
// read-only after New, so one Renderer can serve concurrent render calls.
type Renderer struct {
	set     *template.Template
	data    sitedata.Table
	native  map[string]any
	logger  *slog.Logger
	tmplDir string
	dataDir string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithTemplatesDir overrides the templates directory. Relative paths are
// resolved against the source root.
func WithTemplatesDir(dir string) Option {
	return func(r *Renderer) { r.tmplDir = dir }
}

// WithDataDir overrides the data directory. Relative paths are resolved
// against the source root.
func WithDataDir(dir string) Option {
	return func(r *Renderer) { r.dataDir = dir }
}

// New loads templates and data for the site rooted at sourceRoot.
//
// A missing or unparsable templates directory is logged as a warning and
// leaves the renderer with an empty template set. A malformed data file
// fails construction.
func New(sourceRoot string, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		tmplDir: DefaultTemplatesDir,
		dataDir: DefaultDataDir,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	r.tmplDir = underRoot(sourceRoot, r.tmplDir)
	r.dataDir = underRoot(sourceRoot, r.dataDir)

	set, err := loadTemplates(r.tmplDir)
	if err != nil {
		warning := errors.TemplateLoadWarning(r.tmplDir, err)
		r.logger.Warn(warning.Message(),
			logfields.Dir(r.tmplDir),
			slog.String("category", string(warning.Category())),
			logfields.Error(err))
		set = emptySet()
	}
	r.set = set

	data, err := sitedata.Load(r.dataDir, r.logger)
	if err != nil {
		return nil, err
	}
	r.data = data
	r.native = data.Native()

	r.logger.Debug("Renderer ready",
		logfields.Count(len(r.Templates())),
		slog.Int("data_sets", len(data)))
	return r, nil
}

func underRoot(root, dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(root, dir)
}

// emptySet returns a set with the helpers registered. Absent map keys keep
// the engine default so `{{ if .t }}` and `{{ with .page.description }}`
// guard optional values; invalid field access still fails execution.
func emptySet() *template.Template {
	return template.New("").Funcs(helperFuncs()).Option("missingkey=default")
}

// loadTemplates parses every *.html file below dir into one set, naming each
// by its slash-separated path relative to dir.
func loadTemplates(dir string) (*template.Template, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	set := emptySet()
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), templateExt) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		body, err := os.ReadFile(path) // #nosec G304 -- path comes from walking the templates dir
		if err != nil {
			return err
		}
		if _, err := set.New(filepath.ToSlash(rel)).Parse(string(body)); err != nil {
			return fmt.Errorf("parse template %s: %w", rel, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// Templates lists the loaded template names in sorted order.
func (r *Renderer) Templates() []string {
	var names []string
	for _, t := range r.set.Templates() {
		if t.Name() != "" {
			names = append(names, t.Name())
		}
	}
	sort.Strings(names)
	return names
}

// ContextFor assembles the render context for doc. The `t` key is present
// only when the data table carries translations for the document language.
func (r *Renderer) ContextFor(doc *content.Document, site any) Context {
	ctx := Context{
		KeyPage:         doc.FrontMatter.Fields(),
		KeyContent:      doc.HTMLContent,
		KeySite:         site,
		KeyData:         r.native,
		KeyLang:         doc.Language,
		KeyLanguageURLs: doc.LanguageURLs(),
	}
	if tr, ok := r.data.Translations(doc.Language); ok {
		ctx[KeyTranslations] = tr.Interface()
	}
	return ctx
}

// RenderContent renders doc through the template named by its layout, or
// "default" when the front matter has none.
func (r *Renderer) RenderContent(doc *content.Document, site any) (string, error) {
	layout := doc.FrontMatter.LayoutOr(DefaultLayout)
	name := layout + templateExt

	r.logger.Debug("Rendering document",
		logfields.RelPath(doc.RelativePath),
		logfields.Layout(layout),
		logfields.Template(name))

	return r.RenderPage(name, r.ContextFor(doc, site))
}

// RenderPage renders the named template against a caller-built context.
func (r *Renderer) RenderPage(name string, ctx Context) (string, error) {
	tmpl := r.set.Lookup(name)
	if tmpl == nil {
		return "", errors.TemplateError(name, fmt.Errorf("template %q not found", name))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, map[string]any(ctx)); err != nil {
		return "", errors.TemplateError(name, err)
	}
	return buf.String(), nil
}
