// Package content resolves source files into Documents: front matter, raw
// Markdown body, converted HTML and derived locators.
package content

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/frontmatter"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
)

// DefaultPagesDir is the source directory whose files form the pages collection.
const DefaultPagesDir = "_pages"

// Resolver turns content files into Documents. It holds no mutable state and
// is safe for concurrent use.
type Resolver struct {
	converter    *markdown.Converter
	logger       *slog.Logger
	pagesDir     string
	language     string
	narrowFloats bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConverter sets the Markdown converter.
func WithConverter(c *markdown.Converter) Option {
	return func(r *Resolver) { r.converter = c }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// WithPagesDir sets the first path component that marks the pages collection.
func WithPagesDir(dir string) Option {
	return func(r *Resolver) { r.pagesDir = dir }
}

// WithDefaultLanguage sets the language tag given to every document.
func WithDefaultLanguage(tag string) Option {
	return func(r *Resolver) { r.language = tag }
}

// WithFloatNarrowing truncates floating point front matter values to integers.
func WithFloatNarrowing() Option {
	return func(r *Resolver) { r.narrowFloats = true }
}

// NewResolver creates a Resolver with the given options.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		pagesDir: DefaultPagesDir,
		language: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.converter == nil {
		r.converter = markdown.New()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

var defaultResolver = NewResolver()

// Resolve resolves path against sourceRoot with the default settings.
func Resolve(path, sourceRoot string) (*Document, error) {
	return defaultResolver.Resolve(path, sourceRoot)
}

// Resolve reads the file at path and builds its Document.
//
// Errors are ClassifiedErrors: category io when the file cannot be read,
// parse for malformed front matter YAML and path when path is not located
// under sourceRoot.
func (r *Resolver) Resolve(path, sourceRoot string) (*Document, error) {
	raw, err := os.ReadFile(path) // #nosec G304 -- content paths come from the build driver or CLI
	if err != nil {
		return nil, errors.IoError(path, err)
	}

	fmRaw, body, had, err := frontmatter.Split(raw)
	if err != nil {
		if !stderrors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
			return nil, errors.ParseError(path, err)
		}
		r.logger.Debug("Front matter delimiter not closed, treating file as body",
			logfields.Path(path))
		fmRaw, body, had = nil, raw, false
	}

	var extractOpts []frontmatter.Option
	if r.narrowFloats {
		extractOpts = append(extractOpts, frontmatter.WithFloatNarrowing())
	}

	fm := frontmatter.FrontMatter{}
	if had {
		fm, err = frontmatter.Parse(fmRaw, extractOpts...)
		if err != nil {
			return nil, errors.ParseError(path, err)
		}
	}

	htmlContent, err := r.converter.Convert(body)
	if err != nil {
		// goldmark only fails on writer errors, which a bytes.Buffer never returns.
		return nil, errors.WrapError(err, errors.CategoryInternal, "markdown conversion failed").
			WithContext("path", path).
			Build()
	}

	absPath, relPath, err := relativeTo(path, sourceRoot)
	if err != nil {
		return nil, errors.PathError(path, sourceRoot, err)
	}

	fingerprint, err := frontmatter.Fingerprint(fm, body)
	if err != nil {
		return nil, errors.ParseError(path, err)
	}

	doc := &Document{
		Path:         absPath,
		RelativePath: relPath,
		FrontMatter:  fm,
		Content:      string(body),
		HTMLContent:  htmlContent,
		Collection:   r.collectionFor(relPath),
		Language:     r.language,
		Fingerprint:  fingerprint,
	}

	r.logger.Debug("Resolved content file",
		logfields.RelPath(relPath),
		logfields.Collection(doc.Collection),
		logfields.Language(doc.Language))

	return doc, nil
}

func (r *Resolver) collectionFor(relPath string) string {
	first, _, _ := strings.Cut(filepath.ToSlash(relPath), "/")
	if r.pagesDir != "" && first == r.pagesDir {
		return CollectionPages
	}
	return ""
}

// relativeTo returns the absolute form of path and its location relative to
// root. Both are made absolute first so mixed inputs compare correctly.
func relativeTo(path, root string) (string, string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", "", err
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", "", err
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return "", "", err
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", "", fmt.Errorf("%s is not under %s", absPath, absRoot)
	}
	return absPath, rel, nil
}
