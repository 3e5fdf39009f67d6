package content

import (
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/pagesmith/internal/frontmatter"
)

// Collection names.
const (
	CollectionPages = "pages"
)

// DefaultLanguage is the language tag assigned when none is configured.
const DefaultLanguage = "en"

const indexStem = "index"

// Document represents one resolved content file
type Document struct {
	Path         string                  // Absolute path to the source file
	RelativePath string                  // Path relative to the source root
	FrontMatter  frontmatter.FrontMatter // Parsed metadata block
	Content      string                  // Markdown body with the front matter removed
	HTMLContent  string                  // Body converted to HTML
	Collection   string                  // "pages" for files under the pages directory, empty otherwise
	Language     string                  // Language tag
	Fingerprint  string                  // Hash of canonical front matter and body
}

// Stem returns the file name without its extension.
func (d *Document) Stem() string {
	base := filepath.Base(d.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// URL returns the public URL: "/" for index files and "/<stem>/" otherwise.
func (d *Document) URL() string {
	stem := d.Stem()
	if stem == indexStem {
		return "/"
	}
	return "/" + stem + "/"
}

// OutputPath returns the output file location relative to the output root,
// using forward slashes.
func (d *Document) OutputPath() string {
	stem := d.Stem()
	if stem == indexStem {
		return "index.html"
	}
	return stem + "/index.html"
}

// LanguageURLs maps each available language to the document URL.
func (d *Document) LanguageURLs() map[string]string {
	return map[string]string{d.Language: d.URL()}
}
