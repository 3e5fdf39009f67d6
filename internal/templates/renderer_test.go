package templates

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

func write(t *testing.T, root, rel, body string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func resolve(t *testing.T, root, rel, body string) *content.Document {
	t.Helper()
	doc, err := content.Resolve(write(t, root, rel, body), root)
	require.NoError(t, err)
	return doc
}

func TestRenderContent_DefaultLayoutAndContext(t *testing.T) {
	root := t.TempDir()
	write(t, root, "templates/default.html",
		`<title>{{ .page.title }} | {{ .site.title }}</title>{{ .content }}<p>{{ .lang }} {{ index .language_urls "en" }}</p>`)
	doc := resolve(t, root, "_pages/about.md", "---\ntitle: About\n---\n# Hi\n")

	r, err := New(root)
	require.NoError(t, err)

	out, err := r.RenderContent(doc, map[string]any{"title": "Site"})
	require.NoError(t, err)
	assert.Equal(t, "<title>About | Site</title><h1>Hi</h1>\n<p>en /about/</p>", out)
}

func TestRenderContent_LayoutFromFrontMatter(t *testing.T) {
	root := t.TempDir()
	write(t, root, "templates/default.html", "default")
	write(t, root, "templates/post.html", `post:{{ .page.weight }}`)
	doc := resolve(t, root, "a.md", "---\nlayout: post\nweight: 4\n---\nx\n")

	r, err := New(root)
	require.NoError(t, err)

	out, err := r.RenderContent(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "post:4", out)
}

func TestRenderContent_Translations(t *testing.T) {
	root := t.TempDir()
	write(t, root, "templates/default.html", `{{ .t.greeting }}`)
	write(t, root, "templates/plain.html", `{{ if .t }}has t{{ else }}no t{{ end }}`)
	doc := resolve(t, root, "index.md", "hello\n")

	t.Run("present", func(t *testing.T) {
		write(t, root, "_data/translations.yml", "en:\n  greeting: Hello\n")
		r, err := New(root)
		require.NoError(t, err)

		out, err := r.RenderContent(doc, nil)
		require.NoError(t, err)
		assert.Equal(t, "Hello", out)
	})

	t.Run("absent for language", func(t *testing.T) {
		write(t, root, "_data/translations.yml", "fr:\n  greeting: Bonjour\n")
		r, err := New(root)
		require.NoError(t, err)

		ctx := r.ContextFor(doc, nil)
		assert.NotContains(t, ctx, KeyTranslations)

		out, err := r.RenderPage("plain.html", ctx)
		require.NoError(t, err)
		assert.Equal(t, "no t", out)
	})
}

func TestRenderContent_GuardsOnAbsentKeys(t *testing.T) {
	root := t.TempDir()
	write(t, root, "templates/default.html",
		`{{ if .t }}{{ .t.hi }}{{ else }}no t{{ end }}|{{ with .page.description }}{{ . }}{{ else }}no description{{ end }}`)
	doc := resolve(t, root, "index.md", "---\ntitle: Home\n---\nx\n")

	r, err := New(root)
	require.NoError(t, err)
	require.Empty(t, r.data)

	out, err := r.RenderContent(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "no t|no description", out)
}

func TestRenderContent_UntitledPagePrintsEmptyTitle(t *testing.T) {
	root := t.TempDir()
	write(t, root, "templates/default.html",
		`<title>{{ .page.title }}</title>{{ if .page.lang }}lang{{ end }}<body class="{{ .page.layout }}">`)
	doc := resolve(t, root, "plain.md", "no front matter\n")

	r, err := New(root)
	require.NoError(t, err)

	out, err := r.RenderContent(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, `<title></title><body class="">`, out)
	assert.NotContains(t, out, "<no value>")
}

func TestRenderContent_MissingTemplateIsTemplateError(t *testing.T) {
	root := t.TempDir()
	write(t, root, "templates/default.html", "ok")
	doc := resolve(t, root, "a.md", "---\nlayout: missing\n---\nx\n")

	r, err := New(root)
	require.NoError(t, err)

	_, err = r.RenderContent(doc, nil)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTemplate))
	assert.Contains(t, err.Error(), "missing.html")
}

func TestRenderPage_InvalidExpressionIsTemplateError(t *testing.T) {
	root := t.TempDir()
	write(t, root, "templates/list.html", `{{ .title.nope }}`)

	r, err := New(root)
	require.NoError(t, err)

	_, err = r.RenderPage("list.html", Context{"title": "plain string"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestRenderPage_NestedNamesAndIncludes(t *testing.T) {
	root := t.TempDir()
	write(t, root, "templates/partials/nav.html", `<nav>{{ range .items }}[{{ . }}]{{ end }}</nav>`)
	write(t, root, "templates/index.html", `{{ template "partials/nav.html" . }}`)
	write(t, root, "templates/notes.txt", `not a template`)

	r, err := New(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"index.html", "partials/nav.html"}, r.Templates())

	out, err := r.RenderPage("index.html", Context{"items": []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, "<nav>[a][b]</nav>", out)
}

func TestNew_MissingTemplatesDirDegrades(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	r, err := New(t.TempDir(), WithLogger(logger))
	require.NoError(t, err)
	assert.Empty(t, r.Templates())
	assert.Contains(t, logs.String(), "category=template_load")

	_, err = r.RenderPage("default.html", Context{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryTemplate))
}

func TestNew_MalformedTemplateDegradesToEmptySet(t *testing.T) {
	root := t.TempDir()
	write(t, root, "templates/good.html", "fine")
	write(t, root, "templates/bad.html", "{{ if }}")

	r, err := New(root, WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))
	require.NoError(t, err)
	assert.Empty(t, r.Templates())
}

func TestNew_MalformedDataFails(t *testing.T) {
	root := t.TempDir()
	write(t, root, "_data/site.json", "{broken")

	_, err := New(root)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryData))
}

func TestNew_CustomDirs(t *testing.T) {
	root := t.TempDir()
	write(t, root, "layouts/default.html", `{{ index .data.menu 0 }}`)
	write(t, root, "data/menu.json", `["home"]`)
	doc := resolve(t, root, "index.md", "x\n")

	r, err := New(root, WithTemplatesDir("layouts"), WithDataDir(filepath.Join(root, "data")))
	require.NoError(t, err)

	out, err := r.RenderContent(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, "home", out)
}

func TestRenderer_ConcurrentRenders(t *testing.T) {
	root := t.TempDir()
	write(t, root, "templates/default.html", `{{ .page.title }}`)
	doc := resolve(t, root, "a.md", "---\ntitle: Same\n---\nx\n")

	r, err := New(root)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := r.RenderContent(doc, nil)
			assert.NoError(t, err)
			results[i] = out
		}(i)
	}
	wg.Wait()
	for _, out := range results {
		assert.Equal(t, "Same", out)
	}
}
