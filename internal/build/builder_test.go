package build

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/manifest"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

type countingRecorder struct {
	mu       sync.Mutex
	results  map[metrics.ResultLabel]int
	outcomes map[metrics.BuildOutcomeLabel]int
	stages   map[metrics.Stage]int
	workers  int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{
		results:  map[metrics.ResultLabel]int{},
		outcomes: map[metrics.BuildOutcomeLabel]int{},
		stages:   map[metrics.Stage]int{},
	}
}

func (c *countingRecorder) ObserveStageDuration(s metrics.Stage, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stages[s]++
}

func (c *countingRecorder) IncDocumentResult(r metrics.ResultLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[r]++
}

func (c *countingRecorder) ObserveBuildDuration(time.Duration) {}

func (c *countingRecorder) IncBuildOutcome(o metrics.BuildOutcomeLabel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[o]++
}

func (c *countingRecorder) SetWorkers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workers = n
}

func write(t *testing.T, root, rel, body string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func testSite(t *testing.T) (*config.Config, string) {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	write(t, src, "templates/default.html", `<h2>{{ .page.title }}</h2>{{ .content }}`)
	write(t, src, "templates/page.html", `<main lang="{{ .lang }}">{{ .content }}</main><a href="{{ "/about/" | relative_url .site.base_url }}">a</a>`)
	write(t, src, "_data/translations.yml", "en:\n  home: Home\n")
	write(t, src, "index.md", "---\ntitle: Welcome\n---\nHello\n")
	write(t, src, "_pages/about.md", "---\ntitle: About\nlayout: page\n---\n# Hi\n")
	write(t, src, "posts/first.markdown", "---\ntitle: First\n---\n*one*\n")
	write(t, src, ".hidden/secret.md", "nope\n")
	write(t, src, "templates/notes.md", "not content\n")

	cfg := config.Default()
	cfg.Content.SourceDir = src
	cfg.Output.Directory = filepath.Join(root, "public")
	cfg.Site.BaseURL = "/blog"
	cfg.Build.Workers = 2
	return cfg, root
}

func TestRun_BuildsSite(t *testing.T) {
	cfg, root := testSite(t)
	rec := newCountingRecorder()

	report, err := New(cfg, WithLogger(quietLogger()), WithRecorder(rec)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, report.Status)
	assert.Equal(t, 3, report.Written())
	assert.NotEmpty(t, report.BuildID)

	out := filepath.Join(root, "public")
	index, err := os.ReadFile(filepath.Join(out, "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h2>Welcome</h2><p>Hello</p>\n", string(index))

	about, err := os.ReadFile(filepath.Join(out, "about", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, `<main lang="en"><h1>Hi</h1>`+"\n"+`</main><a href="/blog/about/">a</a>`, string(about))

	_, err = os.Stat(filepath.Join(out, "first", "index.html"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(out, "secret", "index.html"))
	assert.True(t, os.IsNotExist(err), "hidden directories are skipped")
	_, err = os.Stat(filepath.Join(out, "notes", "index.html"))
	assert.True(t, os.IsNotExist(err), "templates directory is not content")

	m, err := manifest.Read(filepath.Join(out, manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, report.BuildID, m.ID)
	require.Len(t, m.Documents, 3)
	assert.Equal(t, "_pages/about.md", m.Documents[0].Source)
	assert.Equal(t, "pages", m.Documents[0].Collection)
	assert.Equal(t, "page", m.Documents[0].Layout)
	assert.Equal(t, "/about/", m.Documents[0].URL)
	assert.Equal(t, m.Hash(), m.ContentHash)

	assert.Equal(t, 3, rec.results[metrics.ResultSuccess])
	assert.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeSuccess])
	assert.Equal(t, 3, rec.stages[metrics.StageWrite])
	assert.Equal(t, 2, rec.workers)
}

func TestRun_PartialFailureIsReported(t *testing.T) {
	cfg, root := testSite(t)
	write(t, cfg.Content.SourceDir, "broken.md", "---\ntitle: [unclosed\n---\nx\n")
	write(t, cfg.Content.SourceDir, "nolayout.md", "---\nlayout: missing\n---\nx\n")
	rec := newCountingRecorder()

	report, err := New(cfg, WithLogger(quietLogger()), WithRecorder(rec)).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StatusPartial, report.Status)
	failures := report.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "broken.md", failures[0].Source)
	assert.True(t, errors.HasCategory(failures[0].Err, errors.CategoryParse))
	assert.Equal(t, "nolayout.md", failures[1].Source)
	assert.True(t, errors.HasCategory(failures[1].Err, errors.CategoryTemplate))

	m, err := manifest.Read(filepath.Join(root, "public", manifest.FileName))
	require.NoError(t, err)
	assert.Len(t, m.Documents, 3)
	assert.Equal(t, 2, rec.results[metrics.ResultFailed])
	assert.Equal(t, 1, rec.outcomes[metrics.BuildOutcomePartial])
}

func TestRun_FailFastReturnsFirstError(t *testing.T) {
	cfg, _ := testSite(t)
	cfg.Build.FailFast = true
	cfg.Build.Workers = 1
	write(t, cfg.Content.SourceDir, "broken.md", "---\ntitle: [unclosed\n---\nx\n")

	report, err := New(cfg, WithLogger(quietLogger())).Run(context.Background())
	require.Error(t, err)
	require.NotNil(t, report)
	assert.True(t, errors.HasCategory(err, errors.CategoryParse))
}

func TestRun_OutputCollision(t *testing.T) {
	cfg, _ := testSite(t)
	write(t, cfg.Content.SourceDir, "posts/about.md", "---\ntitle: Other about\n---\nx\n")

	report, err := New(cfg, WithLogger(quietLogger())).Run(context.Background())
	require.NoError(t, err)

	failures := report.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "posts/about.md", failures[0].Source)
	assert.True(t, errors.HasCategory(failures[0].Err, errors.CategoryBuild))
	assert.Contains(t, failures[0].Err.Error(), "_pages/about.md")
}

func TestRun_MalformedDataStopsBuild(t *testing.T) {
	cfg, _ := testSite(t)
	write(t, cfg.Content.SourceDir, "_data/broken.json", "{")
	rec := newCountingRecorder()

	report, err := New(cfg, WithLogger(quietLogger()), WithRecorder(rec)).Run(context.Background())
	require.Error(t, err)
	assert.Nil(t, report)
	assert.True(t, errors.HasCategory(err, errors.CategoryData))
	assert.Equal(t, 1, rec.outcomes[metrics.BuildOutcomeFailed])
}

func TestRun_CanceledContext(t *testing.T) {
	cfg, _ := testSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := New(cfg, WithLogger(quietLogger())).Run(ctx)
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, StatusCanceled, report.Status)
	assert.Equal(t, 0, report.Written())
	assert.True(t, errors.HasCategory(err, errors.CategoryRuntime))
}

func TestRun_RefusesOutputAboveSource(t *testing.T) {
	cfg, root := testSite(t)
	cfg.Output.Directory = root

	_, err := New(cfg, WithLogger(quietLogger())).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
	_, statErr := os.Stat(filepath.Join(cfg.Content.SourceDir, "index.md"))
	require.NoError(t, statErr, "source must survive")
}

func TestRun_CleanRemovesStaleFiles(t *testing.T) {
	cfg, root := testSite(t)
	stale := filepath.Join(root, "public", "stale.html")
	write(t, filepath.Join(root, "public"), "stale.html", "old")

	_, err := New(cfg, WithLogger(quietLogger())).Run(context.Background())
	require.NoError(t, err)
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))

	cfg.Output.Clean = false
	cfg.Output.Manifest = false
	write(t, filepath.Join(root, "public"), "stale.html", "old")
	require.NoError(t, os.Remove(filepath.Join(root, "public", manifest.FileName)))

	_, err = New(cfg, WithLogger(quietLogger())).Run(context.Background())
	require.NoError(t, err)
	_, err = os.Stat(stale)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "public", manifest.FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_ReportTimesComeFromClock(t *testing.T) {
	cfg, _ := testSite(t)
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{start, start.Add(1500 * time.Millisecond)}

	b := New(cfg, WithLogger(quietLogger()))
	b.now = func() time.Time {
		next := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return next
	}

	report, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, start, report.StartTime)
	assert.Equal(t, start.Add(1500*time.Millisecond), report.EndTime)
	assert.Equal(t, 1500*time.Millisecond, report.Duration)

	m, err := manifest.Read(filepath.Join(report.OutputDir, manifest.FileName))
	require.NoError(t, err)
	assert.Equal(t, int64(1500), m.Duration)
	assert.True(t, start.Equal(m.Timestamp))
}

func TestReport_Finalize(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	failed := DocumentResult{Source: "b.md", Err: errors.BuildError("x").Build()}
	ok := DocumentResult{Source: "a.md"}

	tests := []struct {
		name     string
		docs     []DocumentResult
		canceled bool
		want     Status
	}{
		{"all written", []DocumentResult{ok}, false, StatusSuccess},
		{"some failed", []DocumentResult{ok, failed}, false, StatusPartial},
		{"all failed", []DocumentResult{failed}, false, StatusFailed},
		{"canceled", []DocumentResult{ok}, true, StatusCanceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Report{Documents: tt.docs, StartTime: start}
			r.finalize(tt.canceled, start.Add(time.Second))
			assert.Equal(t, tt.want, r.Status)
			assert.Equal(t, time.Second, r.Duration)
		})
	}
}
