package build

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagesmith/internal/config"
	"git.home.luguber.info/inful/pagesmith/internal/content"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/manifest"
	"git.home.luguber.info/inful/pagesmith/internal/markdown"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
	"git.home.luguber.info/inful/pagesmith/internal/templates"
	"git.home.luguber.info/inful/pagesmith/internal/version"
)

// Builder runs site builds for one configuration.
type Builder struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	now      func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// New creates a Builder for cfg.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		logger:   slog.Default(),
		recorder: metrics.NoopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// site bundles what every worker shares. All of it is read-only once Run
// starts the pool.
type site struct {
	sourceDir string
	outputDir string
	resolver  *content.Resolver
	renderer  *templates.Renderer
	siteData  map[string]any
}

// Run executes a complete build: discover, resolve, render, write.
//
// Per-document failures are recorded in the report and do not fail the build
// unless fail_fast is set. The returned error is non-nil for failures that
// stop the whole build: unreadable source tree, malformed data files, output
// directory problems, cancellation and, with fail_fast, the first document
// error.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	buildID := uuid.NewString()
	logger := b.logger.With(logfields.BuildID(buildID))
	report := &Report{BuildID: buildID, StartTime: b.now()}

	s, files, err := b.prepare(logger)
	if err != nil {
		b.recorder.IncBuildOutcome(metrics.BuildOutcomeFailed)
		return nil, err
	}
	report.OutputDir = s.outputDir

	workers := b.workerCount(len(files))
	b.recorder.SetWorkers(workers)
	logger.Info("Starting build",
		logfields.Count(len(files)),
		logfields.Worker(workers),
		logfields.Output(s.outputDir))

	report.Documents = b.runPool(ctx, logger, s, files, workers)

	canceled := ctx.Err() != nil
	report.finalize(canceled, b.now())
	b.recorder.ObserveBuildDuration(report.Duration)
	b.recorder.IncBuildOutcome(report.Status.outcome())

	if canceled {
		return report, errors.WrapError(ctx.Err(), errors.CategoryRuntime, "build canceled").Build()
	}

	if b.cfg.Build.FailFast {
		if failures := report.Failures(); len(failures) > 0 {
			return report, failures[0].Err
		}
	}

	if b.cfg.Output.Manifest {
		if err := b.writeManifest(report); err != nil {
			return report, err
		}
	}

	logger.Info("Build finished",
		slog.String("status", string(report.Status)),
		logfields.Count(report.Written()),
		slog.Int("failed", len(report.Failures())),
		logfields.DurationMS(float64(report.Duration.Microseconds())/1000))
	return report, nil
}

func (b *Builder) prepare(logger *slog.Logger) (*site, []string, error) {
	sourceDir, err := filepath.Abs(b.cfg.Content.SourceDir)
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve source directory").Build()
	}
	outputDir, err := filepath.Abs(b.cfg.Output.Directory)
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "resolve output directory").Build()
	}
	if isWithin(sourceDir, outputDir) {
		return nil, nil, errors.ConfigError("output directory contains the source directory").
			WithContext("output", outputDir).
			WithContext("source", sourceDir).
			Build()
	}

	tmplDir := underRoot(sourceDir, b.cfg.Templates.Dir)
	dataDir := underRoot(sourceDir, b.cfg.Templates.DataDir)

	files, err := Discover(sourceDir, []string{tmplDir, dataDir, outputDir})
	if err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "discover content files").
			WithContext("dir", sourceDir).
			Build()
	}

	renderer, err := NewRenderer(b.cfg, sourceDir, logger)
	if err != nil {
		return nil, nil, err
	}

	if b.cfg.Output.Clean {
		if err := os.RemoveAll(outputDir); err != nil {
			return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "clean output directory").
				WithContext("dir", outputDir).
				Build()
		}
	}
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, nil, errors.WrapError(err, errors.CategoryFileSystem, "create output directory").
			WithContext("dir", outputDir).
			Build()
	}

	return &site{
		sourceDir: sourceDir,
		outputDir: outputDir,
		resolver:  NewResolver(b.cfg, logger),
		renderer:  renderer,
		siteData:  b.cfg.Site.Map(),
	}, files, nil
}

// NewResolver returns a content resolver configured from cfg.
func NewResolver(cfg *config.Config, logger *slog.Logger) *content.Resolver {
	var mdOpts []markdown.Option
	if cfg.Content.Sanitize {
		mdOpts = append(mdOpts, markdown.WithSanitizer())
	}
	opts := []content.Option{
		content.WithConverter(markdown.New(mdOpts...)),
		content.WithLogger(logger),
		content.WithPagesDir(cfg.Content.PagesDir),
		content.WithDefaultLanguage(cfg.Content.DefaultLanguage),
	}
	if cfg.Content.NarrowFloats {
		opts = append(opts, content.WithFloatNarrowing())
	}
	return content.NewResolver(opts...)
}

// NewRenderer loads the templates and data of the site rooted at sourceDir.
func NewRenderer(cfg *config.Config, sourceDir string, logger *slog.Logger) (*templates.Renderer, error) {
	return templates.New(sourceDir,
		templates.WithTemplatesDir(underRoot(sourceDir, cfg.Templates.Dir)),
		templates.WithDataDir(underRoot(sourceDir, cfg.Templates.DataDir)),
		templates.WithLogger(logger))
}

func (b *Builder) workerCount(jobs int) int {
	n := b.cfg.Build.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	if n > jobs {
		n = jobs
	}
	if n < 1 {
		n = 1
	}
	return n
}

// runPool processes files on a fixed number of workers. Results keep the
// order of files. With fail_fast the first failure cancels the remaining work.
func (b *Builder) runPool(ctx context.Context, logger *slog.Logger, s *site, files []string, workers int) []DocumentResult {
	results := make([]DocumentResult, len(files))
	owners := claimOutputs(files)

	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			wlog := logger.With(logfields.Worker(id))
			for i := range jobs {
				if poolCtx.Err() != nil {
					results[i] = DocumentResult{Source: relSource(s.sourceDir, files[i]), Canceled: true}
					b.recorder.IncDocumentResult(metrics.ResultCanceled)
					continue
				}
				if owner := owners[outputKey(files[i])]; owner != files[i] {
					results[i] = collision(s.sourceDir, files[i], owner)
				} else {
					results[i] = b.process(wlog, s, files[i])
				}
				if results[i].Err != nil {
					b.recorder.IncDocumentResult(metrics.ResultFailed)
					wlog.Error("Document failed",
						logfields.RelPath(results[i].Source),
						logfields.Error(results[i].Err))
					if b.cfg.Build.FailFast {
						cancel()
					}
					continue
				}
				b.recorder.IncDocumentResult(metrics.ResultSuccess)
			}
		}(w)
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// process resolves, renders and writes one file.
func (b *Builder) process(logger *slog.Logger, s *site, path string) DocumentResult {
	res := DocumentResult{Source: relSource(s.sourceDir, path)}

	start := time.Now()
	doc, err := s.resolver.Resolve(path, s.sourceDir)
	b.recorder.ObserveStageDuration(metrics.StageResolve, time.Since(start))
	if err != nil {
		res.Err = err
		return res
	}
	res.Output = doc.OutputPath()
	res.URL = doc.URL()
	res.Collection = doc.Collection
	res.Language = doc.Language
	res.Layout = doc.FrontMatter.LayoutOr(templates.DefaultLayout)
	res.Fingerprint = doc.Fingerprint

	start = time.Now()
	html, err := s.renderer.RenderContent(doc, s.siteData)
	b.recorder.ObserveStageDuration(metrics.StageRender, time.Since(start))
	if err != nil {
		res.Err = err
		return res
	}

	start = time.Now()
	err = writePage(s.outputDir, res.Output, html)
	b.recorder.ObserveStageDuration(metrics.StageWrite, time.Since(start))
	if err != nil {
		res.Err = err
		return res
	}

	logger.Debug("Wrote page", logfields.RelPath(res.Source), logfields.Output(res.Output), logfields.URL(res.URL))
	return res
}

func (b *Builder) writeManifest(report *Report) error {
	m := &manifest.BuildManifest{
		ID:        report.BuildID,
		Generator: version.String(),
		Timestamp: report.StartTime.UTC(),
		Site:      b.cfg.Site.Title,
		Status:    string(report.Status),
		Duration:  report.Duration.Milliseconds(),
	}
	for _, d := range report.Documents {
		if d.Err != nil || d.Canceled {
			continue
		}
		m.Documents = append(m.Documents, manifest.Document{
			Source:      d.Source,
			Output:      d.Output,
			URL:         d.URL,
			Collection:  d.Collection,
			Language:    d.Language,
			Layout:      d.Layout,
			Fingerprint: d.Fingerprint,
		})
	}
	m.ContentHash = m.Hash()

	if err := m.Write(filepath.Join(report.OutputDir, manifest.FileName)); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write manifest").
			WithContext("dir", report.OutputDir).
			Build()
	}
	return nil
}

// claimOutputs assigns every output path to the first file, in lexical
// order, that maps to it.
func claimOutputs(files []string) map[string]string {
	owners := make(map[string]string, len(files))
	for _, f := range files {
		key := outputKey(f)
		if _, taken := owners[key]; !taken {
			owners[key] = f
		}
	}
	return owners
}

func outputKey(path string) string {
	return (&content.Document{Path: path}).OutputPath()
}

func collision(sourceDir, path, owner string) DocumentResult {
	rel := relSource(sourceDir, path)
	return DocumentResult{
		Source: rel,
		Output: outputKey(path),
		Err: errors.BuildError(fmt.Sprintf("output path already produced by %s", relSource(sourceDir, owner))).
			WithContext("path", rel).
			Build(),
	}
}

func relSource(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func underRoot(root, dir string) string {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir)
	}
	return filepath.Join(root, dir)
}

// isWithin reports whether child equals parent or lies below it.
func isWithin(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
