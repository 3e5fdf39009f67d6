package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/pagesmith/internal/build"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/logfields"
	"git.home.luguber.info/inful/pagesmith/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Output      string `short:"o" help:"Output directory, overrides output.directory"`
	Source      string `short:"s" help:"Content source directory, overrides content.source_dir"`
	Workers     int    `short:"w" help:"Number of render workers, overrides build.workers (0 = one per CPU)" default:"-1"`
	FailFast    bool   `name:"fail-fast" help:"Abort on the first failing document"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return b.run(ctx, g, root)
}

func (b *BuildCmd) run(ctx context.Context, g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root, false)
	if err != nil {
		return err
	}
	if b.Output != "" {
		cfg.Output.Directory = b.Output
	}
	if b.Source != "" {
		cfg.Content.SourceDir = b.Source
	}
	if b.Workers >= 0 {
		cfg.Build.Workers = b.Workers
	}
	if b.FailFast {
		cfg.Build.FailFast = true
	}

	reg := prom.NewRegistry()
	builder := build.New(cfg,
		build.WithLogger(g.Logger),
		build.WithRecorder(metrics.NewPrometheusRecorder(reg)))

	report, runErr := builder.Run(ctx)

	if b.MetricsFile != "" {
		if err := metrics.WriteTextfile(reg, b.MetricsFile); err != nil {
			g.Logger.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(g.stdout(), "Built %d page(s) into %s\n", report.Written(), report.OutputDir)
	for _, f := range report.Failures() {
		fmt.Fprintf(g.stderr(), "  failed: %s: %v\n", f.Source, f.Err)
	}
	if !report.Status.IsSuccess() {
		return errors.BuildError(fmt.Sprintf("build finished with status %s", report.Status)).
			WithContext("failed", len(report.Failures())).
			Build()
	}
	return nil
}
