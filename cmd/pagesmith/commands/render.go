package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/pagesmith/internal/build"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
)

// RenderCmd implements the 'render' command.
type RenderCmd struct {
	File   string `arg:"" help:"Markdown file to render"`
	Source string `short:"s" help:"Content source directory, overrides content.source_dir"`
}

func (r *RenderCmd) Run(g *Global, root *CLI) error {
	cfg, err := loadConfig(g, root, true)
	if err != nil {
		return err
	}
	if r.Source != "" {
		cfg.Content.SourceDir = r.Source
	}

	sourceDir, err := filepath.Abs(cfg.Content.SourceDir)
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "resolve source directory").Build()
	}

	doc, err := build.NewResolver(cfg, g.Logger).Resolve(r.File, sourceDir)
	if err != nil {
		return err
	}
	renderer, err := build.NewRenderer(cfg, sourceDir, g.Logger)
	if err != nil {
		return err
	}
	html, err := renderer.RenderContent(doc, cfg.Site.Map())
	if err != nil {
		return err
	}

	_, err = fmt.Fprint(g.stdout(), html)
	return err
}
