package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pagesmith/cmd/pagesmith/commands"
	"git.home.luguber.info/inful/pagesmith/internal/foundation/errors"
	"git.home.luguber.info/inful/pagesmith/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("pagesmith"),
		kong.Description("Static site content pipeline: Markdown with front matter in, HTML pages out."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	global := commands.NewGlobal()
	err := ctx.Run(global, &cli)

	errors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
