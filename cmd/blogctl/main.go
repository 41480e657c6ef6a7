// Command blogctl inspects and maintains the post directory from a shell.
package main

import (
	"os"

	"github.com/alecthomas/kong"

	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/pkg/logger"
)

// CLI is the root command set
type CLI struct {
	ContentDir string `name:"content-dir" short:"d" help:"Post directory (overrides CONTENT_DIR)"`
	Verbose    bool   `short:"v" help:"Enable debug logging"`

	List      ListCmd      `cmd:"" help:"List posts, newest first"`
	Show      ShowCmd      `cmd:"" help:"Print a post with its status and raw file"`
	Normalize NormalizeCmd `cmd:"" help:"Repair front matter whose closing delimiter is glued to the body"`
	Feed      FeedCmd      `cmd:"" help:"Render the RSS feed of published posts"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blogctl"),
		kong.Description("Maintenance tool for the blog content directory."),
		kong.UsageOnError(),
	)

	cfg, err := config.Load()
	if err != nil {
		ctx.FatalIfErrorf(err)
	}
	if cli.ContentDir != "" {
		cfg.Content.Dir = cli.ContentDir
	}
	if cli.Verbose {
		cfg.Log.Level = "debug"
	}
	cfg.Log.Format = "pretty"

	log := logger.NewWithWriter(cfg.Log, os.Stderr)
	app := NewApp(cfg, log, os.Stdout)

	ctx.FatalIfErrorf(ctx.Run(app))
}
