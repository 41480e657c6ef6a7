package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"

	"github.com/blog-content-api/internal/config"
	"github.com/blog-content-api/internal/feed"
	"github.com/blog-content-api/internal/models"
	"github.com/blog-content-api/internal/repository"
	"github.com/blog-content-api/internal/service"
)

// App carries the dependencies shared by all commands
type App struct {
	Store *repository.FileStore
	Posts service.PostService
	Out   io.Writer
	Log   zerolog.Logger
}

// NewApp wires the store and post service for the CLI
func NewApp(cfg *config.Config, log zerolog.Logger, out io.Writer) *App {
	store := repository.NewFileStore(cfg.Content, log)
	builder := feed.NewBuilder(feed.Channel{
		SiteURL:     cfg.Feed.SiteURL,
		Title:       cfg.Feed.Title,
		Description: cfg.Feed.Description,
	})
	return &App{
		Store: store,
		Posts: service.NewPostService(store, builder, nil, time.Now, log),
		Out:   out,
		Log:   log,
	}
}

// ListCmd implements the 'list' command.
type ListCmd struct {
	All bool `short:"a" help:"Include drafts and scheduled posts"`
}

func (l *ListCmd) Run(app *App) error {
	ctx := context.Background()

	var (
		posts []models.PostView
		err   error
	)
	if l.All {
		posts, err = app.Posts.ListAll(ctx)
	} else {
		posts, err = app.Posts.ListPublished(ctx)
	}
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	tw := tabwriter.NewWriter(app.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tDATE\tTITLE")
	for _, p := range posts {
		status := string(p.Status)
		if status == "" {
			status = string(models.StatusPublished)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, status, p.EffectiveDate(), p.Title)
	}
	return tw.Flush()
}

// ShowCmd implements the 'show' command.
type ShowCmd struct {
	ID  string `arg:"" help:"Post id"`
	Raw bool   `help:"Print only the raw file contents"`
}

func (s *ShowCmd) Run(app *App) error {
	post, err := app.Posts.GetForAdmin(context.Background(), s.ID)
	if err != nil {
		return fmt.Errorf("show %s: %w", s.ID, err)
	}
	if s.Raw {
		_, err := io.WriteString(app.Out, post.Raw)
		return err
	}
	enc := json.NewEncoder(app.Out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(post)
}

// NormalizeCmd implements the 'normalize' command.
type NormalizeCmd struct {
	DryRun bool `name:"dry-run" help:"Report files that need repair without rewriting them"`
}

func (n *NormalizeCmd) Run(app *App) error {
	ctx := context.Background()
	ids, err := app.Store.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	changed := 0
	for _, id := range ids {
		needed, err := app.Store.RepairFrontMatter(ctx, id, n.DryRun)
		if err != nil {
			app.Log.Warn().Err(err).Str("post_id", id).Msg("Skipping post")
			continue
		}
		if needed {
			changed++
			fmt.Fprintln(app.Out, id)
		}
	}

	verb := "repaired"
	if n.DryRun {
		verb = "need repair"
	}
	app.Log.Info().Int("posts", len(ids)).Int("changed", changed).Msgf("%d of %d posts %s", changed, len(ids), verb)
	return nil
}

// FeedCmd implements the 'feed' command.
type FeedCmd struct {
	Output string `short:"o" help:"Write the feed to this file instead of stdout"`
}

func (f *FeedCmd) Run(app *App) error {
	out, err := app.Posts.Feed(context.Background())
	if err != nil {
		return fmt.Errorf("build feed: %w", err)
	}
	if f.Output == "" {
		_, err := app.Out.Write(out)
		return err
	}
	if err := os.WriteFile(f.Output, out, 0o644); err != nil {
		return fmt.Errorf("write feed: %w", err)
	}
	app.Log.Info().Str("path", f.Output).Msg("Feed written")
	return nil
}
