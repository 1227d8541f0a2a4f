// cmd/postshare/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"go.uber.org/automaxprocs/maxprocs"

	"postshare/internal/builder"
	"postshare/internal/config"
	"postshare/internal/scaffold"
	"postshare/internal/server"
	"postshare/internal/socialshare"
)

const (
	contentDir  = "content"
	templateDir = "templates"
	staticDir   = "static"
	outputDir   = "public"
)

// Global carries state shared by every command.
type Global struct {
	Logger     *slog.Logger
	ConfigPath string
	Unsafe     bool
}

type CLI struct {
	Config  string `short:"c" help:"Site configuration file." default:"site.yaml"`
	Verbose bool   `short:"v" help:"Enable verbose logging."`
	Unsafe  bool   `help:"Disable HTML sanitization. Allows all raw HTML."`

	Gen   GenCmd   `cmd:"" help:"Generate the site from content."`
	Serve ServeCmd `cmd:"" help:"Run a local dev server with auto-rebuild."`
	New   NewCmd   `cmd:"" help:"Create a new site or post."`
}

type GenCmd struct{}

func (c *GenCmd) Run(g *Global) error {
	fmt.Println("--- Generating site from content ---")
	pageCount, err := buildSite(context.Background(), g, true)
	if err != nil {
		return err
	}
	fmt.Printf("✅ Success! Generated %d pages.\n", pageCount)
	return nil
}

type ServeCmd struct {
	Port int `short:"p" help:"Port for the local development server." default:"1313"`
}

func (c *ServeCmd) Run(g *Global) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	build := func(ctx context.Context, full bool) error {
		pageCount, err := buildSite(ctx, g, full)
		if err != nil {
			return err
		}
		fmt.Printf("📄 Site: %d pages generated.\n", pageCount)
		return nil
	}
	opts := server.Options{
		Port:       c.Port,
		PublicDir:  outputDir,
		WatchPaths: []string{contentDir, templateDir, staticDir, g.ConfigPath},
	}
	return server.Run(ctx, g.Logger, opts, build)
}

type NewCmd struct {
	Site NewSiteCmd `cmd:"" help:"Create a new site scaffold."`
	Post NewPostCmd `cmd:"" help:"Create a new draft post from the archetype."`
}

type NewSiteCmd struct {
	Name string `arg:"" help:"Directory to create the site in."`
}

func (c *NewSiteCmd) Run(g *Global) error {
	return scaffold.CreateNewSite(c.Name)
}

type NewPostCmd struct {
	Title string `arg:"" help:"Post title."`
}

func (c *NewPostCmd) Run(g *Global) error {
	path, err := scaffold.CreateNewPost(".", c.Title, time.Now())
	if err != nil {
		return err
	}
	fmt.Println("Created:", path)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("postshare"),
		kong.Description("A static blog generator that makes posts easy to share."),
		kong.UsageOnError(),
	)

	logger := newLogger(cli.Verbose)
	// maxprocs.Set only fails on an invalid GOMAXPROCS env; runtime defaults apply then.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug(fmt.Sprintf(format, args...))
	}))

	err := ctx.Run(&Global{
		Logger:     logger,
		ConfigPath: cli.Config,
		Unsafe:     cli.Unsafe,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Operation failed: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// buildSite loads the config and theme and renders the whole site.
func buildSite(ctx context.Context, g *Global, clean bool) (int, error) {
	siteCfg, err := config.LoadSiteConfig(g.ConfigPath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return 0, fmt.Errorf("%w (run 'postshare new site <name>' first)", err)
		}
		return 0, fmt.Errorf("failed to load site config: %w", err)
	}

	tmpl, err := builder.LoadTemplates(templateDir, siteCfg.Template)
	if err != nil {
		return 0, fmt.Errorf("failed to load templates: %w", err)
	}

	opts := builder.BuildOptions{
		CleanDestination: clean,
		Unsafe:           g.Unsafe,
		Hooks:            siteHooks(g.Logger, siteCfg),
	}
	dirs := builder.Dirs{Content: contentDir, Static: staticDir, Output: outputDir}
	pageCount, err := builder.BuildSite(ctx, g.Logger, dirs, siteCfg, tmpl, opts)
	if err != nil {
		return 0, fmt.Errorf("site generation failed: %w", err)
	}
	return pageCount, nil
}

// siteHooks returns the page hooks enabled by the site config.
func siteHooks(logger *slog.Logger, cfg config.SiteConfig) []builder.Hook {
	if !cfg.SocialEnabled() {
		return nil
	}
	var opts []socialshare.Option
	if cfg.Social.Escape {
		opts = append(opts, socialshare.WithEscaping())
	}
	sharer := socialshare.New(logger.With("hook", "socialshare"), opts...)
	return []builder.Hook{builder.NewSocialHook(sharer, cfg.ShareSite())}
}
