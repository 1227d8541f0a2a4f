package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/require"

	"postshare/internal/builder"
	"postshare/internal/config"
)

func TestSiteHooks(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	hooks := siteHooks(logger, config.SiteConfig{Title: "My Blog"})
	require.Len(t, hooks, 1)
	require.Equal(t, "socialshare", hooks[0].Name())

	disabled := false
	hooks = siteHooks(logger, config.SiteConfig{Social: config.SocialConfig{Enabled: &disabled}})
	require.Empty(t, hooks)
}

func TestSiteHooks_Escaping(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	page := builder.PageInfo{Path: "posts/a.md", URL: "posts/a.html", Title: "A & B"}

	plain := siteHooks(logger, config.SiteConfig{})[0]
	require.Contains(t, plain.OnPostPage("<head></head>", page), `content="A & B"`)

	escaped := siteHooks(logger, config.SiteConfig{Social: config.SocialConfig{Escape: true}})[0]
	require.Contains(t, escaped.OnPostPage("<head></head>", page), `content="A &amp; B"`)
}

func TestCLIParsing(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
	}{
		{"gen", []string{"gen"}, "gen"},
		{"serve with port", []string{"serve", "--port", "8080"}, "serve"},
		{"new site", []string{"new", "site", "blog"}, "new site <name>"},
		{"new post", []string{"new", "post", "Hello World"}, "new post <title>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli)
			require.NoError(t, err)
			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			require.Equal(t, tt.command, ctx.Command())
		})
	}
}

func TestCLIDefaults(t *testing.T) {
	var cli CLI
	parser, err := kong.New(&cli)
	require.NoError(t, err)
	_, err = parser.Parse([]string{"serve"})
	require.NoError(t, err)
	require.Equal(t, "site.yaml", cli.Config)
	require.Equal(t, 1313, cli.Serve.Port)
	require.False(t, cli.Unsafe)
}
