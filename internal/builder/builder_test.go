package builder

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"postshare/internal/config"
	"postshare/internal/socialshare"
)

const testLayout = `{{ define "main" }}<!DOCTYPE html>
<html>
<head>
<title>{{ .Title }}</title>
</head>
<body>{{ template "header" . }}<main>{{ .Content }}</main>{{ template "footer" . }}</body>
</html>
{{ end }}`

type testSite struct {
	root string
	dirs Dirs
}

func newTestSite(t *testing.T, files map[string]string) testSite {
	t.Helper()
	root := t.TempDir()
	all := map[string]string{
		"templates/simple/layout.html": testLayout,
		"templates/simple/header.html": `{{ define "header" }}<header>{{ .Site.Title }}</header>{{ end }}`,
		"templates/simple/footer.html": `{{ define "footer" }}<footer>{{ .Author }}</footer>{{ end }}`,
	}
	for k, v := range files {
		all[k] = v
	}
	for rel, content := range all {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return testSite{
		root: root,
		dirs: Dirs{
			Content: filepath.Join(root, "content"),
			Static:  filepath.Join(root, "static"),
			Output:  filepath.Join(root, "public"),
		},
	}
}

func (s testSite) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(s.dirs.Output, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func (s testSite) build(t *testing.T, site config.SiteConfig, opts BuildOptions) int {
	t.Helper()
	tmpl, err := LoadTemplates(filepath.Join(s.root, "templates"), "simple")
	require.NoError(t, err)
	n, err := BuildSite(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), s.dirs, site, tmpl, opts)
	require.NoError(t, err)
	return n
}

var blogConfig = config.SiteConfig{
	Title:       "My Blog",
	Author:      "Ada",
	BaseURL:     "https://blog.example/",
	Description: "Notes and essays",
}

func TestBuildSite_SocialHookDecoratesPostsOnly(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"content/index.md":       "---\ntitle: Home\n---\n\nWelcome.\n",
		"content/posts/hello.md": "---\ntitle: Hello\ndescription: First post\n---\n\nBody text.\n",
		"content/about.md":       "About me.\n",
	})
	hook := NewSocialHook(socialshare.New(nil), blogConfig.ShareSite())

	n := site.build(t, blogConfig, BuildOptions{Hooks: []Hook{hook}})
	require.Equal(t, 3, n)

	post := site.read(t, "posts/hello.html")
	require.Contains(t, post, `<meta property="og:url" content="https://blog.example/posts/hello.html" />`)
	require.Contains(t, post, `<meta property="og:title" content="Hello" />`)
	require.Contains(t, post, `<meta property="og:description" content="First post" />`)
	require.Contains(t, post, `<meta property="og:site_name" content="My Blog" />`)
	require.Contains(t, post, "share-offsite/?url=https%3A%2F%2Fblog.example%2Fposts%2Fhello.html")
	require.Equal(t, 1, strings.Count(post, "og:type"))

	// The share fragment lands inside <main>, after the body.
	mainStart := strings.Index(post, "<main>")
	mainEnd := strings.Index(post, "</main>")
	share := strings.Index(post, `class="social-share-container"`)
	body := strings.Index(post, "Body text.")
	require.True(t, mainStart < body && body < share && share < mainEnd)

	// The tags land right after <head>.
	require.True(t, strings.HasPrefix(post[strings.Index(post, "<head>")+len("<head>"):], "\n    <!-- Open Graph / LinkedIn meta tags -->"))

	for _, rel := range []string{"index.html", "about.html"} {
		out := site.read(t, rel)
		require.NotContains(t, out, "og:type")
		require.NotContains(t, out, "linkedin")
	}
}

func TestBuildSite_ShareButtonSurvivesSanitizer(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"content/posts/a.md": "<script>alert(1)</script>\n\nText\n",
	})
	hook := NewSocialHook(socialshare.New(nil), blogConfig.ShareSite())

	site.build(t, blogConfig, BuildOptions{Hooks: []Hook{hook}})

	out := site.read(t, "posts/a.html")
	require.NotContains(t, out, "alert(1)")
	require.Contains(t, out, `rel="noopener noreferrer"`)
	require.Contains(t, out, "<style>")
}

func TestBuildSite_NoHooksLeavesPagesAlone(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"content/posts/a.md": "Text\n",
	})

	site.build(t, blogConfig, BuildOptions{})

	out := site.read(t, "posts/a.html")
	require.NotContains(t, out, "og:type")
	require.NotContains(t, out, "social-share-container")
}

type recordingHook struct {
	mu      sync.Mutex
	content []PageInfo
	post    []PageInfo
}

func (h *recordingHook) Name() string { return "recording" }

func (h *recordingHook) OnPageContent(html string, page PageInfo) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.content = append(h.content, page)
	return html + "<!-- content-hook -->"
}

func (h *recordingHook) OnPostPage(output string, page PageInfo) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.post = append(h.post, page)
	return output + "<!-- post-hook -->"
}

func TestBuildSite_HookPhases(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"content/posts/2024/deep.md": "---\ntitle: Deep\ndescription: Nested\n---\nText\n",
	})
	hook := &recordingHook{}

	site.build(t, blogConfig, BuildOptions{Hooks: []Hook{hook}})

	want := PageInfo{Path: "posts/2024/deep.md", URL: "posts/2024/deep.html", Title: "Deep", Description: "Nested"}
	require.Equal(t, []PageInfo{want}, hook.content)
	require.Equal(t, []PageInfo{want}, hook.post)

	out := site.read(t, "posts/2024/deep.html")
	require.Contains(t, out, "<main><p>Text</p>\n<!-- content-hook --></main>")
	require.True(t, strings.HasSuffix(out, "<!-- post-hook -->"))
}

func TestBuildSite_SkipsDrafts(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"content/index.md":       "---\ndraft: true\n---\nHome\n",
		"content/posts/draft.md": "---\ndraft: true\n---\nWIP\n",
		"content/posts/done.md":  "Done\n",
	})
	hook := &recordingHook{}

	n := site.build(t, blogConfig, BuildOptions{Hooks: []Hook{hook}})

	require.Equal(t, 2, n)
	require.NoFileExists(t, filepath.Join(site.dirs.Output, "posts", "draft.html"))
	require.FileExists(t, filepath.Join(site.dirs.Output, "index.html"))
	require.Len(t, hook.content, 2)
}

func TestBuildSite_ConcurrentPages(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		files["content/posts/"+name+".md"] = "---\ntitle: " + name + "\n---\nText\n"
	}
	site := newTestSite(t, files)
	hook := NewSocialHook(socialshare.New(nil), blogConfig.ShareSite())

	n := site.build(t, blogConfig, BuildOptions{Hooks: []Hook{hook}, Workers: 4})
	require.Equal(t, 8, n)

	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		out := site.read(t, "posts/"+name+".html")
		require.Contains(t, out, `<meta property="og:title" content="`+name+`" />`)
		require.Contains(t, out, "%2Fposts%2F"+name+".html")
	}
}

func TestBuildSite_CopiesStaticAndWritesSyntaxCSS(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"content/index.md":      "Home\n",
		"static/css/style.css":  "body{}",
		"static/notes.markdown": "ignored",
	})

	site.build(t, blogConfig, BuildOptions{})

	require.Equal(t, "body{}", site.read(t, "css/style.css"))
	require.NoFileExists(t, filepath.Join(site.dirs.Output, "notes.markdown"))
	require.Contains(t, site.read(t, "css/syntax.css"), ".chroma")
}

func TestBuildSite_CleanDestination(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"content/index.md":  "Home\n",
		"public/stale.html": "old",
	})

	site.build(t, blogConfig, BuildOptions{CleanDestination: true})

	require.NoFileExists(t, filepath.Join(site.dirs.Output, "stale.html"))
	require.FileExists(t, filepath.Join(site.dirs.Output, "index.html"))
}

func TestBuildSite_InvalidUTF8(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"content/bad.md": string([]byte{0xff, 0xfe, 0xfd}),
	})
	tmpl, err := LoadTemplates(filepath.Join(site.root, "templates"), "simple")
	require.NoError(t, err)

	_, err = BuildSite(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)), site.dirs, blogConfig, tmpl, BuildOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "not valid UTF-8")
}

func TestBuildSite_CancelledContext(t *testing.T) {
	site := newTestSite(t, map[string]string{
		"content/index.md": "Home\n",
	})
	tmpl, err := LoadTemplates(filepath.Join(site.root, "templates"), "simple")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = BuildSite(ctx, slog.New(slog.NewTextHandler(io.Discard, nil)), site.dirs, blogConfig, tmpl, BuildOptions{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestLoadTemplates_MissingTheme(t *testing.T) {
	_, err := LoadTemplates(t.TempDir(), "nope")
	require.Error(t, err)
}
