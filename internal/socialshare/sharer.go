// Package socialshare decorates blog posts with a LinkedIn share button and
// injects Open Graph and Twitter-card preview tags into their head.
//
// Both operations are pure string transformations. Pages whose source path
// does not start with "posts/" pass through untouched.
package socialshare

import (
	"embed"
	"html"
	"io"
	"log/slog"
	"strings"
	"text/template"

	"postshare/internal/logfields"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// headOpenTag is matched literally; "<head lang=..>" or "<HEAD>" do not match.
const headOpenTag = "<head>"

// Option configures a Sharer.
type Option func(*Sharer)

// WithEscaping HTML-escapes titles, descriptions and URLs before they are
// interpolated into the emitted markup. Output then differs from the
// unescaped form whenever metadata contains &, <, >, " or '.
func WithEscaping() Option {
	return func(s *Sharer) { s.escape = true }
}

// Sharer holds the parsed fragment templates and the logger. It keeps no
// per-page state and is safe for concurrent use.
type Sharer struct {
	logger *slog.Logger
	escape bool
	share  *template.Template
	meta   *template.Template
}

// shareData is the data passed to the share fragment template.
// Title and Description are resolved but not rendered by the default fragment.
type shareData struct {
	ShareURL    string
	Title       string
	Description string
}

// metaData is the data passed to the head tag template.
type metaData struct {
	URL         string
	Title       string
	Description string
	SiteName    string
}

// New creates a Sharer that logs through logger. A nil logger discards output.
// Panics if the embedded templates cannot be parsed (programmer error).
func New(logger *slog.Logger, opts ...Option) *Sharer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Sharer{
		logger: logger,
		share:  mustParse("share.html.tmpl"),
		meta:   mustParse("meta.html.tmpl"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func mustParse(name string) *template.Template {
	tmpl, err := template.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		panic("failed to parse " + name + ": " + err.Error())
	}
	return tmpl
}

// Decorate appends the share fragment to the rendered HTML of a post.
// Non-post pages are returned unchanged.
func (s *Sharer) Decorate(htmlContent string, page Page, site Site) string {
	if !page.IsPost() {
		return htmlContent
	}

	data := shareData{
		ShareURL:    linkedInShareLink(shareURL(page, site)),
		Title:       s.value(shareTitle(page)),
		Description: s.value(description(page, site)),
	}

	var buf strings.Builder
	if err := s.share.Execute(&buf, data); err != nil {
		s.logger.Error("Failed to render share button", logfields.Path(page.Path), logfields.Error(err))
		return htmlContent
	}

	s.logger.Info("Added LinkedIn share button", logfields.Path(page.Path))
	return htmlContent + buf.String()
}

// Inject inserts the preview tags right after the first literal <head> of a
// post's final output. Outputs without <head> and non-post pages are
// returned unchanged.
func (s *Sharer) Inject(output string, page Page, site Site) string {
	if !page.IsPost() {
		return output
	}

	idx := strings.Index(output, headOpenTag)
	if idx == -1 {
		return output
	}

	data := metaData{
		URL:         s.value(metaURL(page, site)),
		Title:       s.value(metaTitle(page, site)),
		Description: s.value(description(page, site)),
		SiteName:    s.value(site.Name),
	}

	var buf strings.Builder
	if err := s.meta.Execute(&buf, data); err != nil {
		s.logger.Error("Failed to render Open Graph meta tags", logfields.Path(page.Path), logfields.Error(err))
		return output
	}

	insertPos := idx + len(headOpenTag)
	s.logger.Info("Added Open Graph meta tags", logfields.Path(page.Path))
	return output[:insertPos] + buf.String() + output[insertPos:]
}

func (s *Sharer) value(v string) string {
	if s.escape {
		return html.EscapeString(v)
	}
	return v
}
