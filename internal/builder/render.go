// internal/builder/render.go
package builder

import (
	"bytes"
	"fmt"
	"io"
	"regexp"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"gopkg.in/yaml.v3"
)

// syntaxStyle is the chroma style written to css/syntax.css.
const syntaxStyle = "github"

var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(html.WithClasses(true)),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(newMDLinkTransformer(), 100),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
	htmlSanitizer = newSanitizer()
)

// newSanitizer extends the UGC policy so chroma's class names survive.
func newSanitizer() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)).OnElements("pre", "code", "span")
	return p
}

var frontMatterDelim = []byte("---")

// processContent splits front matter from the body and renders the body to HTML.
// Front matter is only recognised when the file starts with "---".
func processContent(rawContent []byte, opts BuildOptions) (PageMeta, string, error) {
	meta := PageMeta{}
	body := rawContent

	if bytes.HasPrefix(rawContent, frontMatterDelim) {
		parts := bytes.SplitN(rawContent, frontMatterDelim, 3)
		if len(parts) == 3 {
			if err := yaml.Unmarshal(parts[1], &meta); err != nil {
				return PageMeta{}, "", fmt.Errorf("failed to parse front matter: %w", err)
			}
			body = parts[2]
		}
	}

	var htmlBuffer bytes.Buffer
	if err := markdownRenderer.Convert(body, &htmlBuffer); err != nil {
		return meta, "", fmt.Errorf("failed to render markdown with goldmark: %w", err)
	}

	if !opts.Unsafe {
		return meta, string(htmlSanitizer.SanitizeBytes(htmlBuffer.Bytes())), nil
	}
	return meta, htmlBuffer.String(), nil
}

// writeSyntaxCSS writes the stylesheet matching the highlighter's class names.
func writeSyntaxCSS(w io.Writer) error {
	formatter := html.New(html.WithClasses(true))
	return formatter.WriteCSS(w, styles.Get(syntaxStyle))
}
