// internal/builder/goldmark_extensions.go
package builder

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// mdLinkTransformer rewrites relative links to .md sources so they point at
// the generated .html pages.
type mdLinkTransformer struct{}

func newMDLinkTransformer() parser.ASTTransformer {
	return &mdLinkTransformer{}
}

func (t *mdLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}
		link.Destination = rewriteMDLink(link.Destination)
		return ast.WalkContinue, nil
	})
}

var (
	mdExt   = []byte(".md")
	htmlExt = []byte(".html")
)

// rewriteMDLink swaps a trailing .md (before any #fragment) for .html.
// Absolute URLs are left alone.
func rewriteMDLink(dest []byte) []byte {
	if bytes.Contains(dest, []byte("://")) {
		return dest
	}
	path, frag := dest, []byte(nil)
	if i := bytes.IndexByte(dest, '#'); i >= 0 {
		path, frag = dest[:i], dest[i:]
	}
	if !bytes.HasSuffix(path, mdExt) {
		return dest
	}
	out := make([]byte, 0, len(dest)+2)
	out = append(out, bytes.TrimSuffix(path, mdExt)...)
	out = append(out, htmlExt...)
	return append(out, frag...)
}
