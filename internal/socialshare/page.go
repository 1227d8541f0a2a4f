package socialshare

import "strings"

// postPrefix marks content files that are blog posts.
const postPrefix = "posts/"

const (
	shareTitleFallback = "Check out this post"
	metaTitleFallback  = "Blog Post"
)

// Page is the metadata the host generator supplies for a rendered page.
// Empty strings mean the field is absent.
type Page struct {
	Path        string // source path relative to the content root, forward slashes
	URL         string // site-relative URL
	Title       string
	Description string
}

// IsPost reports whether the page is a blog post.
func (p Page) IsPost() bool {
	return strings.HasPrefix(p.Path, postPrefix)
}

// Site is the build-wide configuration the hooks read.
type Site struct {
	URL         string
	Name        string
	Description string
}

// description resolves the page description, falling back to the site's.
func description(page Page, site Site) string {
	if page.Description != "" {
		return page.Description
	}
	return site.Description
}

// shareTitle resolves the title used by the share fragment.
func shareTitle(page Page) string {
	if page.Title != "" {
		return page.Title
	}
	return shareTitleFallback
}

// metaTitle resolves the title used by the preview tags. It prefers the site
// name over the literal fallback, unlike shareTitle.
func metaTitle(page Page, site Site) string {
	if page.Title != "" {
		return page.Title
	}
	if site.Name != "" {
		return site.Name
	}
	return metaTitleFallback
}
