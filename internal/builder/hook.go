package builder

import (
	"postshare/internal/socialshare"
)

// Hook transforms pages at two points of the build: after the markdown body
// is rendered, and after the full page template has been executed.
// Implementations must be safe for concurrent use.
type Hook interface {
	// Name identifies the hook in logs.
	Name() string

	// OnPageContent receives the rendered body HTML and returns its replacement.
	OnPageContent(html string, page PageInfo) string

	// OnPostPage receives the complete page output and returns its replacement.
	OnPostPage(output string, page PageInfo) string
}

// SocialHook adds the LinkedIn share button and preview tags to posts.
type SocialHook struct {
	sharer *socialshare.Sharer
	site   socialshare.Site
}

// NewSocialHook wires a Sharer into the build for the given site.
func NewSocialHook(sharer *socialshare.Sharer, site socialshare.Site) *SocialHook {
	return &SocialHook{sharer: sharer, site: site}
}

func (h *SocialHook) Name() string { return "socialshare" }

func (h *SocialHook) OnPageContent(html string, page PageInfo) string {
	return h.sharer.Decorate(html, sharePage(page), h.site)
}

func (h *SocialHook) OnPostPage(output string, page PageInfo) string {
	return h.sharer.Inject(output, sharePage(page), h.site)
}

func sharePage(p PageInfo) socialshare.Page {
	return socialshare.Page{
		Path:        p.Path,
		URL:         p.URL,
		Title:       p.Title,
		Description: p.Description,
	}
}
