package socialshare

import "strings"

const linkedInShareEndpoint = "https://www.linkedin.com/sharing/share-offsite/?url="

// shareURL joins the site URL and the page URL for the share button.
// The page URL's leading slashes are trimmed before joining.
func shareURL(page Page, site Site) string {
	base := strings.TrimRight(site.URL, "/")
	if base == "" {
		return page.URL
	}
	return base + "/" + strings.TrimLeft(page.URL, "/")
}

// metaURL joins the site URL and the page URL for og:url. Unlike shareURL it
// keeps the page URL as given, so "/posts/a/" yields a double slash.
func metaURL(page Page, site Site) string {
	base := strings.TrimRight(site.URL, "/")
	if base == "" {
		return page.URL
	}
	return base + "/" + page.URL
}

// linkedInShareLink builds the share-offsite link for an absolute URL.
func linkedInShareLink(absURL string) string {
	return linkedInShareEndpoint + EncodeComponent(absURL)
}

const upperhex = "0123456789ABCDEF"

// EncodeComponent percent-encodes s for use as a single URL component.
// Every byte except the RFC 3986 unreserved set (ALPHA, DIGIT, "-", ".",
// "_", "~") is escaped, including "/". Spaces become "%20", never "+".
func EncodeComponent(s string) string {
	n := 0
	for i := 0; i < len(s); i++ {
		if !unreserved(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
