// internal/builder/models.go
package builder

import (
	"html/template"

	"postshare/internal/config"
)

// PageMeta holds metadata from front matter, plus any extra keys.
type PageMeta struct {
	Title       string                 `yaml:"title"`
	Author      string                 `yaml:"author"`
	Draft       bool                   `yaml:"draft"`
	Description string                 `yaml:"description"`
	Date        string                 `yaml:"date"`
	Params      map[string]interface{} `yaml:",inline"`
}

// PageData is the struct passed to templates.
type PageData struct {
	Content     template.HTML
	Title       string
	BaseHref    string
	Author      string
	Description string
	Date        string
	IsPost      bool
	Site        config.SiteConfig
	Params      map[string]interface{}
}

// PageInfo is what hooks see of a page.
type PageInfo struct {
	Path        string // source path relative to the content dir, forward slashes
	URL         string // output path relative to the site root, forward slashes
	Title       string
	Description string
}

// page is one content file scheduled for rendering.
type page struct {
	srcPath string
	relPath string
	outPath string
}
