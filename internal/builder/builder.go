// internal/builder/builder.go
package builder

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"postshare/internal/config"
	"postshare/internal/logfields"
	"postshare/internal/util"
)

type BuildOptions struct {
	CleanDestination bool
	Unsafe           bool
	// Workers caps concurrent page renders. Zero means GOMAXPROCS.
	Workers          int
	// Hooks run in order at both pipeline points of every page.
	Hooks            []Hook
}

// Dirs names the directories a build reads from and writes to.
type Dirs struct {
	Content string
	Static  string
	Output  string
}

// BuildSite renders every content file into an HTML page, runs the hooks
// on each, and copies static assets. It returns the number of pages written.
func BuildSite(ctx context.Context, logger *slog.Logger, dirs Dirs, site config.SiteConfig, tmpl *template.Template, opts BuildOptions) (int, error) {
	start := time.Now()
	if err := os.MkdirAll(dirs.Output, 0755); err != nil {
		return 0, err
	}

	if opts.CleanDestination {
		logger.Debug("Cleaning destination directory", logfields.Path(dirs.Output))
		entries, err := os.ReadDir(dirs.Output)
		if err != nil {
			return 0, err
		}
		for _, entry := range entries {
			if err := os.RemoveAll(filepath.Join(dirs.Output, entry.Name())); err != nil {
				return 0, err
			}
		}
	}

	pages, err := collectPages(dirs.Content, dirs.Output)
	if err != nil {
		return 0, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var generated atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, p := range pages {
		p := p // per-iteration copy; required for go < 1.22 loop semantics
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			written, err := buildPage(logger, p, site, tmpl, opts)
			if err != nil {
				return err
			}
			if written {
				generated.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	if err := copyStaticAssets(dirs.Static, dirs.Output); err != nil {
		return 0, err
	}
	if err := writeSyntaxStylesheet(dirs.Output); err != nil {
		return 0, err
	}

	count := int(generated.Load())
	logger.Info("Site built", logfields.Pages(count), logfields.DurationMS(time.Since(start).Milliseconds()))
	return count, nil
}

// collectPages walks the content directory for .md and .html sources.
func collectPages(contentDir, outputDir string) ([]page, error) {
	var pages []page
	err := filepath.Walk(contentDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(info.Name())
		if ext != ".html" && ext != ".md" {
			return nil
		}
		relPath, err := filepath.Rel(contentDir, path)
		if err != nil {
			return err
		}
		pages = append(pages, page{
			srcPath: path,
			relPath: relPath,
			outPath: filepath.Join(outputDir, strings.TrimSuffix(relPath, ext)+".html"),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

// buildPage renders one content file. It reports false for skipped drafts.
func buildPage(logger *slog.Logger, p page, site config.SiteConfig, tmpl *template.Template, opts BuildOptions) (bool, error) {
	contentBytes, err := os.ReadFile(p.srcPath)
	if err != nil {
		return false, fmt.Errorf("failed to read file %s: %w", p.srcPath, err)
	}
	if !utf8.Valid(contentBytes) {
		return false, fmt.Errorf("content file is not valid UTF-8: %s", p.srcPath)
	}

	meta, htmlOut, err := processContent(contentBytes, opts)
	if err != nil {
		return false, fmt.Errorf("failed to process content for %s: %w", p.srcPath, err)
	}

	ext := filepath.Ext(p.relPath)
	if meta.Draft && !isExceptionPage(filepath.ToSlash(strings.TrimSuffix(p.relPath, ext))) {
		logger.Debug("Skipping draft", logfields.Path(p.relPath))
		return false, nil
	}

	info := PageInfo{
		Path:        filepath.ToSlash(p.relPath),
		URL:         filepath.ToSlash(strings.TrimSuffix(p.relPath, ext) + ".html"),
		Title:       meta.Title,
		Description: meta.Description,
	}

	for _, h := range opts.Hooks {
		htmlOut = h.OnPageContent(htmlOut, info)
	}

	pageData := PageData{
		Content:     template.HTML(htmlOut),
		Title:       meta.Title,
		BaseHref:    util.ComputeBaseHref(p.relPath),
		Author:      meta.Author,
		Description: meta.Description,
		Date:        meta.Date,
		IsPost:      strings.HasPrefix(info.Path, "posts/"),
		Site:        site,
		Params:      meta.Params,
	}
	if pageData.Author == "" {
		pageData.Author = site.Author
	}
	if pageData.Description == "" {
		pageData.Description = site.Description
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "main", pageData); err != nil {
		return false, fmt.Errorf("failed to render page %s: %w", p.srcPath, err)
	}

	output := buf.String()
	for _, h := range opts.Hooks {
		output = h.OnPostPage(output, info)
	}

	if err := os.MkdirAll(filepath.Dir(p.outPath), 0755); err != nil {
		return false, err
	}
	if err := os.WriteFile(p.outPath, []byte(output), 0644); err != nil {
		return false, fmt.Errorf("failed to write page %s: %w", p.outPath, err)
	}
	logger.Debug("Wrote page", logfields.Path(info.Path), logfields.File(p.outPath))
	return true, nil
}

// copyStaticAssets copies files from the static directory to the output directory.
// A missing static directory is not an error.
func copyStaticAssets(staticDir, outputDir string) error {
	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		return nil
	}
	allowedExts := map[string]bool{
		".css": true, ".js": true, ".txt": true, ".svg": true,
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
		".ico": true, ".webp": true,
	}
	return filepath.Walk(staticDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !allowedExts[filepath.Ext(info.Name())] {
			return nil
		}

		rel, err := filepath.Rel(staticDir, path)
		if err != nil {
			return err
		}
		dest := filepath.Join(outputDir, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		return copyFile(path, dest)
	})
}

func copyFile(srcPath, destPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()
	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// writeSyntaxStylesheet writes css/syntax.css for highlighted code blocks.
func writeSyntaxStylesheet(outputDir string) error {
	path := filepath.Join(outputDir, "css", "syntax.css")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeSyntaxCSS(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write syntax stylesheet: %w", err)
	}
	return f.Close()
}

// isExceptionPage checks for pages that should not be considered drafts.
func isExceptionPage(slug string) bool {
	return slug == "index" || slug == "about"
}

// LoadTemplates parses the layout and partials of a theme directory.
func LoadTemplates(templateDir, templateName string) (*template.Template, error) {
	path := filepath.Join(templateDir, templateName)
	tmpl, err := template.ParseFiles(
		filepath.Join(path, "layout.html"),
		filepath.Join(path, "header.html"),
		filepath.Join(path, "footer.html"),
	)
	if err != nil {
		return nil, err
	}
	return tmpl, nil
}
