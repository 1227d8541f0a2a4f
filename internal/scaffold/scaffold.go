// internal/scaffold/scaffold.go
package scaffold

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"postshare/internal/config"
	"postshare/internal/util"
)

// CreateNewSite lays out a blog skeleton under name.
func CreateNewSite(name string) error {
	fmt.Println("Scaffolding new site in:", name)
	if _, err := os.Stat(filepath.Join(name, "site.yaml")); err == nil {
		return fmt.Errorf("site already exists in %s", name)
	}

	mkdir := func(path string) error { return os.MkdirAll(filepath.Join(name, path), 0755) }
	writeFile := func(path, content string) error {
		return os.WriteFile(filepath.Join(name, path), []byte(content), 0644)
	}
	dirs := []string{"content/posts", "static/css", "static/images", "templates/simple", "archetypes"}
	for _, dir := range dirs {
		if err := mkdir(dir); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	files := map[string]string{
		"site.yaml":                    siteYamlContent,
		"content/index.md":             indexMdContent,
		"content/posts/hello-world.md": helloWorldMdContent,
		"static/css/style.css":         staticCssContent,
		"templates/simple/layout.html": templateLayoutHtmlContent,
		"templates/simple/header.html": templateHeaderHtmlContent,
		"templates/simple/footer.html": templateFooterHtmlContent,
		"archetypes/post.md":           archetypePostMdContent,
	}
	for path, content := range files {
		if err := writeFile(path, content); err != nil {
			return fmt.Errorf("failed to write file %s: %w", path, err)
		}
	}
	fmt.Println("Site scaffolded. You can now:")
	fmt.Println("  cd", name)
	fmt.Println("  postshare serve")
	return nil
}

// CreateNewPost writes content/posts/<slug>.md under siteDir from the post
// archetype and returns its path.
func CreateNewPost(siteDir, title string, now time.Time) (string, error) {
	slug := util.Slugify(title)
	if slug == "" {
		return "", fmt.Errorf("title %q does not produce a usable file name", title)
	}
	site, err := config.LoadSiteConfig(filepath.Join(siteDir, "site.yaml"))
	if err != nil {
		return "", err
	}

	path := filepath.Join(siteDir, "content", "posts", slug+".md")
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("post already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	archetypePath := filepath.Join(siteDir, "archetypes", "post.md")
	tmplBytes, err := os.ReadFile(archetypePath)
	if os.IsNotExist(err) {
		tmplBytes = []byte(archetypePostMdContent)
	} else if err != nil {
		return "", fmt.Errorf("could not read archetype file %s: %w", archetypePath, err)
	}

	tmpl, err := template.New("archetype").Parse(string(tmplBytes))
	if err != nil {
		return "", fmt.Errorf("failed to parse archetype file %s: %w", archetypePath, err)
	}

	data := struct {
		Title  string
		Author string
		Date   string
	}{
		Title:  title,
		Author: site.Author,
		Date:   now.Format("2006-01-02"),
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, data); err != nil {
		return "", fmt.Errorf("failed to execute archetype template: %w", err)
	}

	if err := os.WriteFile(path, output.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}

const siteYamlContent = `title: My Blog
author: Your Name
baseurl: https://blog.example.com
description: Notes, essays and the occasional rant.
template: simple
social:
  enabled: true
  escape: false
`

const indexMdContent = `---
title: Home
---

Welcome! The latest writing lives under [posts](posts/hello-world.md).
`

const helloWorldMdContent = `---
title: Hello, World
description: The first post on this blog.
date: 2024-01-01
---

This is the first post. Posts get a LinkedIn share button at the bottom
and preview tags in the page head.

` + "```go" + `
fmt.Println("hello, world")
` + "```" + `
`

const archetypePostMdContent = `---
title: {{ printf "%q" .Title }}
author: {{.Author}}
date: {{.Date}}
description:
draft: true
---

Write something meaningful here.
`

const staticCssContent = `body {
  font-family: sans-serif;
  max-width: 700px;
  margin: 2em auto;
  padding: 0 1em;
  line-height: 1.6;
  color: #222;
  background: #fdfdfd;
}
.header-line {
  display: flex;
  justify-content: space-between;
  align-items: baseline;
  gap: 1em;
  margin-bottom: 2em;
  flex-wrap: wrap;
}
.site-name { font-size: 1.2em; font-weight: 400; }
.post-date { font-size: 0.9em; color: #777; font-style: italic; }
main { margin-bottom: 3em; }
footer { text-align: center; font-size: 0.9em; color: #555; }
footer nav a { color: #444; text-decoration: none; margin: 0 0.5em; }
footer nav a:hover { text-decoration: underline; }
pre { padding: 0.75em; overflow-x: auto; }
`

const templateLayoutHtmlContent = `{{ define "main" }}
<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{ if .Title }}{{ .Title }} | {{ end }}{{ .Site.Title }}</title>
  <link rel="stylesheet" href="{{ .BaseHref }}css/style.css">
  <link rel="stylesheet" href="{{ .BaseHref }}css/syntax.css">
  <meta name="description" content="{{ .Description }}">
</head>
<body>
  {{ template "header" . }}
  <main>
    {{ if .IsPost }}<h1>{{ .Title }}</h1>{{ end }}
    {{ .Content }}
  </main>
  {{ template "footer" . }}
</body>
</html>
{{ end }}`

const templateHeaderHtmlContent = `{{ define "header" }}
<header>
  <div class="header-line">
    <div class="site-name"><a href="{{ .BaseHref }}index.html">{{ .Site.Title }}</a></div>
    {{ if .Date }}<div class="post-date">{{ .Date }}</div>{{ end }}
  </div>
</header>
{{ end }}`

const templateFooterHtmlContent = `{{ define "footer" }}
<footer>
  <nav>
    <a href="{{ .BaseHref }}index.html">home</a>
  </nav>
  <div class="copyright">
    &copy; {{ .Site.Title }}{{ if .Author }} &middot; {{ .Author }}{{ end }}
  </div>
</footer>
{{ end }}`
