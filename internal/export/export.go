// Package export writes a recipe as a standalone HTML page.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/five82/galley/internal/markdown"
	"github.com/five82/galley/internal/photo"
	"github.com/five82/galley/internal/recipe"
)

var page = template.Must(template.New("recipe").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 46rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
img { max-width: 100%; border-radius: 8px; }
.meta { color: #666; }
.tag { display: inline-block; background: #eee; border-radius: 4px; padding: 0 .4rem; margin-right: .3rem; font-size: .85rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">by {{.Author}}{{if .Prep}} &middot; {{.Prep}} min{{end}}</p>
{{if .Tags}}<p>{{range .Tags}}<span class="tag">{{.}}</span>{{end}}</p>{{end}}
{{if .Photo}}<img src="{{.Photo}}" alt="{{.Title}}">{{end}}
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{if .Ingredients}}<h2>Ingredients</h2>
{{.Ingredients}}{{end}}
{{if .Process}}<h2>Process</h2>
{{.Process}}{{end}}
<p class="meta">Exported {{.Exported}}</p>
</body>
</html>
`))

type view struct {
	Title       string
	Author      string
	Prep        int
	Tags        []string
	Photo       template.URL
	Description string
	Ingredients template.HTML
	Process     template.HTML
	Exported    string
}

// Render returns the HTML page for r. blob, when non-nil, is embedded as a
// data URI; otherwise an external photo URL is linked.
func Render(r recipe.Recipe, blob *photo.Blob, now time.Time) ([]byte, error) {
	ingredients, err := markdown.SafeHTML(r.IngredientMd)
	if err != nil {
		return nil, err
	}
	process, err := markdown.SafeHTML(r.ProcessMd)
	if err != nil {
		return nil, err
	}
	v := view{
		Title:       r.Title,
		Author:      r.AuthorName,
		Prep:        r.PrepTimeMinutes,
		Description: r.Description,
		Ingredients: template.HTML(ingredients),
		Process:     template.HTML(process),
		Exported:    now.Format("2006-01-02 15:04"),
	}
	for _, t := range r.Tags {
		v.Tags = append(v.Tags, recipe.TagLabel(t))
	}
	switch {
	case blob != nil && len(blob.Data) > 0:
		contentType := blob.ContentType
		if contentType == "" {
			contentType = photo.DefaultContentType
		}
		v.Photo = template.URL("data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(blob.Data))
	case photo.IsExternalURL(r.PhotoURL):
		v.Photo = template.URL(r.PhotoURL)
	}

	var buf bytes.Buffer
	if err := page.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("render export: %w", err)
	}
	return buf.Bytes(), nil
}

// Write renders r into dir and returns the file path.
func Write(dir string, r recipe.Recipe, blob *photo.Blob) (string, error) {
	data, err := Render(r, blob, time.Now())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(r))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

// FileName derives a file name like "42-tomato-soup.html".
func FileName(r recipe.Recipe) string {
	slug := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(r.Title), "-"), "-")
	if slug == "" {
		slug = "recipe"
	}
	if len(slug) > 60 {
		slug = strings.TrimRight(slug[:60], "-")
	}
	if id := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(r.ID), "-"), "-"); id != "" {
		slug = id + "-" + slug
	}
	return slug + ".html"
}
