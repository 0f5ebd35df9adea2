package view

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed assets
var assetFS embed.FS

const baseTemplate = "templates/_base.gohtml"

// Renderer holds one parsed template set per page, each layered on the base layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the embedded page templates.
func NewRenderer() (*Renderer, error) {
	files, err := fs.Glob(templateFS, "templates/*.gohtml")
	if err != nil {
		return nil, fmt.Errorf("view: list templates: %w", err)
	}
	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := path.Base(file)
		if strings.HasPrefix(name, "_") {
			continue
		}
		tmpl, err := template.New(name).Option("missingkey=error").ParseFS(templateFS, baseTemplate, file)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", name, err)
		}
		pages[strings.TrimSuffix(name, path.Ext(name))] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Page returns the template set for a page name such as "students".
func (r *Renderer) Page(name string) (*template.Template, bool) {
	tmpl, ok := r.pages[name]
	return tmpl, ok
}

// Assets serves the embedded stylesheet directory.
func Assets() http.FileSystem {
	sub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}
