package web

import (
	"fmt"
	"path/filepath"

	"github.com/aymerick/raymond"
)

// Renderer holds the parsed handlebars templates. Templates are parsed
// once at startup; a parse failure is a startup error, not a per-request
// one.
type Renderer struct {
	gallery *raymond.Template
	view    *raymond.Template
}

// NewRenderer parses the gallery templates from templateDir.
func NewRenderer(templateDir string) (*Renderer, error) {
	gallery, err := raymond.ParseFile(filepath.Join(templateDir, "gallery.hbs"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse gallery template: %w", err)
	}

	view, err := raymond.ParseFile(filepath.Join(templateDir, "view.hbs"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse view template: %w", err)
	}

	return &Renderer{
		gallery: gallery,
		view:    view,
	}, nil
}

// RenderGallery renders the paginated gallery page.
func (r *Renderer) RenderGallery(ctx interface{}) (string, error) {
	return r.gallery.Exec(ctx)
}

// RenderView renders the single-image viewer page.
func (r *Renderer) RenderView(ctx interface{}) (string, error) {
	return r.view.Exec(ctx)
}
