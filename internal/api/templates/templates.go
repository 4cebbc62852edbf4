// Package templates renders the admin HTML pages. Every page is parsed
// together with layout.html and executes its "layout" template.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/pkg/money"
)

//go:embed *.html
var files embed.FS

const layoutFile = "layout.html"

// Renderer implements echo.Renderer over the embedded pages.
type Renderer struct {
	pages map[string]*template.Template
}

var _ echo.Renderer = (*Renderer)(nil)

var funcs = template.FuncMap{
	"brl": func(d decimal.Decimal) string { return money.BRL(d) },
	"active": func(s domain.Status) bool {
		return s == domain.StatusActive
	},
}

// New parses every page in the embedded set.
func New() (*Renderer, error) {
	names, err := fs.Glob(files, "*.html")
	if err != nil {
		return nil, err
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(names))}
	for _, name := range names {
		if name == layoutFile {
			continue
		}
		t, err := template.New(path.Base(name)).Funcs(funcs).ParseFS(files, layoutFile, name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// MustNew is New for package initialization; it panics on a broken template.
func MustNew() *Renderer {
	r, err := New()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
