// Package render renders the embedded HTML templates through Echo.
package render

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/mdotsev/yatube/internal/middleware"
)

const (
	layout   = "base.html"
	includes = "includes/*.html"
)

// Renderer implements echo.Renderer. Every page template is parsed together
// with the layout and the includes so pages can override the layout blocks.
type Renderer struct {
	pages map[string]*template.Template
}

// URLFunc maps a media key to its public URL
type URLFunc func(key string) string

// New parses every page under root in fsys
func New(fsys fs.FS, root string, mediaURL URLFunc) (*Renderer, error) {
	sub, err := fs.Sub(fsys, root)
	if err != nil {
		return nil, err
	}
	funcs := Funcs(mediaURL)

	r := &Renderer{pages: map[string]*template.Template{}}
	err = fs.WalkDir(sub, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == layout || path.Dir(p) == "includes" || !strings.HasSuffix(p, ".html") {
			return nil
		}
		t, err := template.New(layout).Funcs(funcs).ParseFS(sub, layout, includes, p)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[p] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Has reports whether a page template exists
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

// Render executes page name with data plus the request-wide values: the
// current user, the CSRF token and the request path
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	return t.ExecuteTemplate(w, layout, Context(data, c))
}

// Context merges data with the values every page can use
func Context(data interface{}, c echo.Context) map[string]interface{} {
	ctx := map[string]interface{}{}
	switch d := data.(type) {
	case echo.Map:
		for k, v := range d {
			ctx[k] = v
		}
	case map[string]interface{}:
		for k, v := range d {
			ctx[k] = v
		}
	case nil:
	default:
		ctx["data"] = d
	}
	if c != nil {
		ctx["user"] = middleware.CurrentUser(c)
		ctx["csrf_token"], _ = c.Get(echomw.DefaultCSRFConfig.ContextKey).(string)
		ctx["request_path"] = c.Request().URL.Path
	}
	return ctx
}
