package testutil

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/pagination"
)

// Rendered is one recorded Render call
type Rendered struct {
	Name string
	Data map[string]interface{}
}

// RecordingRenderer is an echo.Renderer that remembers what it was asked to
// render. Its output is the template name followed by the IDs of the posts in
// page_obj, which is enough to compare two responses.
type RecordingRenderer struct {
	mu    sync.Mutex
	calls []Rendered
}

func (r *RecordingRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	ctx := map[string]interface{}{}
	if m, ok := data.(echo.Map); ok {
		for k, v := range m {
			ctx[k] = v
		}
	}
	ctx["user"] = c.Get("user")

	r.mu.Lock()
	r.calls = append(r.calls, Rendered{Name: name, Data: ctx})
	r.mu.Unlock()

	out := "template=" + name
	if page, ok := ctx["page_obj"].(*pagination.Page[models.Post]); ok {
		ids := make([]string, 0, len(page.Items))
		for _, p := range page.Items {
			ids = append(ids, fmt.Sprint(p.ID))
		}
		out += " posts=" + strings.Join(ids, ",")
	}
	_, err := io.WriteString(w, out)
	return err
}

// Last returns the most recent render, or an empty Rendered
func (r *RecordingRenderer) Last() Rendered {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return Rendered{}
	}
	return r.calls[len(r.calls)-1]
}

// Count returns how many renders happened
func (r *RecordingRenderer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
