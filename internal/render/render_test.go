package render_test

import (
	"bytes"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/forms"
	"github.com/mdotsev/yatube/internal/middleware"
	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/pagination"
	"github.com/mdotsev/yatube/internal/render"
	"github.com/mdotsev/yatube/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	r, err := render.New(web.Templates, "templates", func(key string) string { return "/media/" + key })
	require.NoError(t, err)
	return r
}

func newContext(path string, user *models.User) echo.Context {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, path, nil), httptest.NewRecorder())
	if user != nil {
		c.Set(middleware.UserContextKey, user)
	}
	return c
}

func TestEveryPageParses(t *testing.T) {
	r := newRenderer(t)
	for _, name := range []string{
		"posts/index.html", "posts/follow.html", "posts/group_list.html",
		"posts/profile.html", "posts/post_detail.html", "posts/create_post.html",
		"users/signup.html", "users/login.html", "users/logged_out.html",
		"about/author.html", "about/tech.html",
		"core/404.html", "core/403csrf.html", "core/500.html",
	} {
		assert.True(t, r.Has(name), name)
	}
	assert.False(t, r.Has("base.html"))
	assert.False(t, r.Has("includes/header.html"))
}

func TestRenderIndex(t *testing.T) {
	r := newRenderer(t)
	author := models.User{ID: 1, Username: "leo", FirstName: "Leo", LastName: "Tolstoy"}
	group := &models.Group{ID: 1, Title: "Classics", Slug: "classics"}
	posts := make([]models.Post, 0, 10)
	for i := 0; i < 10; i++ {
		posts = append(posts, models.Post{ID: uint(i + 1), Text: "line one\nline <two>", Created: time.Now(), Author: author, Group: group, Image: "posts/a.gif"})
	}
	page := &pagination.Page[models.Post]{Items: posts, Number: 1, NumPages: 2, Count: 13, PerPage: 10}

	var buf bytes.Buffer
	err := r.Render(&buf, "posts/index.html", echo.Map{"main": true, "page_obj": page}, newContext("/", &author))
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "Latest posts")
	assert.Contains(t, html, `href="/profile/leo/"`)
	assert.Contains(t, html, "Leo Tolstoy")
	assert.Contains(t, html, "line one<br>line &lt;two&gt;")
	assert.Contains(t, html, `src="/media/posts/a.gif"`)
	assert.Contains(t, html, `href="/group/classics/"`)
	assert.Contains(t, html, `href="?page=2"`)
	assert.Contains(t, html, "Log out")
	assert.Contains(t, html, `href="/follow/"`)
}

func TestRenderAnonymousHeaderAndForms(t *testing.T) {
	r := newRenderer(t)

	form := forms.New(map[string]string{"username": "leo"})
	form.AddNonFieldError("Please enter a correct username and password.")

	var buf bytes.Buffer
	err := r.Render(&buf, "users/login.html", echo.Map{"form": form, "next": "/create/"}, newContext("/auth/login/", nil))
	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, "Sign up")
	assert.NotContains(t, html, "Log out")
	assert.Contains(t, html, `value="leo"`)
	assert.Contains(t, html, `value="/create/"`)
	assert.Contains(t, html, "Please enter a correct username and password.")
}

func TestRenderNotFound(t *testing.T) {
	r := newRenderer(t)
	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, "core/404.html", nil, newContext("/nowhere/", nil)))
	assert.Contains(t, buf.String(), "/nowhere/")

	assert.Error(t, r.Render(&buf, "posts/missing.html", nil, newContext("/", nil)))
}

func TestFuncs(t *testing.T) {
	funcs := render.Funcs(nil)
	assert.Equal(t, "posts/a.gif", funcs["media"].(func(string) string)("posts/a.gif"))
	assert.Equal(t, template.HTML("a<br>b &amp; c"), funcs["linebreaksbr"].(func(string) template.HTML)("a\r\nb & c"))
	assert.Equal(t, "Приве…", funcs["truncatechars"].(func(int, string) string)(5, "Привет"))
	assert.Equal(t, "short", funcs["truncatechars"].(func(int, string) string)(10, "short"))
}
