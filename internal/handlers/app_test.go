package handlers_test

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/cache"
	"github.com/mdotsev/yatube/internal/middleware"
	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/router"
	"github.com/mdotsev/yatube/internal/storage"
	"github.com/mdotsev/yatube/internal/testutil"
	"github.com/mdotsev/yatube/pkg/config"
	"github.com/mdotsev/yatube/validators"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const postsAmount = 10

type testApp struct {
	e        *echo.Echo
	db       *gorm.DB
	renderer *testutil.RecordingRenderer
	sessions *middleware.Sessions
	pages    *cache.PageCache
	media    *storage.LocalStorage
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithFirebase(t, nil)
}

func newTestAppWithFirebase(t *testing.T, verifier middleware.TokenVerifier) *testApp {
	t.Helper()
	return buildTestApp(t, verifier, &config.Config{MediaURL: "/media/"})
}

// newCSRFTestApp is a test app with CSRF protection switched on
func newCSRFTestApp(t *testing.T, verifier middleware.TokenVerifier) *testApp {
	t.Helper()
	return buildTestApp(t, verifier, &config.Config{MediaURL: "/media/", CSRFEnabled: true})
}

func buildTestApp(t *testing.T, verifier middleware.TokenVerifier, cfg *config.Config) *testApp {
	t.Helper()
	a := &testApp{
		e:        echo.New(),
		db:       testutil.NewDB(t),
		renderer: &testutil.RecordingRenderer{},
		sessions: middleware.NewSessions("test-secret", time.Hour, false),
		media:    storage.NewLocalStorage(t.TempDir(), "/media/"),
	}
	a.e.Renderer = a.renderer
	a.e.Validator = validators.NewValidator()

	config.SetupMiddleware(a.e, cfg)
	a.pages = router.SetupRoutes(a.e, &router.Dependencies{
		DB:           a.db,
		CacheStore:   cache.NewMemoryStore(64, time.Minute),
		Media:        a.media,
		Sessions:     a.sessions,
		FirebaseAuth: verifier,
		PostsAmount:  postsAmount,
		MediaURL:     "/media/",
	})
	return a
}

// do sends a request as user (nil for a guest). A non-nil form is sent
// url-encoded.
func (a *testApp) do(t *testing.T, method, target string, form url.Values, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	}
	return a.serve(t, req, user)
}

// upload sends a multipart form with an optional image file
func (a *testApp) upload(t *testing.T, target string, fields map[string]string, image []byte, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("image", "small.gif")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return a.serve(t, req, user)
}

func (a *testApp) serve(t *testing.T, req *http.Request, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	if user != nil {
		token, err := a.sessions.Issue(user)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) countPosts(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, a.db.Model(&models.Post{}).Count(&count).Error)
	return count
}

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}
