package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/middleware"
	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/repositories"
	"github.com/mdotsev/yatube/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func whoami(c echo.Context) error {
	if user := middleware.CurrentUser(c); user != nil {
		return c.String(http.StatusOK, user.Username)
	}
	return c.String(http.StatusOK, "anonymous")
}

func TestSessionsIssueAndParse(t *testing.T) {
	sessions := middleware.NewSessions("secret", time.Hour, false)
	token, err := sessions.Issue(&models.User{ID: 7, Username: "leo"})
	require.NoError(t, err)

	claims, err := sessions.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "leo", claims.Username)

	_, err = middleware.NewSessions("other", time.Hour, false).Parse(token)
	assert.Error(t, err, "tokens signed with another secret are rejected")

	expired, err := middleware.NewSessions("secret", -time.Minute, false).Issue(&models.User{ID: 7})
	require.NoError(t, err)
	_, err = sessions.Parse(expired)
	assert.Error(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &models.SessionClaims{UserID: 7}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = sessions.Parse(none)
	assert.Error(t, err)
}

func TestSessionMiddleware(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "leo")
	sessions := middleware.NewSessions("secret", time.Hour, false)

	e := echo.New()
	e.Use(sessions.Middleware(repositories.NewPostgresUserRepository(db)))
	e.GET("/whoami", whoami)
	e.GET("/login", func(c echo.Context) error {
		if err := sessions.Login(c, user); err != nil {
			return err
		}
		return whoami(c)
	})

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	assert.Equal(t, "leo", rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middleware.SessionCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "leo", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "garbage"})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())

	// bearer clients never ride on the cookie
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(cookies[0])
	req.Header.Set(echo.HeaderAuthorization, "Bearer some-id-token")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())

	// a token for a user that no longer exists is anonymous too
	ghost, err := sessions.Issue(&models.User{ID: user.ID + 100, Username: "ghost"})
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: ghost})
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestLoginRequired(t *testing.T) {
	e := echo.New()
	e.GET("/create/", whoami, middleware.LoginRequired())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/create/?draft=1", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth/login/?next=/create/%3Fdraft%3D1", rec.Header().Get(echo.HeaderLocation))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/create/", nil))
	assert.Equal(t, "/auth/login/?next=/create/", rec.Header().Get(echo.HeaderLocation))

	e.GET("/edit/", whoami, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.UserContextKey, &models.User{Username: "leo"})
			return next(c)
		}
	}, middleware.LoginRequired())
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/edit/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "leo", rec.Body.String())
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"", "", false},
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer a b", "", false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tt.header != "" {
			req.Header.Set(echo.HeaderAuthorization, tt.header)
		}
		token, ok := middleware.BearerToken(req)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestLoginRedirect(t *testing.T) {
	tests := map[string]string{
		"/create/":                 "/auth/login/?next=/create/",
		"/profile/leo/follow/":     "/auth/login/?next=/profile/leo/follow/",
		"/follow/?page=2":          "/auth/login/?next=/follow/%3Fpage%3D2",
		"/posts/1/edit/?a=1&b=two": "/auth/login/?next=/posts/1/edit/%3Fa%3D1%26b%3Dtwo",
	}
	for next, want := range tests {
		assert.Equal(t, want, middleware.LoginRedirect(next), next)
	}
}

type fakeVerifier map[string]string

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	uid, ok := f[idToken]
	if !ok {
		return nil, errors.New("invalid token")
	}
	return &auth.Token{UID: uid}, nil
}

func TestFirebaseAuthMiddleware(t *testing.T) {
	db := testutil.NewDB(t)
	userRepo := repositories.NewPostgresUserRepository(db)
	uid := "uid-leo"
	require.NoError(t, userRepo.CreateUser(context.Background(), &models.User{Username: "leo", FirebaseUID: &uid}))

	e := echo.New()
	e.Use(middleware.FirebaseAuthMiddleware(fakeVerifier{"good": uid, "unlinked": "uid-anna"}, userRepo))
	e.GET("/whoami", whoami)

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"no header", "", http.StatusOK, "anonymous"},
		{"linked user", "Bearer good", http.StatusOK, "leo"},
		{"malformed header", "Token good", http.StatusUnauthorized, ""},
		{"invalid token", "Bearer bad", http.StatusUnauthorized, ""},
		{"unlinked user", "Bearer unlinked", http.StatusUnauthorized, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
			}
		})
	}
}
