package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/repositories"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// SessionCookie is the name of the cookie carrying the session token
	SessionCookie = "session"
	// UserContextKey is where the authenticated *models.User is stored
	UserContextKey = "user"
)

// Sessions issues and verifies session tokens
type Sessions struct {
	secret []byte
	ttl    time.Duration
	secure bool
}

// NewSessions creates a session manager signing tokens with secret.
// secure marks the cookie HTTPS-only.
func NewSessions(secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{secret: []byte(secret), ttl: ttl, secure: secure}
}

// Issue signs a token for user
func (s *Sessions) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := &models.SessionClaims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Parse verifies a token and returns its claims
func (s *Sessions) Parse(tokenString string) (*models.SessionClaims, error) {
	claims := &models.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// Login sets the session cookie for user
func (s *Sessions) Login(c echo.Context, user *models.User) error {
	token, err := s.Issue(user)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.ttl),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(UserContextKey, user)
	return nil
}

// Logout expires the session cookie
func (s *Sessions) Logout(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	c.Set(UserContextKey, nil)
}

// Middleware resolves the session cookie into the current user. Missing,
// invalid or stale cookies leave the request anonymous. Requests carrying a
// bearer token authenticate with it alone, so the cookie is ignored.
func (s *Sessions) Middleware(userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := BearerToken(c.Request()); ok {
				return next(c)
			}
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return next(c)
			}
			claims, err := s.Parse(cookie.Value)
			if err != nil {
				log.WithError(err).Debug("ignoring invalid session cookie")
				return next(c)
			}
			user, err := userRepo.GetUserByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}
				return next(c)
			}
			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user, or nil for guests
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(UserContextKey).(*models.User)
	return user
}
