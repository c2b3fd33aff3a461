package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/repositories"
	"gorm.io/gorm"
)

// TokenVerifier verifies Firebase ID tokens; *auth.Client implements it
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuthMiddleware authenticates requests carrying a Firebase ID token
// in a Bearer Authorization header, for clients that do not keep a session
// cookie. Such requests never use the session cookie and are exempt from
// CSRF checks. The token must belong to a user already linked to the Firebase UID.
// Requests without the header pass through untouched.
func FirebaseAuthMiddleware(verifier TokenVerifier, userRepo repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" || CurrentUser(c) != nil {
				return next(c)
			}

			idToken, ok := BearerToken(c.Request())
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			ctx := c.Request().Context()
			token, err := verifier.VerifyIDToken(ctx, idToken)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired ID token")
			}

			user, err := userRepo.GetUserByFirebaseUID(ctx, token.UID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return echo.NewHTTPError(http.StatusUnauthorized, "No account is linked to this Firebase user")
				}
				return err
			}
			c.Set(UserContextKey, user)
			return next(c)
		}
	}
}

// BearerToken returns the token of a "Bearer <token>" Authorization header
func BearerToken(r *http.Request) (string, bool) {
	parts := strings.Split(r.Header.Get(echo.HeaderAuthorization), " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
