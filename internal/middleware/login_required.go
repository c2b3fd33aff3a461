package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

// LoginURL is where guests are sent to authenticate
const LoginURL = "/auth/login/"

// LoginRequired redirects guests to the login page, remembering the page
// they asked for in the next parameter
func LoginRequired() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentUser(c) != nil {
				return next(c)
			}
			return c.Redirect(http.StatusFound, LoginRedirect(c.Request().URL.RequestURI()))
		}
	}
}

// LoginRedirect builds the login URL for next. Slashes stay readable, other
// query-significant characters are escaped.
func LoginRedirect(next string) string {
	return LoginURL + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}
