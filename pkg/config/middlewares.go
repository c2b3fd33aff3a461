package config

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	appmiddleware "github.com/mdotsev/yatube/internal/middleware"
	log "github.com/sirupsen/logrus"
)

// SetupMiddleware configures the global Echo middleware
func SetupMiddleware(e *echo.Echo, cfg *Config) {
	mediaPrefix := strings.TrimSuffix(cfg.MediaURL, "/") + "/"
	e.Pre(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		Skipper: func(c echo.Context) bool {
			req := c.Request()
			if req.Method != http.MethodGet && req.Method != http.MethodHead {
				return true
			}
			p := req.URL.Path
			return p == "/health" || p == "/metrics" || strings.HasPrefix(p, mediaPrefix)
		},
		RedirectCode: http.StatusMovedPermanently,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := log.WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.Round(time.Microsecond).String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Warn("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if cfg.CSRFEnabled {
		e.Use(middleware.CSRFWithConfig(middleware.CSRFConfig{
			TokenLookup:    "form:csrf_token",
			CookiePath:     "/",
			CookieHTTPOnly: true,
			CookieSecure:   cfg.IsProduction(),
			CookieSameSite: http.SameSiteLaxMode,
			Skipper: func(c echo.Context) bool {
				// ID tokens are verified with Firebase instead
				if _, ok := appmiddleware.BearerToken(c.Request()); ok {
					return true
				}
				return c.Request().URL.Path == "/auth/firebase/"
			},
			ErrorHandler: func(err error, c echo.Context) error {
				return echo.NewHTTPError(http.StatusForbidden, "CSRF verification failed")
			},
		}))
	}
}
