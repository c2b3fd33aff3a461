package router

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/cache"
	"github.com/mdotsev/yatube/internal/handlers"
	"github.com/mdotsev/yatube/internal/middleware"
	"github.com/mdotsev/yatube/internal/monitoring"
	"github.com/mdotsev/yatube/internal/repositories"
	"github.com/mdotsev/yatube/internal/services"
	"github.com/mdotsev/yatube/internal/storage"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// IndexCacheKeyPrefix prefixes the cache keys of the index page
const IndexCacheKeyPrefix = "index_page:"

// Dependencies are the services the routes are built on
type Dependencies struct {
	DB         *gorm.DB
	CacheStore cache.Store
	Media      storage.Storage
	Sessions   *middleware.Sessions
	Metrics    *monitoring.Metrics
	// FirebaseAuth is optional; nil disables Firebase login
	FirebaseAuth middleware.TokenVerifier
	PostsAmount  int
	MediaURL     string
}

// SetupRoutes configures all application routes and injects dependencies.
// It returns the index page cache so callers can invalidate it.
func SetupRoutes(e *echo.Echo, deps *Dependencies) *cache.PageCache {
	e.HTTPErrorHandler = HTTPErrorHandler(e)

	if deps.Metrics != nil {
		e.Use(deps.Metrics.Middleware())
		e.GET("/metrics", deps.Metrics.Handler())
	}
	e.GET("/health", handlers.HealthCheck(deps.DB))

	// --- Initialize Repositories ---
	userRepo := repositories.NewPostgresUserRepository(deps.DB)
	groupRepo := repositories.NewPostgresGroupRepository(deps.DB)
	postRepo := repositories.NewPostgresPostRepository(deps.DB)
	commentRepo := repositories.NewPostgresCommentRepository(deps.DB)
	followRepo := repositories.NewPostgresFollowRepository(deps.DB)

	followService := services.NewFollowService(followRepo, postRepo, deps.PostsAmount)

	e.Use(deps.Sessions.Middleware(userRepo))
	if deps.FirebaseAuth != nil {
		e.Use(middleware.FirebaseAuthMiddleware(deps.FirebaseAuth, userRepo))
	}
	loginRequired := middleware.LoginRequired()

	if local, ok := deps.Media.(*storage.LocalStorage); ok && deps.MediaURL != "" {
		e.Static(strings.TrimSuffix(deps.MediaURL, "/"), local.Root())
	}

	indexCache := cache.NewPageCache(deps.CacheStore, IndexCacheKey)

	authHandler := handlers.NewAuthHandler(userRepo, deps.Sessions, deps.FirebaseAuth)
	authHandler.RegisterAuthRoutes(e.Group("/auth"))

	postHandler := handlers.NewPostHandler(postRepo, groupRepo, userRepo, commentRepo, followService, deps.Media, deps.PostsAmount)
	postHandler.RegisterPostRoutes(e, indexCache.Middleware(), loginRequired)

	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo)
	commentHandler.RegisterCommentRoutes(e, loginRequired)

	feedHandler := handlers.NewFeedHandler(followService)
	feedHandler.RegisterFeedRoutes(e, loginRequired)

	followHandler := handlers.NewFollowHandler(userRepo, followService)
	followHandler.RegisterFollowRoutes(e, loginRequired)

	handlers.RegisterAboutRoutes(e)

	log.Debug("All routes configured.")
	return indexCache
}

// IndexCacheKey keys the index page by viewer and full request URI, so each
// page number and each user's navigation bar is cached separately
func IndexCacheKey(c echo.Context) string {
	viewer := "anon"
	if user := middleware.CurrentUser(c); user != nil {
		viewer = user.Username
	}
	return IndexCacheKeyPrefix + viewer + ":" + c.Request().URL.RequestURI()
}

var errorTemplates = map[int]string{
	http.StatusNotFound:            "core/404.html",
	http.StatusForbidden:           "core/403csrf.html",
	http.StatusInternalServerError: "core/500.html",
}

// HTTPErrorHandler renders 403, 404 and 500 errors with the core templates and
// falls back to Echo's handler for the rest
func HTTPErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
		}
		if code >= http.StatusInternalServerError {
			log.WithFields(log.Fields{
				"method": c.Request().Method,
				"uri":    c.Request().RequestURI,
			}).WithError(err).Error("request failed")
			code = http.StatusInternalServerError
		}

		name, ok := errorTemplates[code]
		if !ok || c.Request().Method == http.MethodHead {
			e.DefaultHTTPErrorHandler(err, c)
			return
		}
		if rerr := c.Render(code, name, nil); rerr != nil {
			log.WithError(rerr).WithField("template", name).Error("failed to render error page")
			e.DefaultHTTPErrorHandler(err, c)
		}
	}
}
