package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mdotsev/yatube/internal/middleware"
	"github.com/mdotsev/yatube/internal/monitoring"
	"github.com/mdotsev/yatube/internal/render"
	"github.com/mdotsev/yatube/internal/router"
	"github.com/mdotsev/yatube/pkg/config"
	"github.com/mdotsev/yatube/pkg/firebase"
	"github.com/mdotsev/yatube/validators"
	"github.com/mdotsev/yatube/web"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const (
	sessionTTL      = 72 * time.Hour
	shutdownTimeout = 10 * time.Second
)

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	config.SetupLogging(cfg)

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()

	if err := config.Migrate(db.Postgres); err != nil {
		return err
	}

	cacheStore, err := config.NewCacheStore(ctx, cfg, db)
	if err != nil {
		return err
	}
	media, err := config.NewMediaStorage(ctx, cfg)
	if err != nil {
		return err
	}

	var firebaseAuth middleware.TokenVerifier
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
	switch {
	case err == nil:
		firebaseAuth = firebaseApp.AuthClient
	case errors.Is(err, firebase.ErrNotConfigured):
		log.Info("Firebase login disabled.")
	default:
		return err
	}

	renderer, err := render.New(web.Templates, "templates", media.URL)
	if err != nil {
		return err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = validators.NewValidator()

	config.SetupMiddleware(e, cfg)
	router.SetupRoutes(e, &router.Dependencies{
		DB:           db.Postgres,
		CacheStore:   cacheStore,
		Media:        media,
		Sessions:     middleware.NewSessions(cfg.JWTSecret, sessionTTL, cfg.IsProduction()),
		Metrics:      monitoring.NewMetrics(),
		FirebaseAuth: firebaseAuth,
		PostsAmount:  cfg.PostsAmount,
		MediaURL:     cfg.MediaURL,
	})

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
