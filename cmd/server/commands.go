package main

import (
	"fmt"

	"github.com/mdotsev/yatube/internal/cache"
	"github.com/mdotsev/yatube/internal/models"
	"github.com/mdotsev/yatube/internal/repositories"
	"github.com/mdotsev/yatube/pkg/config"
	"github.com/mdotsev/yatube/validators"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg := config.Load()
	config.SetupLogging(cfg)

	db, err := config.InitDB(cfg)
	if err != nil {
		return err
	}
	defer db.CloseDB()
	return config.Migrate(db.Postgres)
}

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the page cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached page",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			config.SetupLogging(cfg)
			if cfg.CacheBackend == "" || cfg.CacheBackend == "memory" {
				log.Warn("memory cache lives inside the server process; restart the server to clear it")
				return nil
			}

			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}
			defer db.CloseDB()

			store, err := config.NewCacheStore(cmd.Context(), cfg, db)
			if err != nil {
				return err
			}
			if err := cache.NewPageCache(store, nil).Invalidate(cmd.Context()); err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			log.WithField("backend", cfg.CacheBackend).Info("page cache cleared")
			return nil
		},
	})
	return cacheCmd
}

func newGroupCmd() *cobra.Command {
	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Manage post groups",
	}

	var req models.CreateGroupRequest
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validators.NewValidator().Validate(&req); err != nil {
				return err
			}

			cfg := config.Load()
			config.SetupLogging(cfg)
			db, err := config.InitDB(cfg)
			if err != nil {
				return err
			}
			defer db.CloseDB()

			group := &models.Group{Title: req.Title, Slug: req.Slug, Description: req.Description}
			if err := repositories.NewPostgresGroupRepository(db.Postgres).CreateGroup(cmd.Context(), group); err != nil {
				return fmt.Errorf("create group: %w", err)
			}
			log.WithFields(log.Fields{"id": group.ID, "slug": group.Slug}).Info("group created")
			return nil
		},
	}
	createCmd.Flags().StringVar(&req.Title, "title", "", "group title")
	createCmd.Flags().StringVar(&req.Slug, "slug", "", "unique group slug")
	createCmd.Flags().StringVar(&req.Description, "description", "", "group description")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("slug")

	groupCmd.AddCommand(createCmd)
	return groupCmd
}
