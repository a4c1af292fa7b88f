package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msomdec/gallery-admin/internal/config"
	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/github"
	"github.com/msomdec/gallery-admin/internal/handler"
	"github.com/msomdec/gallery-admin/internal/repository/sqlite"
	"github.com/msomdec/gallery-admin/internal/service"
	"github.com/msomdec/gallery-admin/internal/sheets"
)

// Five login attempts per client, refilled at one a minute.
const (
	loginBurst    = 5
	loginRefill   = 1.0 / 60
	shutdownGrace = 5 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the admin web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			slog.Error("invalid configuration", "error", err)
			return err
		}
		return serve(cmd.Context(), cfg)
	},
}

func serve(parent context.Context, cfg *config.Config) error {
	passwordHash := cfg.Auth.AdminPasswordHash
	if passwordHash == "" {
		hash, err := service.HashPassword(cfg.Auth.AdminPassword, cfg.Auth.BcryptCost)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		passwordHash = hash
	}

	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return err
	}
	defer db.Close()

	if err := db.Migrate(parent); err != nil {
		slog.Error("failed to run migrations", "error", err)
		return err
	}
	slog.Info("database migrations applied")

	defaults := domain.DefaultSettings()
	defaults.RepoOwner = cfg.GitHub.Owner
	defaults.RepoName = cfg.GitHub.Repo
	if cfg.GitHub.Branch != "" {
		defaults.Branch = cfg.GitHub.Branch
	}
	if cfg.GitHub.GalleryPath != "" {
		defaults.GalleryPath = cfg.GitHub.GalleryPath
	}

	stores := func(s domain.Settings) (domain.ContentStore, error) {
		client, err := github.New(github.Config{
			Owner:   s.RepoOwner,
			Repo:    s.RepoName,
			Branch:  s.Branch,
			Token:   cfg.GitHub.Token,
			BaseURL: cfg.GitHub.BaseURL,
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}

	catalog, err := newCatalog(parent, cfg)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(passwordHash, cfg.Auth.JWTSecret)
	settingsService := service.NewSettingsService(db.Settings(), defaults, stores)
	galleryService := service.NewGalleryService(settingsService, db.Commits())

	limiter := service.NewTokenBucket(loginRefill, loginBurst)
	defer limiter.Close()

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Auth:           authService,
		Limiter:        limiter,
		Gallery:        galleryService,
		Settings:       settingsService,
		Catalog:        catalog,
		DB:             db,
		Workers:        cfg.Images.Workers,
		MaxUploadBytes: int64(cfg.Images.MaxUploadMB) << 20,
		SecureCookies:  cfg.Server.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler.SecurityHeaders(handler.LogRequests(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			slog.Error("server error", "error", err)
			return err
		}
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		return err
	}
	slog.Info("server stopped")
	return nil
}

// newCatalog builds the public list service. Without an API key the lists
// answer "not configured".
func newCatalog(ctx context.Context, cfg *config.Config) (*service.CatalogService, error) {
	ttl, err := cfg.SheetsCacheTTL()
	if err != nil {
		return nil, err
	}
	catalogCfg := service.CatalogConfig{
		FoodSpreadsheetID:  cfg.Sheets.FoodSpreadsheetID,
		BooksSpreadsheetID: cfg.Sheets.BooksSpreadsheetID,
		GearSpreadsheetID:  cfg.Sheets.GearSpreadsheetID,
		CacheTTL:           ttl,
	}
	if cfg.Sheets.APIKey == "" {
		slog.Info("sheets api key not set, public lists disabled")
		return service.NewCatalogService(nil, catalogCfg), nil
	}
	client, err := sheets.New(ctx, sheets.Config{APIKey: cfg.Sheets.APIKey})
	if err != nil {
		return nil, err
	}
	return service.NewCatalogService(client, catalogCfg), nil
}
