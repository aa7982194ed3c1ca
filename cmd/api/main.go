package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"filament-inventory-api/internal/cache"
	"filament-inventory-api/internal/config"
	"filament-inventory-api/internal/handler"
	"filament-inventory-api/internal/logger"
	"filament-inventory-api/internal/middleware"
	"filament-inventory-api/internal/repository"
	"filament-inventory-api/internal/router"
	"filament-inventory-api/internal/service"

	"golang.org/x/exp/slog"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	log := logger.New(cfg.App.Environment)
	slog.SetDefault(log)
	log.Info("starting filament inventory API",
		slog.String("version", cfg.App.Version),
		slog.String("env", cfg.App.Environment),
	)

	if cfg.Auth.EditToken == "" {
		log.Warn("EDIT_TOKEN is empty, every write will be rejected")
	}

	// Initialize filament repository based on config
	repo, err := openRepository(cfg, log)
	if err != nil {
		log.Error("failed to initialize repository", slog.String("type", cfg.InventoryDB.Type), logger.Err(err))
		os.Exit(1)
	}
	defer repo.Close()

	// Initialize list cache (optional)
	listCache := openCache(cfg, log)
	if listCache != nil {
		defer listCache.Close()
	}

	// Initialize services
	filamentService := service.NewFilamentService(repo, service.FilamentServiceConfig{
		Cache:        listCache,
		CacheTTL:     cfg.Cache.TTL,
		Canonicalize: cfg.App.CanonicalizeOnWrite,
		Logger:       log,
	})

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Name, cfg.App.Version, filamentService)
	filamentHandler := handler.NewFilamentHandler(filamentService)
	adminHandler := handler.NewAdminHandler(filamentService, cfg.InventoryDB.Type, cfg.Cache.Type)
	authHandler := handler.NewAuthHandler()

	authMiddleware := middleware.NewAuthMiddleware(middleware.AuthConfig{
		EditToken: cfg.Auth.EditToken,
		Logger:    log,
	})

	// Create router
	r := router.New(router.Config{
		Handler:         healthHandler,
		FilamentHandler: filamentHandler,
		AdminHandler:    adminHandler,
		AuthHandler:     authHandler,
		AuthMiddleware:  authMiddleware,
		AllowedOrigins:  cfg.Auth.Origins(),
		Logger:          log,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", slog.String("addr", cfg.Server.Address()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", logger.Err(err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown error", logger.Err(err))
	}

	log.Info("server stopped")
}

func openRepository(cfg *config.Config, log *slog.Logger) (repository.FilamentRepository, error) {
	switch cfg.InventoryDB.Type {
	case "postgres", "postgresql":
		return repository.NewPostgresFilamentRepository(cfg.InventoryDB.PostgresDSN(), log)
	case "mysql":
		return repository.NewMySQLFilamentRepository(cfg.MySQL.DSN(), log)
	case "sqlite", "":
		return repository.NewSQLiteFilamentRepository(cfg.InventoryDB.Path, log)
	default:
		return nil, fmt.Errorf("unknown INVENTORY_DB_TYPE %q", cfg.InventoryDB.Type)
	}
}

// openCache returns nil when caching is disabled or Redis is unreachable.
func openCache(cfg *config.Config, log *slog.Logger) cache.Cache {
	switch cfg.Cache.Type {
	case "memory":
		log.Info("memory list cache enabled", slog.Duration("ttl", cfg.Cache.TTL))
		return cache.NewMemoryCache()
	case "redis":
		rc, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.Cache.RedisAddress(),
			Password:  cfg.Cache.RedisPassword,
			DB:        cfg.Cache.RedisDB,
			KeyPrefix: cfg.Cache.RedisKeyPrefix,
		}, log)
		if err != nil {
			log.Warn("redis connection failed, list cache disabled", logger.Err(err))
			return nil
		}
		return rc
	default:
		return nil
	}
}
