// Package main provides the entry point for the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/jarruego/tiktok-league/internal/config"
	"github.com/jarruego/tiktok-league/internal/database"
	"github.com/jarruego/tiktok-league/internal/database/migrate"
	"github.com/jarruego/tiktok-league/internal/health"
	matchRouter "github.com/jarruego/tiktok-league/internal/match/router"
	"github.com/jarruego/tiktok-league/internal/middleware"
	playoffRouter "github.com/jarruego/tiktok-league/internal/playoff/router"
	seasonRouter "github.com/jarruego/tiktok-league/internal/season/router"
	standingsRouter "github.com/jarruego/tiktok-league/internal/standings/router"
	teamRouter "github.com/jarruego/tiktok-league/internal/team/router"
	"github.com/jarruego/tiktok-league/pkg/logger"
)

func main() {
	// Optional .env for local development, env vars win.
	_ = godotenv.Load()

	cfg := config.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	appLogger, err := logger.NewWithConfig(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer func() {
		_ = appLogger.Sync()
	}()

	db, err := database.New()
	if err != nil {
		appLogger.Fatalw("failed to connect to database", "error", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			appLogger.Errorw("error closing database", "error", closeErr)
		}
	}()

	if err := migrate.Migrate(db); err != nil {
		appLogger.Fatalw("failed to apply migrations", "error", err)
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(appLogger))
	r.Use(middleware.Recovery(appLogger))
	r.Use(middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	r.Use(cors.Default())

	healthHandler := health.New(db, appLogger)
	r.GET("/health", healthHandler.Check)

	teamRouter.RegisterRoutes(r, db, appLogger)
	matchRouter.RegisterRoutes(r, db, appLogger)
	standingsRouter.RegisterRoutes(r, db, appLogger)
	playoffRouter.RegisterRoutes(r, db, appLogger)
	seasonRouter.RegisterRoutes(r, db, appLogger)

	srv := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		appLogger.Infow("server starting", "address", srv.Addr)
		if serveErr := srv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			appLogger.Fatalw("server failed", "error", serveErr)
		}
	}()

	<-ctx.Done()
	appLogger.Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("graceful shutdown failed", "error", err)
	}
}
