package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ledger_app_echo/internal/config"
	"ledger_app_echo/internal/handlers"
	"ledger_app_echo/internal/ledger"
	ledgerMiddleware "ledger_app_echo/internal/middleware"
	"ledger_app_echo/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize Database
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := services.InitDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migration
	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis
	var cache services.Cache
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			slog.Warn("Redis initialization failed, alerts will not be cached", "error", err)
		} else {
			defer redisCache.Close()
			cache = redisCache
		}
	}

	// Initialize Firebase
	var verifier ledgerMiddleware.TokenVerifier
	if cfg.FirebaseCredPath != "" {
		authClient, err := services.InitFirebase(context.Background(), cfg.FirebaseCredPath)
		if err != nil {
			log.Fatalf("Firebase initialization failed: %v", err)
		}
		verifier = authClient
	} else {
		slog.Warn("FIREBASE_CREDENTIALS_PATH not set, trusting the " + ledgerMiddleware.ActorHeader + " header")
	}

	engine := services.EngineConfig{
		Location:       cfg.Location,
		DueHour:        cfg.DueHour,
		CollectSplits:  cfg.CollectSplits,
		AlertsCacheTTL: cfg.AlertsCacheTTL,
	}
	ledgerService := services.NewLedgerService(db, ledger.NewSplitter(cfg.Ratios), cfg.BucketOwners, engine)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = ledgerMiddleware.CustomErrorHandler
	e.Server.ReadTimeout = 15 * time.Second
	e.Server.WriteTimeout = 30 * time.Second

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("1M"))

	handlers.Register(e, handlers.Services{
		Billing:       services.NewBillingService(db, ledgerService, cache, engine),
		Ledger:        ledgerService,
		Plans:         services.NewPlanService(db, engine),
		Subscriptions: services.NewSubscriptionService(db, engine),
	}, verifier)

	// Start server
	go func() {
		slog.Info("Server starting", "port", cfg.Port, "timezone", cfg.Location.String())
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}
