// Package main is the entry point for the TeleMart API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telemart/internal/auth"
	"telemart/internal/cache"
	"telemart/internal/catalog"
	"telemart/internal/config"
	"telemart/internal/database"
	"telemart/internal/handlers"
	"telemart/internal/middleware"
	"telemart/internal/orders"
	"telemart/internal/reviews"
	"telemart/internal/router"
	"telemart/internal/storage"
	"telemart/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible catalog cache).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	productStore := store.NewProductStore(db)
	orderStore := store.NewOrderStore(db)
	reviewStore := store.NewReviewStore(db)

	// Connect to S3-compatible object storage (optional — app works without it).
	var storageClient *storage.Client
	if cfg.S3Configured() {
		storageClient, err = storage.New(
			cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
			cfg.S3Bucket, cfg.S3PublicURL,
		)
		if err != nil {
			slog.Error("failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"bucket", cfg.S3Bucket,
		)
	} else {
		slog.Warn("s3 storage not configured — media uploads disabled")
	}

	// Telegram login verification and JWT issuing.
	tokens := auth.NewTokenManager(cfg.JWTSecret)
	authService := auth.NewService(userStore, tokens, cfg.TelegramBotToken, cfg.AdminTelegramID)

	// Domain services.
	catalogManager := catalog.NewManager(categoryStore, productStore)
	orderService := orders.NewService(orderStore, userStore)
	reviewService := reviews.NewService(reviewStore, orderStore)

	// Catalog responses are cached in Valkey and invalidated on writes.
	catalogCache := cache.NewCatalogCache(valkeyClient, cache.DefaultCatalogTTL)

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(authService)
	categoryHandlers := handlers.NewCategories(catalogManager, categoryStore, catalogCache, storageClient)
	productHandlers := handlers.NewProducts(catalogManager, productStore, reviewStore, catalogCache, storageClient)
	orderHandlers := handlers.NewOrders(orderService)
	reviewHandlers := handlers.NewReviews(reviewService, reviewStore, catalogCache)
	mediaHandlers := handlers.NewMedia(storageClient)

	// Login endpoint rate limit — each attempt costs HMAC verification and a
	// user upsert, so cap per-IP attempts well below anything a real client needs.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()

	// Set up the Chi router with all middleware and routes.
	r := router.New(authService, loginLimiter, authHandlers, categoryHandlers, productHandlers, orderHandlers, reviewHandlers, mediaHandlers)

	// Create the HTTP server with sensible timeouts.
	// WriteTimeout must accommodate media uploads (up to 10 MB) pushed
	// through to object storage.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
