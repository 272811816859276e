package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"social-dashboard/cache"
	"social-dashboard/config"
	"social-dashboard/generator"
	"social-dashboard/handler"
	appLogger "social-dashboard/logger"
	"social-dashboard/middleware"
	redisClient "social-dashboard/redis"
	"social-dashboard/storage"
	"social-dashboard/store"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg := config.MustLoadConfig()

	// Initialize logger
	appLogger.Initialize(cfg.LogLevel)
	log.Info().Msg("Configuration loaded successfully")

	ctx := context.Background()

	// Durable backend
	var (
		backend storage.Backend
		rdb     *redis.Client
		ping    func(context.Context) error
	)
	switch cfg.Storage.Driver {
	case "memory":
		backend = storage.NewMemoryBackend()
		log.Warn().Msg("Using in-memory storage, state will not survive a restart")
	default:
		var err error
		rdb, err = redisClient.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		backend = storage.NewRedisBackend(rdb, cfg.Storage.KeyPrefix, cfg.Redis.Timeout())
		ping = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// Initialize cache (if enabled)
	var cacheClient *cache.Cache
	if cfg.Cache.Enabled {
		var err error
		cacheClient, err = cache.New(cfg.Cache)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize cache")
		}
		backend = storage.NewCachedBackend(backend, cacheClient)
	} else {
		log.Info().Msg("Cache disabled in configuration")
	}

	st := store.New(ctx, backend,
		store.WithDismissAfter(cfg.Notification.DismissAfter()),
		store.WithRefreshDelay(cfg.Analytics.RefreshDelay()),
	)

	// Content generators need an API key
	var gen *generator.Client
	if cfg.GenAI.APIKey != "" {
		model, err := generator.NewGenAIModel(ctx, cfg.GenAI.APIKey)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize GenAI client")
		}
		gen = generator.New(model, cfg.GenAI)
		log.Info().
			Str("fast_model", cfg.GenAI.FastModel).
			Str("strategy_model", cfg.GenAI.StrategyModel).
			Msg("Content generators enabled")
	} else {
		log.Warn().Msg("genai.api_key not set, AI features disabled")
	}

	dashboardHandler := handler.NewDashboardHandler(handler.Options{
		Store:            st,
		Generator:        gen,
		Cache:            cacheClient,
		Ping:             ping,
		ReferralLink:     cfg.Referral.Link,
		OperationTimeout: cfg.Redis.Timeout(),
	})

	// Set up router
	r := mux.NewRouter()

	// Apply global middleware
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	r.Use(middleware.CORS(cfg.WebServer.AllowedOrigin))
	r.Use(middleware.RequestLogger)
	r.Use(rateLimiter.Limit)

	// Register routes
	dashboardHandler.Register(r)

	// Configure HTTP server
	serverAddress := fmt.Sprintf("%s:%s", cfg.WebServer.IP, cfg.WebServer.Port)
	server := &http.Server{
		Addr:         serverAddress,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.WebServer.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.WebServer.WriteTimeout) * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("address", serverAddress).
			Str("storage", cfg.Storage.Driver).
			Msg("Starting server")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.WebServer.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Cancels any in-flight analytics refresh
	st.Close()

	if cacheClient != nil {
		cacheClient.Close()
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close Redis connection")
		}
	}

	log.Info().Msg("Server stopped gracefully")
}
