package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"classroom-backend/config"
	"classroom-backend/internal/api"
	"classroom-backend/internal/briefing"
	"classroom-backend/internal/classroom"
	"classroom-backend/internal/db"
	"classroom-backend/internal/mw"
	"classroom-backend/internal/seating"
	"classroom-backend/internal/store"
)

func main() {
	// .env is optional
	envErr := godotenv.Load()

	logger := newLogger()
	defer logger.Sync()
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("failed to read .env", zap.Error(envErr))
	}

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.String("path", configPath), zap.Error(err))
	}
	cfg.ApplyEnv()
	logger.Info("configuration loaded", zap.String("path", configPath))

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize store", zap.Error(err))
	}
	defer closeStore()

	engine := seating.NewEngine(seating.Options{
		PriorityRows: cfg.Seating.PriorityRows,
		MaxPasses:    cfg.Seating.MaxPasses,
	})

	var analyzer briefing.Analyzer
	if cfg.Briefing.Enabled {
		analyzer = briefing.NewAnalyzer(
			classroom.APIKeySource(appStore, cfg.Briefing.APIKey),
			briefing.NewGeminiFactory(cfg.Briefing.Model),
			cfg.Briefing.Timeout,
		)
		logger.Info("message analysis enabled", zap.String("model", cfg.Briefing.Model), zap.Int("workers", cfg.WorkerPool.Size))
	}

	svc := classroom.NewService(appStore, engine, analyzer, cfg, classroom.WithLogger(logger.Named("classroom")))
	if err := svc.Start(ctx); err != nil {
		logger.Fatal("failed to start analysis workers", zap.Error(err))
	}

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst, 10*time.Minute)
	limiter.StartSweeper(ctx, time.Minute)

	// Initialize router
	router := api.NewRouter(api.NewHandler(svc, logger.Named("api")), api.RouterOptions{
		Limiter: limiter,
		Cache:   cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL),
		Logger:  logger.Named("http"),
	})
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server ListenAndServe", zap.Error(err))
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Info("Shutdown signal received, stopping services...")
	cancel()

	// Create a deadline to wait for.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server Shutdown", zap.Error(err))
		return
	}

	logger.Info("Server gracefully stopped")
}

func newLogger() *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if os.Getenv("APP_ENV") == "development" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openStore returns the Redis store when enabled, otherwise the database
// store behind an in-process read cache. Redis may be shared by several
// instances, so it is never cached locally.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	if cfg.Redis.Enabled {
		client, err := store.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis store", zap.String("addr", cfg.Redis.Addr), zap.String("prefix", cfg.Redis.Prefix))
		return store.NewRedisStore(client, cfg.Redis.Prefix), func() { client.Close() }, nil
	}

	gormDB, err := db.Init(&cfg.Database, logger.Named("db"))
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using database store", zap.String("driver", cfg.Database.Driver))

	readCache := cache.New(cfg.Server.CacheTTL, 2*cfg.Server.CacheTTL)
	return store.NewCachedStore(store.NewGormStore(gormDB), readCache), func() { sqlDB.Close() }, nil
}
