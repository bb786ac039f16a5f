package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epikoding/dictionary/internal/cache"
	"github.com/epikoding/dictionary/internal/config"
	"github.com/epikoding/dictionary/internal/database"
	"github.com/epikoding/dictionary/internal/dictionary"
	"github.com/epikoding/dictionary/internal/handler"
	"github.com/epikoding/dictionary/internal/limiter"
	"github.com/epikoding/dictionary/internal/logging"
	"github.com/epikoding/dictionary/internal/middleware"
	"github.com/epikoding/dictionary/internal/session"
	"github.com/epikoding/dictionary/internal/store"
	"github.com/epikoding/dictionary/internal/users"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// Redis backs sessions and login throttling when configured. Without it
	// both fall back to process memory.
	var (
		sessions session.Store   = session.NewMemoryStore(cfg.SessionTTL)
		counters limiter.Storage = limiter.NewMemoryStorage()
	)
	if cfg.RedisURL != "" {
		client, err := cache.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn("redis unavailable, using in-memory sessions", zap.Error(err))
		} else {
			defer client.Close()
			sessions = session.NewRedisStore(client, cfg.SessionTTL)
			counters = limiter.NewRedisStorage(client)
		}
	}

	directory := users.NewDirectory(users.EnvSource(cfg.UsersEnv))
	if err := directory.Check(); err != nil {
		logger.Warn("login is disabled until the user directory is fixed", zap.Error(err))
	}

	r, err := handler.NewRouter(handler.RouterConfig{
		Service:   dictionary.NewService(store.NewEntryStore(db, cfg.DisplayLocation)),
		Directory: directory,
		Limiter:   limiter.NewLimiter(counters, nil),
		Sessions: middleware.SessionConfig{
			Store:  sessions,
			Secret: cfg.SessionSecret,
			TTL:    cfg.SessionTTL,
			Secure: cfg.CookieSecure,
		},
		Location:       cfg.DisplayLocation,
		Logger:         logger,
		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("dictionary server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
