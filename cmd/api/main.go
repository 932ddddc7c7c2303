package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"videotube-api/internal/config"
	"videotube-api/internal/database"
	"videotube-api/internal/handlers"
	"videotube-api/internal/logging"
	"videotube-api/internal/media"
	"videotube-api/internal/middleware"
	"videotube-api/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

// stores bundles the persistence backends selected by DATABASE_DRIVER.
type stores struct {
	users  services.UserStore
	videos services.VideoStore
	ping   handlers.HealthChecker
	close  func(context.Context) error
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.close(closeCtx); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	store, mediaDir, err := openMedia(ctx, cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.StagingPath, 0o755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}

	router := handlers.NewRouter(handlers.Dependencies{
		Users:          services.NewUserService(db.users, store),
		Videos:         services.NewVideoService(db.videos, store),
		Health:         db.ping,
		Logger:         logger,
		JWTSecret:      cfg.JWTSecret,
		RateLimiter:    middleware.NewKeyedLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, cfg.RateLimitBurst, 0),
		UploadCost:     cfg.UploadRateCost,
		StagingDir:     cfg.StagingPath,
		MaxUploadBytes: cfg.MaxUploadBytes,
		MediaDir:       mediaDir,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           handlers.WithCORS(router, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Minute,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"port", cfg.ServerPort,
			"env", cfg.AppEnv,
			"database", cfg.DatabaseDriver,
			"media", cfg.MediaDriver,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped gracefully")
	return nil
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:  database.NewSQLiteUserStore(db),
			videos: database.NewSQLiteVideoStore(db),
			ping:   db.PingContext,
			close:  func(context.Context) error { return db.Close() },
		}, nil
	default:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		mdb := client.Database(cfg.MongoDatabase)
		if err := database.EnsureIndexes(ctx, mdb); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users:  database.NewMongoUserStore(mdb),
			videos: database.NewMongoVideoStore(mdb),
			ping:   func(ctx context.Context) error { return client.Ping(ctx, nil) },
			close:  client.Disconnect,
		}, nil
	}
}

// openMedia returns the configured media store and, for the local driver,
// the directory to serve under /media.
func openMedia(ctx context.Context, cfg config.Config) (media.Store, string, error) {
	prober := media.NewProber(cfg.FFProbePath, cfg.FFProbeTimeout)
	switch cfg.MediaDriver {
	case config.MediaS3:
		store, err := media.NewS3Store(ctx, cfg.ObjectStore, prober)
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	default:
		store, err := media.NewLocalStore(cfg.MediaLocalPath, cfg.MediaBaseURL, prober)
		if err != nil {
			return nil, "", err
		}
		return store, store.Root(), nil
	}
}
