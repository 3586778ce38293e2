package app

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

	"github.com/aussiebroadwan/meshauth/internal/notification"
	"github.com/aussiebroadwan/meshauth/pkg/httpx"
	"github.com/aussiebroadwan/meshauth/pkg/slogx"
	"github.com/redis/go-redis/v9"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the notification service.
type Application struct {
	cfg    Config
	logger *slog.Logger

	redis    *redis.Client
	consumer *notification.Consumer
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "notification-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("REDIS_ADDR is required")
	}

	app.redis = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	app.consumer = &notification.Consumer{
		Client: app.redis,
		Group:  cfg.ConsumerGroup,
		Name:   cfg.ConsumerName,
		Mailer: &notification.LogMailer{
			Logger:        app.logger,
			VerifyURLBase: cfg.VerifyURLBase,
		},
		Logger: app.logger,
	}

	return app, nil
}

// Run consumes events until a shutdown signal arrives. A small HTTP server
// rides alongside the consumer to answer health probes.
func (app *Application) Run() error {
	app.logger.Info("notification service starting", "version", BuildVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	healthServer := app.newHealthServer()
	go func() {
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("health server failed", "error", err)
		}
	}()

	err := app.consumer.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("consumer failed: %w", err)
	}

	app.logger.Info("shutting down notification service...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()
	if err := healthServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("health server shutdown failed", "error", err)
	}

	if err := app.redis.Close(); err != nil {
		app.logger.Error("error closing redis client", "error", err)
	}

	app.logger.Info("notification service stopped")
	return nil
}

func (app *Application) newHealthServer() *http.Server {
	startTime := time.Now()
	mux := http.NewServeMux()
	mux.Handle("GET /healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK
		if err := app.redis.Ping(r.Context()).Err(); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, code, map[string]string{
			"status":  status,
			"uptime":  time.Since(startTime).String(),
			"version": BuildVersion,
		})
	}))

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
