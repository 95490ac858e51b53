// Package server initializes and runs the canvas sync server: PostgreSQL
// storage with embedded migrations, the Redis-backed event hub, and the
// HTTP/WebSocket endpoint, with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Preethi0409/canvas/internal/logging"
	"github.com/Preethi0409/canvas/internal/server/config"
	"github.com/Preethi0409/canvas/internal/server/httpapi"
	"github.com/Preethi0409/canvas/internal/server/hub"
	"github.com/Preethi0409/canvas/internal/server/repositories/repomanager"
	"github.com/Preethi0409/canvas/internal/server/services"
	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger

	db  *sql.DB
	rdb *redis.Client
	api *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	// Redis tends to come up after the app in compose setups, so probe with
	// backoff instead of failing on the first refused connection.
	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		return retry.RetryableError(rdb.Ping(ctx).Err())
	}); err != nil {
		return nil, fmt.Errorf("redis init error: %w", err)
	}

	userService := services.NewUserService(db, rm, cfg)
	canvasService := services.NewCanvasService(db, rm, cfg)
	eventHub := hub.New(logger, hub.NewRedisBroker(rdb))
	api := httpapi.NewServer(logger, userService, canvasService, eventHub)

	return &App{config: cfg, logger: logger, db: db, rdb: rdb, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)
	app.initSignalHandler(cancelFunc)

	srv := &http.Server{
		Addr:    app.config.EndpointAddr,
		Handler: app.api.Router(),
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()
	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "http shutdown error", "error", err.Error())
	}
	wg.Wait()

	if err := app.close(); err != nil {
		app.logger.Error(shutdownCtx, "cleanup error", "error", err.Error())
	}
	app.logger.Info(shutdownCtx, "stopped")
}

func (app *App) close() error {
	return multierr.Combine(app.db.Close(), app.rdb.Close())
}
