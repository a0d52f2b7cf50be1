// Package server initializes and runs the gateway: configuration, storage,
// the session trust layer, rate limiters and the HTTP endpoint, with
// graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lumina-social/lumina/internal/dbx"
	"github.com/lumina-social/lumina/internal/logging"
	"github.com/lumina-social/lumina/internal/ratelimit"
	"github.com/lumina-social/lumina/internal/server/config"
	"github.com/lumina-social/lumina/internal/server/httpapi"
	"github.com/lumina-social/lumina/internal/server/session"
	"github.com/lumina-social/lumina/internal/server/shared/db"
	"github.com/lumina-social/lumina/internal/server/users"
	"github.com/lumina-social/lumina/internal/server/ws"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	manager  *db.PostgresRepositoryManager
	sessions *session.Manager
	server   *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	rm, err := db.NewPostgresRepositoryManager(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var cache users.ExistenceCache = users.NoopExistenceCache{}
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		cache = users.NewRedisExistenceCache(client, logger)
	}

	userService := users.NewService(rm.Conn(),
		func(h dbx.DBTX) users.Repository { return rm.Users(h) },
		users.NewBcryptHasher(cfg.BcryptCost),
		cache, logger, cfg)

	epoch, err := session.NewEpoch(cfg.SessionEpochBound)
	if err != nil {
		return nil, fmt.Errorf("session epoch error: %w", err)
	}

	codec := session.NewCodec([]byte(cfg.CookieHashKey), []byte(cfg.CookieBlockKey))
	manager := session.NewManager(epoch, codec, rm.Sessions(rm.Conn()), logger)
	fence := session.NewFence(manager, userService, cfg.StorageFetchTimeout, logger)

	general, err := ratelimit.NewGeneralLimiter(cfg.GeneralRefillPerSecond, cfg.GeneralBurstCapacity, cfg.LimiterCacheSize)
	if err != nil {
		return nil, fmt.Errorf("general limiter error: %w", err)
	}
	auth, err := ratelimit.NewAuthLimiter(cfg.AuthRefillPerSecond, cfg.AuthBurstCapacity, cfg.LimiterCacheSize)
	if err != nil {
		return nil, fmt.Errorf("auth limiter error: %w", err)
	}

	handlers := httpapi.NewHandlers(userService, manager, fence, cfg, logger)
	channel := ws.NewChannel(userService, manager, auth, logger)
	router := httpapi.NewRouter(handlers, channel, general, auth, logger)
	srv := httpapi.NewServer(cfg.EndpointAddrHTTP, router, logger)

	return &App{config: cfg, logger: logger, manager: rm, sessions: manager, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	if err := app.manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runSessionSweep(ctx)
	}()

	wg.Wait()
	return nil
}

// runSessionSweep periodically deletes durable sessions older than the
// configured max age, until the context is cancelled.
func (app *App) runSessionSweep(ctx context.Context) {
	ticker := time.NewTicker(app.config.SessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// failures are logged by the manager; the sweep keeps running
			_, _ = app.sessions.PruneExpired(ctx, app.config.SessionMaxAge)
		}
	}
}
