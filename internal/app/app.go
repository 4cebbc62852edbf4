// Package app wires configuration, infrastructure and the HTTP layer into a
// runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/ankatech/investor-admin/internal/api"
	"github.com/ankatech/investor-admin/internal/core/domain"
	"github.com/ankatech/investor-admin/internal/core/ports"
	"github.com/ankatech/investor-admin/internal/core/service"
	"github.com/ankatech/investor-admin/internal/infrastructure/backend"
	"github.com/ankatech/investor-admin/internal/infrastructure/cache"
	mongodb "github.com/ankatech/investor-admin/internal/infrastructure/db/mongo"
	redisdb "github.com/ankatech/investor-admin/internal/infrastructure/db/redis"
	"github.com/ankatech/investor-admin/internal/infrastructure/directory"
	"github.com/ankatech/investor-admin/internal/infrastructure/http/handlers"
	"github.com/ankatech/investor-admin/internal/infrastructure/queue"
	"github.com/ankatech/investor-admin/internal/pkg/config"
)

const (
	readHeaderTimeout = 3 * time.Second
	shutdownTimeout   = 15 * time.Second
)

// Application holds the running service and everything it must release.
type Application struct {
	cfg *config.Config
	log zerolog.Logger

	Echo       *echo.Echo
	server     *http.Server
	dispatcher *queue.Dispatcher

	closers []func(context.Context) error
}

// New connects the configured infrastructure and builds the router. On error
// everything opened so far is released.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (_ *Application, err error) {
	app := &Application{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			app.close(context.Background())
		}
	}()

	var checks []handlers.DependencyCheck

	// --- Mongo: mongo directory, operators, audit trail ---
	var db *mongo.Database
	if cfg.Mongo.URI != "" {
		client, database, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			AppName:  cfg.Mongo.AppName,
			Timeout:  cfg.Mongo.Timeout,
		})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, client.Disconnect)
		db = database
		checks = append(checks, handlers.MongoCheck(db))
	}

	// --- Directory ---
	var dir ports.Directory
	switch cfg.DirectoryBackend {
	case config.DirectoryMongo:
		dir = mongodb.NewDirectory(db)
	default:
		rest := backend.New(backend.Config{
			BaseURL:     cfg.Backend.URL,
			Timeout:     cfg.Backend.Timeout,
			RPS:         cfg.Backend.RPS,
			Burst:       cfg.Backend.Burst,
			AssetsField: cfg.Backend.AssetsField,
		})
		checks = append(checks, handlers.DependencyCheck{Name: "backend", Ping: rest.Ping})
		dir = rest
	}

	// --- Cache and submission guard ---
	var (
		store cache.Store
		guard ports.SubmissionGuard
	)
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TLS:      cfg.Redis.TLS,
			Timeout:  cfg.Redis.Timeout,
		})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { return rdb.Close() })
		checks = append(checks, handlers.RedisCheck(rdb))

		rstore, err := redisdb.NewCacheStore(rdb)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func(context.Context) error { rstore.Close(); return nil })
		store = rstore
		guard = redisdb.NewSubmissionGuard(rdb, cfg.Cache.SubmissionTTL)
	default:
		store = cache.NewMemoryStore()
		guard = cache.NewMemoryGuard(cfg.Cache.SubmissionTTL)
	}

	// --- Audit trail ---
	var sink ports.AuditSink
	if db != nil {
		auditService := service.NewAuditService(mongodb.NewAuditRepository(db), log.With().Str("component", "audit").Logger())
		app.dispatcher = queue.NewDispatcher(cfg.Audit.Workers, auditService, log.With().Str("component", "dispatcher").Logger())
		sink = app.dispatcher
	}

	// --- Services ---
	validator := service.NewInputValidator()
	cached := directory.NewCached(dir, cfg.Cache.TTL, log.With().Str("component", "directory").Logger())
	clients := service.NewClientService(cached, validator, guard, sink, log.With().Str("component", "clients").Logger())

	var auth ports.AuthService
	if cfg.AuthEnabled() {
		users := service.UserChain{service.NewStaticUsers(
			domain.User{Username: cfg.Auth.AdminUsername, PasswordHash: cfg.Auth.AdminPasswordHash, Role: domain.RoleAdmin},
			domain.User{Username: cfg.Auth.ViewerUsername, PasswordHash: cfg.Auth.ViewerPasswordHash, Role: domain.RoleViewer},
		)}
		if db != nil {
			users = append(users, mongodb.NewOperatorRepository(db))
		}
		auth = service.NewAuthService(users, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	} else {
		log.Warn().Msg("JWT_SECRET is empty, authentication disabled")
	}

	// --- HTTP ---
	app.Echo = api.NewRouter(api.Deps{
		Clients:       clients,
		Validator:     validator,
		Auth:          auth,
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenTTL:      cfg.Auth.TokenTTL,
		SecureCookies: !cfg.Development(),
		Cache:         store,
		Checks:        checks,
		Log:           log,
	})
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Echo,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return app, nil
}

// Run serves until ctx is cancelled or the server fails, then shuts down.
func (app *Application) Run(ctx context.Context) error {
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if app.dispatcher != nil {
		app.dispatcher.Start(workerCtx)
	}

	app.log.Info().
		Str("port", app.cfg.Port).
		Str("env", app.cfg.Env).
		Str("directory", app.cfg.DirectoryBackend).
		Str("cache", app.cfg.Cache.Backend).
		Bool("auth", app.cfg.AuthEnabled()).
		Msg("investor admin starting")

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		app.log.Info().Msg("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.log.Error().Err(err).Msg("graceful server shutdown failed")
		_ = app.server.Close()
	}

	stopWorkers()
	if app.dispatcher != nil {
		app.dispatcher.Wait()
	}
	app.close(shutdownCtx)

	app.log.Info().Msg("investor admin stopped")
	return runErr
}

// close releases resources in reverse order of acquisition.
func (app *Application) close(ctx context.Context) {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](ctx); err != nil {
			app.log.Error().Err(err).Msg("error releasing resource")
		}
	}
	app.closers = nil
}
