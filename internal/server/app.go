// Package server initializes and runs the clientreview server.
// It opens storage, applies migrations, wires services and runs the HTTP
// server alongside the revocation janitor until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/dmitrijs2005/clientreview/internal/logging"
	"github.com/dmitrijs2005/clientreview/internal/server/config"
	"github.com/dmitrijs2005/clientreview/internal/server/phoneid"
	"github.com/dmitrijs2005/clientreview/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/clientreview/internal/server/rest"
	"github.com/dmitrijs2005/clientreview/internal/server/revocation"
	"github.com/dmitrijs2005/clientreview/internal/server/services"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	accessLog *zap.Logger
	db        *sql.DB
	redis     *redis.Client
	server    *rest.Server
	janitor   *services.RevocationJanitor
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogBackend)
	if err != nil {
		return nil, err
	}

	accessLog, err := logging.AccessLogger(logger)
	if err != nil {
		return nil, fmt.Errorf("access log init error: %w", err)
	}

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	app := &App{config: c, logger: logger, accessLog: accessLog, db: db}
	if err := app.wire(ctx); err != nil {
		app.close(ctx)
		return nil, err
	}
	return app, nil
}

func (app *App) wire(ctx context.Context) error {
	c := app.config

	rm, err := repomanager.NewPostgresRepositoryManager(app.db)
	if err != nil {
		return fmt.Errorf("repository manager init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	resolver, err := phoneid.NewResolver(c.PhoneHashSalt, c.DefaultRegion)
	if err != nil {
		return err
	}

	var revocations services.RevocationStore
	switch c.RevocationBackend {
	case config.RevocationBackendRedis:
		app.redis = redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		if err := app.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping error: %w", err)
		}
		revocations = revocation.NewRedisStore(app.redis)
	default:
		revocations = rm.RevokedTokens(app.db)
	}

	users := services.NewUserService(app.db, rm, app.logger.With("module", "users"))
	if c.AdminEmail != "" {
		created, err := users.EnsureAdmin(ctx, c.AdminEmail, c.AdminPassword)
		if err != nil {
			return fmt.Errorf("admin bootstrap error: %w", err)
		}
		if created {
			app.logger.Info(ctx, "admin account created")
		}
	}

	app.server, err = rest.NewServer(rest.Options{
		Address:        c.EndpointAddrHTTP,
		Cookies:        rest.CookieSettings{Domain: c.CookieDomain, Secure: c.CookieSecure},
		RateLimitRPM:   c.RateLimitRPM,
		TrustedProxies: c.TrustedProxies,
	}, rest.Services{
		Sessions:   services.NewSessionService(app.db, rm, revocations, app.logger.With("module", "sessions"), c),
		Users:      users,
		Businesses: services.NewBusinessService(app.db, rm, resolver, app.logger.With("module", "businesses")),
		Reviews:    services.NewReviewService(app.db, rm, app.logger.With("module", "reviews")),
		Tags:       services.NewTagService(app.db, rm, app.logger.With("module", "tags")),
	}, app.logger, app.accessLog)
	if err != nil {
		return err
	}

	app.janitor = services.NewRevocationJanitor(revocations, c.RevocationPurgeInterval, app.logger.With("module", "janitor"))
	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a signal arrives or the HTTP server fails, then releases
// the database and cache connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.janitor.Run(ctx)
	}()

	wg.Wait()

	app.close(context.Background())
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close(ctx context.Context) {
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error(ctx, "redis close error", "error", err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	_ = app.accessLog.Sync()
}
