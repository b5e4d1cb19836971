// Package server assembles the gophauth server: storage, the credential core,
// account services, the gRPC endpoint and the metrics endpoint.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/config"
	"github.com/dmitrijs2005/gophauth/internal/server/metrics"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/gophauth/internal/server/grpc"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	grpc    *gs.GRPCServer
	metrics *metrics.Server
}

// openDB is a seam for tests.
var openDB = func(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}

func startupBackoff() retry.Backoff {
	return retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
}

// connectDB pings the database until it answers or the backoff gives up.
func connectDB(ctx context.Context, db *sql.DB, b retry.Backoff, l logging.Logger) error {
	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			l.Warn(ctx, "database not ready", "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// NewApp validates the config, connects to PostgreSQL, applies migrations
// and wires every component.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	if err := connectDB(ctx, db, startupBackoff(), logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("db connect: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	app, err := newApp(c, db, rm, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {
	secrets, err := auth.NewSecrets(c.HashSecretKey, c.TokenSecretKey)
	if err != nil {
		return nil, err
	}

	runner := auth.NewRunner(c.HashWorkers)
	hasher := auth.NewArgon2Hasher(secrets, auth.Params{
		Memory:      c.HashMemoryKiB,
		Iterations:  c.HashIterations,
		Parallelism: c.HashParallelism,
		SaltLength:  auth.DefaultParams().SaltLength,
		KeyLength:   auth.DefaultParams().KeyLength,
	}, runner)
	tokens := auth.NewTokenService(secrets, runner, auth.WithValidity(c.TokenValidityDuration))

	m := metrics.New()

	core := auth.NewService(services.NewUserDirectory(db, rm), hasher, tokens, logger, auth.WithObserver(m))
	accounts := services.NewUserService(db, rm, core, services.NewS3Avatars(c), logger)

	app := &App{
		config: c,
		logger: logger,
		db:     db,
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger, core, accounts, m.UnaryServerInterceptor()),
	}
	if c.MetricsAddr != "" {
		app.metrics = metrics.NewServer(c.MetricsAddr, m, logger)
	}
	return app, nil
}

// Run serves until ctx is done, a termination signal arrives or one of the
// endpoints fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return app.grpc.Run(ctx)
	})

	if app.metrics != nil {
		g.Go(func() error {
			return app.metrics.Run(ctx)
		})
	}

	err := g.Wait()

	if cerr := app.db.Close(); cerr != nil {
		app.logger.Error(ctx, "db close", "error", cerr)
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
