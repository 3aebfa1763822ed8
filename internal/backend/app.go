// Package backend assembles the backend service: it opens the record store,
// applies migrations, and runs the gRPC and HTTP servers until a
// termination signal arrives.
package backend

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/socialclone/internal/backend/config"
	gs "github.com/dmitrijs2005/socialclone/internal/backend/grpc"
	"github.com/dmitrijs2005/socialclone/internal/backend/httpapi"
	"github.com/dmitrijs2005/socialclone/internal/backend/metrics"
	"github.com/dmitrijs2005/socialclone/internal/backend/repositories/repomanager"
	"github.com/dmitrijs2005/socialclone/internal/backend/sanitize"
	"github.com/dmitrijs2005/socialclone/internal/backend/services"
	"github.com/dmitrijs2005/socialclone/internal/backend/storage"
	"github.com/dmitrijs2005/socialclone/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open("pgx", dsn)
	}
	newRepoManager = repomanager.NewPostgresRepositoryManager
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	grpc     *gs.GRPCServer
	http     *httpapi.Server
	limiter  *httpapi.RateLimiter
	registry *prometheus.Registry
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := newRepoManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	identity := services.NewIdentityService(db, rm, c)
	records := services.NewRecordService(db, rm, sanitize.NewStrict(), c)
	objects := services.NewStorageService(storage.NewS3Store(c), c)

	limiter := httpapi.NewRateLimiter(httpapi.DefaultRateLimiterConfig())
	router := httpapi.NewRouter(&httpapi.Deps{
		Storage:        objects,
		Metrics:        collector,
		Gatherer:       registry,
		RateLimiter:    limiter,
		MaxUploadBytes: c.MaxUploadBytes,
		Logger:         logger,
	})

	return &App{
		config:   c,
		logger:   logger,
		db:       db,
		grpc:     gs.NewGRPCServer(c.EndpointAddrGRPC, logger, identity, records, objects, collector, c.SecretKey),
		http:     httpapi.NewServer(c.EndpointAddrHTTP, router, logger),
		limiter:  limiter,
		registry: registry,
	}, nil
}

// Run serves gRPC and HTTP until SIGINT/SIGTERM/SIGQUIT, ctx cancellation or
// the first server failure.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	defer func() {
		app.limiter.Stop()
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "db close failed", "err", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.grpc.Run(ctx) })
	g.Go(func() error { return app.http.Run(ctx) })

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}
