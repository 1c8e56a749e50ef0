// Package app wires configuration, storage and domain services for the
// gridstock binaries.
package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/gridstock/api/routes"
	"github.com/angelmondragon/gridstock/internal/categories"
	"github.com/angelmondragon/gridstock/internal/containers"
	"github.com/angelmondragon/gridstock/internal/items"
	"github.com/angelmondragon/gridstock/internal/sizeoptions"
	"github.com/angelmondragon/gridstock/internal/transfer"
	"github.com/angelmondragon/gridstock/pkg/config"
	"github.com/angelmondragon/gridstock/pkg/db"
	"github.com/angelmondragon/gridstock/pkg/logger"
	"github.com/angelmondragon/gridstock/pkg/metrics"
	"github.com/angelmondragon/gridstock/pkg/migrate"
	"github.com/angelmondragon/gridstock/pkg/redis"
)

type Options struct {
	// UseRedis connects redis when it is configured. CLIs leave it off.
	UseRedis bool
}

type App struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *redis.Client
	Registry *prometheus.Registry
	Services routes.Services
	HTTP     *metrics.HTTPMetrics
}

// New connects storage, prepares the schema and builds every service. The
// returned App must be closed by the caller.
func New(ctx context.Context, cfg *config.Config, logg *logger.Logger, opts Options) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	if logg == nil {
		logg = logger.Nop()
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	a := &App{Config: cfg, Logger: logg, DB: dbClient}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return nil, multierr.Append(fmt.Errorf("prepare schema: %w", err), a.Close())
	}

	if opts.UseRedis && cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, multierr.Append(fmt.Errorf("bootstrap redis: %w", err), a.Close())
		}
		a.Redis = redisClient
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.HTTP = metrics.NewHTTPMetrics(a.Registry)

	if err := a.buildServices(logg); err != nil {
		return nil, multierr.Append(err, a.Close())
	}
	return a, nil
}

func (a *App) buildServices(logg *logger.Logger) error {
	conn := a.DB.DB()

	containerSvc, err := containers.NewService(containers.NewRepository(conn), a.DB)
	if err != nil {
		return err
	}
	categorySvc, err := categories.NewService(categories.NewRepository(conn), a.DB)
	if err != nil {
		return err
	}
	sizeSvc, err := sizeoptions.NewService(sizeoptions.NewRepository(conn))
	if err != nil {
		return err
	}
	itemRepo := items.NewRepository(conn)
	itemSvc, err := items.NewService(itemRepo, a.DB)
	if err != nil {
		return err
	}
	exporter, err := transfer.NewExporter(transfer.ExporterParams{
		Containers:  containerSvc,
		Categories:  categorySvc,
		SizeOptions: sizeSvc,
		Items:       itemSvc,
	})
	if err != nil {
		return err
	}
	engine, err := transfer.NewEngine(transfer.EngineParams{
		Items:      itemRepo,
		Tx:         a.DB,
		Logger:     logg,
		Metrics:    metrics.NewImportMetrics(a.Registry),
		MaxRecords: a.Config.Import.MaxRecords,
	})
	if err != nil {
		return err
	}

	a.Services = routes.Services{
		Containers:  containerSvc,
		Categories:  categorySvc,
		SizeOptions: sizeSvc,
		Items:       itemSvc,
		Exporter:    exporter,
		Importer:    engine,
	}
	return nil
}

// Close releases redis and the database, reporting every failure.
func (a *App) Close() error {
	var errs error
	if a.Redis != nil {
		errs = multierr.Append(errs, a.Redis.Close())
	}
	if a.DB != nil {
		errs = multierr.Append(errs, a.DB.Close())
	}
	return errs
}
