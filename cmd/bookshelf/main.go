package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/AntonStoeckl/bookshelf-viewmodel/adapters/oteladapter"
	"github.com/AntonStoeckl/bookshelf-viewmodel/adapters/promadapter"
	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource"
	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource/migrations"
	"github.com/AntonStoeckl/bookshelf-viewmodel/datasource/sqlsource"
	"github.com/AntonStoeckl/bookshelf-viewmodel/journal"
	"github.com/AntonStoeckl/bookshelf-viewmodel/shell/config"
)

const (
	instrumentationName    = "bookshelf"
	metricsNamespace       = "bookshelf"
	shutdownTimeout        = 10 * time.Second
	metricsReadHeaderLimit = 5 * time.Second
	journalFileMode        = 0o644
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("bookshelf: %v", err)
	}
}

func run(args []string) error {
	config.LoadEnvFiles()

	cfg, err := parseFlags(flag.CommandLine, args, config.FromEnv())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var providers *config.ObservabilityProviders
	if cfg.OTelEndpoint != "" {
		exporters, err := config.NewOTLPExporters(ctx, cfg.OTelEndpoint)
		if err != nil {
			return fmt.Errorf("creating OTLP exporters: %w", err)
		}

		providers, err = config.NewObservabilityProviders(ctx, exporters)
		if err != nil {
			return fmt.Errorf("creating OpenTelemetry providers: %w", err)
		}
		defer shutdownProviders(providers)
	}

	logger, err := config.NewLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	obs := Observability{
		Logger:  logger,
		Tracing: oteladapter.NewTracingCollector(otel.Tracer(instrumentationName)),
	}

	var metricsServer *http.Server
	switch {
	case cfg.MetricsAddr != "":
		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		obs.Metrics, err = promadapter.NewMetricsCollector(registry, promadapter.WithNamespace(metricsNamespace))
		if err != nil {
			return fmt.Errorf("creating metrics collector: %w", err)
		}

		metricsServer = serveMetrics(cfg.MetricsAddr, registry, logger)

	case providers != nil:
		obs.Metrics = oteladapter.NewMetricsCollector(providers.MeterProvider.Meter(instrumentationName))
	}

	var source datasource.DataSource
	if cfg.ReplayPath == "" {
		var migrationDB *sql.DB
		var closeDB func()

		source, migrationDB, closeDB, err = openDataSource(ctx, cfg, obs)
		if err != nil {
			return fmt.Errorf("opening data source: %w", err)
		}
		defer closeDB()

		if cfg.Migrate {
			if err := migrations.Up(migrationDB, cfg.envConfig().Dialect()); err != nil {
				return fmt.Errorf("migrating: %w", err)
			}
			logger.Info("schema migrated", "driver", cfg.Driver)
		}
	}

	app, err := NewApp(source, obs)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}

	if cfg.JournalPath != "" {
		closeJournal, err := recordJournal(app, cfg.JournalPath)
		if err != nil {
			return err
		}
		defer closeJournal()
	}

	var loadErr error
	if cfg.ReplayPath != "" {
		loadErr = replayJournal(ctx, app, cfg.ReplayPath)
	} else {
		loadErr = app.Run(ctx, cfg)
	}

	if loadErr != nil {
		logger.Error("loading failed", "error", loadErr.Error())
	}

	if cfg.ShowState {
		if err := app.WriteState(os.Stdout); err != nil {
			logger.Error("writing state failed", "error", err.Error())
		}
	}

	if metricsServer == nil {
		return loadErr
	}

	logger.Info("serving metrics, press Ctrl+C to stop", "addr", cfg.MetricsAddr)
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown failed", "error", err.Error())
	}

	return loadErr
}

func recordJournal(app *App, path string) (func(), error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, journalFileMode)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	writer, err := journal.NewWriter(file)
	if err == nil {
		err = app.RecordTo(writer)
	}
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("recording journal: %w", err)
	}

	return func() { _ = file.Close() }, nil
}

func replayJournal(ctx context.Context, app *App, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening replay journal: %w", err)
	}
	defer func() { _ = file.Close() }()

	_, err = app.Replay(ctx, file)

	return err
}

func shutdownProviders(providers *config.ObservabilityProviders) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := providers.Shutdown(ctx); err != nil {
		log.Printf("OpenTelemetry shutdown failed: %v", err)
	}
}

// openDataSource opens the configured database and returns the source, a *sql.DB handle for
// migrations, and a function closing everything.
func openDataSource(
	ctx context.Context,
	cfg Config,
	obs Observability,
) (datasource.DataSource, *sql.DB, func(), error) {

	options := []sqlsource.Option{
		sqlsource.WithDialect(cfg.envConfig().Dialect()),
		sqlsource.WithContextualLogger(obs.Logger),
		sqlsource.WithTracing(obs.Tracing),
	}
	if obs.Metrics != nil {
		options = append(options, sqlsource.WithMetrics(obs.Metrics))
	}

	switch cfg.Driver {
	case config.DriverPGX:
		pool, err := config.OpenPGXPool(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, nil, err
		}

		source, err := sqlsource.NewSourceFromPGXPool(pool, options...)
		if err != nil {
			pool.Close()
			return nil, nil, nil, err
		}

		migrationDB := stdlib.OpenDBFromPool(pool)

		return source, migrationDB, func() { _ = migrationDB.Close(); pool.Close() }, nil

	case config.DriverSQLX:
		db, err := config.OpenSQLX(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, nil, err
		}

		source, err := sqlsource.NewSourceFromSQLX(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}

		return source, db.DB, func() { _ = db.Close() }, nil

	case config.DriverPostgres, config.DriverSQLite:
		db, err := config.OpenSQLDB(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, nil, err
		}

		source, err := sqlsource.NewSourceFromSQLDB(db, options...)
		if err != nil {
			_ = db.Close()
			return nil, nil, nil, err
		}

		return source, db, func() { _ = db.Close() }, nil

	default:
		return nil, nil, nil, config.ErrUnsupportedDriver
	}
}

func serveMetrics(addr string, registry *prometheus.Registry, logger config.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderLimit,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err.Error())
		}
	}()

	return server
}
