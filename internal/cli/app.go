package cli

import (
	"context"
	"fmt"

	dedupapp "github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/application/dedup"
	ingestapp "github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/application/ingest"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/cache"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/config"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/logger"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/persistence"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/storage"
	"github.com/thomaszipf/codewrx-dropshipagent-csv-ingest/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const meterName = "ordersync"

// app holds the long-lived dependencies shared by the commands.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *persistence.Database
	repos    *persistence.Repositories
	cache    cache.SummaryCache
	tracer   *telemetry.TracerProvider
	meter    *telemetry.MeterProvider
	logs     *telemetry.LoggerProvider
	profiler *telemetry.Profiler
	metrics  *telemetry.IngestMetrics
}

// appOption tweaks bootstrap for one command
type appOption func(*config.Config)

// logToStderr keeps stdout free for command output.
func logToStderr(cfg *config.Config) {
	if cfg.Log.Output == "" || cfg.Log.Output == "stdout" {
		cfg.Log.Output = "stderr"
	}
}

// newApp loads configuration and opens the store. The caller must Close it.
func newApp(ctx context.Context, opts ...appOption) (*app, error) {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, opt := range opts {
		opt(cfg)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log = log.With(zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))

	a := &app{cfg: cfg, log: log}

	a.tracer, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	a.logs, err = telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled && cfg.Telemetry.LogsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init log export: %w", err)
	}
	level, err := zapcore.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	log = a.logs.Bridge(log, level)
	a.log = log

	a.meter, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ExportInterval:    cfg.Telemetry.MetricsInterval,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	a.metrics, err = telemetry.NewIngestMetrics(telemetry.IngestMetricsConfig{
		Meter:  a.meter.Meter(meterName),
		Logger: log,
	})
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init ingest metrics: %w", err)
	}

	gormLogger := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithIgnoreRecordNotFoundError(true),
		logger.WithIgnoreDuplicatedKeyError(true),
	)
	a.db, err = persistence.NewDatabaseWithCustomLogger(&cfg.Database, gormLogger)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	if err := telemetry.RegisterDBTracing(a.db.DB, telemetry.DBTracingConfig{
		Enabled:            cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing,
		DBSystem:           dbSystem(a.db.Driver),
		SlowQueryThreshold: cfg.Telemetry.SlowQueryThreshold,
	}, log); err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("init database tracing: %w", err)
	}
	if a.db.Driver == "sqlite" {
		if err := a.db.AutoMigrate(); err != nil {
			a.Close(ctx)
			return nil, err
		}
	}
	log.Info("Database connected", zap.String("driver", cfg.Database.Driver))

	a.repos = persistence.NewRepositories(a.db.DB)
	a.cache = cache.NewSummaryCache(cfg.Redis, log)
	return a, nil
}

// startProfiler starts continuous profiling when configured. Only the
// long-running watch daemon calls it.
func (a *app) startProfiler() error {
	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:           a.cfg.Profiling.Enabled,
		ServerAddress:     a.cfg.Profiling.ServerAddress,
		ApplicationName:   a.cfg.Profiling.ApplicationName,
		BasicAuthUser:     a.cfg.Profiling.BasicAuthUser,
		BasicAuthPassword: a.cfg.Profiling.BasicAuthPassword,
		ProfileTypes:      a.cfg.Profiling.ProfileTypes,
	}, a.log)
	if err != nil {
		return fmt.Errorf("init profiler: %w", err)
	}
	a.profiler = p
	if p.IsEnabled() && a.cfg.Profiling.SpanProfiles {
		a.tracer.EnableSpanProfiles()
	}
	return nil
}

func dbSystem(driver string) string {
	if driver == "postgres" {
		return "postgresql"
	}
	return driver
}

// ingestService builds the pipeline. The archiver is only created when
// storage is enabled.
func (a *app) ingestService(ctx context.Context) (*ingestapp.Service, error) {
	var archiver ingestapp.Archiver = storage.NoopArchiver{}
	if a.cfg.Storage.Enabled {
		s3, err := storage.NewS3Archiver(ctx, &a.cfg.Storage, storage.WithLogger(a.log))
		if err != nil {
			return nil, fmt.Errorf("init archive storage: %w", err)
		}
		archiver = s3
	}

	return ingestapp.NewService(ingestapp.Stores{
		Sources:    a.repos.Shops,
		Files:      a.repos.Files,
		Logs:       a.repos.Logs,
		Summaries:  a.repos.Summaries,
		Transactor: a.repos.Transactor,
	},
		ingestapp.WithLogger(a.log),
		ingestapp.WithSummaryCache(a.cache),
		ingestapp.WithArchiver(archiver),
		ingestapp.WithMetrics(a.metrics),
		ingestapp.WithMaxRowErrors(a.cfg.Ingest.MaxRowErrors),
		ingestapp.WithRecentFiles(a.cfg.Ingest.RecentFiles),
		ingestapp.WithLineItemReplace(a.cfg.Ingest.ReplaceLineItems),
	), nil
}

func (a *app) mergeService() *dedupapp.MergeService {
	return dedupapp.NewMergeService(dedupapp.Stores{
		Sources:   a.repos.Shops,
		Customers: a.repos.Customers,
		Orders:    a.repos.Orders,
		Files:     a.repos.Files,
		Logs:      a.repos.Logs,
	},
		dedupapp.WithLogger(a.log),
		dedupapp.WithSummaryCache(a.cache),
		dedupapp.WithMetrics(a.metrics),
	)
}

// Close releases everything newApp opened, in reverse order.
func (a *app) Close(ctx context.Context) {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("Failed to close summary cache", zap.Error(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", zap.Error(err))
		}
	}
	if a.profiler != nil {
		if err := a.profiler.Stop(); err != nil {
			a.log.Warn("Failed to stop profiler", zap.Error(err))
		}
	}
	if a.meter != nil {
		_ = a.meter.Shutdown(ctx)
	}
	if a.tracer != nil {
		_ = a.tracer.Shutdown(ctx)
	}
	if a.logs != nil {
		_ = a.logs.Shutdown(ctx)
	}
	_ = logger.Sync(a.log)
}
