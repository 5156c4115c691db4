// Package app wires the order processing job from configuration and runs it
// on a fixed schedule until shutdown.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"

	"orderbatch/internal/config"
	"orderbatch/internal/order"
	"orderbatch/internal/step"
	orderprocessor "orderbatch/internal/step/processor"
	orderreader "orderbatch/internal/step/reader"
	ordertasklet "orderbatch/internal/step/tasklet"
	orderwriter "orderbatch/internal/step/writer"
	"orderbatch/pkg/batch/core/incrementer"
	"orderbatch/pkg/batch/core/launcher"
	model "orderbatch/pkg/batch/core/model"
	port "orderbatch/pkg/batch/core/port"
	tx "orderbatch/pkg/batch/core/tx"
	"orderbatch/pkg/batch/engine/step/item"
	"orderbatch/pkg/batch/engine/step/tasklet"
	"orderbatch/pkg/batch/job"
	"orderbatch/pkg/batch/metrics"
	"orderbatch/pkg/batch/repository"
	"orderbatch/pkg/batch/repository/inmemory"
	sqlrepo "orderbatch/pkg/batch/repository/sql"
	"orderbatch/pkg/batch/scheduler"
	"orderbatch/pkg/batch/support/exception"
	"orderbatch/pkg/batch/support/logger"

	// Database drivers selected via database.driver in the configuration.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// Step names recorded in the metadata tables.
const (
	stepNameCheckPending  = "checkPendingOrders"
	stepNameProcessOrders = "processOrders"
)

// App owns the wired components and their lifecycles.
type App struct {
	cfg           *config.Config
	db            *sql.DB
	jobRepository repository.JobRepository
	scheduler     *scheduler.FixedRateScheduler
	metricsServer *http.Server
}

// New builds the application from configuration. Misconfiguration (unknown
// processing mode, unknown driver) is rejected here, before anything runs.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger.SetLogLevel(cfg.Logging.Level)

	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	jobRepository, err := newJobRepository(cfg.Repository, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	var metricRecorder metrics.MetricRecorder = metrics.NewNoopRecorder()
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		promRecorder := metrics.NewPrometheusRecorder()
		metricRecorder = promRecorder
		mux := http.NewServeMux()
		mux.Handle("/metrics", promRecorder.Handler())
		metricsServer = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
	}

	orderJob, err := buildOrderJob(cfg.Job, db, jobRepository, metricRecorder)
	if err != nil {
		jobRepository.Close()
		db.Close()
		return nil, err
	}

	jobLauncher := launcher.NewSimpleJobLauncher(jobRepository, incrementer.NewTimestampIncrementer(step.ParamTimestamp))

	sched := scheduler.NewFixedRateScheduler(
		scheduler.Config{Interval: time.Duration(cfg.Scheduler.IntervalSeconds) * time.Second},
		jobLauncher,
		orderJob,
		newParametersFactory(cfg),
	)

	return &App{
		cfg:           cfg,
		db:            db,
		jobRepository: jobRepository,
		scheduler:     sched,
		metricsServer: metricsServer,
	}, nil
}

// Run starts the scheduler (and the metrics endpoint when enabled) and
// blocks until ctx is cancelled, then shuts everything down in order.
func (a *App) Run(ctx context.Context) error {
	if a.metricsServer != nil {
		go func() {
			logger.Infof("Metrics endpoint listening on %s.", a.metricsServer.Addr)
			if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Errorf("Metrics endpoint failed: %v", err)
			}
		}()
	}

	a.scheduler.Start(ctx)
	<-ctx.Done()
	logger.Infof("Shutdown requested, stopping scheduler.")
	a.scheduler.Stop()

	return a.close()
}

// close releases all resources, aggregating errors so one failure does not
// hide the others.
func (a *App) close() error {
	var errs *multierror.Error

	if a.metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.metricsServer.Shutdown(shutdownCtx); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
		cancel()
	}
	if err := a.jobRepository.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("job repository close: %w", err))
	}
	if err := a.db.Close(); err != nil {
		errs = multierror.Append(errs, fmt.Errorf("database close: %w", err))
	}

	logger.Infof("Shutdown complete.")
	return errs.ErrorOrNil()
}

// openDatabase opens the configured database and ensures the schemas when
// auto-migration is on.
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*sql.DB, error) {
	switch cfg.Driver {
	case "mysql", "sqlite3":
	default:
		return nil, exception.NewBatchError(exception.ModuleConfig,
			fmt.Sprintf("unsupported database driver '%s' (expected mysql or sqlite3)", cfg.Driver), nil)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, exception.NewBatchError(exception.ModuleConfig, "failed to open database", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, exception.NewBatchError(exception.ModuleConfig, "failed to connect to database", err)
	}

	if cfg.AutoMigrate {
		if err := sqlrepo.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		if err := order.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	logger.Infof("Connected to %s database.", cfg.Driver)
	return db, nil
}

// newJobRepository builds the metadata store selected by the configuration.
func newJobRepository(cfg config.RepositoryConfig, db *sql.DB) (repository.JobRepository, error) {
	switch cfg.Type {
	case "sql":
		return sqlrepo.NewSQLJobRepository(db), nil
	case "memory":
		logger.Warnf("Using in-memory job repository; execution metadata will not survive restarts.")
		return inmemory.NewInMemoryJobRepository(), nil
	default:
		return nil, exception.NewBatchError(exception.ModuleConfig,
			fmt.Sprintf("unsupported repository type '%s' (expected sql or memory)", cfg.Type), nil)
	}
}

// buildOrderJob assembles the two-step job: the pending-count pre-check
// followed by the chunk-oriented order processing step.
func buildOrderJob(cfg config.JobConfig, db *sql.DB, repo repository.JobRepository, recorder metrics.MetricRecorder) (port.Job, error) {
	proc, err := orderprocessor.NewOrderProcessor(cfg.ProcessingMode)
	if err != nil {
		return nil, err
	}

	checkStep := tasklet.NewTaskletStep(stepNameCheckPending, ordertasklet.NewPendingCountTasklet(db), repo)

	processStep := item.NewChunkStep(
		stepNameProcessOrders,
		orderreader.NewPendingOrderReader(db),
		proc,
		orderwriter.NewOrderStatusWriter(),
		item.ChunkConfig{ChunkSize: cfg.ChunkSize},
		repo,
		tx.NewTransactionManager(db),
		recorder,
	)

	return job.NewSimpleJob(cfg.Name, []port.Step{checkStep, processStep}, repo, recorder, validateOrderJobParameters), nil
}

// validateOrderJobParameters rejects a launch whose parameters are missing
// or malformed before any JobExecution is created.
func validateOrderJobParameters(params model.JobParameters) error {
	if _, err := step.ResolveCriteria(params); err != nil {
		return err
	}
	mode, ok := params.GetString(step.ParamProcessingMode)
	if !ok || strings.TrimSpace(mode) == "" {
		return fmt.Errorf("missing job parameter '%s'", step.ParamProcessingMode)
	}
	return nil
}

// newParametersFactory builds per-run launch parameters: the date window
// ending today, the minimum amount and the processing mode from config. The
// launcher's incrementer adds the run-unique timestamp.
func newParametersFactory(cfg *config.Config) scheduler.ParametersFactory {
	return func(now time.Time) model.JobParameters {
		params := model.NewJobParameters()
		params.Put(step.ParamStartDate, now.AddDate(0, 0, -cfg.Scheduler.WindowDays).Format(step.DateLayout))
		params.Put(step.ParamEndDate, now.Format(step.DateLayout))
		params.Put(step.ParamMinAmount, strconv.Itoa(cfg.Scheduler.MinAmount))
		params.Put(step.ParamProcessingMode, cfg.Job.ProcessingMode)
		return params
	}
}
