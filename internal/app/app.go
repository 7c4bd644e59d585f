package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/SNU-Hackathon/Doany-sub000/internal/config"
	"github.com/SNU-Hackathon/Doany-sub000/internal/db"
	"github.com/SNU-Hackathon/Doany-sub000/internal/offline"
	"github.com/SNU-Hackathon/Doany-sub000/internal/repository"
	"github.com/SNU-Hackathon/Doany-sub000/internal/service"
	"github.com/SNU-Hackathon/Doany-sub000/internal/storage"
	"github.com/SNU-Hackathon/Doany-sub000/internal/telemetry"
	"github.com/SNU-Hackathon/Doany-sub000/internal/verification"
)

type App struct {
	Cfg                 *config.Config
	DB                  *sqlx.DB
	Telemetry           *telemetry.Provider
	GoalService         *service.GoalService
	VerificationService *service.VerificationService
	StatsService        *service.StatsService
	FileService         *service.FileService
	Queue               *offline.Queue
	Coordinator         *offline.Coordinator
	Probe               *service.StoreProbe

	closers []func() error
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Cfg: cfg}

	// Initialize database
	var err error
	if cfg.AutoMigrate {
		a.DB, err = db.Open(cfg.DBDriver, cfg.DBConnection)
	} else {
		a.DB, err = db.Init(cfg.DBDriver, cfg.DBConnection)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	a.closers = append(a.closers, func() error { return db.Close(a.DB) })

	a.Telemetry, err = telemetry.New(ctx, telemetry.Config{
		ServiceName:  cfg.AppName,
		Environment:  cfg.AppEnv,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Insecure:     cfg.IsDevelopment(),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	metrics := a.Telemetry.Metrics

	// Repositories
	goalRepository := repository.NewGoalRepository(a.DB)
	verificationRepository := repository.NewVerificationRepository(a.DB)
	fileRepository := repository.NewFileRepository(a.DB)

	// Storage
	fileStorage, err := storage.New(ctx, cfg)
	if errors.Is(err, storage.ErrStorageDisabled) {
		slog.Info("photo upload disabled, S3_BUCKET is not set")
		fileStorage = nil
	} else if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	listStore, err := a.listStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	// Services
	photoRules := verification.PhotoRules{
		Tolerance:    cfg.PhotoTimeTolerance,
		MaxAge:       cfg.PhotoMaxAge,
		RadiusMeters: cfg.PhotoRadiusMeters,
	}
	guard := service.NewDuplicateGuard(verificationRepository)

	a.GoalService = service.NewGoalService(goalRepository, cfg.DefaultTimezone)
	a.VerificationService = service.NewVerificationService(goalRepository, verificationRepository, guard, photoRules, metrics)
	a.VerificationService.ReplayHorizon = cfg.ReplayHorizon
	a.StatsService = service.NewStatsService(goalRepository, verificationRepository, cfg.WeeklyPassRatio)
	a.FileService = service.NewFileService(fileRepository, fileStorage)

	// Offline replay
	a.Queue = offline.NewQueue(listStore, cfg.QueueName, offline.Options{
		MaxRetries: cfg.QueueMaxRetries,
		Observer: offline.Observers(
			metrics.OfflineObserver(),
			logTransition,
		),
	})
	a.Coordinator = offline.NewCoordinator(a.Queue, offline.ProcessorFunc(a.VerificationService.ProcessAttempt))
	a.Coordinator.OnFlush = func(ctx context.Context, queue string, _ offline.FlushReport) {
		metrics.RecordFlush(ctx, queue)
	}
	a.Probe = service.NewStoreProbe(a.DB, cfg.StoreProbeInterval)

	return a, nil
}

// listStore picks the durable backend for the offline queue. Redis keeps
// queued attempts when the SQL store is the thing that is down.
func (a *App) listStore(ctx context.Context) (offline.ListStore, error) {
	switch a.Cfg.QueueBackend {
	case config.QueueBackendSQL, "":
		return repository.NewQueueRepository(a.DB), nil
	case config.QueueBackendRedis:
		rs := storage.NewRedisListStore(a.Cfg.RedisAddr, a.Cfg.RedisPassword, a.Cfg.RedisDB)
		a.closers = append(a.closers, rs.Close)
		err := rs.Ping(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", a.Cfg.RedisAddr, err)
		}
		slog.Info("offline queue uses redis", "addr", a.Cfg.RedisAddr)
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown QUEUE_BACKEND %q", a.Cfg.QueueBackend)
	}
}

func logTransition(t offline.Transition) {
	if t.To == offline.StateDropped {
		slog.Error("offline attempt dropped", "attempt_id", t.AttemptID, "retry_count", t.RetryCount, "error", t.Err)
	}
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		err := a.closers[i]()
		if err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	if a.Telemetry != nil {
		err := a.Telemetry.Shutdown(context.Background())
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
