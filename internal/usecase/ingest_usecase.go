package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/entity"
	"github.com/user/weather-crawler/internal/repository"
	"github.com/user/weather-crawler/pkg/metrics"
)

var (
	ErrBackfillRequired = errors.New("no stored data for location, run a full backfill first")
	ErrRunInProgress    = errors.New("another ingestion run is in progress")
)

const (
	upsertChunkSize = 500
	defaultLockTTL  = 2 * time.Hour
	runStatusFailed = "failed"
)

// RangeCrawler collects the daily records of a calendar range.
type RangeCrawler interface {
	Crawl(ctx context.Context, r entity.CrawlRange) (*entity.CrawlResult, error)
}

// Ingestor defines the ingestion runs of one location.
type Ingestor interface {
	// FullBackfill crawls from the configured start date up to today.
	FullBackfill(ctx context.Context) (*entity.IngestReport, error)
	// IncrementalUpdate crawls the days after the newest stored record.
	IncrementalUpdate(ctx context.Context) (*entity.IngestReport, error)
	// Purge deletes every stored record.
	Purge(ctx context.Context) (int64, error)
}

// IngestConfig holds the per-location settings of an Ingestor.
type IngestConfig struct {
	Location      string
	BackfillStart time.Time
	LockTTL       time.Duration
	// Now returns the current time; time.Now when nil.
	Now func() time.Time
}

type ingestUseCase struct {
	cfg     IngestConfig
	crawler RangeCrawler
	store   repository.WeatherRepository
	lock    repository.RunLock
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewIngestor creates a new Ingestor use case.
func NewIngestor(
	cfg IngestConfig,
	crawler RangeCrawler,
	store repository.WeatherRepository,
	lock repository.RunLock,
	m *metrics.Metrics,
	logger *zap.Logger,
) Ingestor {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	return &ingestUseCase{
		cfg:     cfg,
		crawler: crawler,
		store:   store,
		lock:    lock,
		metrics: m,
		logger:  logger.With(zap.String("component", "ingestor"), zap.String("location", cfg.Location)),
	}
}

func (uc *ingestUseCase) FullBackfill(ctx context.Context) (*entity.IngestReport, error) {
	return uc.locked(ctx, entity.IngestModeBackfill, func(ctx context.Context) (*entity.IngestReport, error) {
		r := entity.NewCrawlRange(uc.cfg.BackfillStart, uc.today())
		uc.logger.Info("starting full backfill", zap.Stringer("range", r))
		return uc.ingest(ctx, entity.IngestModeBackfill, r)
	})
}

func (uc *ingestUseCase) IncrementalUpdate(ctx context.Context) (*entity.IngestReport, error) {
	return uc.locked(ctx, entity.IngestModeUpdate, func(ctx context.Context) (*entity.IngestReport, error) {
		latest, ok, err := uc.store.LatestDate(ctx, uc.cfg.Location)
		if err != nil {
			return nil, fmt.Errorf("read latest date: %w", err)
		}
		if !ok {
			uc.logger.Info("no existing data, full backfill required")
			return nil, ErrBackfillRequired
		}

		r := entity.NewCrawlRange(latest.AddDate(0, 0, 1), uc.today())
		if !r.Valid() {
			uc.logger.Info("data is already up to date", zap.String("latest", latest.Format(entity.DateLayout)))
			return &entity.IngestReport{
				Mode:     entity.IngestModeUpdate,
				Status:   entity.IngestStatusUpToDate,
				Location: uc.cfg.Location,
			}, nil
		}

		uc.logger.Info("updating data", zap.Stringer("range", r))
		return uc.ingest(ctx, entity.IngestModeUpdate, r)
	})
}

func (uc *ingestUseCase) Purge(ctx context.Context) (int64, error) {
	release, err := uc.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer uc.release(ctx, release)

	deleted, err := uc.store.Purge(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge records: %w", err)
	}
	uc.logger.Info("purged all records", zap.Int64("deleted", deleted))
	return deleted, nil
}

func (uc *ingestUseCase) locked(
	ctx context.Context,
	mode string,
	run func(ctx context.Context) (*entity.IngestReport, error),
) (*entity.IngestReport, error) {
	release, err := uc.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer uc.release(ctx, release)

	start := time.Now()
	report, err := run(ctx)
	if err != nil {
		uc.metrics.IncIngestRun(mode, runStatusFailed)
		return nil, err
	}
	report.Duration = time.Since(start)
	uc.metrics.IncIngestRun(mode, report.Status)
	return report, nil
}

func (uc *ingestUseCase) acquire(ctx context.Context) (func(context.Context) error, error) {
	release, err := uc.lock.Acquire(ctx, uc.cfg.Location, uc.cfg.LockTTL)
	if errors.Is(err, repository.ErrLockHeld) {
		return nil, fmt.Errorf("%w: %s", ErrRunInProgress, uc.cfg.Location)
	}
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	return release, nil
}

func (uc *ingestUseCase) release(ctx context.Context, release func(context.Context) error) {
	if err := release(context.WithoutCancel(ctx)); err != nil {
		// Not fatal, the lease expires on its own.
		uc.logger.Warn("failed to release run lock", zap.Error(err))
	}
}

func (uc *ingestUseCase) ingest(ctx context.Context, mode string, r entity.CrawlRange) (*entity.IngestReport, error) {
	result, err := uc.crawler.Crawl(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("crawl %s: %w", r, err)
	}

	inserted, err := uc.write(ctx, result.Records)
	if err != nil {
		return nil, err
	}
	ignored := len(result.Records) - inserted
	uc.metrics.AddRecords(inserted, ignored)

	report := &entity.IngestReport{
		Mode:             mode,
		Status:           entity.IngestStatusCompleted,
		Location:         uc.cfg.Location,
		Start:            r.Start.Format(entity.DateLayout),
		End:              r.End.Format(entity.DateLayout),
		MonthsDispatched: result.Dispatched,
		Collected:        len(result.Records),
		Inserted:         inserted,
		Ignored:          ignored,
		Exhausted:        result.Exhausted,
		ExhaustionReason: result.ExhaustionReason,
	}
	if result.Exhausted {
		report.ExhaustedAt = result.ExhaustedAt.String()
	}

	uc.logger.Info("ingestion finished",
		zap.String("mode", mode),
		zap.Int("collected", report.Collected),
		zap.Int("inserted", inserted),
		zap.Int("ignored", ignored),
		zap.Bool("exhausted", report.Exhausted),
	)
	return report, nil
}

// write stores recs in chunks so a long backfill never holds one huge transaction.
func (uc *ingestUseCase) write(ctx context.Context, recs []entity.DailyRecord) (int, error) {
	total := 0
	for start := 0; start < len(recs); start += upsertChunkSize {
		end := min(start+upsertChunkSize, len(recs))
		n, err := uc.store.UpsertBatch(ctx, recs[start:end])
		total += n
		if err != nil {
			return total, fmt.Errorf("store records: %w", err)
		}
	}
	return total, nil
}

func (uc *ingestUseCase) today() time.Time {
	return entity.Day(uc.cfg.Now())
}
