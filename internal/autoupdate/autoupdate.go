package autoupdate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/usecase"
)

// Updater runs incremental updates on a cron schedule.
type Updater struct {
	cron     *cron.Cron
	ingestor usecase.Ingestor
	timeout  time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	entryID cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates an Updater whose runs are bounded by timeout (no bound when zero).
func New(ingestor usecase.Ingestor, timeout time.Duration, logger *zap.Logger) *Updater {
	logger = logger.With(zap.String("component", "autoupdate"))
	ctx, cancel := context.WithCancel(context.Background())
	return &Updater{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		ingestor: ingestor,
		timeout:  timeout,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Schedule registers the update job with a standard five-field cron spec,
// replacing any previous schedule.
func (u *Updater) Schedule(spec string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.entryID != 0 {
		u.cron.Remove(u.entryID)
	}
	id, err := u.cron.AddFunc(spec, u.RunOnce)
	if err != nil {
		return fmt.Errorf("adding cron entry: %w", err)
	}
	u.entryID = id
	u.logger.Info("incremental update scheduled", zap.String("cron", spec))
	return nil
}

// RunOnce performs one incremental update and logs the outcome.
func (u *Updater) RunOnce() {
	ctx := u.ctx
	if u.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	report, err := u.ingestor.IncrementalUpdate(ctx)
	switch {
	case errors.Is(err, usecase.ErrBackfillRequired):
		u.logger.Warn("skipping scheduled update, store is empty")
	case errors.Is(err, usecase.ErrRunInProgress):
		u.logger.Info("skipping scheduled update, another run holds the lock")
	case err != nil:
		u.logger.Error("scheduled update failed", zap.Error(err))
	default:
		u.logger.Info("scheduled update finished",
			zap.String("status", report.Status),
			zap.Int("inserted", report.Inserted),
		)
	}
}

// Start begins running scheduled jobs in the background.
func (u *Updater) Start() {
	u.cron.Start()
}

// Stop cancels a running update and waits for it to return.
func (u *Updater) Stop() {
	u.cancel()
	<-u.cron.Stop().Done()
}
