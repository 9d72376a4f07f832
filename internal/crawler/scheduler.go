package crawler

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/entity"
	"github.com/user/weather-crawler/pkg/metrics"
)

// DefaultWorkers is the size of the month fetch pool when none is configured.
const DefaultWorkers = 8

// MonthSource produces the outcome for one month page.
type MonthSource interface {
	Fetch(ctx context.Context, ym entity.YearMonth) entity.MonthOutcome
}

// Scheduler walks a CrawlRange backward in time, one task per month, and
// stops dispatching once a month reports that no older data exists.
type Scheduler struct {
	source  MonthSource
	workers int
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewScheduler(source MonthSource, workers int, m *metrics.Metrics, logger *zap.Logger) *Scheduler {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &Scheduler{source: source, workers: workers, metrics: m, logger: logger}
}

// crawlRun is the state shared by the dispatcher and workers of one Crawl.
type crawlRun struct {
	rng        entity.CrawlRange
	exhaustion Exhaustion
	started    atomic.Int64
	completed  atomic.Int64

	mu      sync.Mutex
	records map[time.Time]entity.DailyRecord
}

// Crawl fetches every month of r, newest first, and returns the merged
// records sorted by date. Transport failures end the walk instead of failing
// the call; the only error returned is a cancelled ctx, after in-flight
// tasks have finished.
func (s *Scheduler) Crawl(ctx context.Context, r entity.CrawlRange) (*entity.CrawlResult, error) {
	result := &entity.CrawlResult{Range: r}
	months := r.Months()
	if len(months) == 0 {
		return result, nil
	}

	run := &crawlRun{rng: r, records: make(map[time.Time]entity.DailyRecord)}
	tasks := make(chan entity.YearMonth)

	var wg sync.WaitGroup
	for i := 0; i < min(s.workers, len(months)); i++ {
		wg.Add(1)
		go s.worker(ctx, run, tasks, &wg)
	}

	s.logger.Info("starting range crawl",
		zap.Stringer("range", r),
		zap.Int("months", len(months)),
		zap.Int("workers", min(s.workers, len(months))),
	)

dispatch:
	for _, ym := range months {
		if run.exhaustion.Exhausted() {
			s.logger.Info("no more data available, stopping dispatch", zap.Stringer("next_month", ym))
			break
		}
		select {
		case tasks <- ym:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(tasks)
	wg.Wait()

	result.Records = run.sorted()
	result.Dispatched = int(run.started.Load())
	result.Completed = int(run.completed.Load())
	if at, reason, ok := run.exhaustion.Boundary(); ok {
		result.Exhausted = true
		result.ExhaustedAt = at
		result.ExhaustionReason = reason
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}
	s.logger.Info("range crawl finished",
		zap.Stringer("range", r),
		zap.Int("records", len(result.Records)),
		zap.Int("months_fetched", result.Completed),
		zap.Bool("exhausted", result.Exhausted),
	)
	return result, nil
}

func (s *Scheduler) worker(ctx context.Context, run *crawlRun, tasks <-chan entity.YearMonth, wg *sync.WaitGroup) {
	defer wg.Done()
	for ym := range tasks {
		// The flag may have been raised between dispatch and receipt.
		if run.exhaustion.Covers(ym) || ctx.Err() != nil {
			continue
		}
		run.started.Add(1)
		s.metrics.WorkersBusy.Inc()
		outcome := s.source.Fetch(ctx, ym)
		s.metrics.WorkersBusy.Dec()

		if ctx.Err() != nil {
			// A cancelled fetch says nothing about the source.
			continue
		}
		run.completed.Add(1)

		switch o := outcome.(type) {
		case entity.MonthRows:
			run.merge(o.Rows)
		case entity.MonthEmpty:
			run.exhaustion.Set(ym, "no data table")
		case entity.MonthTransportError:
			run.exhaustion.Set(ym, o.Error())
		}
	}
}

// merge keeps the first record seen for each date inside the range.
func (run *crawlRun) merge(rows []entity.DailyRecord) {
	run.mu.Lock()
	defer run.mu.Unlock()
	for _, rec := range rows {
		if !run.rng.Contains(rec.Date) {
			continue
		}
		key := entity.Day(rec.Date)
		if _, ok := run.records[key]; ok {
			continue
		}
		rec.Date = key
		run.records[key] = rec
	}
}

func (run *crawlRun) sorted() []entity.DailyRecord {
	run.mu.Lock()
	defer run.mu.Unlock()
	out := make([]entity.DailyRecord, 0, len(run.records))
	for _, rec := range run.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
