package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/entity"
	"github.com/user/weather-crawler/internal/repository"
	"github.com/user/weather-crawler/pkg/metrics"
	"github.com/user/weather-crawler/pkg/utils"
)

// MonthFetcherConfig locates the month pages of one station.
type MonthFetcherConfig struct {
	BaseURL       string
	StationID     string
	Location      string
	TableSelector string
}

// MonthFetcher retrieves and parses the page of a single month.
type MonthFetcher struct {
	cfg     MonthFetcherConfig
	pages   repository.PageFetcher
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewMonthFetcher(cfg MonthFetcherConfig, pages repository.PageFetcher, m *metrics.Metrics, logger *zap.Logger) *MonthFetcher {
	if cfg.TableSelector == "" {
		cfg.TableSelector = DefaultTableSelector
	}
	return &MonthFetcher{cfg: cfg, pages: pages, metrics: m, logger: logger}
}

// URL returns the page address for ym.
func (f *MonthFetcher) URL(ym entity.YearMonth) (string, error) {
	return utils.SetQuery(f.cfg.BaseURL, url.Values{
		"StationID": {f.cfg.StationID},
		"Year":      {strconv.Itoa(ym.Year)},
		"Month":     {strconv.Itoa(int(ym.Month))},
		"Day":       {"1"},
	})
}

// Fetch returns the outcome for ym. It never retries; any failure to obtain
// the page is reported as MonthTransportError.
func (f *MonthFetcher) Fetch(ctx context.Context, ym entity.YearMonth) entity.MonthOutcome {
	start := time.Now()
	outcome := f.fetch(ctx, ym)
	f.metrics.MonthFetchDuration.Observe(time.Since(start).Seconds())

	switch o := outcome.(type) {
	case entity.MonthRows:
		f.metrics.IncMonthFetch(metrics.OutcomeRows)
		f.logger.Debug("month fetched", zap.Stringer("month", ym), zap.Int("rows", len(o.Rows)))
	case entity.MonthEmpty:
		f.metrics.IncMonthFetch(metrics.OutcomeEmpty)
		f.logger.Debug("month has no data table", zap.Stringer("month", ym))
	case entity.MonthTransportError:
		f.metrics.IncMonthFetch(metrics.OutcomeTransport)
		f.logger.Warn("failed to fetch month", zap.Stringer("month", ym), zap.Error(o.Err))
	}
	return outcome
}

func (f *MonthFetcher) fetch(ctx context.Context, ym entity.YearMonth) entity.MonthOutcome {
	pageURL, err := f.URL(ym)
	if err != nil {
		return entity.MonthTransportError{Err: fmt.Errorf("build url: %w", err)}
	}

	body, err := f.pages.Fetch(ctx, pageURL)
	if err != nil {
		return entity.MonthTransportError{Err: err}
	}

	days, found, err := ExtractMonthTable(body, ym.DaysIn(), f.cfg.TableSelector)
	if err != nil {
		return entity.MonthTransportError{Err: fmt.Errorf("parse page: %w", err)}
	}
	if !found {
		return entity.MonthEmpty{}
	}

	first := ym.FirstDay()
	rows := make([]entity.DailyRecord, 0, len(days))
	for _, d := range days {
		rows = append(rows, entity.DailyRecord{
			Date:     first.AddDate(0, 0, d.Day-1),
			Location: f.cfg.Location,
			MaxTemp:  d.Max,
			MinTemp:  d.Min,
			MeanTemp: d.Mean,
		})
	}
	return entity.MonthRows{Rows: rows}
}
