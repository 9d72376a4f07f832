package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/user/weather-crawler/internal/adapter/chromedp_crawler"
	"github.com/user/weather-crawler/internal/adapter/httpfetch"
	"github.com/user/weather-crawler/internal/adapter/memory"
	"github.com/user/weather-crawler/internal/adapter/postgres"
	redis_adapter "github.com/user/weather-crawler/internal/adapter/redis"
	"github.com/user/weather-crawler/internal/adapter/sqlite"
	"github.com/user/weather-crawler/internal/crawler"
	"github.com/user/weather-crawler/internal/proxy"
	"github.com/user/weather-crawler/internal/repository"
	"github.com/user/weather-crawler/internal/usecase"
	"github.com/user/weather-crawler/pkg/config"
	"github.com/user/weather-crawler/pkg/metrics"
	"github.com/user/weather-crawler/pkg/utils"
)

// app holds the wired dependencies shared by every command.
type app struct {
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	store    repository.WeatherRepository
	ingestor usecase.Ingestor
	reporter usecase.Reporter

	closers []func() error
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (a *app, err error) {
	a = &app{registry: prometheus.NewRegistry()}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.New(a.registry)
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	// --- Store ---
	switch cfg.DBDriver {
	case "postgres":
		pg, err := postgres.NewWeatherRepo(ctx, cfg.PostgresURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres %s: %w", utils.RedactURL(cfg.PostgresURL), err)
		}
		a.store = pg
		logger.Info("PostgreSQL connection pool established")
	default:
		lite, err := sqlite.NewWeatherRepo(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		a.store = lite
		logger.Info("SQLite database opened", zap.String("path", cfg.SQLitePath))
	}
	a.closers = append(a.closers, a.store.Close)

	// --- Run lock ---
	var lock repository.RunLock
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		a.closers = append(a.closers, rdb.Close)
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		lock = redis_adapter.NewRunLock(rdb)
		logger.Info("Redis connection established", zap.String("addr", cfg.RedisAddr))
	} else {
		lock = memory.NewRunLock()
	}

	// --- Page transport ---
	pm, err := proxy.NewManager(cfg.ProxyList(), cfg.UserAgentList())
	if err != nil {
		return nil, fmt.Errorf("init proxy manager: %w", err)
	}
	var pages repository.PageFetcher
	switch cfg.FetchMode {
	case "browser":
		browser := chromedp_crawler.NewChromedpFetcher(cfg.CrawlTimeout, pm, logger)
		a.closers = append(a.closers, browser.Close)
		pages = browser
	default:
		pages = httpfetch.NewFetcher(cfg.CrawlTimeout, pm)
	}

	// --- Crawler and use cases ---
	months := crawler.NewMonthFetcher(crawler.MonthFetcherConfig{
		BaseURL:       cfg.SourceBaseURL,
		StationID:     cfg.StationID,
		Location:      cfg.LocationName,
		TableSelector: cfg.TableSelector,
	}, pages, a.metrics, logger.With(zap.String("component", "month_fetcher")))
	scheduler := crawler.NewScheduler(months, cfg.CrawlWorkers, a.metrics, logger.With(zap.String("component", "scheduler")))

	start, err := cfg.BackfillStartDate()
	if err != nil {
		return nil, err
	}
	a.ingestor = usecase.NewIngestor(usecase.IngestConfig{
		Location:      cfg.LocationName,
		BackfillStart: start,
		LockTTL:       cfg.LockTTL,
	}, scheduler, a.store, lock, a.metrics, logger)
	a.reporter = usecase.NewReporter(a.store)
	return a, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}
