package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/user/weather-crawler/internal/entity"
	"github.com/user/weather-crawler/internal/repository"
)

// Reporter defines the read-only views over stored records.
// An empty location means all locations.
type Reporter interface {
	MonthlyAggregate(ctx context.Context, location string, startYear, endYear int) ([]entity.MonthlyAggregate, error)
	DailySeries(ctx context.Context, location string, year int, month time.Month) ([]entity.DailyPoint, error)
	Status(ctx context.Context, location string) (*entity.StoreStatus, error)
	Health(ctx context.Context) error
}

type reportUseCase struct {
	store repository.WeatherRepository
}

// NewReporter creates a new Reporter use case.
func NewReporter(store repository.WeatherRepository) Reporter {
	return &reportUseCase{store: store}
}

func (uc *reportUseCase) MonthlyAggregate(ctx context.Context, location string, startYear, endYear int) ([]entity.MonthlyAggregate, error) {
	if err := repository.ValidateYearRange(startYear, endYear); err != nil {
		return nil, err
	}
	aggs, err := uc.store.MonthlyAggregate(ctx, location, startYear, endYear)
	if err != nil {
		return nil, fmt.Errorf("monthly aggregate: %w", err)
	}
	return aggs, nil
}

func (uc *reportUseCase) DailySeries(ctx context.Context, location string, year int, month time.Month) ([]entity.DailyPoint, error) {
	if err := repository.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	points, err := uc.store.DailySeries(ctx, location, year, month)
	if err != nil {
		return nil, fmt.Errorf("daily series: %w", err)
	}
	return points, nil
}

func (uc *reportUseCase) Status(ctx context.Context, location string) (*entity.StoreStatus, error) {
	status := &entity.StoreStatus{Location: location}

	latest, ok, err := uc.store.LatestDate(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("read latest date: %w", err)
	}
	if ok {
		status.LatestDate = &latest
	}

	status.Records, err = uc.store.Count(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("count records: %w", err)
	}
	return status, nil
}

func (uc *reportUseCase) Health(ctx context.Context) error {
	return uc.store.Ping(ctx)
}
