package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/weather-crawler/internal/entity"
)

// ErrInvalidQuery is returned for aggregate queries with out-of-range arguments.
var ErrInvalidQuery = errors.New("invalid query")

// WeatherRepository defines the persistence contract for daily records.
// Writes are insert-or-ignore keyed by (date, location_name); an existing
// record is never overwritten.
type WeatherRepository interface {
	// Upsert stores rec unless a record with the same key exists.
	// inserted is false when the call was a no-op.
	Upsert(ctx context.Context, rec entity.DailyRecord) (inserted bool, err error)
	// UpsertBatch applies Upsert to every record inside one transaction.
	UpsertBatch(ctx context.Context, recs []entity.DailyRecord) (inserted int, err error)
	// LatestDate returns the newest stored date for location; ok is false when none exists.
	LatestDate(ctx context.Context, location string) (latest time.Time, ok bool, err error)
	// MonthlyAggregate returns exactly 12 entries, January first. An empty
	// location aggregates across all locations.
	MonthlyAggregate(ctx context.Context, location string, startYear, endYear int) ([]entity.MonthlyAggregate, error)
	// DailySeries returns one entry per calendar day of year/month, ascending.
	DailySeries(ctx context.Context, location string, year int, month time.Month) ([]entity.DailyPoint, error)
	// Count returns the number of stored records for location (all when empty).
	Count(ctx context.Context, location string) (int64, error)
	// Purge deletes every record.
	Purge(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}

// ValidateYearRange checks the arguments of MonthlyAggregate.
func ValidateYearRange(startYear, endYear int) error {
	if startYear < 1 || endYear > 9999 || startYear > endYear {
		return fmt.Errorf("%w: year range %d-%d", ErrInvalidQuery, startYear, endYear)
	}
	return nil
}

// ValidateYearMonth checks the arguments of DailySeries.
func ValidateYearMonth(year int, month time.Month) error {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return fmt.Errorf("%w: %d-%02d", ErrInvalidQuery, year, int(month))
	}
	return nil
}
