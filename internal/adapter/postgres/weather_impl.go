package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/weather-crawler/internal/entity"
	"github.com/user/weather-crawler/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS weather (
		id BIGSERIAL PRIMARY KEY,
		date TEXT NOT NULL,
		location_name TEXT NOT NULL,
		max_temp DOUBLE PRECISION,
		min_temp DOUBLE PRECISION,
		mean_temp DOUBLE PRECISION,
		UNIQUE (date, location_name)
	);
	CREATE INDEX IF NOT EXISTS idx_weather_location_date ON weather (location_name, date);
`

const insertOrIgnore = `
	INSERT INTO weather (date, location_name, max_temp, min_temp, mean_temp)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (date, location_name) DO NOTHING
`

// WeatherRepoImpl provides a concrete implementation for the WeatherRepository interface using PostgreSQL.
type WeatherRepoImpl struct {
	db *pgxpool.Pool
}

var _ repository.WeatherRepository = (*WeatherRepoImpl)(nil)

// NewWeatherRepo connects to connString and applies the schema.
func NewWeatherRepo(ctx context.Context, connString string) (*WeatherRepoImpl, error) {
	db, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := db.Ping(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &WeatherRepoImpl{db: db}, nil
}

// Upsert inserts rec unless (date, location_name) already exists.
func (r *WeatherRepoImpl) Upsert(ctx context.Context, rec entity.DailyRecord) (bool, error) {
	tag, err := r.db.Exec(ctx, insertOrIgnore,
		rec.DateString(), rec.Location, rec.MaxTemp, rec.MinTemp, rec.MeanTemp)
	if err != nil {
		return false, fmt.Errorf("insert %s/%s: %w", rec.DateString(), rec.Location, err)
	}
	return tag.RowsAffected() == 1, nil
}

// UpsertBatch queues every insert in a single pgx batch inside one transaction.
func (r *WeatherRepoImpl) UpsertBatch(ctx context.Context, recs []entity.DailyRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range recs {
		batch.Queue(insertOrIgnore, rec.DateString(), rec.Location, rec.MaxTemp, rec.MinTemp, rec.MeanTemp)
	}

	br := tx.SendBatch(ctx, batch)
	inserted := 0
	for i := range recs {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, fmt.Errorf("insert %s/%s: %w", recs[i].DateString(), recs[i].Location, err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return inserted, nil
}

// LatestDate returns the maximum stored date for location.
func (r *WeatherRepoImpl) LatestDate(ctx context.Context, location string) (time.Time, bool, error) {
	var latest *string
	err := r.db.QueryRow(ctx,
		`SELECT MAX(date) FROM weather WHERE location_name = $1`, location,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, false, err
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	d, err := entity.ParseDate(*latest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("stored date %q: %w", *latest, err)
	}
	return d, true, nil
}

// MonthlyAggregate averages mean_temp per calendar month over [startYear, endYear].
func (r *WeatherRepoImpl) MonthlyAggregate(ctx context.Context, location string, startYear, endYear int) ([]entity.MonthlyAggregate, error) {
	if err := repository.ValidateYearRange(startYear, endYear); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT substr(date, 6, 2)::int AS month, AVG(mean_temp), COUNT(mean_temp)
		FROM weather
		WHERE substr(date, 1, 4) BETWEEN $1 AND $2
		  AND ($3::text = '' OR location_name = $3::text)
		GROUP BY month
		ORDER BY month`,
		fmt.Sprintf("%04d", startYear), fmt.Sprintf("%04d", endYear), location)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := entity.NewMonthlyAggregates()
	for rows.Next() {
		var (
			month   int32
			avg     *float64
			samples int64
		)
		if err := rows.Scan(&month, &avg, &samples); err != nil {
			return nil, err
		}
		if month < 1 || month > 12 || avg == nil {
			continue
		}
		out[month-1].MeanTemp = avg
		out[month-1].Samples = int(samples)
	}
	return out, rows.Err()
}

// DailySeries returns the mean temperature of every day of year/month.
func (r *WeatherRepoImpl) DailySeries(ctx context.Context, location string, year int, month time.Month) ([]entity.DailyPoint, error) {
	if err := repository.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	ym := entity.YearMonth{Year: year, Month: month}

	rows, err := r.db.Query(ctx, `
		SELECT substr(date, 9, 2)::int AS day, AVG(mean_temp)
		FROM weather
		WHERE substr(date, 1, 7) = $1
		  AND ($2::text = '' OR location_name = $2::text)
		GROUP BY date
		ORDER BY date`,
		ym.String(), location)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := entity.NewDailySeries(ym)
	for rows.Next() {
		var (
			day int32
			avg *float64
		)
		if err := rows.Scan(&day, &avg); err != nil {
			return nil, err
		}
		if day < 1 || int(day) > len(out) || avg == nil {
			continue
		}
		out[day-1].MeanTemp = avg
	}
	return out, rows.Err()
}

// Count returns the number of stored records for location, or all records when empty.
func (r *WeatherRepoImpl) Count(ctx context.Context, location string) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM weather WHERE ($1::text = '' OR location_name = $1::text)`, location,
	).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

// Purge deletes every record.
func (r *WeatherRepoImpl) Purge(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM weather`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *WeatherRepoImpl) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *WeatherRepoImpl) Close() error {
	r.db.Close()
	return nil
}
