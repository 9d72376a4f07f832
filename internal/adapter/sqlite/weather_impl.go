package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/user/weather-crawler/internal/entity"
	"github.com/user/weather-crawler/internal/repository"
)

const schema = `
	CREATE TABLE IF NOT EXISTS weather (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		location_name TEXT NOT NULL,
		max_temp REAL,
		min_temp REAL,
		mean_temp REAL,
		UNIQUE(date, location_name)
	);
	CREATE INDEX IF NOT EXISTS idx_weather_location_date ON weather(location_name, date);
`

const insertOrIgnore = `
	INSERT OR IGNORE INTO weather (date, location_name, max_temp, min_temp, mean_temp)
	VALUES (?, ?, ?, ?, ?)
`

// WeatherRepoImpl provides a concrete implementation for the WeatherRepository interface using SQLite.
type WeatherRepoImpl struct {
	db *sql.DB
}

var _ repository.WeatherRepository = (*WeatherRepoImpl)(nil)

// NewWeatherRepo opens (creating if needed) the database at path and applies the schema.
func NewWeatherRepo(ctx context.Context, path string) (*WeatherRepoImpl, error) {
	dsn := path
	if !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite has a single writer; one connection also keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &WeatherRepoImpl{db: db}, nil
}

// Upsert inserts rec unless (date, location_name) already exists.
func (r *WeatherRepoImpl) Upsert(ctx context.Context, rec entity.DailyRecord) (bool, error) {
	res, err := r.db.ExecContext(ctx, insertOrIgnore,
		rec.DateString(), rec.Location, rec.MaxTemp, rec.MinTemp, rec.MeanTemp)
	if err != nil {
		return false, fmt.Errorf("insert %s/%s: %w", rec.DateString(), rec.Location, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// UpsertBatch inserts all records in one transaction with a prepared statement.
func (r *WeatherRepoImpl) UpsertBatch(ctx context.Context, recs []entity.DailyRecord) (int, error) {
	if len(recs) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertOrIgnore)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, rec := range recs {
		res, err := stmt.ExecContext(ctx, rec.DateString(), rec.Location, rec.MaxTemp, rec.MinTemp, rec.MeanTemp)
		if err != nil {
			return 0, fmt.Errorf("insert %s/%s: %w", rec.DateString(), rec.Location, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return inserted, nil
}

// LatestDate returns the maximum stored date for location.
func (r *WeatherRepoImpl) LatestDate(ctx context.Context, location string) (time.Time, bool, error) {
	var latest sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT MAX(date) FROM weather WHERE location_name = ?`, location,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, false, err
	}
	if !latest.Valid {
		return time.Time{}, false, nil
	}
	d, err := entity.ParseDate(latest.String)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("stored date %q: %w", latest.String, err)
	}
	return d, true, nil
}

// MonthlyAggregate averages mean_temp per calendar month over [startYear, endYear].
func (r *WeatherRepoImpl) MonthlyAggregate(ctx context.Context, location string, startYear, endYear int) ([]entity.MonthlyAggregate, error) {
	if err := repository.ValidateYearRange(startYear, endYear); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(substr(date, 6, 2) AS INTEGER) AS month, AVG(mean_temp), COUNT(mean_temp)
		FROM weather
		WHERE substr(date, 1, 4) BETWEEN ? AND ?
		  AND (? = '' OR location_name = ?)
		GROUP BY month
		ORDER BY month`,
		fmt.Sprintf("%04d", startYear), fmt.Sprintf("%04d", endYear), location, location)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := entity.NewMonthlyAggregates()
	for rows.Next() {
		var (
			month   int
			avg     sql.NullFloat64
			samples int64
		)
		if err := rows.Scan(&month, &avg, &samples); err != nil {
			return nil, err
		}
		if month < 1 || month > 12 || !avg.Valid {
			continue
		}
		v := avg.Float64
		out[month-1].MeanTemp = &v
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

	rows, err := r.db.QueryContext(ctx, `
		SELECT CAST(substr(date, 9, 2) AS INTEGER) AS day, AVG(mean_temp)
		FROM weather
		WHERE substr(date, 1, 7) = ?
		  AND (? = '' OR location_name = ?)
		GROUP BY date
		ORDER BY date`,
		ym.String(), location, location)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := entity.NewDailySeries(ym)
	for rows.Next() {
		var (
			day int
			avg sql.NullFloat64
		)
		if err := rows.Scan(&day, &avg); err != nil {
			return nil, err
		}
		if day < 1 || day > len(out) || !avg.Valid {
			continue
		}
		v := avg.Float64
		out[day-1].MeanTemp = &v
	}
	return out, rows.Err()
}

// Count returns the number of stored records for location, or all records when empty.
func (r *WeatherRepoImpl) Count(ctx context.Context, location string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM weather WHERE (? = '' OR location_name = ?)`, location, location,
	).Scan(&n)
	return n, err
}

// Purge deletes every record.
func (r *WeatherRepoImpl) Purge(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM weather`)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *WeatherRepoImpl) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *WeatherRepoImpl) Close() error {
	return r.db.Close()
}
