package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/weather-crawler/internal/entity"
	"github.com/user/weather-crawler/internal/repository"
)

func newTestRepo(t *testing.T) *WeatherRepoImpl {
	t.Helper()
	repo, err := NewWeatherRepo(context.Background(), filepath.Join(t.TempDir(), "weather.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func rec(date, loc string, max, min, mean float64) entity.DailyRecord {
	d, err := entity.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return entity.DailyRecord{Date: d, Location: loc, MaxTemp: max, MinTemp: min, MeanTemp: mean}
}

func TestNewWeatherRepoCreatesSchema(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.db.ExecContext(context.Background(), "SELECT id, date, location_name, max_temp, min_temp, mean_temp FROM weather LIMIT 1")
	assert.NoError(t, err)
}

func TestUpsertIsIdempotent(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	r := rec("2023-06-15", "Winnipeg", 25.1, 12.3, 18.7)

	inserted, err := repo.Upsert(ctx, r)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Upsert(ctx, r)
	require.NoError(t, err)
	assert.False(t, inserted)

	n, err := repo.Count(ctx, "Winnipeg")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestUpsertNeverOverwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, rec("2023-06-15", "Winnipeg", 25, 12, 18))
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, rec("2023-06-15", "Winnipeg", 99, 99, 99))
	require.NoError(t, err)

	series, err := repo.DailySeries(ctx, "Winnipeg", 2023, time.June)
	require.NoError(t, err)
	require.NotNil(t, series[14].MeanTemp)
	assert.Equal(t, 18.0, *series[14].MeanTemp)
}

func TestUpsertSameDateDifferentLocation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	n, err := repo.UpsertBatch(ctx, []entity.DailyRecord{
		rec("2023-06-15", "Winnipeg", 25, 12, 18),
		rec("2023-06-15", "Brandon", 24, 11, 17),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := repo.Count(ctx, "")
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestUpsertBatchCountsOnlyNewRows(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, rec("2023-06-01", "Winnipeg", 1, 1, 1))
	require.NoError(t, err)

	n, err := repo.UpsertBatch(ctx, []entity.DailyRecord{
		rec("2023-06-01", "Winnipeg", 1, 1, 1),
		rec("2023-06-02", "Winnipeg", 2, 2, 2),
		rec("2023-06-02", "Winnipeg", 2, 2, 2),
		rec("2023-06-03", "Winnipeg", 3, 3, 3),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.UpsertBatch(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConcurrentUpsertsOfSameKey(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	r := rec("2001-02-03", "Winnipeg", 1, 2, 3)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := repo.Upsert(ctx, r)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				inserted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, inserted)
	n, err := repo.Count(ctx, "Winnipeg")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestLatestDate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, ok, err := repo.LatestDate(ctx, "Winnipeg")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.UpsertBatch(ctx, []entity.DailyRecord{
		rec("2023-06-15", "Winnipeg", 1, 1, 1),
		rec("2023-05-31", "Winnipeg", 1, 1, 1),
		rec("2024-01-01", "Brandon", 1, 1, 1),
	})
	require.NoError(t, err)

	latest, ok, err := repo.LatestDate(ctx, "Winnipeg")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), latest)
}

func TestMonthlyAggregateAlwaysTwelveMonths(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	aggs, err := repo.MonthlyAggregate(ctx, "Winnipeg", 2000, 2001)
	require.NoError(t, err)
	require.Len(t, aggs, 12)
	for i, a := range aggs {
		assert.Equal(t, time.Month(i+1), a.Month)
		assert.Nil(t, a.MeanTemp)
		assert.Zero(t, a.Samples)
	}

	_, err = repo.UpsertBatch(ctx, []entity.DailyRecord{
		rec("2000-01-10", "Winnipeg", 0, 0, -20),
		rec("2001-01-10", "Winnipeg", 0, 0, -10),
		rec("2001-07-04", "Winnipeg", 0, 0, 21.5),
		rec("2002-07-04", "Winnipeg", 0, 0, 100), // outside range
		rec("2001-07-05", "Brandon", 0, 0, 50),  // other location
	})
	require.NoError(t, err)

	aggs, err = repo.MonthlyAggregate(ctx, "Winnipeg", 2000, 2001)
	require.NoError(t, err)
	require.Len(t, aggs, 12)

	require.NotNil(t, aggs[0].MeanTemp)
	assert.InDelta(t, -15.0, *aggs[0].MeanTemp, 1e-9)
	assert.Equal(t, 2, aggs[0].Samples)
	require.NotNil(t, aggs[6].MeanTemp)
	assert.InDelta(t, 21.5, *aggs[6].MeanTemp, 1e-9)
	for _, i := range []int{1, 2, 3, 4, 5, 7, 8, 9, 10, 11} {
		assert.Nil(t, aggs[i].MeanTemp, "month %d", i+1)
	}

	all, err := repo.MonthlyAggregate(ctx, "", 2001, 2001)
	require.NoError(t, err)
	require.NotNil(t, all[6].MeanTemp)
	assert.InDelta(t, 35.75, *all[6].MeanTemp, 1e-9)
}

func TestMonthlyAggregateRejectsInvertedYears(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.MonthlyAggregate(context.Background(), "Winnipeg", 2010, 2000)
	assert.True(t, errors.Is(err, repository.ErrInvalidQuery))
}

func TestDailySeriesOrderedWithGaps(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, []entity.DailyRecord{
		rec("2020-02-29", "Winnipeg", 0, 0, -3),
		rec("2020-02-01", "Winnipeg", 0, 0, -20),
		rec("2020-02-15", "Winnipeg", 0, 0, -11),
		rec("2020-03-01", "Winnipeg", 0, 0, 5),
	})
	require.NoError(t, err)

	series, err := repo.DailySeries(ctx, "Winnipeg", 2020, time.February)
	require.NoError(t, err)
	require.Len(t, series, 29)

	for i := 1; i < len(series); i++ {
		assert.Less(t, series[i-1].Day, series[i].Day)
	}
	require.NotNil(t, series[0].MeanTemp)
	assert.Equal(t, -20.0, *series[0].MeanTemp)
	require.NotNil(t, series[14].MeanTemp)
	assert.Equal(t, -11.0, *series[14].MeanTemp)
	require.NotNil(t, series[28].MeanTemp)
	assert.Equal(t, -3.0, *series[28].MeanTemp)
	assert.Nil(t, series[1].MeanTemp)

	_, err = repo.DailySeries(ctx, "Winnipeg", 2020, 13)
	assert.True(t, errors.Is(err, repository.ErrInvalidQuery))
}

func TestPurge(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.UpsertBatch(ctx, []entity.DailyRecord{
		rec("2020-02-01", "Winnipeg", 0, 0, 1),
		rec("2020-02-02", "Winnipeg", 0, 0, 2),
	})
	require.NoError(t, err)

	deleted, err := repo.Purge(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	_, ok, err := repo.LatestDate(ctx, "Winnipeg")
	require.NoError(t, err)
	assert.False(t, ok)
}
