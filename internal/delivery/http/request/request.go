package request

import (
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// MonthlyAggregateQuery is parsed from GET /api/aggregates/monthly.
type MonthlyAggregateQuery struct {
	Location  string
	StartYear int
	EndYear   int
}

// DailySeriesQuery is parsed from GET /api/series/daily.
type DailySeriesQuery struct {
	Location string
	Year     int
	Month    time.Month
}

// Location returns the location query parameter. A missing parameter selects
// fallback; an explicit empty value selects every location.
func Location(r *http.Request, fallback string) string {
	q := r.URL.Query()
	if !q.Has("location") {
		return fallback
	}
	return q.Get("location")
}

func ParseMonthlyAggregateQuery(r *http.Request, defaultLocation string) (MonthlyAggregateQuery, error) {
	start, err := intParam(r, "start_year")
	if err != nil {
		return MonthlyAggregateQuery{}, err
	}
	end, err := intParam(r, "end_year")
	if err != nil {
		return MonthlyAggregateQuery{}, err
	}
	return MonthlyAggregateQuery{
		Location:  Location(r, defaultLocation),
		StartYear: start,
		EndYear:   end,
	}, nil
}

func ParseDailySeriesQuery(r *http.Request, defaultLocation string) (DailySeriesQuery, error) {
	year, err := intParam(r, "year")
	if err != nil {
		return DailySeriesQuery{}, err
	}
	month, err := intParam(r, "month")
	if err != nil {
		return DailySeriesQuery{}, err
	}
	return DailySeriesQuery{
		Location: Location(r, defaultLocation),
		Year:     year,
		Month:    time.Month(month),
	}, nil
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("%s query parameter is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
