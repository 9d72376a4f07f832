package response

import "github.com/user/weather-crawler/internal/entity"

type ErrorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// MonthlyAggregateResponse always carries twelve months, January first.
type MonthlyAggregateResponse struct {
	Location  string                    `json:"location"`
	StartYear int                       `json:"start_year"`
	EndYear   int                       `json:"end_year"`
	Months    []entity.MonthlyAggregate `json:"months"`
}

// DailySeriesResponse carries one point per calendar day of the month.
type DailySeriesResponse struct {
	Location string              `json:"location"`
	Year     int                 `json:"year"`
	Month    int                 `json:"month"`
	Days     []entity.DailyPoint `json:"days"`
}
