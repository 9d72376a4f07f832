package entity

import "time"

// MonthlyAggregate is the mean of daily mean temperatures for one calendar
// month across a range of years. MeanTemp is nil when no rows matched.
type MonthlyAggregate struct {
	Month    time.Month `json:"month"`
	MeanTemp *float64   `json:"mean_temp"`
	Samples  int        `json:"samples"`
}

// DailyPoint is one day of a month's mean temperature series.
// MeanTemp is nil when no record exists for that day.
type DailyPoint struct {
	Day      int      `json:"day"`
	MeanTemp *float64 `json:"mean_temp"`
}

// NewMonthlyAggregates returns January..December with no data.
func NewMonthlyAggregates() []MonthlyAggregate {
	out := make([]MonthlyAggregate, 12)
	for i := range out {
		out[i].Month = time.Month(i + 1)
	}
	return out
}

// NewDailySeries returns one empty point per day of ym.
func NewDailySeries(ym YearMonth) []DailyPoint {
	out := make([]DailyPoint, ym.DaysIn())
	for i := range out {
		out[i].Day = i + 1
	}
	return out
}
