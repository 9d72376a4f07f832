package entity

import "time"

// DateLayout is the ISO-8601 calendar date format stored in the `weather.date` column.
const DateLayout = "2006-01-02"

// DailyRecord mirrors the `weather` table schema. Identity is (Date, Location).
type DailyRecord struct {
	ID       int64
	Date     time.Time // UTC midnight
	Location string
	MaxTemp  float64
	MinTemp  float64
	MeanTemp float64
}

// DateString returns the record date in DateLayout.
func (r DailyRecord) DateString() string {
	return r.Date.Format(DateLayout)
}

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO-8601 calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
