package entity

import "time"

// CrawlRange is an inclusive range of calendar days to ingest.
type CrawlRange struct {
	Start time.Time
	End   time.Time
}

// NewCrawlRange normalises both bounds to UTC calendar days.
func NewCrawlRange(start, end time.Time) CrawlRange {
	return CrawlRange{Start: Day(start), End: Day(end)}
}

// Valid reports whether the range can be crawled (Start <= End).
func (r CrawlRange) Valid() bool {
	return !r.Start.After(r.End)
}

// Contains reports whether day d falls inside the range.
func (r CrawlRange) Contains(d time.Time) bool {
	d = Day(d)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Months lists every month touched by the range, newest first.
// An invalid range yields no months.
func (r CrawlRange) Months() []YearMonth {
	if !r.Valid() {
		return nil
	}
	first := YearMonthOf(r.Start)
	var months []YearMonth
	for ym := YearMonthOf(r.End); !ym.Before(first); ym = ym.Prev() {
		months = append(months, ym)
	}
	return months
}

func (r CrawlRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}
