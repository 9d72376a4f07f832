package entity

import "time"

// CrawlResult is what the backward range scheduler collected in one run.
type CrawlResult struct {
	Range            CrawlRange
	Records          []DailyRecord // ascending by date
	Dispatched       int
	Completed        int
	Exhausted        bool
	ExhaustedAt      YearMonth
	ExhaustionReason string
}

const (
	IngestModeBackfill = "backfill"
	IngestModeUpdate   = "update"

	IngestStatusCompleted = "completed"
	IngestStatusUpToDate  = "up_to_date"
)

// IngestReport summarises one ingestion run for the CLI and HTTP API.
type IngestReport struct {
	Mode             string        `json:"mode"`
	Status           string        `json:"status"`
	Location         string        `json:"location"`
	Start            string        `json:"start,omitempty"`
	End              string        `json:"end,omitempty"`
	MonthsDispatched int           `json:"months_dispatched"`
	Collected        int           `json:"collected"`
	Inserted         int           `json:"inserted"`
	Ignored          int           `json:"ignored"`
	Exhausted        bool          `json:"exhausted"`
	ExhaustedAt      string        `json:"exhausted_at,omitempty"`
	ExhaustionReason string        `json:"exhaustion_reason,omitempty"`
	Duration         time.Duration `json:"duration_ns"`
}

// StoreStatus describes what is currently persisted for a location.
type StoreStatus struct {
	Location   string     `json:"location"`
	LatestDate *time.Time `json:"latest_date,omitempty"`
	Records    int64      `json:"records"`
}
