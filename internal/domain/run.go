package domain

import "time"

// RunStats counts the outcome of one SaveJobs pass.
type RunStats struct {
	Saved      int `json:"saved"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
	Total      int `json:"total"`
}

// ScrapeRun tracks one scraper invocation from start to completion or
// failure. Runs live in memory only: active while running, then moved to a
// bounded history list.
type ScrapeRun struct {
	ID         string    `json:"id"`
	Scraper    string    `json:"scraper"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitempty"`
	DurationMs int64     `json:"durationMs"`
	Success    bool      `json:"success"`
	Stats      RunStats  `json:"stats"`
	ErrorCount int       `json:"errorCount"`
	Error      string    `json:"error,omitempty"`
}
