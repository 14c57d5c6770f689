package models

import (
	"time"
)

// MaintenanceReport aggregates the outcome of one reconciliation run
type MaintenanceReport struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration"`
	Processed  int           `json:"processed"`
	Updated    int           `json:"updated"`
	Failed     int           `json:"failed"`
}

// BulkCreateResult reports per-URL outcomes of a bulk create. One failing URL
// never aborts the batch; failures are collected alongside successes.
type BulkCreateResult struct {
	Created []*Link           `json:"created"`
	Errors  []BulkCreateError `json:"errors,omitempty"`
}

// BulkCreateError records a single failed URL within a bulk create
type BulkCreateError struct {
	URL   string `json:"url"`
	Error string `json:"error"`
}
