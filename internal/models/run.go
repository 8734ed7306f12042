package models

import "time"

// Run status values
const (
	RunStatusCompleted = "completed"
	RunStatusAborted   = "aborted"
	RunStatusFailed    = "failed"
)

// RunRecord is one persisted pipeline pass
type RunRecord struct {
	ID             string        `json:"id"`
	StartedAt      time.Time     `json:"started_at"`
	Duration       time.Duration `json:"duration"`
	Status         string        `json:"status"`
	Error          string        `json:"error,omitempty"`
	IndexSource    IndexSource   `json:"index_source,omitempty"` // Empty when indices were absent
	StocksAnalyzed int           `json:"stocks_analyzed"`
	PortfolioPicks int           `json:"portfolio_picks"`
	Headlines      int           `json:"headlines"`
	DocumentPath   string        `json:"document_path,omitempty"`
	Delivered      bool          `json:"delivered"`
	DryRun         bool          `json:"dry_run"`
}

// StockSnapshot is the stored per-day universe fetch
type StockSnapshot struct {
	Day       string        `json:"day"` // YYYY-MM-DD in report time zone
	Records   []StockRecord `json:"records"`
	CreatedAt time.Time     `json:"created_at"`
}
