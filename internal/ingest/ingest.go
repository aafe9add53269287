// Package ingest holds the daily ingestion entry points. The actual
// scraping is not implemented yet; the run is a no-op that reports an
// empty summary so the cron wiring can ship first.
package ingest

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Summary reports the outcome of one ingestion run.
type Summary struct {
	OK      bool   `json:"ok"`
	RunID   string `json:"runId"`
	Fetched int    `json:"fetched"`
	Created int    `json:"created"`
	Skipped int    `json:"skipped"`
}

// Runner executes ingestion runs against the listing service.
type Runner struct{}

func NewRunner() *Runner {
	return &Runner{}
}

// Run performs one ingestion cycle.
// TODO: fetch and parse the upstream notification boards once the source
// list is settled; created listings go through the listing service so
// slug and source.url uniqueness hold.
func (r *Runner) Run(ctx context.Context) Summary {
	runID := uuid.New().String()
	slog.Info("ingestion run complete",
		slog.String("run_id", runID),
		slog.Int("fetched", 0),
		slog.Int("created", 0),
	)
	return Summary{OK: true, RunID: runID}
}
