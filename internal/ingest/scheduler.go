package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps robfig/cron and drives periodic ingestion runs from
// inside the process, for deployments without an external cron caller.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	spec   string // cron spec, e.g. "@daily"
}

// NewScheduler creates a Scheduler firing on the given cron spec.
func NewScheduler(runner *Runner, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: runner,
		spec:   spec,
	}
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runner.Run(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	slog.Info("ingestion schedule started", slog.String("spec", s.spec))
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	slog.Info("ingestion schedule stopped")
}
