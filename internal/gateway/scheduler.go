package gateway

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// scheduler runs the watchlist sweep on the configured cron expression.
// An empty expression disables scheduled sweeps entirely.
type scheduler struct {
	expr string
	cron *cron.Cron
	run  func()
}

func newScheduler(expr string, run func()) *scheduler {
	return &scheduler{
		expr: expr,
		cron: cron.New(),
		run:  run,
	}
}

// Start registers the sweep and starts the cron runner. Validation happens
// here so a bad expression fails gateway startup instead of being silently
// dropped.
func (s *scheduler) Start() error {
	if s.expr == "" {
		slog.Debug("gateway: no schedule configured, watchlist sweeps disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.expr, s.run); err != nil {
		return fmt.Errorf("invalid schedule expression %q: %w", s.expr, err)
	}
	s.cron.Start()
	slog.Info("gateway scheduler started", "schedule", s.expr)
	return nil
}

// Stop halts the cron runner gracefully.
func (s *scheduler) Stop() {
	s.cron.Stop()
}
