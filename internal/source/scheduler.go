package source

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron"
)

// Scheduler refetches the dataset on a fixed interval.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	logger *slog.Logger
}

// NewScheduler registers a reload every interval. Intervals are rounded
// down to whole seconds by cron, with a one second minimum.
func NewScheduler(ctx context.Context, interval time.Duration, reloader Reloader, logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive, got %s", interval)
	}
	if logger == nil {
		logger = slog.Default()
	}

	spec := fmt.Sprintf("@every %s", interval)
	c := cron.New()
	err := c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		logger.Info("scheduled dataset refresh", "schedule", spec)
		if _, err := reloader.Load(ctx); err != nil {
			logger.Warn("scheduled refresh failed, keeping previous snapshot", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule refresh: %w", err)
	}

	return &Scheduler{cron: c, spec: spec, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.logger.Info("dataset refresh scheduled", "schedule", s.spec)
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}
