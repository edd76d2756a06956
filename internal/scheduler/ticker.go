package scheduler

import (
	"context"
	"errors"
	"time"

	"consulting_leads_backend/internal/leads/automation"
	"consulting_leads_backend/platform/logger"
)

const defaultAutomationInterval = 2 * time.Minute

// Ticker runs the engine in-process on a fixed interval. It is the fallback
// when no Redis is configured.
type Ticker struct {
	runner   AutomationRunner
	log      *logger.Logger
	interval time.Duration
}

func NewTicker(runner AutomationRunner, interval time.Duration, log *logger.Logger) *Ticker {
	if interval <= 0 {
		interval = defaultAutomationInterval
	}
	return &Ticker{runner: runner, log: log, interval: interval}
}

func (t *Ticker) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *Ticker) tick(ctx context.Context) {
	summary, err := t.runner.Run(ctx)
	switch {
	case errors.Is(err, automation.ErrAlreadyRunning):
		t.log.Info("automation tick skipped, another run in progress")
	case err != nil:
		t.log.Warn("automation tick failed", "error", err)
	default:
		t.log.Debug("automation tick complete", "processed", summary.Processed, "actionsExecuted", summary.ActionsExecuted)
	}
}
