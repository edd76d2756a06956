package scheduler

import (
	"context"
	"fmt"
	"time"

	"consulting_leads_backend/platform/config"
	"consulting_leads_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Periodic enqueues TaskAutomationRun on a fixed interval through Redis so
// any worker replica can pick it up.
type Periodic struct {
	scheduler *asynq.Scheduler
	entryID   string
	log       *logger.Logger
}

func NewPeriodic(cfg config.SchedulerConfig, interval time.Duration, log *logger.Logger) (*Periodic, error) {
	opt, err := asynqRedisOpt(cfg)
	if err != nil {
		return nil, err
	}

	task, err := NewAutomationRunTask(AutomationRunPayload{Trigger: "periodic"})
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{Logger: newAsynqLogger(log)})
	entryID, err := scheduler.Register(cronSpec(interval), task, asynq.Queue(queueName(cfg)))
	if err != nil {
		return nil, fmt.Errorf("register automation schedule: %w", err)
	}

	log.Info("automation schedule registered", "spec", cronSpec(interval), "entryId", entryID)
	return &Periodic{scheduler: scheduler, entryID: entryID, log: log}, nil
}

func (p *Periodic) Run(ctx context.Context) error {
	if err := p.scheduler.Start(); err != nil {
		return fmt.Errorf("start automation schedule: %w", err)
	}
	<-ctx.Done()
	p.scheduler.Shutdown()
	return nil
}

func cronSpec(interval time.Duration) string {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return "@every " + interval.String()
}
