package scheduler

import (
	"context"
	"errors"
	"fmt"

	"consulting_leads_backend/internal/leads/automation"
	"consulting_leads_backend/platform/config"
	"consulting_leads_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// AutomationRunner runs the engine behind the "already running" guard.
type AutomationRunner interface {
	Run(ctx context.Context) (automation.Summary, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner AutomationRunner
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, runner AutomationRunner, log *logger.Logger) (*Worker, error) {
	opt, err := asynqRedisOpt(cfg)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 2
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
		Logger: newAsynqLogger(log),
	})

	w := newWorker(runner, log)
	w.server = server
	return w, nil
}

func newWorker(runner AutomationRunner, log *logger.Logger) *Worker {
	w := &Worker{
		mux:    asynq.NewServeMux(),
		runner: runner,
		log:    log,
	}
	w.mux.HandleFunc(TaskAutomationRun, w.handleAutomationRun)
	return w
}

func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		return fmt.Errorf("scheduler worker stopped: %w", err)
	}
	return nil
}

// handleAutomationRun treats an overlapping run as success so the task is
// not retried.
func (w *Worker) handleAutomationRun(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAutomationRunPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	summary, err := w.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, automation.ErrAlreadyRunning) {
			w.log.Info("automation run skipped, another run in progress", "trigger", payload.Trigger)
			return nil
		}
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	w.log.Info("automation task complete",
		"trigger", payload.Trigger,
		"processed", summary.Processed,
		"actionsExecuted", summary.ActionsExecuted,
		"failed", summary.Failed,
	)
	return nil
}
