// Package automation runs the dispatcher over every lead ("engine run").
package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consulting_leads_backend/internal/events"
	"consulting_leads_backend/internal/leads/dispatcher"
	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/platform/lock"
	"consulting_leads_backend/platform/logger"
)

// ErrAlreadyRunning is returned when another run holds the guard.
var ErrAlreadyRunning = errors.New("automation run already in progress")

type LeadLister interface {
	ListAll(ctx context.Context) ([]domain.Lead, error)
}

type Decider interface {
	DecideAndExecute(ctx context.Context, lead domain.Lead) []dispatcher.Outcome
}

// Summary aggregates one engine run.
type Summary struct {
	Processed       int           `json:"processed"`
	ActionsExecuted int           `json:"actionsExecuted"`
	Failed          int           `json:"failed"`
	Duration        time.Duration `json:"durationMs"`
}

// Engine processes leads sequentially. It does not guard against
// concurrent runs itself; use Runner for that.
type Engine struct {
	leads    LeadLister
	decider  Decider
	eventBus events.Bus
	log      *logger.Logger
}

func NewEngine(leads LeadLister, decider Decider, eventBus events.Bus, log *logger.Logger) *Engine {
	return &Engine{leads: leads, decider: decider, eventBus: eventBus, log: log}
}

// Run fetches all leads and runs the decision rules on each. A failing lead
// is counted and skipped; only a failure to load leads aborts the run.
func (e *Engine) Run(ctx context.Context) (Summary, error) {
	start := time.Now()

	leads, err := e.leads.ListAll(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list leads: %w", err)
	}

	var summary Summary
	for _, lead := range leads {
		outcomes := e.process(ctx, lead)
		summary.Processed++
		for _, o := range outcomes {
			if o.Success {
				summary.ActionsExecuted++
			} else {
				summary.Failed++
			}
		}
	}
	summary.Duration = time.Since(start)

	e.log.Info("automation run completed",
		"processed", summary.Processed,
		"actionsExecuted", summary.ActionsExecuted,
		"failed", summary.Failed,
		"durationMs", summary.Duration.Milliseconds(),
	)
	if e.eventBus != nil {
		e.eventBus.Publish(ctx, events.AutomationRunCompleted{
			BaseEvent:       events.NewBaseEvent(),
			Processed:       summary.Processed,
			ActionsExecuted: summary.ActionsExecuted,
			Failed:          summary.Failed,
			Duration:        summary.Duration,
		})
	}
	return summary, nil
}

func (e *Engine) process(ctx context.Context, lead domain.Lead) (outcomes []dispatcher.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("automation lead processing panicked", "leadId", lead.ID, "panic", r)
			outcomes = []dispatcher.Outcome{{Message: fmt.Sprintf("processing %s <%s> panicked", lead.Name, lead.Email)}}
		}
	}()
	return e.decider.DecideAndExecute(ctx, lead)
}

// Runner wraps an Engine with the "already running" guard.
type Runner struct {
	engine *Engine
	guard  lock.Guard
	log    *logger.Logger
}

func NewRunner(engine *Engine, guard lock.Guard, log *logger.Logger) *Runner {
	return &Runner{engine: engine, guard: guard, log: log}
}

// Run returns ErrAlreadyRunning without waiting when a run is in progress.
// Once started, a run is not cancelled by ctx.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	release, ok, err := r.guard.TryAcquire(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("acquire automation guard: %w", err)
	}
	if !ok {
		return Summary{}, ErrAlreadyRunning
	}
	defer release()

	return r.engine.Run(context.WithoutCancel(ctx))
}
