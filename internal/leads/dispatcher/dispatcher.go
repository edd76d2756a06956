// Package dispatcher decides which actions a lead needs, renders and sends
// them, and applies the resulting status transitions.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"consulting_leads_backend/internal/email"
	"consulting_leads_backend/internal/events"
	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/internal/leads/repository"
	"consulting_leads_backend/internal/leads/templates"
	"consulting_leads_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	TriggerAutomation = "automation"
	TriggerAdmin      = "admin"
)

// Store is the subset of the lead store the dispatcher writes to.
type Store interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Lead, error)
	RecordAction(ctx context.Context, params repository.RecordActionParams) error
	LastSuccessfulActionAt(ctx context.Context, leadID uuid.UUID, action domain.ActionType) (time.Time, bool, error)
}

// Scorer provides the deterministic score used by the rules.
type Scorer interface {
	Score(lead domain.Lead) int
}

// Renderer produces drafts for an action.
type Renderer interface {
	Render(ctx context.Context, lead domain.Lead, action domain.ActionType) (templates.Draft, error)
}

// Outcome is the result of one rule that fired during DecideAndExecute.
type Outcome struct {
	Rule    string            `json:"rule"`
	Action  domain.ActionType `json:"action"`
	Success bool              `json:"success"`
	Message string            `json:"message"`
}

// Result is returned by ExecuteAction.
type Result struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Email   *templates.Draft `json:"emailContent,omitempty"`
	Lead    domain.Lead      `json:"-"`
}

type Dispatcher struct {
	store     Store
	scorer    Scorer
	renderer  Renderer
	transport email.Transport
	eventBus  events.Bus
	log       *logger.Logger
	rules     []Rule
	now       func() time.Time
}

func New(store Store, scorer Scorer, renderer Renderer, transport email.Transport, eventBus events.Bus, rules []Rule, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		store:     store,
		scorer:    scorer,
		renderer:  renderer,
		transport: transport,
		eventBus:  eventBus,
		log:       log,
		rules:     rules,
		now:       time.Now,
	}
}

// Decide returns the rules that apply to the lead snapshot, ignoring the
// repeat guard.
func (d *Dispatcher) Decide(lead domain.Lead) []Rule {
	snap := Snapshot{Lead: lead, Score: d.scorer.Score(lead), Age: lead.Age(d.now())}
	matched := make([]Rule, 0, 2)
	for _, rule := range d.rules {
		if rule.Applies(snap) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// DecideAndExecute evaluates every rule against the lead as loaded and sends
// each action that fired. Status transitions are applied to the latest
// known status, so welcome followed by priority_outreach ends in qualified.
// Rules inside their repeat window are skipped and produce no outcome.
func (d *Dispatcher) DecideAndExecute(ctx context.Context, lead domain.Lead) []Outcome {
	matched := d.Decide(lead)
	outcomes := make([]Outcome, 0, len(matched))
	current := lead

	for _, rule := range matched {
		due, err := d.due(ctx, lead.ID, rule)
		if err != nil {
			d.log.DatabaseError("last_successful_action", err)
			outcomes = append(outcomes, Outcome{
				Rule:    rule.Name,
				Action:  rule.Action,
				Message: fmt.Sprintf("skipped %s for %s <%s>: could not check previous sends", rule.Action, lead.Name, lead.Email),
			})
			continue
		}
		if !due {
			continue
		}

		res := d.send(ctx, current, rule.Action, nil, TriggerAutomation)
		if res.Success {
			current = res.Lead
		}
		outcomes = append(outcomes, Outcome{Rule: rule.Name, Action: rule.Action, Success: res.Success, Message: res.Message})
	}
	return outcomes
}

// due applies the repeat guard for automated rules.
func (d *Dispatcher) due(ctx context.Context, leadID uuid.UUID, rule Rule) (bool, error) {
	last, found, err := d.store.LastSuccessfulActionAt(ctx, leadID, rule.Action)
	if err != nil {
		return false, err
	}
	if !found {
		return true, nil
	}
	if rule.Cooldown <= 0 {
		return false, nil
	}
	return d.now().Sub(last) >= rule.Cooldown, nil
}

// ExecuteAction previews or sends one action for a lead. A preview has no
// side effects. When override is set it is sent exactly as given. Transport
// failures are reported in the result, never as an error; the error return
// is reserved for rendering failures.
func (d *Dispatcher) ExecuteAction(ctx context.Context, lead domain.Lead, action domain.ActionType, previewOnly bool, override *templates.Draft) (Result, error) {
	if !action.Valid() {
		return Result{}, fmt.Errorf("unknown action type %q", action)
	}

	if previewOnly {
		draft, err := d.renderer.Render(ctx, lead, action)
		if err != nil {
			return Result{}, err
		}
		return Result{Success: true, Message: "preview generated", Email: &draft, Lead: lead}, nil
	}

	if override == nil {
		draft, err := d.renderer.Render(ctx, lead, action)
		if err != nil {
			return Result{}, err
		}
		override = &draft
	}
	return d.send(ctx, lead, action, override, TriggerAdmin), nil
}

func (d *Dispatcher) send(ctx context.Context, lead domain.Lead, action domain.ActionType, draft *templates.Draft, trigger string) Result {
	if draft == nil {
		rendered, err := d.renderer.Render(ctx, lead, action)
		if err != nil {
			msg := fmt.Sprintf("could not render %s email for %s <%s>: %v", action, lead.Name, lead.Email, err)
			d.finish(ctx, lead, action, false, msg, trigger)
			return Result{Success: false, Message: msg, Lead: lead}
		}
		draft = &rendered
	}

	to := draft.RecipientEmail
	if to == "" {
		to = lead.Email
	}
	toName := draft.RecipientName
	if toName == "" {
		toName = lead.Name
	}

	receipt, err := d.transport.Send(ctx, email.Message{
		To:       to,
		ToName:   toName,
		Subject:  draft.Subject,
		HTMLBody: draft.HTMLBody,
	})
	if err != nil {
		d.log.ProviderFailure("mail", string(action), err)
		msg := fmt.Sprintf("failed to send %s email to %s <%s>: %v", action, lead.Name, to, err)
		d.finish(ctx, lead, action, false, msg, trigger)
		return Result{Success: false, Message: msg, Email: draft, Lead: lead}
	}

	msg := fmt.Sprintf("%s email sent to %s <%s>", action, lead.Name, to)
	if receipt.MessageID != "" {
		msg += " (message " + receipt.MessageID + ")"
	}

	updated := lead
	if next, ok := domain.NextStatus(action, lead.Status); ok {
		saved, err := d.store.UpdateStatus(ctx, lead.ID, next)
		if err != nil {
			d.log.DatabaseError("update_lead_status", err)
			msg += fmt.Sprintf("; status update to %s failed", next)
		} else {
			updated = saved
			d.publish(ctx, events.LeadStatusChanged{
				BaseEvent: events.NewBaseEvent(),
				LeadID:    lead.ID,
				OldStatus: string(lead.Status),
				NewStatus: string(saved.Status),
				Actor:     trigger,
			})
		}
	}

	d.finish(ctx, updated, action, true, msg, trigger)
	return Result{Success: true, Message: msg, Email: draft, Lead: updated}
}

// finish writes the audit record and publishes the outcome. A failed
// record write is logged and otherwise ignored.
func (d *Dispatcher) finish(ctx context.Context, lead domain.Lead, action domain.ActionType, success bool, detail, trigger string) {
	result := domain.ActionFailed
	if success {
		result = domain.ActionSucceeded
	}
	if err := d.store.RecordAction(ctx, repository.RecordActionParams{
		LeadID: lead.ID,
		Action: action,
		Result: result,
		Detail: detail,
	}); err != nil {
		d.log.DatabaseError("record_lead_action", err)
	}

	d.log.LeadAction(lead.ID.String(), string(action), success, detail)
	d.publish(ctx, events.LeadActionExecuted{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Action:    string(action),
		Success:   success,
		Message:   detail,
		Trigger:   trigger,
	})
}

func (d *Dispatcher) publish(ctx context.Context, event events.Event) {
	if d.eventBus != nil {
		d.eventBus.Publish(ctx, event)
	}
}
