// Package management implements the admin commands and queries on leads.
package management

import (
	"context"
	"errors"
	"fmt"

	"consulting_leads_backend/internal/events"
	"consulting_leads_backend/internal/leads/automation"
	"consulting_leads_backend/internal/leads/dispatcher"
	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/internal/leads/repository"
	"consulting_leads_backend/internal/leads/scoring"
	"consulting_leads_backend/internal/leads/templates"
	"consulting_leads_backend/internal/leads/transport"
	"consulting_leads_backend/platform/apperr"

	"github.com/google/uuid"
)

const msgLeadNotFound = "lead not found"

// Repository defines the data access interface needed by the management service.
type Repository interface {
	repository.LeadReader
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListActions(ctx context.Context, leadID uuid.UUID) ([]domain.ActionRecord, error)
}

// ActionExecutor previews and sends actions.
type ActionExecutor interface {
	ExecuteAction(ctx context.Context, lead domain.Lead, action domain.ActionType, previewOnly bool, override *templates.Draft) (dispatcher.Result, error)
}

// Evaluator scores leads.
type Evaluator interface {
	Score(lead domain.Lead) int
	Tier(score int, source string) scoring.Tier
	Evaluate(ctx context.Context, lead domain.Lead) scoring.Result
}

// AutomationRunner starts a guarded engine run.
type AutomationRunner interface {
	Run(ctx context.Context) (automation.Summary, error)
}

type Service struct {
	repo     Repository
	actions  ActionExecutor
	scorer   Evaluator
	runner   AutomationRunner
	eventBus events.Bus
}

func New(repo Repository, actions ActionExecutor, scorer Evaluator, runner AutomationRunner, eventBus events.Bus) *Service {
	return &Service{repo: repo, actions: actions, scorer: scorer, runner: runner, eventBus: eventBus}
}

// List returns leads matching the filter with their deterministic score.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	params := repository.ListParams{
		Search:    req.Search,
		SortBy:    repository.SortCreatedAt,
		Ascending: req.Order == "asc",
	}
	if req.SortBy == "name" {
		params.SortBy = repository.SortName
		params.Ascending = req.Order != "desc"
	}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return transport.LeadListResponse{}, apperr.Validation(err.Error())
		}
		params.Status = &status
	}

	leads, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, apperr.Persistence("list leads", err)
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, s.toResponse(lead))
	}
	return transport.LeadListResponse{Items: items, Total: len(items)}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return s.toResponse(lead), nil
}

// UpdateStatus is last-write-wins; any status may be set by an operator.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, raw string) (transport.LeadResponse, error) {
	status, err := domain.ParseStatus(raw)
	if err != nil {
		return transport.LeadResponse{}, apperr.Validation(err.Error())
	}

	previous, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
		}
		return transport.LeadResponse{}, apperr.Persistence("update lead status", err)
	}

	if s.eventBus != nil && previous.Status != lead.Status {
		s.eventBus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			OldStatus: string(previous.Status),
			NewStatus: string(lead.Status),
			Actor:     dispatcher.TriggerAdmin,
		})
	}
	return s.toResponse(lead), nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(msgLeadNotFound)
		}
		return apperr.Persistence("delete lead", err)
	}
	return nil
}

// Preview renders the draft for action without any side effect.
func (s *Service) Preview(ctx context.Context, id uuid.UUID, rawAction string) (transport.ActionResultResponse, error) {
	lead, action, err := s.leadAndAction(ctx, id, rawAction)
	if err != nil {
		return transport.ActionResultResponse{}, err
	}
	res, err := s.actions.ExecuteAction(ctx, lead, action, true, nil)
	if err != nil {
		return transport.ActionResultResponse{}, apperr.Wrap(apperr.KindInternal, "could not render email", err)
	}
	return toActionResult(res), nil
}

// Send delivers the operator-edited draft exactly as given.
func (s *Service) Send(ctx context.Context, id uuid.UUID, rawAction string, req transport.SendActionRequest) (transport.ActionResultResponse, error) {
	lead, action, err := s.leadAndAction(ctx, id, rawAction)
	if err != nil {
		return transport.ActionResultResponse{}, err
	}
	draft := templates.Draft{
		Subject:        req.Subject,
		HTMLBody:       req.HTMLBody,
		RecipientEmail: lead.Email,
		RecipientName:  lead.Name,
	}
	res, err := s.actions.ExecuteAction(ctx, lead, action, false, &draft)
	if err != nil {
		return transport.ActionResultResponse{}, apperr.Wrap(apperr.KindInternal, "could not send email", err)
	}
	return toActionResult(res), nil
}

// Evaluate runs the assisted scorer, falling back to the deterministic one.
func (s *Service) Evaluate(ctx context.Context, id uuid.UUID) (transport.ScoreResponse, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.ScoreResponse{}, err
	}
	return toScoreResponse(s.scorer.Evaluate(ctx, lead)), nil
}

func (s *Service) ListActions(ctx context.Context, id uuid.UUID) ([]transport.ActionRecordResponse, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	records, err := s.repo.ListActions(ctx, id)
	if err != nil {
		return nil, apperr.Persistence("list lead actions", err)
	}
	out := make([]transport.ActionRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toActionRecord(r))
	}
	return out, nil
}

// RunAutomation triggers an engine run now. It fails with a conflict when a
// run is already in progress.
func (s *Service) RunAutomation(ctx context.Context) (transport.AutomationRunResponse, error) {
	summary, err := s.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, automation.ErrAlreadyRunning) {
			return transport.AutomationRunResponse{}, apperr.Conflict(err.Error())
		}
		return transport.AutomationRunResponse{}, apperr.Wrap(apperr.KindInternal, "automation run failed", err)
	}
	return transport.AutomationRunResponse{
		Processed:       summary.Processed,
		ActionsExecuted: summary.ActionsExecuted,
		Failed:          summary.Failed,
		DurationMs:      summary.Duration.Milliseconds(),
	}, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Lead{}, apperr.NotFound(msgLeadNotFound)
		}
		return domain.Lead{}, apperr.Persistence("get lead", err)
	}
	return lead, nil
}

func (s *Service) leadAndAction(ctx context.Context, id uuid.UUID, rawAction string) (domain.Lead, domain.ActionType, error) {
	action, err := domain.ParseActionType(rawAction)
	if err != nil {
		return domain.Lead{}, "", apperr.Validation(fmt.Sprintf("unknown action type %q", rawAction))
	}
	lead, err := s.load(ctx, id)
	if err != nil {
		return domain.Lead{}, "", err
	}
	return lead, action, nil
}

func (s *Service) toResponse(lead domain.Lead) transport.LeadResponse {
	score := s.scorer.Score(lead)
	return toLeadResponse(lead, score, s.scorer.Tier(score, lead.Source))
}
