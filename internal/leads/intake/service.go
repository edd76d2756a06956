// Package intake accepts leads submitted through the public website forms.
// It is the only place a lead is created.
package intake

import (
	"context"
	"strings"

	"consulting_leads_backend/internal/events"
	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/internal/leads/repository"
	"consulting_leads_backend/internal/leads/transport"
	"consulting_leads_backend/platform/apperr"
	"consulting_leads_backend/platform/phone"
	"consulting_leads_backend/platform/sanitize"
	"consulting_leads_backend/platform/validator"
)

// Creator is the store capability intake needs.
type Creator interface {
	Create(ctx context.Context, params repository.CreateLeadParams) (domain.Lead, error)
}

type Service struct {
	repo     Creator
	val      *validator.Validator
	eventBus events.Bus
	region   string
}

func New(repo Creator, val *validator.Validator, eventBus events.Bus, phoneRegion string) *Service {
	return &Service{repo: repo, val: val, eventBus: eventBus, region: phoneRegion}
}

// Submit validates and stores a lead with status new.
func (s *Service) Submit(ctx context.Context, req transport.SubmitLeadRequest) (domain.Lead, error) {
	req.Name = sanitize.Text(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Source = strings.ToLower(sanitize.Text(req.Source))

	if err := s.val.Struct(req); err != nil {
		return domain.Lead{}, apperr.Validation("invalid lead submission").WithDetails(validator.FieldErrors(err))
	}

	phoneNumber := domain.PhoneNotProvided
	if req.Phone != "" {
		phoneNumber = phone.NormalizeE164(req.Phone, s.region)
	}
	source := req.Source
	if source == "" {
		source = domain.DefaultSource
	}

	lead, err := s.repo.Create(ctx, repository.CreateLeadParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   phoneNumber,
		Inquiry: sanitize.MultilineText(req.Inquiry),
		Source:  source,
	})
	if err != nil {
		return domain.Lead{}, apperr.Persistence("create lead", err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.LeadCreated{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    lead.ID,
			Name:      lead.Name,
			Email:     lead.Email,
			Source:    lead.Source,
			CreatedAt: lead.CreatedAt,
		})
	}
	return lead, nil
}
