package repository

import (
	"context"
	"time"

	"consulting_leads_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	List(ctx context.Context, params ListParams) ([]domain.Lead, error)
	ListAll(ctx context.Context) ([]domain.Lead, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status) (domain.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActionLog records and queries the action audit trail.
type ActionLog interface {
	RecordAction(ctx context.Context, params RecordActionParams) error
	ListActions(ctx context.Context, leadID uuid.UUID) ([]domain.ActionRecord, error)
	LastSuccessfulActionAt(ctx context.Context, leadID uuid.UUID, action domain.ActionType) (time.Time, bool, error)
}

// LeadsRepository composes every store capability.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	ActionLog
}

var _ LeadsRepository = (*Repository)(nil)
