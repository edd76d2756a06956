package transport

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// SubmitLeadRequest is the public intake payload.
type SubmitLeadRequest struct {
	Name    string `json:"name" validate:"required,notblank,max=200"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=40"`
	Inquiry string `json:"inquiry,omitempty" validate:"omitempty,max=5000"`
	Source  string `json:"source,omitempty" validate:"omitempty,max=64"`
}

type ListLeadsRequest struct {
	Search string `form:"search" validate:"omitempty,max=200"`
	Status string `form:"status" validate:"omitempty,oneof=new contacted qualified converted lost"`
	SortBy string `form:"sortBy" validate:"omitempty,oneof=createdAt name"`
	Order  string `form:"order" validate:"omitempty,oneof=asc desc"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified converted lost"`
}

// SendActionRequest carries the operator-approved draft. It is sent as is.
type SendActionRequest struct {
	Subject  string `json:"subject" validate:"required,notblank,max=300"`
	HTMLBody string `json:"htmlBody" validate:"required,notblank"`
}

// Response DTOs

type SubmitLeadResponse struct {
	ID uuid.UUID `json:"id"`
}

type LeadResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Inquiry   string    `json:"inquiry"`
	Source    string    `json:"source"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	Score     int       `json:"score"`
	Priority  string    `json:"priority"`
}

type LeadListResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

type EmailDraftResponse struct {
	Subject        string `json:"subject"`
	HTMLBody       string `json:"htmlBody"`
	RecipientEmail string `json:"recipientEmail"`
	RecipientName  string `json:"recipientName"`
	Generated      bool   `json:"generated"`
}

type ActionResultResponse struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	EmailContent *EmailDraftResponse `json:"emailContent,omitempty"`
}

type ScoreFactorResponse struct {
	Name   string  `json:"name"`
	Points float64 `json:"points"`
}

type ScoreResponse struct {
	Score             int                   `json:"score"`
	Priority          string                `json:"priority"`
	Insights          []string              `json:"insights"`
	RecommendedAction string                `json:"recommendedAction"`
	Fallback          bool                  `json:"fallback"`
	Factors           []ScoreFactorResponse `json:"factors,omitempty"`
}

type ActionRecordResponse struct {
	ID         uuid.UUID `json:"id"`
	Action     string    `json:"action"`
	Result     string    `json:"result"`
	Detail     string    `json:"detail"`
	ExecutedAt time.Time `json:"executedAt"`
}

type AutomationRunResponse struct {
	Processed       int   `json:"processed"`
	ActionsExecuted int   `json:"actionsExecuted"`
	Failed          int   `json:"failed"`
	DurationMs      int64 `json:"durationMs"`
}
