// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"time"

	"consulting_leads_backend/platform/events"

	"github.com/google/uuid"
)

type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = events.NewInMemoryBus
)

// =============================================================================
// Lead Domain Events
// =============================================================================

// LeadCreated is published after the intake endpoint stores a new lead.
type LeadCreated struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

func (e LeadCreated) EventName() string { return "leads.lead.created" }

// LeadInserted is published when the lead store reports a new row. It may
// come from another API replica, so it only carries the id.
type LeadInserted struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
}

func (e LeadInserted) EventName() string { return "leads.lead.inserted" }

// LeadStatusChanged is published whenever a lead's status is written,
// by an admin or by automation.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
	Actor     string    `json:"actor"`
}

func (e LeadStatusChanged) EventName() string { return "leads.lead.status_changed" }

// LeadActionExecuted is published after an outbound action was attempted.
type LeadActionExecuted struct {
	BaseEvent
	LeadID  uuid.UUID `json:"leadId"`
	Action  string    `json:"action"`
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Trigger string    `json:"trigger"`
}

func (e LeadActionExecuted) EventName() string { return "leads.action.executed" }

// AutomationRunCompleted is published at the end of every engine run.
type AutomationRunCompleted struct {
	BaseEvent
	Processed       int           `json:"processed"`
	ActionsExecuted int           `json:"actionsExecuted"`
	Failed          int           `json:"failed"`
	Duration        time.Duration `json:"duration"`
}

func (e AutomationRunCompleted) EventName() string { return "leads.automation.completed" }
