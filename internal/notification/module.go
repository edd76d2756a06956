// Package notification forwards lead pipeline events to connected admin
// sessions over Server-Sent Events. Delivery is fire-and-forget.
package notification

import (
	"context"

	"consulting_leads_backend/internal/events"
	apphttp "consulting_leads_backend/internal/http"
	"consulting_leads_backend/internal/notification/sse"
	"consulting_leads_backend/platform/httpkit"
	"consulting_leads_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Module struct {
	sse *sse.Service
	log *logger.Logger
}

func New(log *logger.Logger) *Module {
	return &Module{sse: sse.New(log), log: log}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// SSE exposes the broadcaster.
func (m *Module) SSE() *sse.Service {
	return m.sse
}

// RegisterHandlers subscribes to the lead pipeline events.
//
// New leads are announced from LeadInserted, which the store emits for
// every replica's inserts; LeadCreated is only logged so a lead submitted
// to this process is not announced twice.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(m.handleLeadCreated))
	bus.Subscribe(events.LeadInserted{}.EventName(), events.HandlerFunc(m.handleLeadInserted))
	bus.Subscribe(events.LeadStatusChanged{}.EventName(), events.HandlerFunc(m.handleStatusChanged))
	bus.Subscribe(events.LeadActionExecuted{}.EventName(), events.HandlerFunc(m.handleActionExecuted))
	bus.Subscribe(events.AutomationRunCompleted{}.EventName(), events.HandlerFunc(m.handleAutomationCompleted))
}

func (m *Module) handleLeadCreated(ctx context.Context, event events.Event) error {
	e, ok := event.(events.LeadCreated)
	if !ok {
		return nil
	}
	m.log.WithContext(ctx).Info("lead submitted", "leadId", e.LeadID, "source", e.Source)
	return nil
}

func (m *Module) handleLeadInserted(_ context.Context, event events.Event) error {
	e, ok := event.(events.LeadInserted)
	if !ok {
		return nil
	}
	m.sse.Broadcast(sse.Event{Type: sse.EventLeadCreated, LeadID: e.LeadID, Message: "New lead received"})
	return nil
}

func (m *Module) handleStatusChanged(_ context.Context, event events.Event) error {
	e, ok := event.(events.LeadStatusChanged)
	if !ok {
		return nil
	}
	m.sse.Broadcast(sse.Event{
		Type:   sse.EventLeadStatusChanged,
		LeadID: e.LeadID,
		Data: map[string]string{
			"oldStatus": e.OldStatus,
			"newStatus": e.NewStatus,
			"actor":     e.Actor,
		},
	})
	return nil
}

func (m *Module) handleActionExecuted(_ context.Context, event events.Event) error {
	e, ok := event.(events.LeadActionExecuted)
	if !ok {
		return nil
	}
	m.sse.Broadcast(sse.Event{
		Type:    sse.EventLeadActionExecuted,
		LeadID:  e.LeadID,
		Message: e.Message,
		Data: map[string]interface{}{
			"action":  e.Action,
			"success": e.Success,
			"trigger": e.Trigger,
		},
	})
	return nil
}

func (m *Module) handleAutomationCompleted(_ context.Context, event events.Event) error {
	e, ok := event.(events.AutomationRunCompleted)
	if !ok {
		return nil
	}
	m.sse.Broadcast(sse.Event{
		Type: sse.EventAutomationCompleted,
		Data: map[string]interface{}{
			"processed":       e.Processed,
			"actionsExecuted": e.ActionsExecuted,
			"failed":          e.Failed,
			"durationMs":      e.Duration.Milliseconds(),
		},
	})
	return nil
}

// RegisterRoutes mounts the admin event stream.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Admin.GET("/events", m.sse.Handler(func(c *gin.Context) (uuid.UUID, bool) {
		identity, ok := httpkit.GetIdentity(c)
		return identity.UserID, ok
	}))
}

var _ apphttp.Module = (*Module)(nil)
