package handler

import (
	"context"
	"net/http"

	"consulting_leads_backend/internal/leads/management"
	"consulting_leads_backend/internal/leads/transport"
	"consulting_leads_backend/platform/httpkit"
	"consulting_leads_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminService is the management surface exposed to operators.
type AdminService interface {
	List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (transport.LeadResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Preview(ctx context.Context, id uuid.UUID, action string) (transport.ActionResultResponse, error)
	Send(ctx context.Context, id uuid.UUID, action string, req transport.SendActionRequest) (transport.ActionResultResponse, error)
	Evaluate(ctx context.Context, id uuid.UUID) (transport.ScoreResponse, error)
	ListActions(ctx context.Context, id uuid.UUID) ([]transport.ActionRecordResponse, error)
	RunAutomation(ctx context.Context) (transport.AutomationRunResponse, error)
}

var _ AdminService = (*management.Service)(nil)

type Handler struct {
	svc AdminService
	val *validator.Validator
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidLeadID    = "invalid lead id"
)

func New(svc AdminService, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes mounts the admin lead routes. rg is expected to sit behind
// the authentication and admin role middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	leads := rg.Group("/leads")
	leads.GET("", h.List)
	leads.GET("/:id", h.GetByID)
	leads.PATCH("/:id", h.UpdateStatus)
	leads.DELETE("/:id", h.Delete)
	leads.POST("/:id/actions/:type/preview", h.PreviewAction)
	leads.POST("/:id/actions/:type/send", h.SendAction)
	leads.POST("/:id/score", h.Score)
	leads.GET("/:id/actions", h.ListActions)

	rg.POST("/automation/run", h.RunAutomation)
}

func (h *Handler) List(c *gin.Context) {
	var req transport.ListLeadsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.List(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) GetByID(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	lead, err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, lead)
}

func (h *Handler) Delete(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) PreviewAction(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	result, err := h.svc.Preview(c.Request.Context(), id, c.Param("type"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// SendAction always answers 200 once the send was attempted; delivery
// failures are reported through success=false.
func (h *Handler) SendAction(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	var req transport.SendActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.FieldErrors(err))
		return
	}

	result, err := h.svc.Send(c.Request.Context(), id, c.Param("type"), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) Score(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	result, err := h.svc.Evaluate(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) ListActions(c *gin.Context) {
	id, ok := parseLeadID(c)
	if !ok {
		return
	}

	records, err := h.svc.ListActions(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": records})
}

func (h *Handler) RunAutomation(c *gin.Context) {
	result, err := h.svc.RunAutomation(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func parseLeadID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidLeadID, nil)
		return uuid.Nil, false
	}
	return id, true
}
