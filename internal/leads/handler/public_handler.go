package handler

import (
	"context"
	"net/http"

	"consulting_leads_backend/internal/leads/domain"
	"consulting_leads_backend/internal/leads/transport"
	"consulting_leads_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Submitter stores a lead coming from a public form.
type Submitter interface {
	Submit(ctx context.Context, req transport.SubmitLeadRequest) (domain.Lead, error)
}

// PublicHandler handles the unauthenticated lead intake endpoint.
type PublicHandler struct {
	intake Submitter
}

const publicMsgInvalidInput = "Invalid input"

func NewPublicHandler(intake Submitter) *PublicHandler {
	return &PublicHandler{intake: intake}
}

// RegisterRoutes registers POST on rg. Rate limiting is applied by the caller.
func (h *PublicHandler) RegisterRoutes(rg *gin.RouterGroup, middleware ...gin.HandlerFunc) {
	handlers := append(append([]gin.HandlerFunc{}, middleware...), h.Submit)
	rg.POST("", handlers...)
}

// Submit creates a lead with status new and returns its id.
func (h *PublicHandler) Submit(c *gin.Context) {
	var req transport.SubmitLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, publicMsgInvalidInput, nil)
		return
	}

	lead, err := h.intake.Submit(c.Request.Context(), req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.SubmitLeadResponse{ID: lead.ID})
}
