package http

import (
	"consulting_leads_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Module is a bounded context that mounts its own routes. cmd/api lists the
// modules; the router never imports them.
type Module interface {
	Name() string
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext is the set of route groups handed to every module.
type RouterContext struct {
	// V1 is /api/v1 with no authentication (public intake, sign-in).
	V1 *gin.RouterGroup
	// Protected requires a valid access token.
	Protected *gin.RouterGroup
	// Admin is /api/v1/admin and additionally requires the admin role.
	Admin *gin.RouterGroup
	// AuthRateLimiter is shared so sign-in and refresh draw from one budget.
	AuthRateLimiter *httpkit.AuthRateLimiter
}
