// Package http defines what the router needs from cmd/api: configuration,
// a readiness probe and the list of modules.
package http

import (
	"context"

	"consulting_leads_backend/platform/config"
	"consulting_leads_backend/platform/logger"
)

type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker is satisfied by *pgxpool.Pool.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App is assembled in cmd/api and consumed by router.New.
type App struct {
	Config RouterConfig
	Logger *logger.Logger
	// Health may be nil, in which case /api/health always reports ok.
	Health  HealthChecker
	Modules []Module
}
