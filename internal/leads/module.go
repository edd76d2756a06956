// Package leads provides the lead pipeline bounded context module.
// This file wires intake, scoring, templates, the action dispatcher and the
// automation engine, and mounts their routes.
package leads

import (
	"context"
	"fmt"

	"consulting_leads_backend/internal/email"
	"consulting_leads_backend/internal/events"
	apphttp "consulting_leads_backend/internal/http"
	"consulting_leads_backend/internal/leads/automation"
	"consulting_leads_backend/internal/leads/dispatcher"
	"consulting_leads_backend/internal/leads/handler"
	"consulting_leads_backend/internal/leads/intake"
	"consulting_leads_backend/internal/leads/management"
	"consulting_leads_backend/internal/leads/repository"
	"consulting_leads_backend/internal/leads/scoring"
	"consulting_leads_backend/internal/leads/templates"
	"consulting_leads_backend/platform/ai"
	"consulting_leads_backend/platform/config"
	"consulting_leads_backend/platform/httpkit"
	"consulting_leads_backend/platform/lock"
	"consulting_leads_backend/platform/logger"
	"consulting_leads_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	repo          *repository.Repository
	handler       *handler.Handler
	public        *handler.PublicHandler
	management    *management.Service
	runner        *automation.Runner
	intakeLimiter *httpkit.IPRateLimiter
}

// NewModule builds the lead pipeline. guard serializes automation runs across
// the manual trigger and the scheduler.
func NewModule(ctx context.Context, pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, guard lock.Guard, cfg *config.Config, log *logger.Logger) (*Module, error) {
	repo := repository.New(pool)

	completer, err := ai.NewCompleter(ctx, cfg)
	if err != nil {
		// A broken provider setup must not take the pipeline down.
		log.ProviderFailure(cfg.GetAIProvider(), "init", err)
		completer = nil
	}
	if completer == nil {
		log.Info("generative text provider disabled, using deterministic scoring and fixed templates")
	}

	rules, err := scoring.LoadRules(cfg.GetScoringRulesPath())
	if err != nil {
		return nil, fmt.Errorf("load scoring rules: %w", err)
	}
	scorer := scoring.New(rules, completer, log)

	renderer, err := templates.NewRenderer(templates.Brand{
		CompanyName: cfg.GetCompanyName(),
		CompanyURL:  cfg.GetCompanyURL(),
		SenderName:  cfg.GetMailFromName(),
	}, completer, log)
	if err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}

	transport := email.NewTransport(cfg, log)
	actions := dispatcher.New(repo, scorer, renderer, transport, eventBus, dispatcher.DefaultRules(cfg.GetWelcomeGrace()), log)

	engine := automation.NewEngine(repo, actions, eventBus, log)
	runner := automation.NewRunner(engine, guard, log)

	mgmtSvc := management.New(repo, actions, scorer, runner, eventBus)
	intakeSvc := intake.New(repo, val, eventBus, cfg.GetPhoneRegion())

	perMinute := cfg.GetIntakeRatePerMinute()
	if perMinute <= 0 {
		perMinute = 10
	}

	return &Module{
		repo:          repo,
		handler:       handler.New(mgmtSvc, val),
		public:        handler.NewPublicHandler(intakeSvc),
		management:    mgmtSvc,
		runner:        runner,
		intakeLimiter: httpkit.NewIPRateLimiter(rate.Limit(float64(perMinute)/60.0), perMinute, log),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// ManagementService returns the lead management service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// AutomationRunner returns the guarded engine runner used by schedulers.
func (m *Module) AutomationRunner() *automation.Runner {
	return m.runner
}

// Repository exposes the lead store, used by the insert listener.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.public.RegisterRoutes(ctx.V1.Group("/leads"), m.intakeLimiter.RateLimit())
	m.handler.RegisterRoutes(ctx.Admin)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
