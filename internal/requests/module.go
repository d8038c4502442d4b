// Package requests provides the quote request domain module: the public
// intake and submission flow plus the staff dashboard operations.
package requests

import (
	apphttp "plumbing_portal_backend/internal/http"
	"plumbing_portal_backend/internal/requests/handler"
	"plumbing_portal_backend/internal/requests/intake"
	"plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/internal/requests/service"
	"plumbing_portal_backend/platform/events"
	"plumbing_portal_backend/platform/logger"
	"plumbing_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the requests domain module.
type Module struct {
	handler      *handler.Handler
	staffHandler *handler.StaffHandler
	service      *service.Service
	repo         *repository.Repository
}

// NewModule creates a new requests module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, completion intake.CompletionClient, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	svc.SetEventBus(eventBus)
	orchestrator := intake.New(completion, log)
	h := handler.New(svc, orchestrator, val)
	sh := handler.NewStaffHandler(svc, val)

	return &Module{
		handler:      h,
		staffHandler: sh,
		service:      svc,
		repo:         repo,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "requests"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for modules that share the requests table.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public form endpoints, rate limited because they fan out to the
	// completion API.
	public := ctx.Public.Group("")
	public.Use(ctx.IntakeRateLimiter.RateLimit())
	m.handler.RegisterRoutes(public)

	staff := ctx.Staff.Group("/requests")
	m.staffHandler.RegisterRoutes(staff)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
