// Package quotes provides the staff quoting domain module.
package quotes

import (
	apphttp "plumbing_portal_backend/internal/http"
	"plumbing_portal_backend/internal/quotes/handler"
	"plumbing_portal_backend/internal/quotes/repository"
	"plumbing_portal_backend/internal/quotes/service"
	"plumbing_portal_backend/platform/events"
	"plumbing_portal_backend/platform/logger"
	"plumbing_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the quotes domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, eventBus *events.InMemoryBus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	svc.SetEventBus(eventBus)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	quotes := ctx.Staff.Group("/quotes")
	m.handler.RegisterRoutes(quotes)

	ctx.Staff.POST("/requests/:id/quotes", m.handler.Create)
	ctx.Staff.GET("/requests/:id/quotes", m.handler.ListForRequest)
}

var _ apphttp.Module = (*Module)(nil)
