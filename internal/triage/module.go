package triage

import (
	apphttp "plumbing_portal_backend/internal/http"
	"plumbing_portal_backend/platform/events"
	"plumbing_portal_backend/platform/logger"
)

// Module wires the triage endpoints.
type Module struct {
	handler *Handler
	service *Service
}

// NewModule creates the triage module.
func NewModule(analyzer Analyzer, store RequestStore, eventBus *events.InMemoryBus, log *logger.Logger) *Module {
	svc := NewService(analyzer, store, log)
	svc.SetEventBus(eventBus)
	return &Module{
		handler: NewHandler(svc),
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "triage"
}

// Service returns the service layer for external use.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes registers the triage routes. The agent endpoint sits at the
// engine level so it can own its method handling, matching the standalone
// function it replaces.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.Any("/api/triage-agent", m.handler.RunAgent)

	ctx.Staff.POST("/requests/:id/triage", m.handler.TriageRequest)
}

var _ apphttp.Module = (*Module)(nil)
