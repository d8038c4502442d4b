package geocode

import (
	apphttp "plumbing_portal_backend/internal/http"
	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/events"
	"plumbing_portal_backend/platform/logger"
)

// Module wires the geocoding endpoint and the submit-time subscriber.
type Module struct {
	handler *Handler
	service *Service
	enabled bool
}

// NewModule creates the geocode module. When no API key is configured the
// module registers nothing and geocoding is skipped entirely.
func NewModule(cfg config.GeocodeConfig, store RequestStore, profileStore ProfileStore, eventBus *events.InMemoryBus, log *logger.Logger) *Module {
	if !cfg.IsGeocodeEnabled() {
		log.Info("geocoding disabled, no API key configured")
		return &Module{enabled: false}
	}

	client := NewClient(cfg.GetGoogleMapsAPIKey(), log)
	svc := NewService(client, store, log)
	svc.SetProfileStore(profileStore)
	svc.SetEventBus(eventBus)
	svc.RegisterSubscribers(eventBus)

	return &Module{
		handler: NewHandler(svc),
		service: svc,
		enabled: true,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "geocode"
}

// Service returns the service layer for external use (nil when disabled).
func (m *Module) Service() *Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if !m.enabled {
		return
	}
	ctx.Staff.POST("/geocode", m.handler.Geocode)
}

var _ apphttp.Module = (*Module)(nil)
