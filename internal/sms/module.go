package sms

import (
	"plumbing_portal_backend/internal/events"
	apphttp "plumbing_portal_backend/internal/http"
	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/logger"
)

// Module wires the SMS relay endpoint and staff notifications.
type Module struct {
	handler *Handler
	enabled bool
}

// NewModule assembles the SMS module. When Twilio credentials are missing
// the relay still registers so callers get a clear error, but staff
// notifications are skipped.
func NewModule(cfg config.SMSConfig, baseURL string, directory PhoneDirectory, eventBus events.Bus, log *logger.Logger) *Module {
	client := NewClient(cfg.GetTwilioAccountSID(), cfg.GetTwilioAuthToken(), cfg.GetTwilioFromNumber(), log)

	if cfg.IsSMSEnabled() {
		notifier := NewNotifier(client, cfg, baseURL, log)
		if directory != nil {
			notifier.SetPhoneDirectory(directory)
		}
		notifier.RegisterSubscribers(eventBus)
	} else {
		log.Info("sms sending disabled, Twilio credentials not configured")
	}

	return &Module{
		handler: NewHandler(client, cfg, log),
		enabled: cfg.IsSMSEnabled(),
	}
}

func (m *Module) Name() string { return "sms" }

// RegisterRoutes mounts the relay outside the public API group. The shared
// secret, not a user session, authorizes calls.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Engine.Any("/api/send-sms", m.handler.Relay)
}
