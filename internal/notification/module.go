package notification

import (
	"plumbing_portal_backend/internal/events"
	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/logger"
)

// Register wires email notifications onto the event bus. With SMTP
// unconfigured it still registers, using the noop sender, so the event
// flow stays identical across environments.
func Register(emailCfg config.EmailConfig, notifyCfg Config, bus events.Bus, log *logger.Logger) {
	var sender Sender
	if emailCfg.GetEmailEnabled() {
		sender = NewSMTPSender(emailCfg)
	} else {
		log.Info("email notifications disabled, using noop sender")
		sender = NoopSender{}
	}

	NewNotifier(sender, notifyCfg, log).RegisterSubscribers(bus)
}
