package sms

import (
	"context"
	"fmt"
	"strings"

	"plumbing_portal_backend/internal/events"
	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/logger"
	"plumbing_portal_backend/platform/phone"
)

// PhoneDirectory lists the staff phone numbers to notify. The profiles
// repository implements it.
type PhoneDirectory interface {
	AdminPhoneNumbers(ctx context.Context) ([]string, error)
}

// Notifier texts the on-call staff numbers when notable domain events happen.
type Notifier struct {
	sender    Sender
	cfg       config.SMSConfig
	directory PhoneDirectory
	baseURL   string
	log       *logger.Logger
}

// NewNotifier creates an event-driven SMS notifier. baseURL points texts at
// the staff dashboard; an empty value drops the link line.
func NewNotifier(sender Sender, cfg config.SMSConfig, baseURL string, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, cfg: cfg, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// SetPhoneDirectory makes the notifier text every admin on file instead of
// just the configured fallback number.
func (n *Notifier) SetPhoneDirectory(directory PhoneDirectory) {
	n.directory = directory
}

// RegisterSubscribers attaches the notifier to the event bus. Without a phone
// directory or a configured fallback number it registers nothing.
func (n *Notifier) RegisterSubscribers(bus events.Bus) {
	if n.directory == nil && n.cfg.GetNotifyPhoneNumber() == "" {
		n.log.Info("sms notifications disabled, no notification number configured")
		return
	}

	bus.Subscribe(events.RequestSubmitted{}.EventName(), n.onRequestSubmitted)
	bus.Subscribe(events.TriageCompleted{}.EventName(), n.onTriageCompleted)
}

func (n *Notifier) onRequestSubmitted(ctx context.Context, event events.Event) error {
	submitted, ok := event.(events.RequestSubmitted)
	if !ok {
		return nil
	}

	lines := []string{
		"New Quote Request!",
		"ID: " + submitted.RequestID.String(),
		"Type: " + strings.ReplaceAll(submitted.ServiceType, "_", " "),
		"From: " + submitted.CustomerName,
		"Address: " + submitted.ServiceAddress,
	}
	if n.baseURL != "" {
		lines = append(lines, "Link: "+n.baseURL)
	}

	body := strings.Join(lines, "\n")
	if submitted.IsEmergency {
		body = "EMERGENCY " + body
	}
	return n.notify(ctx, body)
}

func (n *Notifier) onTriageCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(events.TriageCompleted)
	if !ok {
		return nil
	}
	if completed.Priority != "high" {
		return nil
	}

	body := fmt.Sprintf("High priority request %s: complexity %d, urgency %d",
		completed.RequestID, completed.ComplexityRank, completed.UrgencyRank)
	return n.notify(ctx, body)
}

func (n *Notifier) notify(ctx context.Context, body string) error {
	for _, number := range n.recipients(ctx) {
		sid, err := n.sender.Send(ctx, number, body)
		if err != nil {
			n.log.Error("staff sms notification failed", "to", number, "error", err)
			return err
		}
		n.log.Info("staff notified by sms", "to", number, "sid", sid)
	}
	return nil
}

// recipients returns the admin numbers on file in E.164 form, falling back
// to the configured notification number when none exist.
func (n *Notifier) recipients(ctx context.Context) []string {
	if n.directory != nil {
		numbers, err := n.directory.AdminPhoneNumbers(ctx)
		if err != nil {
			n.log.Error("failed to list admin phone numbers", "error", err)
		} else if len(numbers) > 0 {
			normalized := make([]string, 0, len(numbers))
			for _, number := range numbers {
				normalized = append(normalized, phone.NormalizeE164(number))
			}
			return normalized
		}
	}
	if fallback := n.cfg.GetNotifyPhoneNumber(); fallback != "" {
		return []string{fallback}
	}
	return nil
}
