package notification

import (
	"context"
	"fmt"
	"strings"

	"plumbing_portal_backend/internal/events"
	"plumbing_portal_backend/platform/logger"
)

// Config is the slice of app configuration notifications need.
type Config interface {
	GetAppBaseURL() string
	GetStaffNotifyEmail() string
}

// Notifier turns domain events into emails for staff and customers.
type Notifier struct {
	sender Sender
	cfg    Config
	log    *logger.Logger
}

// NewNotifier creates an email notifier.
func NewNotifier(sender Sender, cfg Config, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, cfg: cfg, log: log}
}

// RegisterSubscribers attaches the notifier to the event bus.
func (n *Notifier) RegisterSubscribers(bus events.Bus) {
	bus.Subscribe(events.RequestSubmitted{}.EventName(), n.onRequestSubmitted)
	bus.Subscribe(events.RequestStatusChanged{}.EventName(), n.onStatusChanged)
	bus.Subscribe(events.TriageCompleted{}.EventName(), n.onTriageCompleted)
	bus.Subscribe(events.QuoteCreated{}.EventName(), n.onQuoteCreated)
	bus.Subscribe(events.RequestFollowUpDue{}.EventName(), n.onFollowUpDue)
}

func (n *Notifier) onRequestSubmitted(ctx context.Context, event events.Event) error {
	submitted, ok := event.(events.RequestSubmitted)
	if !ok {
		return nil
	}
	if staffEmail := n.cfg.GetStaffNotifyEmail(); staffEmail != "" {
		err := n.sender.SendNewRequestEmail(ctx, staffEmail, NewRequestEmailData{
			ServiceType:    submitted.ServiceType,
			CustomerName:   submitted.CustomerName,
			ServiceAddress: submitted.ServiceAddress,
			IsEmergency:    submitted.IsEmergency,
			RequestURL:     n.requestURL(submitted.RequestID.String()),
		})
		if err != nil {
			n.log.Error("failed to send new request email", "requestId", submitted.RequestID, "error", err)
			return err
		}
	}

	if isEmailAddress(submitted.ContactInfo) {
		err := n.sender.SendRequestReceivedEmail(ctx, submitted.ContactInfo, RequestReceivedEmailData{
			CustomerName: submitted.CustomerName,
			ServiceType:  submitted.ServiceType,
			IsEmergency:  submitted.IsEmergency,
			PortalURL:    n.cfg.GetAppBaseURL(),
		})
		if err != nil {
			n.log.Error("failed to send confirmation email", "requestId", submitted.RequestID, "error", err)
			return err
		}
	}

	return nil
}

func (n *Notifier) onStatusChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(events.RequestStatusChanged)
	if !ok {
		return nil
	}
	// The quote email covers the "quoted" transition with the amount.
	if changed.NewStatus == "quoted" {
		return nil
	}
	if !isEmailAddress(changed.ContactInfo) {
		return nil
	}

	err := n.sender.SendStatusUpdateEmail(ctx, changed.ContactInfo, StatusUpdateEmailData{
		CustomerName: changed.CustomerName,
		StatusLabel:  StatusLabel(changed.NewStatus),
		PortalURL:    n.cfg.GetAppBaseURL(),
	})
	if err != nil {
		n.log.Error("failed to send status update email", "requestId", changed.RequestID, "error", err)
	}
	return err
}

func (n *Notifier) onTriageCompleted(ctx context.Context, event events.Event) error {
	completed, ok := event.(events.TriageCompleted)
	if !ok {
		return nil
	}
	if completed.Priority != "high" {
		return nil
	}
	staffEmail := n.cfg.GetStaffNotifyEmail()
	if staffEmail == "" {
		return nil
	}

	err := n.sender.SendHighPriorityEmail(ctx, staffEmail, HighPriorityEmailData{
		RequestID:      completed.RequestID.String(),
		ComplexityRank: completed.ComplexityRank,
		UrgencyRank:    completed.UrgencyRank,
		RequestURL:     n.requestURL(completed.RequestID.String()),
	})
	if err != nil {
		n.log.Error("failed to send high priority email", "requestId", completed.RequestID, "error", err)
	}
	return err
}

func (n *Notifier) onQuoteCreated(ctx context.Context, event events.Event) error {
	created, ok := event.(events.QuoteCreated)
	if !ok {
		return nil
	}
	// Customers who only left a phone number get their quote by other means.
	if !isEmailAddress(created.CustomerEmail) {
		return nil
	}

	err := n.sender.SendQuoteSentEmail(ctx, created.CustomerEmail, QuoteSentEmailData{
		CustomerName:    created.CustomerName,
		AmountFormatted: FormatCents(created.AmountCents),
		PortalURL:       n.cfg.GetAppBaseURL(),
	})
	if err != nil {
		n.log.Error("failed to send quote email", "quoteId", created.QuoteID, "error", err)
	}
	return err
}

func (n *Notifier) onFollowUpDue(ctx context.Context, event events.Event) error {
	due, ok := event.(events.RequestFollowUpDue)
	if !ok {
		return nil
	}
	if !isEmailAddress(due.ContactInfo) {
		return nil
	}

	err := n.sender.SendFollowUpEmail(ctx, due.ContactInfo, FollowUpEmailData{
		ServiceType:  due.ServiceType,
		CustomerName: due.CustomerName,
		PortalURL:    n.cfg.GetAppBaseURL(),
	})
	if err != nil {
		n.log.Error("failed to send follow-up email", "requestId", due.RequestID, "error", err)
	}
	return err
}

func isEmailAddress(contact string) bool {
	return contact != "" && strings.Contains(contact, "@")
}

func (n *Notifier) requestURL(requestID string) string {
	base := strings.TrimRight(n.cfg.GetAppBaseURL(), "/")
	if base == "" {
		return ""
	}
	return fmt.Sprintf("%s/admin/requests/%s", base, requestID)
}
