// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"plumbing_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event     = events.Event
	Bus       = events.Bus
	Handler   = events.Handler
	BaseEvent = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Quote Request Domain Events
// =============================================================================

// RequestSubmitted is published when a customer submits a completed quote
// request through the public form.
type RequestSubmitted struct {
	BaseEvent
	RequestID      uuid.UUID `json:"requestId"`
	ServiceType    string    `json:"serviceType"`
	CustomerName   string    `json:"customerName"`
	ContactInfo    string    `json:"contactInfo,omitempty"`
	ServiceAddress string    `json:"serviceAddress,omitempty"`
	IsEmergency    bool      `json:"isEmergency"`
}

func (e RequestSubmitted) EventName() string { return "requests.request.submitted" }

// RequestStatusChanged is published when staff update a request's status.
type RequestStatusChanged struct {
	BaseEvent
	RequestID    uuid.UUID `json:"requestId"`
	OldStatus    string    `json:"oldStatus"`
	NewStatus    string    `json:"newStatus"`
	ActorID      uuid.UUID `json:"actorId"`
	CustomerName string    `json:"customerName,omitempty"`
	ContactInfo  string    `json:"contactInfo,omitempty"`
}

func (e RequestStatusChanged) EventName() string { return "requests.request.status_changed" }

// RequestGeocoded is published when a request's service address resolves to
// coordinates.
type RequestGeocoded struct {
	BaseEvent
	RequestID       uuid.UUID `json:"requestId"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	GeocodedAddress string    `json:"geocodedAddress"`
}

func (e RequestGeocoded) EventName() string { return "requests.request.geocoded" }

// AttachmentUploaded is published when a photo is attached to a request.
type AttachmentUploaded struct {
	BaseEvent
	RequestID    uuid.UUID `json:"requestId"`
	AttachmentID uuid.UUID `json:"attachmentId"`
	FileName     string    `json:"fileName"`
	FileKey      string    `json:"fileKey"`
	ContentType  string    `json:"contentType"`
	SizeBytes    int64     `json:"sizeBytes"`
}

func (e AttachmentUploaded) EventName() string { return "requests.attachment.uploaded" }

// RequestFollowUpDue is published by the scheduler when a quoted request has
// sat without a customer response past the follow-up window.
type RequestFollowUpDue struct {
	BaseEvent
	RequestID    uuid.UUID `json:"requestId"`
	ServiceType  string    `json:"serviceType"`
	CustomerName string    `json:"customerName"`
	ContactInfo  string    `json:"contactInfo,omitempty"`
	Status       string    `json:"status"`
}

func (e RequestFollowUpDue) EventName() string { return "requests.request.followup_due" }

// =============================================================================
// Quotes Domain Events
// =============================================================================

// QuoteCreated is published when staff send a quote for a request.
type QuoteCreated struct {
	BaseEvent
	QuoteID       uuid.UUID `json:"quoteId"`
	RequestID     uuid.UUID `json:"requestId"`
	UserID        uuid.UUID `json:"userId"`
	AmountCents   int64     `json:"amountCents"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail,omitempty"`
}

func (e QuoteCreated) EventName() string { return "quotes.quote.created" }

// =============================================================================
// Triage Domain Events
// =============================================================================

// TriageCompleted is published when the triage agent finishes analyzing a
// request.
type TriageCompleted struct {
	BaseEvent
	RequestID      uuid.UUID `json:"requestId"`
	Priority       string    `json:"priority"`
	ComplexityRank int       `json:"complexityRank"`
	UrgencyRank    int       `json:"urgencyRank"`
}

func (e TriageCompleted) EventName() string { return "triage.analysis.completed" }
