// Package service implements the quote request business logic: submission
// with its field derivation rules, and the staff-facing lifecycle operations.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"plumbing_portal_backend/internal/events"
	"plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/internal/requests/transport"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs. The repository
// implements it; tests substitute fixtures.
type Store interface {
	Insert(ctx context.Context, req *repository.Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Request, error)
	List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*repository.StatusChange, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, update repository.LocationUpdate) error
	AddNote(ctx context.Context, note *repository.Note) error
	ListNotes(ctx context.Context, requestID uuid.UUID) ([]repository.Note, error)
}

// Service provides quote request operations.
type Service struct {
	store    Store
	log      *logger.Logger
	eventBus events.Bus
}

// New creates a requests service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// SetEventBus wires the domain event bus. Optional; without it no events are
// published.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Submit validates a completed intake payload, derives the persistence record
// and writes it. Exactly one durable record is created per call; duplicate
// submissions intentionally create duplicate records.
func (s *Service) Submit(ctx context.Context, input transport.SubmitQuoteRequest, userID *uuid.UUID) (*repository.Request, error) {
	if input.ClarifyingAnswers == nil {
		return nil, apperr.Validation("clarifyingAnswers is required")
	}
	if input.ContactInfo == nil {
		return nil, apperr.Validation("contactInfo is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return nil, apperr.Validation("category is required")
	}

	req := deriveRequest(input, userID)

	if err := s.store.Insert(ctx, req); err != nil {
		s.log.DatabaseError("insert request", err)
		return nil, apperr.Wrap(apperr.KindInternal, "Failed to submit quote", err).WithOp("requests.Submit")
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.RequestSubmitted{
			BaseEvent:      events.NewBaseEvent(),
			RequestID:      req.ID,
			ServiceType:    req.ProblemCategory,
			CustomerName:   stringValue(req.CustomerName),
			ContactInfo:    stringValue(req.ContactInfo),
			ServiceAddress: stringValue(req.ServiceAddress),
			IsEmergency:    req.IsEmergency,
		})
	}

	return req, nil
}

// Get fetches a single request.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Request, error) {
	return s.store.GetByID(ctx, id)
}

// List returns a page of requests for the staff dashboard.
func (s *Service) List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error) {
	if params.Status != nil && !transport.IsValidStatus(*params.Status) {
		return nil, apperr.Validation(fmt.Sprintf("unknown status %q", *params.Status))
	}
	return s.store.List(ctx, params)
}

// UpdateStatus moves a request to a new lifecycle status. The status set is
// validated but transitions between valid statuses are unrestricted; staff
// drive the lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string, actorID uuid.UUID) error {
	if !transport.IsValidStatus(status) {
		return apperr.Validation(fmt.Sprintf("unknown status %q", status))
	}

	change, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return err
	}

	if s.eventBus != nil && change.OldStatus != status {
		s.eventBus.Publish(ctx, events.RequestStatusChanged{
			BaseEvent:    events.NewBaseEvent(),
			RequestID:    id,
			OldStatus:    change.OldStatus,
			NewStatus:    status,
			ActorID:      actorID,
			CustomerName: stringValue(change.CustomerName),
			ContactInfo:  stringValue(change.ContactInfo),
		})
	}

	return nil
}

// UpdateLocation corrects a request's address or coordinate fields. At least
// one field must be provided.
func (s *Service) UpdateLocation(ctx context.Context, id uuid.UUID, input transport.UpdateLocationRequest) error {
	update := repository.LocationUpdate{
		ServiceAddress:  input.ServiceAddress,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		GeocodedAddress: input.GeocodedAddress,
	}
	if update.ServiceAddress == nil && update.Latitude == nil && update.Longitude == nil && update.GeocodedAddress == nil {
		return apperr.Validation("at least one location field is required")
	}
	return s.store.UpdateLocation(ctx, id, update)
}

// AddNote stores a staff note against a request.
func (s *Service) AddNote(ctx context.Context, requestID, authorID uuid.UUID, authorRole, text string) (*repository.Note, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperr.Validation("note is required")
	}

	// The request must exist; notes against deleted/unknown ids 404.
	if _, err := s.store.GetByID(ctx, requestID); err != nil {
		return nil, err
	}

	note := &repository.Note{
		ID:         uuid.New(),
		RequestID:  requestID,
		AuthorID:   authorID,
		AuthorRole: authorRole,
		Note:       strings.TrimSpace(text),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.store.AddNote(ctx, note); err != nil {
		s.log.DatabaseError("insert note", err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to add note", err)
	}

	return note, nil
}

// ListNotes returns the notes for a request, oldest first.
func (s *Service) ListNotes(ctx context.Context, requestID uuid.UUID) ([]repository.Note, error) {
	return s.store.ListNotes(ctx, requestID)
}

// deriveRequest maps the submission payload to the persistence record. The
// rules mirror the public quote form contract:
//   - service_address joins address, city, province and postal code; an empty
//     result is stored as NULL
//   - contact_info prefers email over phone, NULL when neither is given
//   - is_emergency is true only for a strict boolean true in the payload
//   - is_homeowner is true only for the literal string "Yes"
//   - optional free-text fields become NULL when absent
func deriveRequest(input transport.SubmitQuoteRequest, userID *uuid.UUID) *repository.Request {
	contact := *input.ContactInfo

	serviceAddress := strings.TrimSpace(fmt.Sprintf("%s, %s, %s %s",
		contact.Address, contact.City, contact.Province, contact.PostalCode))

	contactInfo := contact.Email
	if contactInfo == "" {
		contactInfo = contact.Phone
	}

	isEmergency, _ := input.IsEmergency.(bool)

	answers := make([]repository.Answer, 0, len(input.ClarifyingAnswers))
	for _, a := range input.ClarifyingAnswers {
		answers = append(answers, repository.Answer{Question: a.Question, Answer: a.Answer})
	}

	return &repository.Request{
		ID:                 uuid.New(),
		UserID:             userID,
		CustomerName:       nullable(contact.Name),
		ServiceAddress:     nullable(serviceAddress),
		ContactInfo:        nullable(contactInfo),
		ProblemCategory:    input.Category,
		IsEmergency:        isEmergency,
		PropertyType:       nullable(input.PropertyType),
		IsHomeowner:        input.IsHomeowner == "Yes",
		ProblemDescription: nullable(input.ProblemDescription),
		PreferredTiming:    nullable(input.PreferredTiming),
		AdditionalNotes:    nullable(input.AdditionalNotes),
		Answers:            answers,
		Status:             string(transport.RequestStatusNew),
		CreatedAt:          time.Now().UTC(),
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
