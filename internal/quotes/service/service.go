// Package service implements the staff quoting flow: sending a quote against
// a request moves the request into the quoted lifecycle status.
package service

import (
	"context"
	"time"

	"plumbing_portal_backend/internal/events"
	"plumbing_portal_backend/internal/quotes/repository"
	"plumbing_portal_backend/internal/quotes/transport"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence surface the service needs.
type Store interface {
	CreateAndMarkQuoted(ctx context.Context, quote *repository.Quote) (*repository.RequestSnapshot, error)
	GetByID(ctx context.Context, id uuid.UUID) (*repository.Quote, error)
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]repository.Quote, error)
}

// Service provides quote operations.
type Service struct {
	store    Store
	log      *logger.Logger
	eventBus events.Bus
}

// New creates a quotes service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// SetEventBus wires the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// Create sends a quote for a request. The quote starts in "sent" status and
// the request moves to "quoted" atomically with the insert.
func (s *Service) Create(ctx context.Context, requestID uuid.UUID, input transport.CreateQuoteRequest, userID uuid.UUID) (*repository.Quote, error) {
	if input.AmountCents <= 0 {
		return nil, apperr.Validation("amount_cents must be positive")
	}

	quote := &repository.Quote{
		ID:          uuid.New(),
		RequestID:   requestID,
		UserID:      userID,
		AmountCents: input.AmountCents,
		Details:     nullable(input.Details),
		Status:      string(transport.QuoteStatusSent),
		CreatedAt:   time.Now().UTC(),
	}

	snap, err := s.store.CreateAndMarkQuoted(ctx, quote)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return nil, err
		}
		s.log.DatabaseError("insert quote", err)
		return nil, apperr.Wrap(apperr.KindInternal, "failed to create quote", err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.QuoteCreated{
			BaseEvent:     events.NewBaseEvent(),
			QuoteID:       quote.ID,
			RequestID:     quote.RequestID,
			UserID:        userID,
			AmountCents:   quote.AmountCents,
			CustomerName:  derefString(snap.CustomerName),
			CustomerEmail: derefString(snap.ContactInfo),
		})
	}

	return quote, nil
}

// Get fetches a single quote.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*repository.Quote, error) {
	return s.store.GetByID(ctx, id)
}

// ListByRequest returns every quote sent for a request.
func (s *Service) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]repository.Quote, error) {
	return s.store.ListByRequest(ctx, requestID)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
