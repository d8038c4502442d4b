package service

import (
	"context"
	"testing"

	"plumbing_portal_backend/internal/quotes/repository"
	"plumbing_portal_backend/internal/quotes/transport"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	created   []*repository.Quote
	createErr error
}

func (f *fakeStore) CreateAndMarkQuoted(ctx context.Context, quote *repository.Quote) (*repository.RequestSnapshot, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, quote)
	name := "Pat"
	return &repository.RequestSnapshot{OldStatus: "new", CustomerName: &name}, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*repository.Quote, error) {
	for _, q := range f.created {
		if q.ID == id {
			return q, nil
		}
	}
	return nil, apperr.NotFound("quote not found")
}

func (f *fakeStore) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]repository.Quote, error) {
	var out []repository.Quote
	for _, q := range f.created {
		if q.RequestID == requestID {
			out = append(out, *q)
		}
	}
	return out, nil
}

func TestCreateInitializesSentStatus(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, logger.New("test"))

	quote, err := svc.Create(context.Background(), uuid.New(), transport.CreateQuoteRequest{
		AmountCents: 45000,
		Details:     "Replace the kitchen trap and supply lines",
	}, uuid.New())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if quote.Status != "sent" {
		t.Fatalf("Status = %q, want %q", quote.Status, "sent")
	}
	if quote.Details == nil || *quote.Details == "" {
		t.Fatal("Details not stored")
	}
	if len(store.created) != 1 {
		t.Fatalf("store has %d quotes, want 1", len(store.created))
	}
}

func TestCreateRejectsNonPositiveAmount(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, logger.New("test"))

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateQuoteRequest{
		AmountCents: 0,
	}, uuid.New())
	if err == nil {
		t.Fatal("Create() error = nil, want validation error")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Create() error kind = %v, want KindValidation", apperr.GetKind(err))
	}
	if len(store.created) != 0 {
		t.Fatalf("store has %d quotes, want 0", len(store.created))
	}
}

func TestCreateUnknownRequestIsNotFound(t *testing.T) {
	store := &fakeStore{createErr: apperr.NotFound("request not found")}
	svc := New(store, logger.New("test"))

	_, err := svc.Create(context.Background(), uuid.New(), transport.CreateQuoteRequest{
		AmountCents: 10000,
	}, uuid.New())
	if err == nil {
		t.Fatal("Create() error = nil, want not found")
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Create() error kind = %v, want KindNotFound", apperr.GetKind(err))
	}
}

func TestCreateEmptyDetailsStoredAsNull(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, logger.New("test"))

	quote, err := svc.Create(context.Background(), uuid.New(), transport.CreateQuoteRequest{
		AmountCents: 5000,
	}, uuid.New())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if quote.Details != nil {
		t.Fatalf("Details = %q, want nil", *quote.Details)
	}
}

func TestCreateTargetsGivenRequest(t *testing.T) {
	store := &fakeStore{}
	svc := New(store, logger.New("test"))

	requestID := uuid.New()
	quote, err := svc.Create(context.Background(), requestID, transport.CreateQuoteRequest{
		AmountCents: 12000,
	}, uuid.New())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if quote.RequestID != requestID {
		t.Fatalf("RequestID = %v, want %v", quote.RequestID, requestID)
	}
}
