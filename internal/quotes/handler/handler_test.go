package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"plumbing_portal_backend/internal/quotes/repository"
	"plumbing_portal_backend/internal/quotes/service"
	"plumbing_portal_backend/internal/quotes/transport"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/httpkit"
	"plumbing_portal_backend/platform/logger"
	"plumbing_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type fakeStore struct {
	created []*repository.Quote
}

func (f *fakeStore) CreateAndMarkQuoted(ctx context.Context, quote *repository.Quote) (*repository.RequestSnapshot, error) {
	f.created = append(f.created, quote)
	return &repository.RequestSnapshot{OldStatus: "new"}, nil
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

func newTestEngine(store *fakeStore, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(httpkit.ContextUserIDKey, userID)
		c.Set(httpkit.ContextRolesKey, []string{"admin"})
	})

	h := New(service.New(store, logger.New("test")), validator.New())
	engine.POST("/api/staff/requests/:id/quotes", h.Create)
	return engine
}

func TestCreateQuoteUnderRequestPath(t *testing.T) {
	store := &fakeStore{}
	userID := uuid.New()
	engine := newTestEngine(store, userID)
	requestID := uuid.New()

	body := `{"amount_cents": 45000, "details": "Replace the trap"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/staff/requests/"+requestID.String()+"/quotes", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body: %s", rec.Code, rec.Body.String())
	}

	var resp transport.QuoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.RequestID != requestID {
		t.Fatalf("request_id = %v, want %v", resp.RequestID, requestID)
	}
	if resp.UserID != userID {
		t.Fatalf("user_id = %v, want %v", resp.UserID, userID)
	}
	if len(store.created) != 1 || store.created[0].RequestID != requestID {
		t.Fatal("quote not stored under the requested request")
	}
}

func TestCreateQuoteRejectsBadRequestID(t *testing.T) {
	engine := newTestEngine(&fakeStore{}, uuid.New())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/staff/requests/not-a-uuid/quotes", strings.NewReader(`{"amount_cents": 100}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateQuoteRejectsMissingAmount(t *testing.T) {
	store := &fakeStore{}
	engine := newTestEngine(store, uuid.New())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/staff/requests/"+uuid.NewString()+"/quotes", strings.NewReader(`{"details": "no amount"}`))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(store.created) != 0 {
		t.Fatalf("store has %d quotes, want 0", len(store.created))
	}
}
