package service

import (
	"context"
	"errors"
	"testing"

	"plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/internal/requests/transport"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeStore struct {
	inserted   []*repository.Request
	insertErr  error
	byID       map[uuid.UUID]*repository.Request
	statusFrom string
	statusErr  error
	notes      []*repository.Note

	locationUpdates []repository.LocationUpdate
}

func newFakeStore() *fakeStore {
	return &fakeStore{byID: make(map[uuid.UUID]*repository.Request)}
}

func (f *fakeStore) Insert(ctx context.Context, req *repository.Request) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, req)
	f.byID[req.ID] = req
	return nil
}

func (f *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*repository.Request, error) {
	if req, ok := f.byID[id]; ok {
		return req, nil
	}
	return nil, apperr.NotFound("request not found")
}

func (f *fakeStore) List(ctx context.Context, params repository.ListParams) (*repository.ListResult, error) {
	items := make([]repository.Request, 0, len(f.inserted))
	for _, req := range f.inserted {
		items = append(items, *req)
	}
	return &repository.ListResult{Items: items, Total: len(items), Page: 1, PageSize: 25}, nil
}

func (f *fakeStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*repository.StatusChange, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &repository.StatusChange{OldStatus: f.statusFrom}, nil
}

func (f *fakeStore) UpdateLocation(ctx context.Context, id uuid.UUID, update repository.LocationUpdate) error {
	if _, ok := f.byID[id]; !ok {
		return apperr.NotFound("request not found")
	}
	f.locationUpdates = append(f.locationUpdates, update)
	return nil
}

func (f *fakeStore) AddNote(ctx context.Context, note *repository.Note) error {
	f.notes = append(f.notes, note)
	return nil
}

func (f *fakeStore) ListNotes(ctx context.Context, requestID uuid.UUID) ([]repository.Note, error) {
	var out []repository.Note
	for _, n := range f.notes {
		if n.RequestID == requestID {
			out = append(out, *n)
		}
	}
	return out, nil
}

func newTestService(store Store) *Service {
	return New(store, logger.New("test"))
}

func validSubmission() transport.SubmitQuoteRequest {
	return transport.SubmitQuoteRequest{
		ClarifyingAnswers: []transport.ClarifyingAnswer{
			{Question: "Where is the leak?", Answer: "Under the kitchen sink"},
		},
		ContactInfo: &transport.ContactInfo{
			Name:       "Pat Doe",
			Address:    "1 A St",
			City:       "X",
			Province:   "BC",
			PostalCode: "V1V1V1",
			Email:      "pat@example.com",
		},
		Category: "leak_repair",
	}
}

func TestSubmitDerivesServiceAddress(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	req, err := svc.Submit(context.Background(), validSubmission(), nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if req.ServiceAddress == nil || *req.ServiceAddress != "1 A St, X, BC V1V1V1" {
		t.Fatalf("ServiceAddress = %v, want %q", req.ServiceAddress, "1 A St, X, BC V1V1V1")
	}
}

func TestSubmitMissingContactInfoCreatesNoRecord(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validSubmission()
	input.ContactInfo = nil

	_, err := svc.Submit(context.Background(), input, nil)
	if err == nil {
		t.Fatal("Submit() error = nil, want validation error")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Submit() error kind = %v, want KindValidation", apperr.GetKind(err))
	}
	if len(store.inserted) != 0 {
		t.Fatalf("store has %d requests, want 0", len(store.inserted))
	}
}

func TestSubmitContactInfoPrefersEmail(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validSubmission()
	input.ContactInfo.Email = "pat@example.com"
	input.ContactInfo.Phone = "+12505551234"

	req, err := svc.Submit(context.Background(), input, nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if req.ContactInfo == nil || *req.ContactInfo != "pat@example.com" {
		t.Fatalf("ContactInfo = %v, want email", req.ContactInfo)
	}
}

func TestSubmitContactInfoFallsBackToPhone(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validSubmission()
	input.ContactInfo.Email = ""
	input.ContactInfo.Phone = "250-555-1234"

	req, err := svc.Submit(context.Background(), input, nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if req.ContactInfo == nil || *req.ContactInfo != "250-555-1234" {
		t.Fatalf("ContactInfo = %v, want raw phone", req.ContactInfo)
	}
}

func TestSubmitContactInfoNullWhenAbsent(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validSubmission()
	input.ContactInfo.Email = ""
	input.ContactInfo.Phone = ""

	req, err := svc.Submit(context.Background(), input, nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if req.ContactInfo != nil {
		t.Fatalf("ContactInfo = %q, want nil", *req.ContactInfo)
	}
}

func TestSubmitEmergencyOnlyForStrictTrue(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  bool
	}{
		{"boolean true", true, true},
		{"boolean false", false, false},
		{"string true", "true", false},
		{"number one", float64(1), false},
		{"absent", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			svc := newTestService(store)

			input := validSubmission()
			input.IsEmergency = tt.value

			req, err := svc.Submit(context.Background(), input, nil)
			if err != nil {
				t.Fatalf("Submit() error = %v", err)
			}
			if req.IsEmergency != tt.want {
				t.Errorf("IsEmergency = %v, want %v", req.IsEmergency, tt.want)
			}
		})
	}
}

func TestSubmitHomeownerOnlyForLiteralYes(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"Yes", true},
		{"No", false},
		{"yes", false},
		{"YES", false},
		{"", false},
	}

	for _, tt := range tests {
		store := newFakeStore()
		svc := newTestService(store)

		input := validSubmission()
		input.IsHomeowner = tt.value

		req, err := svc.Submit(context.Background(), input, nil)
		if err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
		if req.IsHomeowner != tt.want {
			t.Errorf("IsHomeowner for %q = %v, want %v", tt.value, req.IsHomeowner, tt.want)
		}
	}
}

func TestSubmitOptionalFieldsDefaultToNull(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	req, err := svc.Submit(context.Background(), validSubmission(), nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if req.PropertyType != nil {
		t.Errorf("PropertyType = %q, want nil", *req.PropertyType)
	}
	if req.ProblemDescription != nil {
		t.Errorf("ProblemDescription = %q, want nil", *req.ProblemDescription)
	}
	if req.PreferredTiming != nil {
		t.Errorf("PreferredTiming = %q, want nil", *req.PreferredTiming)
	}
	if req.AdditionalNotes != nil {
		t.Errorf("AdditionalNotes = %q, want nil", *req.AdditionalNotes)
	}
}

func TestSubmitInitializesStatusNew(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	req, err := svc.Submit(context.Background(), validSubmission(), nil)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if req.Status != "new" {
		t.Fatalf("Status = %q, want %q", req.Status, "new")
	}
}

func TestSubmitMissingCategoryCreatesNoRecord(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validSubmission()
	input.Category = ""

	_, err := svc.Submit(context.Background(), input, nil)
	if err == nil {
		t.Fatal("Submit() error = nil, want validation error")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("Submit() error kind = %v, want KindValidation", apperr.GetKind(err))
	}
	if len(store.inserted) != 0 {
		t.Fatalf("store has %d records, want 0", len(store.inserted))
	}
}

func TestSubmitMissingAnswersCreatesNoRecord(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	input := validSubmission()
	input.ClarifyingAnswers = nil

	_, err := svc.Submit(context.Background(), input, nil)
	if err == nil {
		t.Fatal("Submit() error = nil, want validation error")
	}
	if len(store.inserted) != 0 {
		t.Fatalf("store has %d records, want 0", len(store.inserted))
	}
}

func TestSubmitDuplicateCallsCreateDistinctRecords(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	first, err := svc.Submit(context.Background(), validSubmission(), nil)
	if err != nil {
		t.Fatalf("first Submit() error = %v", err)
	}
	second, err := svc.Submit(context.Background(), validSubmission(), nil)
	if err != nil {
		t.Fatalf("second Submit() error = %v", err)
	}

	if first.ID == second.ID {
		t.Fatal("duplicate submissions share an identity, want distinct records")
	}
	if len(store.inserted) != 2 {
		t.Fatalf("store has %d records, want 2", len(store.inserted))
	}
}

func TestSubmitPersistenceFailureIsInternal(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("connection reset")
	svc := newTestService(store)

	_, err := svc.Submit(context.Background(), validSubmission(), nil)
	if err == nil {
		t.Fatal("Submit() error = nil, want internal error")
	}
	if !apperr.Is(err, apperr.KindInternal) {
		t.Fatalf("Submit() error kind = %v, want KindInternal", apperr.GetKind(err))
	}
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	err := svc.UpdateStatus(context.Background(), uuid.New(), "archived", uuid.New())
	if err == nil {
		t.Fatal("UpdateStatus() error = nil, want validation error")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("UpdateStatus() error kind = %v, want KindValidation", apperr.GetKind(err))
	}
}

func TestUpdateStatusAcceptsLifecycleStatuses(t *testing.T) {
	store := newFakeStore()
	store.statusFrom = "new"
	svc := newTestService(store)

	for _, status := range []string{"new", "viewed", "quoted", "scheduled", "completed"} {
		if err := svc.UpdateStatus(context.Background(), uuid.New(), status, uuid.New()); err != nil {
			t.Errorf("UpdateStatus(%q) error = %v", status, err)
		}
	}
}

func TestAddNoteUnknownRequest(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	_, err := svc.AddNote(context.Background(), uuid.New(), uuid.New(), "admin", "call back tomorrow")
	if err == nil {
		t.Fatal("AddNote() error = nil, want not found")
	}
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("AddNote() error kind = %v, want KindNotFound", apperr.GetKind(err))
	}
}

func TestAddNoteRecordsAuthorRole(t *testing.T) {
	store := newFakeStore()
	req := &repository.Request{ID: uuid.New()}
	store.byID[req.ID] = req
	svc := newTestService(store)

	note, err := svc.AddNote(context.Background(), req.ID, uuid.New(), "admin", "  left voicemail  ")
	if err != nil {
		t.Fatalf("AddNote() error = %v", err)
	}
	if note.AuthorRole != "admin" {
		t.Errorf("note.AuthorRole = %q, want %q", note.AuthorRole, "admin")
	}
	if note.Note != "left voicemail" {
		t.Errorf("note.Note = %q, want trimmed text", note.Note)
	}
}

func TestUpdateLocationRequiresAField(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)

	err := svc.UpdateLocation(context.Background(), uuid.New(), transport.UpdateLocationRequest{})
	if err == nil {
		t.Fatal("UpdateLocation() error = nil, want validation error")
	}
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("UpdateLocation() error kind = %v, want KindValidation", apperr.GetKind(err))
	}
}

func TestUpdateLocationWritesProvidedFields(t *testing.T) {
	store := newFakeStore()
	req := &repository.Request{ID: uuid.New()}
	store.byID[req.ID] = req
	svc := newTestService(store)

	addr := "12 Pine St, Halifax, NS B3J 1A1"
	lat, lng := 44.6488, -63.5752
	err := svc.UpdateLocation(context.Background(), req.ID, transport.UpdateLocationRequest{
		ServiceAddress: &addr,
		Latitude:       &lat,
		Longitude:      &lng,
	})
	if err != nil {
		t.Fatalf("UpdateLocation() error = %v", err)
	}
	if len(store.locationUpdates) != 1 {
		t.Fatalf("len(locationUpdates) = %d, want 1", len(store.locationUpdates))
	}
	got := store.locationUpdates[0]
	if got.ServiceAddress == nil || *got.ServiceAddress != addr {
		t.Errorf("ServiceAddress not written")
	}
	if got.GeocodedAddress != nil {
		t.Errorf("GeocodedAddress written without input")
	}
}
