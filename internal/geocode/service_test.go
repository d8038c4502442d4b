package geocode

import (
	"context"
	"testing"

	"plumbing_portal_backend/internal/profiles"
	requestrepo "plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeGeocoder struct {
	location *Location
	err      error
	asked    []string
}

func (f *fakeGeocoder) Geocode(ctx context.Context, address string) (*Location, error) {
	f.asked = append(f.asked, address)
	if f.err != nil {
		return nil, f.err
	}
	return f.location, nil
}

type fakeRequestStore struct {
	requests map[uuid.UUID]*requestrepo.Request
	saved    map[uuid.UUID]*Location
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{
		requests: make(map[uuid.UUID]*requestrepo.Request),
		saved:    make(map[uuid.UUID]*Location),
	}
}

func (f *fakeRequestStore) GetByID(ctx context.Context, id uuid.UUID) (*requestrepo.Request, error) {
	if req, ok := f.requests[id]; ok {
		return req, nil
	}
	return nil, apperr.NotFound("request not found")
}

func (f *fakeRequestStore) SaveGeocode(ctx context.Context, id uuid.UUID, lat, lng float64, formattedAddress string) error {
	f.saved[id] = &Location{Latitude: lat, Longitude: lng, FormattedAddress: formattedAddress}
	return nil
}

func (f *fakeRequestStore) ListWithoutCoordinates(ctx context.Context, limit int) ([]requestrepo.Request, error) {
	var out []requestrepo.Request
	for _, req := range f.requests {
		if req.Latitude == nil && req.ServiceAddress != nil {
			out = append(out, *req)
		}
	}
	return out, nil
}

func TestGeocodeRequestWritesBack(t *testing.T) {
	store := newFakeRequestStore()
	id := uuid.New()
	address := "1 A St, X, BC V1V1V1"
	store.requests[id] = &requestrepo.Request{ID: id, ServiceAddress: &address}

	geocoder := &fakeGeocoder{location: &Location{
		Latitude:         48.4284,
		Longitude:        -123.3656,
		FormattedAddress: "1 A St, Victoria, BC V1V 1V1, Canada",
	}}

	svc := NewService(geocoder, store, logger.New("test"))

	location, err := svc.GeocodeRequest(context.Background(), id)
	if err != nil {
		t.Fatalf("GeocodeRequest() error = %v", err)
	}

	if len(geocoder.asked) != 1 || geocoder.asked[0] != address {
		t.Fatalf("geocoder asked %v, want [%q]", geocoder.asked, address)
	}

	saved, ok := store.saved[id]
	if !ok {
		t.Fatal("coordinates were not written back")
	}
	if saved.Latitude != location.Latitude || saved.FormattedAddress != location.FormattedAddress {
		t.Fatalf("saved %+v, returned %+v", saved, location)
	}
}

func TestGeocodeRequestWithoutAddress(t *testing.T) {
	store := newFakeRequestStore()
	id := uuid.New()
	store.requests[id] = &requestrepo.Request{ID: id}

	svc := NewService(&fakeGeocoder{}, store, logger.New("test"))

	_, err := svc.GeocodeRequest(context.Background(), id)
	if err == nil {
		t.Fatal("GeocodeRequest() error = nil, want bad request")
	}
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("GeocodeRequest() error kind = %v, want KindBadRequest", apperr.GetKind(err))
	}
}

func TestGeocodeRequestUnknownID(t *testing.T) {
	svc := NewService(&fakeGeocoder{}, newFakeRequestStore(), logger.New("test"))

	_, err := svc.GeocodeRequest(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("GeocodeRequest() error = %v, want not found", err)
	}
}

func TestGeocodeAddressRequiresInput(t *testing.T) {
	svc := NewService(&fakeGeocoder{}, newFakeRequestStore(), logger.New("test"))

	_, err := svc.GeocodeAddress(context.Background(), "   ")
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("GeocodeAddress() error = %v, want bad request", err)
	}
}

func TestBackfillSkipsFailures(t *testing.T) {
	store := newFakeRequestStore()
	good, bad := uuid.New(), uuid.New()
	goodAddr, badAddr := "1 A St, X, BC V1V1V1", "nowhere"
	store.requests[good] = &requestrepo.Request{ID: good, ServiceAddress: &goodAddr}
	store.requests[bad] = &requestrepo.Request{ID: bad, ServiceAddress: &badAddr}

	geocoder := &selectiveGeocoder{
		ok:       goodAddr,
		location: &Location{Latitude: 1, Longitude: 2, FormattedAddress: "resolved"},
	}

	svc := NewService(geocoder, store, logger.New("test"))

	updated, err := svc.Backfill(context.Background(), 10)
	if err != nil {
		t.Fatalf("Backfill() error = %v", err)
	}
	if updated != 1 {
		t.Fatalf("Backfill() updated = %d, want 1", updated)
	}
	if _, ok := store.saved[good]; !ok {
		t.Fatal("good request was not geocoded")
	}
	if _, ok := store.saved[bad]; ok {
		t.Fatal("failed request should not be written back")
	}
}

type selectiveGeocoder struct {
	ok       string
	location *Location
}

func (s *selectiveGeocoder) Geocode(ctx context.Context, address string) (*Location, error) {
	if address == s.ok {
		return s.location, nil
	}
	return nil, apperr.BadRequest("Geocoding failed: ZERO_RESULTS")
}

type fakeProfileStore struct {
	profiles map[uuid.UUID]*profiles.Profile
	saved    map[uuid.UUID]*Location
}

func newFakeProfileStore() *fakeProfileStore {
	return &fakeProfileStore{
		profiles: make(map[uuid.UUID]*profiles.Profile),
		saved:    make(map[uuid.UUID]*Location),
	}
}

func (f *fakeProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*profiles.Profile, error) {
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return nil, apperr.NotFound("Profile not found")
}

func (f *fakeProfileStore) SaveGeocode(ctx context.Context, id uuid.UUID, lat, lng float64, formattedAddress string) error {
	f.saved[id] = &Location{Latitude: lat, Longitude: lng, FormattedAddress: formattedAddress}
	return nil
}

func TestGeocodeProfileWritesBack(t *testing.T) {
	geocoder := &fakeGeocoder{location: &Location{Latitude: 44.6, Longitude: -63.6, FormattedAddress: "12 Pine St, Halifax, NS B3J 1A1, Canada"}}
	profileStore := newFakeProfileStore()
	svc := NewService(geocoder, newFakeRequestStore(), logger.New("test"))
	svc.SetProfileStore(profileStore)

	addr, city, prov, postal := "12 Pine St", "Halifax", "NS", "B3J 1A1"
	profileID := uuid.New()
	profileStore.profiles[profileID] = &profiles.Profile{
		ID:         profileID,
		Address:    &addr,
		City:       &city,
		Province:   &prov,
		PostalCode: &postal,
	}

	location, err := svc.GeocodeProfile(context.Background(), profileID)
	if err != nil {
		t.Fatalf("GeocodeProfile() error = %v", err)
	}
	if location.Latitude != 44.6 {
		t.Errorf("Latitude = %v", location.Latitude)
	}
	if len(geocoder.asked) != 1 || geocoder.asked[0] != "12 Pine St, Halifax, NS B3J 1A1" {
		t.Errorf("asked = %v", geocoder.asked)
	}
	if profileStore.saved[profileID] == nil {
		t.Fatal("coordinates not written back to the profile")
	}
}

func TestGeocodeProfileWithoutAddress(t *testing.T) {
	svc := NewService(&fakeGeocoder{}, newFakeRequestStore(), logger.New("test"))
	profileStore := newFakeProfileStore()
	svc.SetProfileStore(profileStore)

	profileID := uuid.New()
	profileStore.profiles[profileID] = &profiles.Profile{ID: profileID}

	_, err := svc.GeocodeProfile(context.Background(), profileID)
	if err == nil {
		t.Fatal("GeocodeProfile() error = nil, want bad request")
	}
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("error kind = %v, want KindBadRequest", apperr.GetKind(err))
	}
}

func TestGeocodeProfileUnknownID(t *testing.T) {
	svc := NewService(&fakeGeocoder{}, newFakeRequestStore(), logger.New("test"))
	svc.SetProfileStore(newFakeProfileStore())

	_, err := svc.GeocodeProfile(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("error = %v, want not found", err)
	}
}
