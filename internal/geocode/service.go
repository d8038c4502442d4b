package geocode

import (
	"context"
	"strings"

	"plumbing_portal_backend/internal/events"
	"plumbing_portal_backend/internal/profiles"
	requestrepo "plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// RequestStore is the slice of the requests repository geocoding needs.
type RequestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*requestrepo.Request, error)
	SaveGeocode(ctx context.Context, id uuid.UUID, lat, lng float64, formattedAddress string) error
	ListWithoutCoordinates(ctx context.Context, limit int) ([]requestrepo.Request, error)
}

// ProfileStore is the slice of the profiles repository geocoding needs.
type ProfileStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profiles.Profile, error)
	SaveGeocode(ctx context.Context, id uuid.UUID, lat, lng float64, formattedAddress string) error
}

// Service resolves addresses and writes coordinates back onto requests and
// profiles.
type Service struct {
	geocoder Geocoder
	store    RequestStore
	profiles ProfileStore
	log      *logger.Logger
	eventBus events.Bus
}

// NewService creates a geocode service.
func NewService(geocoder Geocoder, store RequestStore, log *logger.Logger) *Service {
	return &Service{geocoder: geocoder, store: store, log: log}
}

// SetEventBus wires the domain event bus.
func (s *Service) SetEventBus(bus events.Bus) {
	s.eventBus = bus
}

// SetProfileStore enables profile geocoding. Optional; without it profile
// lookups report not found.
func (s *Service) SetProfileStore(store ProfileStore) {
	s.profiles = store
}

// GeocodeAddress resolves a free-text address without touching any record.
func (s *Service) GeocodeAddress(ctx context.Context, address string) (*Location, error) {
	if strings.TrimSpace(address) == "" {
		return nil, apperr.BadRequest("address is required")
	}
	return s.geocoder.Geocode(ctx, address)
}

// GeocodeRequest resolves a request's service address and stores the
// coordinates on it.
func (s *Service) GeocodeRequest(ctx context.Context, requestID uuid.UUID) (*Location, error) {
	req, err := s.store.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.ServiceAddress == nil || strings.TrimSpace(*req.ServiceAddress) == "" {
		return nil, apperr.BadRequest("No address found to geocode")
	}

	location, err := s.geocoder.Geocode(ctx, *req.ServiceAddress)
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveGeocode(ctx, requestID, location.Latitude, location.Longitude, location.FormattedAddress); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.RequestGeocoded{
			BaseEvent:       events.NewBaseEvent(),
			RequestID:       requestID,
			Latitude:        location.Latitude,
			Longitude:       location.Longitude,
			GeocodedAddress: location.FormattedAddress,
		})
	}

	return location, nil
}

// GeocodeProfile resolves a profile's address and stores the coordinates on
// it.
func (s *Service) GeocodeProfile(ctx context.Context, profileID uuid.UUID) (*Location, error) {
	if s.profiles == nil {
		return nil, apperr.NotFound("Profile not found")
	}

	profile, err := s.profiles.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	address := profile.FullAddress()
	if strings.TrimSpace(address) == "" {
		return nil, apperr.BadRequest("No address found to geocode")
	}

	location, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		return nil, err
	}

	if err := s.profiles.SaveGeocode(ctx, profileID, location.Latitude, location.Longitude, location.FormattedAddress); err != nil {
		return nil, err
	}

	return location, nil
}

// RegisterSubscribers makes submitted requests geocode themselves in the
// background.
func (s *Service) RegisterSubscribers(bus events.Bus) {
	bus.Subscribe(events.RequestSubmitted{}.EventName(), func(ctx context.Context, event events.Event) error {
		submitted, ok := event.(events.RequestSubmitted)
		if !ok {
			return nil
		}
		if submitted.ServiceAddress == "" {
			return nil
		}

		if _, err := s.GeocodeRequest(ctx, submitted.RequestID); err != nil {
			// Best effort; the backfill catches anything that failed here.
			s.log.Warn("geocode on submit failed", "requestId", submitted.RequestID, "error", err)
		}
		return nil
	})
}

// Backfill geocodes stored requests that have an address but no coordinates.
// Returns the number of requests updated.
func (s *Service) Backfill(ctx context.Context, batchSize int) (int, error) {
	requests, err := s.store.ListWithoutCoordinates(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, req := range requests {
		if ctx.Err() != nil {
			return updated, ctx.Err()
		}
		if _, err := s.GeocodeRequest(ctx, req.ID); err != nil {
			s.log.Warn("backfill geocode failed", "requestId", req.ID, "error", err)
			continue
		}
		updated++
	}

	return updated, nil
}
