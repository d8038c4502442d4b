// Package geocode resolves service addresses to coordinates via the Google
// Maps Geocoding API and writes them back onto quote requests.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"
)

const geocodingURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Location is a resolved coordinate pair with the canonical address.
type Location struct {
	Latitude         float64
	Longitude        float64
	FormattedAddress string
}

// Geocoder resolves a free-text address. The Google Maps client implements
// it; tests substitute fixtures.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (*Location, error)
}

// Client calls the Google Maps Geocoding API.
type Client struct {
	apiKey     string
	httpClient *http.Client
	log        *logger.Logger
}

// NewClient creates a Google Maps geocoding client.
func NewClient(apiKey string, log *logger.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves an address to coordinates. A non-OK API status maps to a
// bad request: the address, not the upstream, is usually at fault.
func (c *Client) Geocode(ctx context.Context, address string) (*Location, error) {
	params := url.Values{}
	params.Add("address", address)
	params.Add("key", c.apiKey)

	reqURL := fmt.Sprintf("%s?%s", geocodingURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.UpstreamError("google_maps", "geocode", err)
		return nil, apperr.Wrap(apperr.KindUpstream, "geocoding request failed", err)
	}
	defer resp.Body.Close()

	var data geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		c.log.UpstreamError("google_maps", "geocode_decode", err)
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to decode geocoding response", err)
	}

	if data.Status != "OK" || len(data.Results) == 0 {
		return nil, apperr.BadRequest(fmt.Sprintf("Geocoding failed: %s", data.Status))
	}

	result := data.Results[0]
	return &Location{
		Latitude:         result.Geometry.Location.Lat,
		Longitude:        result.Geometry.Location.Lng,
		FormattedAddress: result.FormattedAddress,
	}, nil
}
