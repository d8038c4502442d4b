package geocode

import (
	"net/http"

	"plumbing_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GeocodeRequestBody accepts a raw address, a request id, or a profile id to
// resolve.
type GeocodeRequestBody struct {
	Address   string `json:"address"`
	RequestID string `json:"requestId"`
	ProfileID string `json:"profileId"`
}

// GeocodeResponseBody mirrors the resolved location.
type GeocodeResponseBody struct {
	Success          bool    `json:"success"`
	Latitude         float64 `json:"latitude,omitempty"`
	Longitude        float64 `json:"longitude,omitempty"`
	FormattedAddress string  `json:"formattedAddress,omitempty"`
	Error            string  `json:"error,omitempty"`
}

// Handler exposes the geocoding endpoint for staff.
type Handler struct {
	svc *Service
}

// NewHandler creates a geocode handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Geocode resolves an address or a stored request. When a request id is
// given the coordinates are written back onto the request.
func (h *Handler) Geocode(c *gin.Context) {
	var body GeocodeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, GeocodeResponseBody{Success: false, Error: "invalid request"})
		return
	}

	var location *Location
	var err error

	switch {
	case body.RequestID != "":
		id, parseErr := uuid.Parse(body.RequestID)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, GeocodeResponseBody{Success: false, Error: "invalid requestId"})
			return
		}
		location, err = h.svc.GeocodeRequest(c.Request.Context(), id)
	case body.ProfileID != "":
		id, parseErr := uuid.Parse(body.ProfileID)
		if parseErr != nil {
			c.JSON(http.StatusBadRequest, GeocodeResponseBody{Success: false, Error: "invalid profileId"})
			return
		}
		location, err = h.svc.GeocodeProfile(c.Request.Context(), id)
	case body.Address != "":
		location, err = h.svc.GeocodeAddress(c.Request.Context(), body.Address)
	default:
		c.JSON(http.StatusBadRequest, GeocodeResponseBody{Success: false, Error: "Either address, requestId, or profileId is required"})
		return
	}

	if err != nil {
		status := http.StatusInternalServerError
		if appErr, ok := err.(interface{ HTTPStatus() int }); ok {
			status = appErr.HTTPStatus()
		}
		c.JSON(status, GeocodeResponseBody{Success: false, Error: err.Error()})
		return
	}

	httpkit.OK(c, GeocodeResponseBody{
		Success:          true,
		Latitude:         location.Latitude,
		Longitude:        location.Longitude,
		FormattedAddress: location.FormattedAddress,
	})
}
