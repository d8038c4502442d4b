// Package handler exposes the staff quoting endpoints.
package handler

import (
	"net/http"

	"plumbing_portal_backend/internal/quotes/repository"
	"plumbing_portal_backend/internal/quotes/service"
	"plumbing_portal_backend/internal/quotes/transport"
	"plumbing_portal_backend/platform/httpkit"
	"plumbing_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for quotes.
type Handler struct {
	svc *service.Service
	val *validator.Validator
}

// New creates a new quotes handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers the quote routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetByID)
}

// Create sends a quote for the request named in the URL.
func (h *Handler) Create(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	quote, err := h.svc.Create(c.Request.Context(), requestID, req, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, toQuoteResponse(quote))
}

// GetByID returns a single quote.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	quote, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, toQuoteResponse(quote))
}

// ListForRequest returns every quote sent for a request.
func (h *Handler) ListForRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	quotes, err := h.svc.ListByRequest(c.Request.Context(), requestID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.QuoteResponse, 0, len(quotes))
	for i := range quotes {
		out = append(out, toQuoteResponse(&quotes[i]))
	}

	httpkit.OK(c, out)
}

func toQuoteResponse(q *repository.Quote) transport.QuoteResponse {
	return transport.QuoteResponse{
		ID:          q.ID,
		RequestID:   q.RequestID,
		UserID:      q.UserID,
		AmountCents: q.AmountCents,
		Details:     q.Details,
		Status:      q.Status,
		CreatedAt:   q.CreatedAt,
	}
}
