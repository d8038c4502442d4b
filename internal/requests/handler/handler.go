// Package handler exposes the quote request HTTP endpoints.
package handler

import (
	"net/http"

	"plumbing_portal_backend/internal/requests/intake"
	"plumbing_portal_backend/internal/requests/service"
	"plumbing_portal_backend/internal/requests/transport"
	"plumbing_portal_backend/platform/httpkit"
	"plumbing_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles the public quote form endpoints.
type Handler struct {
	svc    *service.Service
	intake *intake.Orchestrator
	val    *validator.Validator
}

// New creates a new requests handler.
func New(svc *service.Service, orchestrator *intake.Orchestrator, val *validator.Validator) *Handler {
	return &Handler{svc: svc, intake: orchestrator, val: val}
}

// RegisterRoutes registers the public quote form routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/request", h.FollowUp)
	rg.POST("/submit-quote", h.Submit)
}

// FollowUp asks the intake orchestrator for additional clarifying questions.
func (h *Handler) FollowUp(c *gin.Context) {
	var req transport.FollowUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if req.ClarifyingAnswers == nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "clarifyingAnswers must be an array")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	questions, err := h.intake.FollowUpQuestions(c.Request.Context(), req.ClarifyingAnswers, req.Category, req.ProblemDescription)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FollowUpResponse{AdditionalQuestions: questions})
}

// Submit accepts a completed intake payload and creates the quote request.
func (h *Handler) Submit(c *gin.Context) {
	var req transport.SubmitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if req.ClarifyingAnswers == nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, "clarifyingAnswers must be an array")
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var userID *uuid.UUID
	if id := httpkit.GetIdentity(c); id.IsAuthenticated() {
		uid := id.UserID()
		userID = &uid
	}

	created, err := h.svc.Submit(c.Request.Context(), req, userID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, transport.SubmitQuoteResponse{
		Message: "Quote request submitted successfully.",
		Request: ToRequestResponse(created),
	})
}
