package handler

import (
	"net/http"
	"strconv"

	"plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/internal/requests/service"
	"plumbing_portal_backend/internal/requests/transport"
	"plumbing_portal_backend/platform/httpkit"
	"plumbing_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StaffHandler handles the authenticated staff dashboard endpoints.
type StaffHandler struct {
	svc *service.Service
	val *validator.Validator
}

// NewStaffHandler creates a new staff requests handler.
func NewStaffHandler(svc *service.Service, val *validator.Validator) *StaffHandler {
	return &StaffHandler{svc: svc, val: val}
}

// RegisterRoutes registers the staff request routes.
func (h *StaffHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.PATCH("/:id/status", h.UpdateStatus)
	rg.PATCH("/:id/location", h.UpdateLocation)
	rg.POST("/:id/notes", h.AddNote)
	rg.GET("/:id/notes", h.ListNotes)
}

// List returns a page of quote requests, newest first.
func (h *StaffHandler) List(c *gin.Context) {
	params := repository.ListParams{
		Search: c.Query("search"),
	}
	if status := c.Query("status"); status != "" {
		params.Status = &status
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		params.Page = page
	}
	if pageSize, err := strconv.Atoi(c.Query("pageSize")); err == nil {
		params.PageSize = pageSize
	}

	result, err := h.svc.List(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.RequestResponse, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, ToRequestResponse(&result.Items[i]))
	}

	httpkit.OK(c, transport.ListRequestsResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	})
}

// GetByID returns a single quote request.
func (h *StaffHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	req, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, ToRequestResponse(req))
}

// UpdateStatus moves a request to a new lifecycle status.
func (h *StaffHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateStatusRequest
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

	if err := h.svc.UpdateStatus(c.Request.Context(), id, req.Status, identity.UserID()); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"status": req.Status})
}

// UpdateLocation corrects a request's address or coordinate fields.
func (h *StaffHandler) UpdateLocation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	if err := h.svc.UpdateLocation(c.Request.Context(), id, req); httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{"message": "Location updated."})
}

// AddNote stores a staff note against a request.
func (h *StaffHandler) AddNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	var req transport.AddNoteRequest
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

	authorRole := "customer"
	if identity.HasRole("admin") {
		authorRole = "admin"
	}

	note, err := h.svc.AddNote(c.Request.Context(), id, identity.UserID(), authorRole, req.Note)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, toNoteResponse(note))
}

// ListNotes returns the notes for a request, oldest first.
func (h *StaffHandler) ListNotes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	notes, err := h.svc.ListNotes(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.NoteResponse, 0, len(notes))
	for i := range notes {
		out = append(out, toNoteResponse(&notes[i]))
	}

	httpkit.OK(c, out)
}

// ToRequestResponse maps the database model to the API representation.
func ToRequestResponse(req *repository.Request) transport.RequestResponse {
	answers := make([]transport.ClarifyingAnswer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, transport.ClarifyingAnswer{Question: a.Question, Answer: a.Answer})
	}

	return transport.RequestResponse{
		ID:                 req.ID,
		UserID:             req.UserID,
		CustomerName:       req.CustomerName,
		ServiceAddress:     req.ServiceAddress,
		ContactInfo:        req.ContactInfo,
		ProblemCategory:    req.ProblemCategory,
		IsEmergency:        req.IsEmergency,
		PropertyType:       req.PropertyType,
		IsHomeowner:        req.IsHomeowner,
		ProblemDescription: req.ProblemDescription,
		PreferredTiming:    req.PreferredTiming,
		AdditionalNotes:    req.AdditionalNotes,
		Answers:            answers,
		Status:             req.Status,
		TriageSummary:      req.TriageSummary,
		PriorityScore:      req.PriorityScore,
		Latitude:           req.Latitude,
		Longitude:          req.Longitude,
		GeocodedAddress:    req.GeocodedAddress,
		CreatedAt:          req.CreatedAt,
	}
}

func toNoteResponse(n *repository.Note) transport.NoteResponse {
	return transport.NoteResponse{
		ID:         n.ID,
		RequestID:  n.RequestID,
		AuthorID:   n.AuthorID,
		AuthorRole: n.AuthorRole,
		Note:       n.Note,
		CreatedAt:  n.CreatedAt,
	}
}
