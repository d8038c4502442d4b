// Package transport defines the wire-level DTOs for the requests module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// RequestStatus defines the lifecycle status of a quote request.
type RequestStatus string

const (
	RequestStatusNew       RequestStatus = "new"
	RequestStatusViewed    RequestStatus = "viewed"
	RequestStatusQuoted    RequestStatus = "quoted"
	RequestStatusScheduled RequestStatus = "scheduled"
	RequestStatusCompleted RequestStatus = "completed"
)

// ValidStatuses lists every accepted lifecycle status.
var ValidStatuses = []RequestStatus{
	RequestStatusNew,
	RequestStatusViewed,
	RequestStatusQuoted,
	RequestStatusScheduled,
	RequestStatusCompleted,
}

// IsValidStatus reports whether s is a known lifecycle status.
func IsValidStatus(s string) bool {
	for _, status := range ValidStatuses {
		if string(status) == s {
			return true
		}
	}
	return false
}

// ClarifyingAnswer is one question/answer pair collected during intake.
type ClarifyingAnswer struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer"`
}

// ContactInfo holds the structured contact fields from the quote form.
type ContactInfo struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone"`
}

// ── Requests ──────────────────────────────────────────────────────────────────

// FollowUpRequest is the request body for the intake follow-up endpoint.
type FollowUpRequest struct {
	ClarifyingAnswers  []ClarifyingAnswer `json:"clarifyingAnswers" validate:"required,dive"`
	Category           string             `json:"category" validate:"required"`
	ProblemDescription string             `json:"problem_description"`
}

// SubmitQuoteRequest is the request body for submitting a completed intake.
type SubmitQuoteRequest struct {
	ClarifyingAnswers  []ClarifyingAnswer `json:"clarifyingAnswers" validate:"required,dive"`
	ContactInfo        *ContactInfo       `json:"contactInfo" validate:"required"`
	Category           string             `json:"category" validate:"required"`
	IsEmergency        interface{}        `json:"isEmergency"`
	PropertyType       string             `json:"property_type"`
	IsHomeowner        string             `json:"is_homeowner"`
	ProblemDescription string             `json:"problem_description"`
	PreferredTiming    string             `json:"preferred_timing"`
	AdditionalNotes    string             `json:"additional_notes"`
}

// UpdateStatusRequest is the request body for a staff status update.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AddNoteRequest is the request body for adding a staff note to a request.
type AddNoteRequest struct {
	Note string `json:"note" validate:"required,min=1,max=5000"`
}

// UpdateLocationRequest is the request body for correcting a request's
// address or coordinates. Omitted fields are left unchanged.
type UpdateLocationRequest struct {
	ServiceAddress  *string  `json:"service_address,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty" validate:"omitempty,min=-90,max=90"`
	Longitude       *float64 `json:"longitude,omitempty" validate:"omitempty,min=-180,max=180"`
	GeocodedAddress *string  `json:"geocoded_address,omitempty"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// FollowUpResponse carries the LLM-generated follow-up questions, if any.
type FollowUpResponse struct {
	AdditionalQuestions []string `json:"additionalQuestions"`
}

// RequestResponse is the API representation of a quote request.
type RequestResponse struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             *uuid.UUID         `json:"user_id,omitempty"`
	CustomerName       *string            `json:"customer_name"`
	ServiceAddress     *string            `json:"service_address"`
	ContactInfo        *string            `json:"contact_info"`
	ProblemCategory    string             `json:"problem_category"`
	IsEmergency        bool               `json:"is_emergency"`
	PropertyType       *string            `json:"property_type"`
	IsHomeowner        bool               `json:"is_homeowner"`
	ProblemDescription *string            `json:"problem_description"`
	PreferredTiming    *string            `json:"preferred_timing"`
	AdditionalNotes    *string            `json:"additional_notes"`
	Answers            []ClarifyingAnswer `json:"answers"`
	Status             string             `json:"status"`
	TriageSummary      *string            `json:"triage_summary,omitempty"`
	PriorityScore      *int               `json:"priority_score,omitempty"`
	Latitude           *float64           `json:"latitude,omitempty"`
	Longitude          *float64           `json:"longitude,omitempty"`
	GeocodedAddress    *string            `json:"geocoded_address,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// SubmitQuoteResponse confirms a successful submission.
type SubmitQuoteResponse struct {
	Message string          `json:"message"`
	Request RequestResponse `json:"request"`
}

// NoteResponse is the API representation of a staff note.
type NoteResponse struct {
	ID         uuid.UUID `json:"id"`
	RequestID  uuid.UUID `json:"request_id"`
	AuthorID   uuid.UUID `json:"author_id"`
	AuthorRole string    `json:"author_role"`
	Note       string    `json:"note"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListRequestsResponse is the paginated staff listing of quote requests.
type ListRequestsResponse struct {
	Items      []RequestResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}
