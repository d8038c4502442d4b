// Package transport defines the wire-level DTOs for the quotes module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// QuoteStatus defines the status of a quote.
type QuoteStatus string

const (
	QuoteStatusSent     QuoteStatus = "sent"
	QuoteStatusAccepted QuoteStatus = "accepted"
	QuoteStatusRejected QuoteStatus = "rejected"
	QuoteStatusExpired  QuoteStatus = "expired"
)

// CreateQuoteRequest is the request body for sending a quote. The target
// request comes from the URL.
type CreateQuoteRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required,min=1"`
	Details     string `json:"details"`
}

// QuoteResponse is the API representation of a quote.
type QuoteResponse struct {
	ID          uuid.UUID `json:"id"`
	RequestID   uuid.UUID `json:"request_id"`
	UserID      uuid.UUID `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Details     *string   `json:"details"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}
