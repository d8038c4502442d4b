package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plumbing_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Quote is the database model for a quote sent against a request.
type Quote struct {
	ID          uuid.UUID `db:"id"`
	RequestID   uuid.UUID `db:"request_id"`
	UserID      uuid.UUID `db:"user_id"`
	AmountCents int64     `db:"quote_amount_cents"`
	Details     *string   `db:"details"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

const quoteNotFoundMsg = "quote not found"

// Repository provides database operations for quotes.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RequestSnapshot captures the quoted request's state before the update,
// for event payloads and customer notifications.
type RequestSnapshot struct {
	OldStatus    string
	CustomerName *string
	ContactInfo  *string
}

// CreateAndMarkQuoted inserts a quote and moves its request to "quoted" in a
// single transaction. Returns a snapshot of the request as it was.
func (r *Repository) CreateAndMarkQuoted(ctx context.Context, quote *Quote) (*RequestSnapshot, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	insert := `
		INSERT INTO quotes (id, request_id, user_id, quote_amount_cents, details, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := tx.Exec(ctx, insert,
		quote.ID, quote.RequestID, quote.UserID, quote.AmountCents,
		quote.Details, quote.Status, quote.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to insert quote: %w", err)
	}

	var snap RequestSnapshot
	update := `
		UPDATE requests r SET status = 'quoted'
		FROM (SELECT status FROM requests WHERE id = $1 FOR UPDATE) old
		WHERE r.id = $1
		RETURNING old.status, r.customer_name, r.contact_info`

	if err := tx.QueryRow(ctx, update, quote.RequestID).Scan(&snap.OldStatus, &snap.CustomerName, &snap.ContactInfo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("request not found")
		}
		return nil, fmt.Errorf("failed to mark request quoted: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit quote: %w", err)
	}

	return &snap, nil
}

// GetByID fetches a single quote.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Quote, error) {
	query := `
		SELECT id, request_id, user_id, quote_amount_cents, details, status, created_at
		FROM quotes WHERE id = $1`

	var q Quote
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&q.ID, &q.RequestID, &q.UserID, &q.AmountCents, &q.Details, &q.Status, &q.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	return &q, nil
}

// ListByRequest returns every quote sent for a request, newest first. Many
// quotes per request are allowed.
func (r *Repository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Quote, error) {
	query := `
		SELECT id, request_id, user_id, quote_amount_cents, details, status, created_at
		FROM quotes WHERE request_id = $1
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]Quote, 0)
	for rows.Next() {
		var q Quote
		if err := rows.Scan(&q.ID, &q.RequestID, &q.UserID, &q.AmountCents, &q.Details, &q.Status, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}

	return quotes, nil
}
