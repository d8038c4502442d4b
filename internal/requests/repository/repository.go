package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"plumbing_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ── Domain Models ─────────────────────────────────────────────────────────────

// Answer is one stored question/answer pair from the intake flow.
type Answer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Request is the database model for a quote request.
type Request struct {
	ID                 uuid.UUID  `db:"id"`
	UserID             *uuid.UUID `db:"user_id"`
	CustomerName       *string    `db:"customer_name"`
	ServiceAddress     *string    `db:"service_address"`
	ContactInfo        *string    `db:"contact_info"`
	ProblemCategory    string     `db:"problem_category"`
	IsEmergency        bool       `db:"is_emergency"`
	PropertyType       *string    `db:"property_type"`
	IsHomeowner        bool       `db:"is_homeowner"`
	ProblemDescription *string    `db:"problem_description"`
	PreferredTiming    *string    `db:"preferred_timing"`
	AdditionalNotes    *string    `db:"additional_notes"`
	Answers            []Answer   `db:"answers"`
	Status             string     `db:"status"`
	TriageSummary      *string    `db:"triage_summary"`
	PriorityScore      *int       `db:"priority_score"`
	Latitude           *float64   `db:"latitude"`
	Longitude          *float64   `db:"longitude"`
	GeocodedAddress    *string    `db:"geocoded_address"`
	CreatedAt          time.Time  `db:"created_at"`
}

// Note is the database model for a staff note on a request.
type Note struct {
	ID         uuid.UUID `db:"id"`
	RequestID  uuid.UUID `db:"request_id"`
	AuthorID   uuid.UUID `db:"author_id"`
	AuthorRole string    `db:"author_role"`
	Note       string    `db:"note"`
	CreatedAt  time.Time `db:"created_at"`
}

// ListParams contains parameters for listing quote requests.
type ListParams struct {
	Status   *string
	Search   string
	Page     int
	PageSize int
}

// ListResult contains the paginated result of listing quote requests.
type ListResult struct {
	Items      []Request
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ── Repository ────────────────────────────────────────────────────────────────

const requestNotFoundMsg = "request not found"

const requestColumns = `
	id, user_id, customer_name, service_address, contact_info,
	problem_category, is_emergency, property_type, is_homeowner,
	problem_description, preferred_timing, additional_notes,
	answers, status, triage_summary, priority_score,
	latitude, longitude, geocoded_address, created_at`

// Repository provides database operations for quote requests.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new requests repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new quote request.
func (r *Repository) Insert(ctx context.Context, req *Request) error {
	answersJSON, err := json.Marshal(req.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	query := `
		INSERT INTO requests (
			id, user_id, customer_name, service_address, contact_info,
			problem_category, is_emergency, property_type, is_homeowner,
			problem_description, preferred_timing, additional_notes,
			answers, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	if _, err := r.pool.Exec(ctx, query,
		req.ID, req.UserID, req.CustomerName, req.ServiceAddress, req.ContactInfo,
		req.ProblemCategory, req.IsEmergency, req.PropertyType, req.IsHomeowner,
		req.ProblemDescription, req.PreferredTiming, req.AdditionalNotes,
		answersJSON, req.Status, req.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}

	return nil
}

// GetByID fetches a single request by its identity.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(requestNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get request: %w", err)
	}

	return req, nil
}

// List returns a page of requests, newest first, optionally filtered by
// status or a case-insensitive search over customer fields.
func (r *Repository) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 100 {
		params.PageSize = 25
	}

	where := ` WHERE 1=1`
	args := []interface{}{}
	argPos := 1

	if params.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *params.Status)
		argPos++
	}
	if params.Search != "" {
		where += fmt.Sprintf(" AND (customer_name ILIKE $%d OR contact_info ILIKE $%d OR service_address ILIKE $%d)", argPos, argPos, argPos)
		args = append(args, "%"+params.Search+"%")
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM requests`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	query := `SELECT ` + requestColumns + ` FROM requests` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list requests: %w", err)
	}
	defer rows.Close()

	items := make([]Request, 0, params.PageSize)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		items = append(items, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// StatusChange reports the outcome of a status update together with the
// customer contact details notification subscribers need.
type StatusChange struct {
	OldStatus    string
	CustomerName *string
	ContactInfo  *string
}

// UpdateStatus sets a request's lifecycle status and returns the previous one
// along with the customer contact snapshot.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*StatusChange, error) {
	var change StatusChange
	query := `
		UPDATE requests r SET status = $2
		FROM (SELECT status FROM requests WHERE id = $1 FOR UPDATE) old
		WHERE r.id = $1
		RETURNING old.status, r.customer_name, r.contact_info`

	if err := r.pool.QueryRow(ctx, query, id, status).Scan(&change.OldStatus, &change.CustomerName, &change.ContactInfo); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(requestNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to update request status: %w", err)
	}

	return &change, nil
}

// LocationUpdate carries the location fields staff may correct on a request.
// Nil fields are left untouched.
type LocationUpdate struct {
	ServiceAddress  *string
	Latitude        *float64
	Longitude       *float64
	GeocodedAddress *string
}

// UpdateLocation updates a request's address and coordinate fields. Only the
// provided fields change; anything else on the row is off limits here.
func (r *Repository) UpdateLocation(ctx context.Context, id uuid.UUID, update LocationUpdate) error {
	sets := make([]string, 0, 4)
	args := []interface{}{id}

	appendSet := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.ServiceAddress != nil {
		appendSet("service_address", *update.ServiceAddress)
	}
	if update.Latitude != nil {
		appendSet("latitude", *update.Latitude)
	}
	if update.Longitude != nil {
		appendSet("longitude", *update.Longitude)
	}
	if update.GeocodedAddress != nil {
		appendSet("geocoded_address", *update.GeocodedAddress)
	}

	if len(sets) == 0 {
		return apperr.Validation("no location fields to update")
	}

	query := `UPDATE requests SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update request location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(requestNotFoundMsg)
	}
	return nil
}

// SaveTriage stores the triage summary and priority score on a request.
func (r *Repository) SaveTriage(ctx context.Context, id uuid.UUID, summary string, priorityScore int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE requests SET triage_summary = $2, priority_score = $3 WHERE id = $1`,
		id, summary, priorityScore,
	)
	if err != nil {
		return fmt.Errorf("failed to save triage result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(requestNotFoundMsg)
	}
	return nil
}

// SaveGeocode stores resolved coordinates on a request.
func (r *Repository) SaveGeocode(ctx context.Context, id uuid.UUID, lat, lng float64, formattedAddress string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE requests SET latitude = $2, longitude = $3, geocoded_address = $4 WHERE id = $1`,
		id, lat, lng, formattedAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to save geocode result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(requestNotFoundMsg)
	}
	return nil
}

// ListWithoutCoordinates returns requests that have a service address but no
// resolved coordinates yet. Used by the geocode backfill.
func (r *Repository) ListWithoutCoordinates(ctx context.Context, limit int) ([]Request, error) {
	if limit < 1 {
		limit = 100
	}
	query := `SELECT ` + requestColumns + `
		FROM requests
		WHERE service_address IS NOT NULL AND latitude IS NULL
		ORDER BY created_at ASC
		LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ungeocoded requests: %w", err)
	}
	defer rows.Close()

	var items []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		items = append(items, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}

	return items, nil
}

// ListStaleWithStatus returns requests still in the given status created
// before the cutoff. Used by the follow-up scheduler.
func (r *Repository) ListStaleWithStatus(ctx context.Context, status string, cutoff time.Time, limit int) ([]Request, error) {
	if limit < 1 {
		limit = 100
	}
	query := `SELECT ` + requestColumns + `
		FROM requests
		WHERE status = $1 AND created_at < $2
		ORDER BY created_at ASC
		LIMIT $3`

	rows, err := r.pool.Query(ctx, query, status, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale requests: %w", err)
	}
	defer rows.Close()

	var items []Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		items = append(items, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate requests: %w", err)
	}

	return items, nil
}

// AddNote stores a staff note against a request.
func (r *Repository) AddNote(ctx context.Context, note *Note) error {
	query := `
		INSERT INTO request_notes (id, request_id, author_id, author_role, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.pool.Exec(ctx, query,
		note.ID, note.RequestID, note.AuthorID, note.AuthorRole, note.Note, note.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	return nil
}

// ListNotes returns all notes for a request, oldest first.
func (r *Repository) ListNotes(ctx context.Context, requestID uuid.UUID) ([]Note, error) {
	query := `
		SELECT id, request_id, author_id, author_role, note, created_at
		FROM request_notes
		WHERE request_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := make([]Note, 0)
	for rows.Next() {
		var n Note
		if err := rows.Scan(&n.ID, &n.RequestID, &n.AuthorID, &n.AuthorRole, &n.Note, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notes: %w", err)
	}

	return notes, nil
}

// scanRequest reads one request row, decoding the answers JSONB column.
func scanRequest(row pgx.Row) (*Request, error) {
	var req Request
	var answersJSON []byte

	if err := row.Scan(
		&req.ID, &req.UserID, &req.CustomerName, &req.ServiceAddress, &req.ContactInfo,
		&req.ProblemCategory, &req.IsEmergency, &req.PropertyType, &req.IsHomeowner,
		&req.ProblemDescription, &req.PreferredTiming, &req.AdditionalNotes,
		&answersJSON, &req.Status, &req.TriageSummary, &req.PriorityScore,
		&req.Latitude, &req.Longitude, &req.GeocodedAddress, &req.CreatedAt,
	); err != nil {
		return nil, err
	}

	if len(answersJSON) > 0 {
		if err := json.Unmarshal(answersJSON, &req.Answers); err != nil {
			return nil, fmt.Errorf("failed to decode answers: %w", err)
		}
	}

	return &req, nil
}
