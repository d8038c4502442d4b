package storage

import (
	"context"
	"time"

	"plumbing_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Attachment is the database model for a file attached to a quote request.
type Attachment struct {
	ID        uuid.UUID `db:"id"`
	RequestID uuid.UUID `db:"request_id"`
	FileName  string    `db:"file_name"`
	MimeType  string    `db:"mime_type"`
	FileKey   string    `db:"file_key"`
	FileURL   string    `db:"file_url"`
	SizeBytes int64     `db:"size_bytes"`
	CreatedAt time.Time `db:"created_at"`
}

// Repository persists attachment metadata.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an attachments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores attachment metadata for an uploaded object.
func (r *Repository) Insert(ctx context.Context, att *Attachment) error {
	const query = `
		INSERT INTO quote_attachments (id, request_id, file_name, mime_type, file_key, file_url, size_bytes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		att.ID, att.RequestID, att.FileName, att.MimeType, att.FileKey, att.FileURL, att.SizeBytes, att.CreatedAt)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to insert attachment", err).WithOp("storage.Insert")
	}
	return nil
}

// ListByRequest returns all attachments for a request, oldest first.
func (r *Repository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Attachment, error) {
	const query = `
		SELECT id, request_id, file_name, mime_type, file_key, file_url, size_bytes, created_at
		FROM quote_attachments
		WHERE request_id = $1
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, requestID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list attachments", err).WithOp("storage.ListByRequest")
	}
	defer rows.Close()

	var attachments []Attachment
	for rows.Next() {
		var att Attachment
		if err := rows.Scan(&att.ID, &att.RequestID, &att.FileName, &att.MimeType, &att.FileKey, &att.FileURL, &att.SizeBytes, &att.CreatedAt); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan attachment", err).WithOp("storage.ListByRequest")
		}
		attachments = append(attachments, att)
	}
	return attachments, rows.Err()
}
