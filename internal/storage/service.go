package storage

import (
	"context"
	"io"
	"time"

	"plumbing_portal_backend/internal/events"
	requestrepo "plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

// RequestStore is the slice of the requests repository attachment
// ownership checks need.
type RequestStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*requestrepo.Request, error)
}

// AttachmentStore persists attachment metadata.
type AttachmentStore interface {
	Insert(ctx context.Context, att *Attachment) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Attachment, error)
}

// Service handles attachment uploads and admin downloads.
type Service struct {
	objects     ObjectStore
	attachments AttachmentStore
	requests    RequestStore
	eventBus    events.Bus
	log         *logger.Logger
}

// NewService creates an attachments service.
func NewService(objects ObjectStore, attachments AttachmentStore, requests RequestStore, eventBus events.Bus, log *logger.Logger) *Service {
	return &Service{
		objects:     objects,
		attachments: attachments,
		requests:    requests,
		eventBus:    eventBus,
		log:         log,
	}
}

// UploadInput carries one customer upload.
type UploadInput struct {
	RequestID   uuid.UUID
	UserID      uuid.UUID
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Upload stores a file for a quote request. Only the customer who submitted
// the request may attach files to it.
func (s *Service) Upload(ctx context.Context, input UploadInput) (*Attachment, error) {
	if err := ValidateContentType(input.ContentType); err != nil {
		return nil, err
	}
	if input.Size <= 0 {
		return nil, apperr.Validation("file size must be greater than 0")
	}
	if max := s.objects.MaxFileSize(); max > 0 && input.Size > max {
		return nil, apperr.Validation("file exceeds the maximum allowed size")
	}

	req, err := s.requests.GetByID(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}
	if req.UserID == nil || *req.UserID != input.UserID {
		return nil, apperr.Forbidden("Forbidden: You do not own this quote request.")
	}

	key := ObjectKey(input.RequestID.String(), input.FileName)
	if err := s.objects.Upload(ctx, key, input.ContentType, input.Reader, input.Size); err != nil {
		return nil, err
	}

	att := &Attachment{
		ID:        uuid.New(),
		RequestID: input.RequestID,
		FileName:  input.FileName,
		MimeType:  input.ContentType,
		FileKey:   key,
		FileURL:   s.objects.PublicURL(key),
		SizeBytes: input.Size,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.attachments.Insert(ctx, att); err != nil {
		return nil, err
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.AttachmentUploaded{
			BaseEvent:    events.NewBaseEvent(),
			RequestID:    input.RequestID,
			AttachmentID: att.ID,
			FileName:     att.FileName,
			FileKey:      att.FileKey,
			ContentType:  att.MimeType,
			SizeBytes:    att.SizeBytes,
		})
	}

	return att, nil
}

// Download streams a stored object. Callers must close the reader. Role
// checks happen at the transport layer; this is an admin-only operation.
func (s *Service) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.objects.Download(ctx, key)
}

// ListForRequest returns attachment metadata for a request.
func (s *Service) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]Attachment, error) {
	return s.attachments.ListByRequest(ctx, requestID)
}
