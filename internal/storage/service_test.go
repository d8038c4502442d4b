package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	requestrepo "plumbing_portal_backend/internal/requests/repository"
	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeObjectStore struct {
	objects map[string][]byte
	maxSize int64
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte), maxSize: 10 << 20}
}

func (f *fakeObjectStore) Upload(ctx context.Context, key, contentType string, reader io.Reader, size int64) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.objects[key] = data
	return nil
}

func (f *fakeObjectStore) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, "", apperr.NotFound("Object not found.")
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (f *fakeObjectStore) PublicURL(key string) string { return "http://minio.local/attachments/" + key }

func (f *fakeObjectStore) MaxFileSize() int64 { return f.maxSize }

type fakeAttachmentStore struct {
	inserted []*Attachment
}

func (f *fakeAttachmentStore) Insert(ctx context.Context, att *Attachment) error {
	f.inserted = append(f.inserted, att)
	return nil
}

func (f *fakeAttachmentStore) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]Attachment, error) {
	var out []Attachment
	for _, att := range f.inserted {
		if att.RequestID == requestID {
			out = append(out, *att)
		}
	}
	return out, nil
}

type fakeOwnerStore struct {
	owners map[uuid.UUID]uuid.UUID
}

func (f *fakeOwnerStore) GetByID(ctx context.Context, id uuid.UUID) (*requestrepo.Request, error) {
	owner, ok := f.owners[id]
	if !ok {
		return nil, apperr.NotFound("request not found")
	}
	return &requestrepo.Request{ID: id, UserID: &owner}, nil
}

func newUploadFixture() (*Service, *fakeObjectStore, *fakeAttachmentStore, *fakeOwnerStore) {
	objects := newFakeObjectStore()
	attachments := &fakeAttachmentStore{}
	owners := &fakeOwnerStore{owners: make(map[uuid.UUID]uuid.UUID)}
	svc := NewService(objects, attachments, owners, nil, logger.New("test"))
	return svc, objects, attachments, owners
}

func TestUploadStoresObjectAndMetadata(t *testing.T) {
	svc, objects, attachments, owners := newUploadFixture()
	requestID, userID := uuid.New(), uuid.New()
	owners.owners[requestID] = userID

	att, err := svc.Upload(context.Background(), UploadInput{
		RequestID:   requestID,
		UserID:      userID,
		FileName:    "burst pipe.jpg",
		ContentType: "image/jpeg",
		Size:        12,
		Reader:      strings.NewReader("not-a-photo!"),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	wantKey := requestID.String() + "/burst_pipe.jpg"
	if att.FileKey != wantKey {
		t.Errorf("FileKey = %q, want %q", att.FileKey, wantKey)
	}
	if _, ok := objects.objects[wantKey]; !ok {
		t.Error("object was not stored")
	}
	if len(attachments.inserted) != 1 {
		t.Fatalf("inserted %d records, want 1", len(attachments.inserted))
	}
	if attachments.inserted[0].FileName != "burst pipe.jpg" {
		t.Errorf("FileName = %q, want original name", attachments.inserted[0].FileName)
	}
	if att.FileURL != "http://minio.local/attachments/"+wantKey {
		t.Errorf("FileURL = %q", att.FileURL)
	}
}

func TestUploadRejectsNonOwner(t *testing.T) {
	svc, objects, _, owners := newUploadFixture()
	requestID := uuid.New()
	owners.owners[requestID] = uuid.New()

	_, err := svc.Upload(context.Background(), UploadInput{
		RequestID:   requestID,
		UserID:      uuid.New(),
		FileName:    "pipe.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Reader:      strings.NewReader("data"),
	})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("Upload() error kind = %v, want KindForbidden", apperr.GetKind(err))
	}
	if len(objects.objects) != 0 {
		t.Fatal("object should not be stored for non-owner")
	}
}

func TestUploadRejectsUnknownRequest(t *testing.T) {
	svc, _, _, _ := newUploadFixture()

	_, err := svc.Upload(context.Background(), UploadInput{
		RequestID:   uuid.New(),
		UserID:      uuid.New(),
		FileName:    "pipe.jpg",
		ContentType: "image/jpeg",
		Size:        4,
		Reader:      strings.NewReader("data"),
	})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("Upload() error = %v, want not found", err)
	}
}

func TestUploadValidatesContentTypeAndSize(t *testing.T) {
	svc, _, _, owners := newUploadFixture()
	requestID, userID := uuid.New(), uuid.New()
	owners.owners[requestID] = userID

	tests := []struct {
		name        string
		contentType string
		size        int64
	}{
		{"executable", "application/x-msdownload", 4},
		{"zero size", "image/jpeg", 0},
		{"over limit", "image/jpeg", 11 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), UploadInput{
				RequestID:   requestID,
				UserID:      userID,
				FileName:    "file.bin",
				ContentType: tt.contentType,
				Size:        tt.size,
				Reader:      strings.NewReader("data"),
			})
			if !apperr.Is(err, apperr.KindValidation) {
				t.Fatalf("Upload() error kind = %v, want KindValidation", apperr.GetKind(err))
			}
		})
	}
}

func TestValidateContentTypeNormalizes(t *testing.T) {
	if err := ValidateContentType("IMAGE/JPEG; charset=binary"); err != nil {
		t.Fatalf("ValidateContentType() error = %v", err)
	}
	if err := ValidateContentType("text/html"); err == nil {
		t.Fatal("ValidateContentType() accepted text/html")
	}
}
