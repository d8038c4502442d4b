package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"plumbing_portal_backend/platform/apperr"
	"plumbing_portal_backend/platform/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// allowedContentTypes lists the MIME types customers may attach to a
// request: photos and short clips of the problem, plus PDFs for things
// like strata approval letters.
var allowedContentTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/heic":      true,
	"application/pdf": true,
	"video/mp4":       true,
	"video/webm":      true,
	"video/quicktime": true,
}

// ObjectStore is the storage surface the attachments service needs.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, reader io.Reader, size int64) error
	Download(ctx context.Context, key string) (io.ReadCloser, string, error)
	PublicURL(key string) string
	MaxFileSize() int64
}

// Client stores attachment objects in a single S3-compatible bucket.
type Client struct {
	client      *minio.Client
	bucket      string
	endpoint    string
	useSSL      bool
	maxFileSize int64
}

// NewClient connects to the configured MinIO endpoint.
func NewClient(cfg config.StorageConfig) (*Client, error) {
	if !cfg.IsStorageEnabled() {
		return nil, fmt.Errorf("storage is not configured")
	}

	mc, err := minio.New(cfg.GetMinIOEndpoint(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.GetMinIOAccessKey(), cfg.GetMinIOSecretKey(), ""),
		Secure: cfg.GetMinIOUseSSL(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &Client{
		client:      mc,
		bucket:      cfg.GetAttachmentsBucket(),
		endpoint:    cfg.GetMinIOEndpoint(),
		useSSL:      cfg.GetMinIOUseSSL(),
		maxFileSize: cfg.GetMinIOMaxFileSize(),
	}, nil
}

// EnsureBucket creates the attachments bucket if it does not exist yet.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", c.bucket, err)
		}
	}
	return nil
}

// Upload stores an object under the given key.
func (c *Client) Upload(ctx context.Context, key, contentType string, reader io.Reader, size int64) error {
	_, err := c.client.PutObject(ctx, c.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to store attachment", err).WithOp("storage.Upload")
	}
	return nil
}

// Download streams an object back. The second return value is the stored
// content type; callers must close the reader.
func (c *Client) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", apperr.Wrap(apperr.KindUpstream, "failed to fetch attachment", err).WithOp("storage.Download")
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, "", apperr.NotFound("Object not found.")
		}
		return nil, "", apperr.Wrap(apperr.KindUpstream, "failed to fetch attachment", err).WithOp("storage.Download")
	}

	contentType := stat.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return obj, contentType, nil
}

// PublicURL builds the canonical URL an object is reachable at.
func (c *Client) PublicURL(key string) string {
	scheme := "http"
	if c.useSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, c.endpoint, c.bucket, key)
}

// MaxFileSize returns the configured per-file upload limit in bytes.
func (c *Client) MaxFileSize() int64 {
	return c.maxFileSize
}

// ValidateContentType rejects MIME types outside the attachment allowlist.
func ValidateContentType(contentType string) error {
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if !allowedContentTypes[normalized] {
		return apperr.Validation(fmt.Sprintf("content type %q is not allowed", contentType))
	}
	return nil
}

// ObjectKey builds the bucket key for an attachment, grouping files by the
// request they belong to. Spaces in user file names become underscores.
func ObjectKey(requestID, fileName string) string {
	safe := strings.ReplaceAll(path.Base(fileName), " ", "_")
	return requestID + "/" + safe
}
