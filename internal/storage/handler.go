package storage

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"plumbing_portal_backend/platform/httpkit"
	"plumbing_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes attachment upload and admin object download endpoints.
type Handler struct {
	service *Service
	log     *logger.Logger
}

// NewHandler creates an attachments handler.
func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log}
}

type uploadResponse struct {
	Message    string             `json:"message"`
	Attachment attachmentResponse `json:"attachment"`
}

type attachmentResponse struct {
	ID        uuid.UUID `json:"id"`
	RequestID uuid.UUID `json:"request_id"`
	FileName  string    `json:"file_name"`
	MimeType  string    `json:"mime_type"`
	FileURL   string    `json:"file_url"`
	SizeBytes int64     `json:"size_bytes"`
}

// Upload attaches a file to a quote request owned by the caller.
func (h *Handler) Upload(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	fileHeader, err := c.FormFile("attachment")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "No file uploaded.", nil)
		return
	}

	requestIDValue := c.PostForm("request_id")
	if requestIDValue == "" {
		httpkit.Error(c, http.StatusBadRequest, "request_id is required.", nil)
		return
	}
	requestID, err := uuid.Parse(requestIDValue)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "request_id is not a valid id.", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "Failed to read uploaded file.", nil)
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")

	att, err := h.service.Upload(c.Request.Context(), UploadInput{
		RequestID:   requestID,
		UserID:      id.UserID(),
		FileName:    fileHeader.Filename,
		ContentType: contentType,
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, uploadResponse{
		Message: "Attachment uploaded successfully.",
		Attachment: attachmentResponse{
			ID:        att.ID,
			RequestID: att.RequestID,
			FileName:  att.FileName,
			MimeType:  att.MimeType,
			FileURL:   att.FileURL,
			SizeBytes: att.SizeBytes,
		},
	})
}

// DownloadObject streams a stored object inline. Admin only.
func (h *Handler) DownloadObject(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("objectPath"), "/")
	if key == "" {
		httpkit.Error(c, http.StatusBadRequest, "object path is required", nil)
		return
	}

	reader, contentType, err := h.service.Download(c.Request.Context(), key)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", path.Base(key)))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.log.Error("failed to stream attachment", "key", key, "error", err)
	}
}

// ListForRequest returns attachment metadata for a request. Staff only.
func (h *Handler) ListForRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request id", nil)
		return
	}

	attachments, err := h.service.ListForRequest(c.Request.Context(), requestID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}

	out := make([]attachmentResponse, 0, len(attachments))
	for _, att := range attachments {
		out = append(out, attachmentResponse{
			ID:        att.ID,
			RequestID: att.RequestID,
			FileName:  att.FileName,
			MimeType:  att.MimeType,
			FileURL:   att.FileURL,
			SizeBytes: att.SizeBytes,
		})
	}
	c.JSON(http.StatusOK, gin.H{"attachments": out})
}
