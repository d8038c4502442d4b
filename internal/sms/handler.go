package sms

import (
	"crypto/subtle"
	"net/http"

	"plumbing_portal_backend/platform/config"
	"plumbing_portal_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Handler exposes the secret-guarded SMS relay endpoint.
type Handler struct {
	sender Sender
	cfg    config.SMSConfig
	log    *logger.Logger
}

// NewHandler creates an SMS relay handler.
func NewHandler(sender Sender, cfg config.SMSConfig, log *logger.Logger) *Handler {
	return &Handler{sender: sender, cfg: cfg, log: log}
}

type sendRequest struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// Relay sends an SMS on behalf of a trusted caller. The caller proves
// itself with the shared function secret header; this endpoint is not for
// browsers.
func (h *Handler) Relay(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	provided := c.GetHeader("X-Function-Secret")
	secret := h.cfg.GetFunctionSecret()
	if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
		h.log.Warn("unauthorized attempt to trigger sms relay", "ip", c.ClientIP())
		c.String(http.StatusUnauthorized, "Unauthorized")
		return
	}

	if !h.cfg.IsSMSEnabled() {
		c.String(http.StatusInternalServerError, "SMS service is not configured.")
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.To == "" || req.Body == "" {
		c.String(http.StatusBadRequest, `Missing "to" or "body" in request.`)
		return
	}

	sid, err := h.sender.Send(c.Request.Context(), req.To, req.Body)
	if err != nil {
		h.log.Error("sms relay failed", "to", req.To, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "sid": sid})
}
