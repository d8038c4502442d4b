package triage

import (
	"net/http"

	"plumbing_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler exposes the triage endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a triage handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RunAgent is the standalone triage endpoint. It accepts a raw request record
// and answers with the assessment. The method handling is explicit: OPTIONS
// preflights get a permissive 200, anything but POST is a 405.
func (h *Handler) RunAgent(c *gin.Context) {
	setPermissiveCORS(c)

	switch c.Request.Method {
	case http.MethodOptions:
		c.Status(http.StatusOK)
		return
	case http.MethodPost:
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	var data RequestData
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Triage analysis failed",
			"message": err.Error(),
		})
		return
	}

	assessment, err := h.svc.Run(c.Request.Context(), data)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Triage analysis failed",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// TriageRequest runs the analysis for a stored request and persists the
// summary and priority score. Staff only.
func (h *Handler) TriageRequest(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}

	assessment, err := h.svc.TriageRequest(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, gin.H{
		"message":        "Triage complete.",
		"triage_summary": assessment.TriageSummary,
		"priority_score": assessment.PriorityScore,
		"assessment":     assessment,
	})
}

func setPermissiveCORS(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
}
