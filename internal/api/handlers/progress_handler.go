package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/api/middleware"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/metrics"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/models"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/service"
)

// ============================================
// Progress Handler
// ============================================

type ProgressHandler struct {
	progressService service.ProgressService
}

func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// Record - Append a donation to a member's ledger
// POST /members/:id/progress
func (h *ProgressHandler) Record(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.RecordProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.progressService.Record(c.Request.Context(), c.Param("id"), userID, req.Amount, req.Description)
	if err != nil {
		handleServiceError(c, err, "Failed to record progress")
		return
	}

	metrics.DonationRecorded()
	c.JSON(http.StatusCreated, toProgressEntryResponse(entry))
}

// ListByMember - A member's ledger in entry order
// GET /members/:id/progress
func (h *ProgressHandler) ListByMember(c *gin.Context) {
	entries, err := h.progressService.ListByMember(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to fetch progress")
		return
	}

	response := make([]models.ProgressEntryResponse, len(entries))
	for i, e := range entries {
		response[i] = toProgressEntryResponse(e)
	}
	c.JSON(http.StatusOK, response)
}

// Timeline - Daily buckets with running totals for a group
// GET /groups/:id/timeline
func (h *ProgressHandler) Timeline(c *gin.Context) {
	points, err := h.progressService.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to fetch timeline")
		return
	}

	c.JSON(http.StatusOK, points)
}

// Ranking - Top contributors of a group
// GET /groups/:id/ranking
func (h *ProgressHandler) Ranking(c *gin.Context) {
	ranking, err := h.progressService.Ranking(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleServiceError(c, err, "Failed to fetch ranking")
		return
	}

	response := make([]models.RankingEntryResponse, len(ranking))
	for i, r := range ranking {
		response[i] = models.RankingEntryResponse{
			MemberID:         r.MemberID,
			Name:             r.Name,
			TotalContributed: r.TotalContributed,
			GoalsReached:     r.GoalsReached,
		}
	}
	c.JSON(http.StatusOK, response)
}
