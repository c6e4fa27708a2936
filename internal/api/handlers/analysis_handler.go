package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/api/middleware"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/metrics"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/service"
)

// ============================================
// Analysis Handler
// ============================================

type AnalysisHandler struct {
	analysisService service.AnalysisService
}

func NewAnalysisHandler(analysisService service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

// Analyze - AI summary of a group's progress (members only)
// GET /groups/:id/analysis
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	summary, err := h.analysisService.AnalyzeGroup(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			metrics.AnalysisRequest("rate_limited")
		} else {
			metrics.AnalysisRequest("error")
		}
		handleServiceError(c, err, "Failed to analyze group")
		return
	}

	metrics.AnalysisRequest("ok")
	c.JSON(http.StatusOK, summary)
}
