package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/api/middleware"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/models"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/service"
)

// ============================================
// Join Request Handler
// ============================================

type JoinRequestHandler struct {
	memberService service.MemberService
}

func NewJoinRequestHandler(memberService service.MemberService) *JoinRequestHandler {
	return &JoinRequestHandler{memberService: memberService}
}

// Create - Ask to join a group
// POST /groups/:id/join-requests
func (h *JoinRequestHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateJoinRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.memberService.SubmitJoinRequest(c.Request.Context(), c.Param("id"), userID, req.Name, req.Message)
	if err != nil {
		handleServiceError(c, err, "Failed to submit join request")
		return
	}

	c.JSON(http.StatusCreated, toJoinRequestResponse(request))
}

// ListPending - Pending requests for a group (leader only)
// GET /groups/:id/join-requests
func (h *JoinRequestHandler) ListPending(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	requests, err := h.memberService.ListPendingRequests(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch join requests")
		return
	}

	response := make([]models.JoinRequestResponse, len(requests))
	for i, r := range requests {
		response[i] = toJoinRequestResponse(r)
	}
	c.JSON(http.StatusOK, response)
}

// ListMine - The caller's own request history
// GET /join-requests/mine
func (h *JoinRequestHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	requests, err := h.memberService.ListMyRequests(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch join requests")
		return
	}

	response := make([]models.JoinRequestResponse, len(requests))
	for i, r := range requests {
		response[i] = toJoinRequestResponse(r)
	}
	c.JSON(http.StatusOK, response)
}

// Approve - Accept a pending request (leader only)
// POST /join-requests/:id/approve
func (h *JoinRequestHandler) Approve(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	member, err := h.memberService.ApproveJoinRequest(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to approve join request")
		return
	}

	c.JSON(http.StatusOK, toMemberResponse(member))
}

// Reject - Decline a pending request (leader only)
// POST /join-requests/:id/reject
func (h *JoinRequestHandler) Reject(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.memberService.RejectJoinRequest(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err, "Failed to reject join request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Join request rejected"})
}
