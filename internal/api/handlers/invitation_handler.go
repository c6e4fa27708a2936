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
// Invitation Handler
// ============================================

type InvitationHandler struct {
	invitationService service.InvitationService
	userService       service.UserService
}

func NewInvitationHandler(invitationService service.InvitationService, userService service.UserService) *InvitationHandler {
	return &InvitationHandler{
		invitationService: invitationService,
		userService:       userService,
	}
}

// CreateEmail - Invite by email (leader only)
// POST /groups/:id/invitations
func (h *InvitationHandler) CreateEmail(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateEmailInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitation, err := h.invitationService.CreateEmailInvitation(c.Request.Context(), c.Param("id"), req.Email, userID)
	if err != nil {
		handleServiceError(c, err, "Failed to create invitation")
		return
	}

	c.JSON(http.StatusCreated, toInvitationResponse(invitation))
}

// CreateLink - Create a shareable invitation link (leader only)
// POST /groups/:id/invitations/link
func (h *InvitationHandler) CreateLink(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invitation, err := h.invitationService.CreateLinkInvitation(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to create invitation link")
		return
	}

	c.JSON(http.StatusCreated, toInvitationResponse(invitation))
}

// GetByCode - Preview an invitation before redeeming
// GET /invitations/:code
func (h *InvitationHandler) GetByCode(c *gin.Context) {
	invitation, err := h.invitationService.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		handleServiceError(c, err, "Failed to fetch invitation")
		return
	}

	c.JSON(http.StatusOK, toInvitationResponse(invitation))
}

// Redeem - Consume an invitation code and join the group
// POST /invitations/:code/redeem
func (h *InvitationHandler) Redeem(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to redeem invitation")
		return
	}

	member, err := h.invitationService.Redeem(c.Request.Context(), c.Param("code"), userID, user.Email)
	if err != nil {
		metrics.InvitationRedeemed("rejected")
		handleServiceError(c, err, "Failed to redeem invitation")
		return
	}

	metrics.InvitationRedeemed("consumed")
	c.JSON(http.StatusOK, toMemberResponse(member))
}

// ListPending - Pending invitations for a group (leader only)
// GET /groups/:id/invitations
func (h *InvitationHandler) ListPending(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListPendingByGroup(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch invitations")
		return
	}

	response := make([]models.InvitationResponse, len(invitations))
	for i, inv := range invitations {
		response[i] = toInvitationResponse(inv)
	}
	c.JSON(http.StatusOK, response)
}

// Renew - Extend an invitation's expiry (leader only)
// POST /invitations/id/:id/renew
func (h *InvitationHandler) Renew(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invitation, err := h.invitationService.Renew(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to renew invitation")
		return
	}

	c.JSON(http.StatusOK, toInvitationResponse(invitation))
}

// Revoke - Cancel a pending invitation (leader only)
// DELETE /invitations/id/:id
func (h *InvitationHandler) Revoke(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.invitationService.Revoke(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err, "Failed to revoke invitation")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation revoked"})
}
