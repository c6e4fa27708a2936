package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/api/middleware"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/models"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/service"
)

// ============================================
// Group Handler
// ============================================

type GroupHandler struct {
	groupService service.GroupService
}

func NewGroupHandler(groupService service.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// Create - Create a new group with the caller as leader
// POST /groups
func (h *GroupHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membersVisible := true
	if req.MembersVisible != nil {
		membersVisible = *req.MembersVisible
	}

	group, err := h.groupService.Create(c.Request.Context(), service.CreateGroupInput{
		Name:           req.Name,
		City:           req.City,
		DonationType:   req.DonationType,
		Goal:           req.Goal,
		LeaderID:       userID,
		IsPrivate:      req.IsPrivate,
		MembersVisible: membersVisible,
		BeneficiaryID:  req.BeneficiaryID,
		EndsAt:         req.EndsAt,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to create group")
		return
	}

	c.JSON(http.StatusCreated, toGroupResponse(group))
}

// Get - Get a group by ID
// GET /groups/:id
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.groupService.GetByID(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err, "Failed to fetch group")
		return
	}

	c.JSON(http.StatusOK, toGroupResponse(group))
}

// ListPublic - Browse public groups, optionally filtered
// GET /groups?city=&donationType=&limit=&offset=
func (h *GroupHandler) ListPublic(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	groups, err := h.groupService.ListPublic(c.Request.Context(), c.Query("city"), c.Query("donationType"), limit, offset)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch groups")
		return
	}

	response := make([]models.GroupResponse, len(groups))
	for i, g := range groups {
		response[i] = toGroupResponse(g)
	}
	c.JSON(http.StatusOK, response)
}

// ListMine - Groups the caller belongs to
// GET /groups/mine
func (h *GroupHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	groups, err := h.groupService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err, "Failed to fetch groups")
		return
	}

	response := make([]models.GroupResponse, len(groups))
	for i, g := range groups {
		response[i] = toGroupResponse(g)
	}
	c.JSON(http.StatusOK, response)
}

// Update - Update group settings (leader only)
// PUT /groups/:id
func (h *GroupHandler) Update(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupService.Update(c.Request.Context(), c.Param("id"), userID, service.UpdateGroupInput{
		Name:           req.Name,
		City:           req.City,
		Goal:           req.Goal,
		IsPrivate:      req.IsPrivate,
		MembersVisible: req.MembersVisible,
		BeneficiaryID:  req.BeneficiaryID,
		EndsAt:         req.EndsAt,
	})
	if err != nil {
		handleServiceError(c, err, "Failed to update group")
		return
	}

	c.JSON(http.StatusOK, toGroupResponse(group))
}

// Deactivate - Soft-delete a group (leader only)
// DELETE /groups/:id
func (h *GroupHandler) Deactivate(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.groupService.Deactivate(c.Request.Context(), c.Param("id"), userID); err != nil {
		handleServiceError(c, err, "Failed to deactivate group")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Group deactivated"})
}

// ListMembers - List the group roster
// GET /groups/:id/members
func (h *GroupHandler) ListMembers(c *gin.Context) {
	members, err := h.groupService.ListMembers(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		handleServiceError(c, err, "Failed to fetch members")
		return
	}

	response := make([]models.MemberResponse, len(members))
	for i, m := range members {
		response[i] = toMemberResponse(m)
	}
	c.JSON(http.StatusOK, response)
}

// AddMember - Add a placeholder roster slot (leader only)
// POST /groups/:id/members
func (h *GroupHandler) AddMember(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.groupService.AddMember(c.Request.Context(), c.Param("id"), userID, req.Name, req.ContactHandle, req.Goal)
	if err != nil {
		handleServiceError(c, err, "Failed to add member")
		return
	}

	c.JSON(http.StatusCreated, toMemberResponse(member))
}

// RemoveMember - Remove a roster slot (leader only)
// DELETE /groups/:id/members/:memberId
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	if err := h.groupService.RemoveMember(c.Request.Context(), c.Param("id"), c.Param("memberId"), userID); err != nil {
		handleServiceError(c, err, "Failed to remove member")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member removed"})
}
