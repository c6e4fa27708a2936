package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/models"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/notification"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/service"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Group        *GroupHandler
	JoinRequest  *JoinRequestHandler
	Invitation   *InvitationHandler
	Progress     *ProgressHandler
	Partner      *PartnerHandler
	Notification *NotificationHandler
	Analysis     *AnalysisHandler
}

// NewHandlers creates all handlers
func NewHandlers(services *service.Services, notifSvc *notification.Service) *Handlers {
	return &Handlers{
		Auth:         &AuthHandler{authService: services.Auth},
		User:         &UserHandler{userService: services.User},
		Group:        &GroupHandler{groupService: services.Group},
		JoinRequest:  &JoinRequestHandler{memberService: services.Member},
		Invitation:   &InvitationHandler{invitationService: services.Invitation, userService: services.User},
		Progress:     &ProgressHandler{progressService: services.Progress},
		Partner:      &PartnerHandler{partnerService: services.Partner},
		Notification: &NotificationHandler{notifSvc: notifSvc},
		Analysis:     &AnalysisHandler{analysisService: services.Analysis},
	}
}

// handleServiceError translates service sentinel errors to HTTP status
// codes. Anything unrecognized is a 500 with a generic message so
// internals never leak to clients.
func handleServiceError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "You do not have permission to do this"})
	case errors.Is(err, service.ErrUnauthorized), errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
	case errors.Is(err, service.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": "A pending request for this group already exists"})
	case errors.Is(err, service.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "This request has already been resolved"})
	case errors.Is(err, service.ErrAlreadyMember):
		c.JSON(http.StatusConflict, gin.H{"error": "Already a member of this group"})
	case errors.Is(err, service.ErrAlreadyConsumed):
		c.JSON(http.StatusConflict, gin.H{"error": "This invitation code has already been used"})
	case errors.Is(err, service.ErrEmailMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "This invitation was sent to a different email"})
	case errors.Is(err, service.ErrInvalidOrExpired):
		c.JSON(http.StatusGone, gin.H{"error": "Invitation code is invalid or expired"})
	case errors.Is(err, service.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Analysis is temporarily unavailable, try again later"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

// ============================================
// Response Mappers
// ============================================

func toUserResponse(u *repository.User) models.UserResponse {
	return models.UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Avatar:    u.Avatar,
		CreatedAt: u.CreatedAt,
	}
}

func toGroupResponse(g *repository.Group) models.GroupResponse {
	return models.GroupResponse{
		ID:             g.ID,
		Name:           g.Name,
		City:           g.City,
		DonationType:   g.DonationType,
		Goal:           g.Goal,
		LeaderID:       g.LeaderID,
		IsPrivate:      g.IsPrivate,
		MembersVisible: g.MembersVisible,
		BeneficiaryID:  g.BeneficiaryID,
		EndsAt:         g.EndsAt,
		MemberCount:    g.MemberCount,
		TotalRaised:    g.TotalRaised,
		CreatedAt:      g.CreatedAt,
	}
}

func toMemberResponse(m *repository.Member) models.MemberResponse {
	return models.MemberResponse{
		ID:               m.ID,
		GroupID:          m.GroupID,
		Name:             m.Name,
		UserID:           m.UserID,
		Goal:             m.Goal,
		TotalContributed: m.TotalContributed,
		GoalsReached:     m.GoalsReached,
		JoinedAt:         m.JoinedAt,
	}
}

func toJoinRequestResponse(r *repository.JoinRequest) models.JoinRequestResponse {
	return models.JoinRequestResponse{
		ID:        r.ID,
		GroupID:   r.GroupID,
		UserID:    r.UserID,
		Name:      r.Name,
		Message:   r.Message,
		Status:    r.Status,
		CreatedAt: r.CreatedAt,
	}
}

func toInvitationResponse(i *repository.Invitation) models.InvitationResponse {
	return models.InvitationResponse{
		ID:         i.ID,
		GroupID:    i.GroupID,
		Email:      i.Email,
		Code:       i.Code,
		Status:     i.Status,
		InvitedBy:  i.InvitedBy,
		ExpiresAt:  i.ExpiresAt,
		CreatedAt:  i.CreatedAt,
		ConsumedAt: i.ConsumedAt,
	}
}

func toProgressEntryResponse(e *repository.ProgressEntry) models.ProgressEntryResponse {
	return models.ProgressEntryResponse{
		ID:          e.ID,
		MemberID:    e.MemberID,
		GroupID:     e.GroupID,
		Amount:      e.Amount,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

func toPartnerResponse(p *repository.Partner) models.PartnerResponse {
	return models.PartnerResponse{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		City:        p.City,
		Description: p.Description,
		LogoURL:     p.LogoURL,
		Website:     p.Website,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
	}
}

func toBeneficiaryResponse(b *repository.Beneficiary) models.BeneficiaryResponse {
	return models.BeneficiaryResponse{
		ID:          b.ID,
		Name:        b.Name,
		City:        b.City,
		Description: b.Description,
		Verified:    b.Verified,
		CreatedAt:   b.CreatedAt,
	}
}

func toNotificationResponse(n *repository.Notification) models.NotificationResponse {
	return models.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
