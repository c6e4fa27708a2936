package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/config"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/email"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/notification"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/types"
)

type InvitationService interface {
	// CreateEmailInvitation issues a code bound to a recipient email.
	// Re-inviting the same email simply creates a fresh code.
	CreateEmailInvitation(ctx context.Context, groupID, emailAddr, inviterID string) (*repository.Invitation, error)
	// CreateLinkInvitation issues an open code any authenticated user
	// may redeem before expiry.
	CreateLinkInvitation(ctx context.Context, groupID, inviterID string) (*repository.Invitation, error)
	GetByCode(ctx context.Context, code string) (*repository.Invitation, error)
	// Redeem validates the code and atomically consumes it while
	// creating the membership. Exactly one of two concurrent redeems of
	// the same code succeeds.
	Redeem(ctx context.Context, code, userID string, userEmail string) (*repository.Member, error)
	Renew(ctx context.Context, invitationID, actorID string) (*repository.Invitation, error)
	Revoke(ctx context.Context, invitationID, actorID string) error
	ListPendingByGroup(ctx context.Context, groupID, actorID string) ([]*repository.Invitation, error)
	// ExpireStale marks overdue pending invitations expired. Called by
	// the cron sweep.
	ExpireStale(ctx context.Context) (int, error)
}

type invitationService struct {
	invitationRepo repository.InvitationRepository
	groupRepo      repository.GroupRepository
	memberRepo     repository.MemberRepository
	userRepo       repository.UserRepository
	notifSvc       *notification.Service
	emailSvc       *email.Service
	defaultTTL     time.Duration
}

func NewInvitationService(
	cfg *config.Config,
	invitationRepo repository.InvitationRepository,
	groupRepo repository.GroupRepository,
	memberRepo repository.MemberRepository,
	userRepo repository.UserRepository,
	notifSvc *notification.Service,
	emailSvc *email.Service,
) InvitationService {
	ttl := 7 * 24 * time.Hour
	if cfg != nil && cfg.InvitationTTLDays > 0 {
		ttl = time.Duration(cfg.InvitationTTLDays) * 24 * time.Hour
	}
	return &invitationService{
		invitationRepo: invitationRepo,
		groupRepo:      groupRepo,
		memberRepo:     memberRepo,
		userRepo:       userRepo,
		notifSvc:       notifSvc,
		emailSvc:       emailSvc,
		defaultTTL:     ttl,
	}
}

func (s *invitationService) CreateEmailInvitation(ctx context.Context, groupID, emailAddr, inviterID string) (*repository.Invitation, error) {
	emailAddr = normalizeEmail(emailAddr)
	if emailAddr == "" {
		return nil, fmt.Errorf("%w: email required", ErrInvalidInput)
	}

	group, err := s.requireLeader(ctx, groupID, inviterID)
	if err != nil {
		return nil, err
	}

	invitation := &repository.Invitation{
		GroupID:   groupID,
		Email:     &emailAddr,
		InvitedBy: inviterID,
		ExpiresAt: time.Now().Add(s.defaultTTL),
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	if s.emailSvc != nil {
		go func(invitation *repository.Invitation, groupName string) {
			inviterName := ""
			if inviter, err := s.userRepo.FindByID(context.Background(), invitation.InvitedBy); err == nil && inviter != nil {
				inviterName = inviter.Name
			}
			if err := s.emailSvc.SendInvitation(groupName, *invitation.Email, inviterName, invitation.Code); err != nil {
				log.Printf("[Invitation] ⚠️ Failed to send invitation email: %v", err)
			}
		}(invitation, group.Name)
	}
	return invitation, nil
}

func (s *invitationService) CreateLinkInvitation(ctx context.Context, groupID, inviterID string) (*repository.Invitation, error) {
	if _, err := s.requireLeader(ctx, groupID, inviterID); err != nil {
		return nil, err
	}

	invitation := &repository.Invitation{
		GroupID:   groupID,
		InvitedBy: inviterID,
		ExpiresAt: time.Now().Add(s.defaultTTL),
	}
	if err := s.invitationRepo.Create(ctx, invitation); err != nil {
		return nil, err
	}
	return invitation, nil
}

func (s *invitationService) GetByCode(ctx context.Context, code string) (*repository.Invitation, error) {
	invitation, err := s.invitationRepo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, ErrInvalidOrExpired
	}
	return invitation, nil
}

func (s *invitationService) Redeem(ctx context.Context, code, userID string, userEmail string) (*repository.Member, error) {
	invitation, err := s.invitationRepo.FindByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, ErrInvalidOrExpired
	}

	switch invitation.Status {
	case types.InvitationConsumed:
		return nil, ErrAlreadyConsumed
	case types.InvitationRevoked, types.InvitationExpired:
		return nil, ErrInvalidOrExpired
	}

	// Email binding is checked before expiry so a wrong recipient
	// always sees the mismatch, never a misleading expiry message.
	if invitation.IsEmailBound() {
		if normalizeEmail(userEmail) != normalizeEmail(*invitation.Email) {
			return nil, ErrEmailMismatch
		}
	}

	if invitation.IsExpired() {
		return nil, ErrInvalidOrExpired
	}

	isMember, err := s.memberRepo.ExistsByGroupAndUser(ctx, invitation.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	handle := normalizeHandle(user.Email)
	member := &repository.Member{
		GroupID:       invitation.GroupID,
		Name:          user.Name,
		UserID:        &userID,
		ContactHandle: &handle,
	}

	// The conditional update inside Consume is what serializes
	// concurrent redeems: the row flips pending -> consumed exactly
	// once, so the loser lands here with consumed=false.
	consumed, err := s.invitationRepo.Consume(ctx, invitation.ID, userID, member)
	if err != nil {
		return nil, err
	}
	if !consumed {
		return nil, ErrAlreadyConsumed
	}

	group, err := s.groupRepo.FindByID(ctx, invitation.GroupID)
	if err == nil && group != nil && s.notifSvc != nil {
		s.notifSvc.Dispatch(notification.Event{
			Type:      notification.TypeNewMember,
			LeaderID:  group.LeaderID,
			GroupID:   group.ID,
			GroupName: group.Name,
			ActorName: user.Name,
		})
	}
	return member, nil
}

func (s *invitationService) Renew(ctx context.Context, invitationID, actorID string) (*repository.Invitation, error) {
	invitation, err := s.loadForAdmin(ctx, invitationID, actorID)
	if err != nil {
		return nil, err
	}

	renewed, err := s.invitationRepo.ExtendExpiry(ctx, invitation.ID, time.Now().Add(s.defaultTTL))
	if err != nil {
		return nil, err
	}
	if !renewed {
		return nil, ErrAlreadyConsumed
	}
	return s.invitationRepo.FindByID(ctx, invitation.ID)
}

func (s *invitationService) Revoke(ctx context.Context, invitationID, actorID string) error {
	invitation, err := s.loadForAdmin(ctx, invitationID, actorID)
	if err != nil {
		return err
	}

	revoked, err := s.invitationRepo.Revoke(ctx, invitation.ID)
	if err != nil {
		return err
	}
	if !revoked {
		return ErrAlreadyConsumed
	}
	return nil
}

func (s *invitationService) ListPendingByGroup(ctx context.Context, groupID, actorID string) ([]*repository.Invitation, error) {
	if _, err := s.requireLeader(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	return s.invitationRepo.FindPendingByGroup(ctx, groupID)
}

func (s *invitationService) ExpireStale(ctx context.Context) (int, error) {
	return s.invitationRepo.MarkExpired(ctx)
}

func (s *invitationService) requireLeader(ctx context.Context, groupID, actorID string) (*repository.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil || group.DeactivatedAt != nil {
		return nil, ErrNotFound
	}
	if group.LeaderID != actorID {
		return nil, ErrForbidden
	}
	return group, nil
}

func (s *invitationService) loadForAdmin(ctx context.Context, invitationID, actorID string) (*repository.Invitation, error) {
	invitation, err := s.invitationRepo.FindByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}
	if invitation == nil {
		return nil, ErrNotFound
	}
	if _, err := s.requireLeader(ctx, invitation.GroupID, actorID); err != nil {
		return nil, err
	}
	return invitation, nil
}
