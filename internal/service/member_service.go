package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/notification"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/socket"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/types"
)

// MemberService owns the join-request lifecycle: a user asks to enter a
// privacy-restricted group and the leader approves or rejects. Both
// terminal states are final; a rejected user may submit a fresh request
// later (the old row stays as history).
type MemberService interface {
	SubmitJoinRequest(ctx context.Context, groupID, userID, displayName string, message *string) (*repository.JoinRequest, error)
	ApproveJoinRequest(ctx context.Context, requestID, actorID string) (*repository.Member, error)
	RejectJoinRequest(ctx context.Context, requestID, actorID string) error
	ListPendingRequests(ctx context.Context, groupID, actorID string) ([]*repository.JoinRequest, error)
	ListMyRequests(ctx context.Context, userID string) ([]*repository.JoinRequest, error)
}

type memberService struct {
	groupRepo       repository.GroupRepository
	memberRepo      repository.MemberRepository
	joinRequestRepo repository.JoinRequestRepository
	notifSvc        *notification.Service
	broadcaster     *socket.Broadcaster
}

func NewMemberService(
	groupRepo repository.GroupRepository,
	memberRepo repository.MemberRepository,
	joinRequestRepo repository.JoinRequestRepository,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
) MemberService {
	return &memberService{
		groupRepo:       groupRepo,
		memberRepo:      memberRepo,
		joinRequestRepo: joinRequestRepo,
		notifSvc:        notifSvc,
		broadcaster:     broadcaster,
	}
}

func (s *memberService) SubmitJoinRequest(ctx context.Context, groupID, userID, displayName string, message *string) (*repository.JoinRequest, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, fmt.Errorf("%w: display name required", ErrInvalidInput)
	}

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil || group.DeactivatedAt != nil {
		return nil, ErrNotFound
	}

	isMember, err := s.memberRepo.ExistsByGroupAndUser(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	request := &repository.JoinRequest{
		GroupID: groupID,
		UserID:  userID,
		Name:    strings.TrimSpace(displayName),
		Message: message,
	}
	if err := s.joinRequestRepo.Create(ctx, request); err != nil {
		if errors.Is(err, repository.ErrDuplicatePending) {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}

	// Best effort; the request stands even if the leader never hears.
	if s.notifSvc != nil {
		s.notifSvc.Dispatch(notification.Event{
			Type:      notification.TypeJoinRequest,
			LeaderID:  group.LeaderID,
			GroupID:   group.ID,
			GroupName: group.Name,
			ActorName: request.Name,
		})
	}
	return request, nil
}

func (s *memberService) ApproveJoinRequest(ctx context.Context, requestID, actorID string) (*repository.Member, error) {
	request, group, err := s.loadForResolution(ctx, requestID, actorID)
	if err != nil {
		return nil, err
	}

	member := &repository.Member{
		GroupID: request.GroupID,
		Name:    request.Name,
		UserID:  &request.UserID,
	}

	resolved, err := s.joinRequestRepo.Resolve(ctx, requestID, types.RequestApproved, member)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return nil, ErrAlreadyResolved
	}

	if s.notifSvc != nil {
		s.notifSvc.Dispatch(notification.Event{
			Type:      notification.TypeNewMember,
			LeaderID:  group.LeaderID,
			GroupID:   group.ID,
			GroupName: group.Name,
			ActorName: request.Name,
		})
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberAdded(group.ID, map[string]interface{}{
			"id":   member.ID,
			"name": member.Name,
		})
	}
	return member, nil
}

func (s *memberService) RejectJoinRequest(ctx context.Context, requestID, actorID string) error {
	if _, _, err := s.loadForResolution(ctx, requestID, actorID); err != nil {
		return err
	}

	resolved, err := s.joinRequestRepo.Resolve(ctx, requestID, types.RequestRejected, nil)
	if err != nil {
		return err
	}
	if !resolved {
		return ErrAlreadyResolved
	}
	return nil
}

func (s *memberService) ListPendingRequests(ctx context.Context, groupID, actorID string) ([]*repository.JoinRequest, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrNotFound
	}
	if group.LeaderID != actorID {
		return nil, ErrForbidden
	}
	return s.joinRequestRepo.FindPendingByGroup(ctx, groupID)
}

func (s *memberService) ListMyRequests(ctx context.Context, userID string) ([]*repository.JoinRequest, error) {
	return s.joinRequestRepo.FindByUser(ctx, userID)
}

// loadForResolution fetches the request and verifies the actor leads
// the target group. The pending-state check itself happens inside the
// conditional update, not here, so concurrent resolutions cannot both
// pass.
func (s *memberService) loadForResolution(ctx context.Context, requestID, actorID string) (*repository.JoinRequest, *repository.Group, error) {
	request, err := s.joinRequestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, nil, err
	}
	if request == nil {
		return nil, nil, ErrNotFound
	}

	group, err := s.groupRepo.FindByID(ctx, request.GroupID)
	if err != nil {
		return nil, nil, err
	}
	if group == nil {
		return nil, nil, ErrNotFound
	}
	if group.LeaderID != actorID {
		return nil, nil, ErrForbidden
	}
	return request, group, nil
}
