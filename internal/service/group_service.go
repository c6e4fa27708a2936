package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/socket"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/types"
)

type CreateGroupInput struct {
	Name           string
	City           string
	DonationType   string
	Goal           decimal.Decimal
	LeaderID       string
	LeaderName     string
	LeaderHandle   *string
	IsPrivate      bool
	MembersVisible bool
	BeneficiaryID  *string
	EndsAt         *time.Time
}

type UpdateGroupInput struct {
	Name           *string
	City           *string
	DonationType   *string
	Goal           *decimal.Decimal
	IsPrivate      *bool
	MembersVisible *bool
	BeneficiaryID  *string
	EndsAt         *time.Time
}

type GroupService interface {
	// Create makes the group and its leader's roster slot in a single
	// transaction: a group never exists without its first member.
	Create(ctx context.Context, input CreateGroupInput) (*repository.Group, error)
	GetByID(ctx context.Context, id, viewerID string) (*repository.Group, error)
	ListPublic(ctx context.Context, city, donationType string, limit, offset int) ([]*repository.Group, error)
	ListByUser(ctx context.Context, userID string) ([]*repository.Group, error)
	Update(ctx context.Context, groupID, actorID string, input UpdateGroupInput) (*repository.Group, error)
	Deactivate(ctx context.Context, groupID, actorID string) error
	// AddMember lets the leader add a placeholder roster slot by name,
	// with no linked account yet.
	AddMember(ctx context.Context, groupID, actorID, name, contactHandle string, goal decimal.Decimal) (*repository.Member, error)
	ListMembers(ctx context.Context, groupID, viewerID string) ([]*repository.Member, error)
	RemoveMember(ctx context.Context, groupID, memberID, actorID string) error
}

type groupService struct {
	groupRepo       repository.GroupRepository
	memberRepo      repository.MemberRepository
	beneficiaryRepo repository.BeneficiaryRepository
	broadcaster     *socket.Broadcaster
}

func NewGroupService(
	groupRepo repository.GroupRepository,
	memberRepo repository.MemberRepository,
	beneficiaryRepo repository.BeneficiaryRepository,
	broadcaster *socket.Broadcaster,
) GroupService {
	return &groupService{
		groupRepo:       groupRepo,
		memberRepo:      memberRepo,
		beneficiaryRepo: beneficiaryRepo,
		broadcaster:     broadcaster,
	}
}

func (s *groupService) Create(ctx context.Context, input CreateGroupInput) (*repository.Group, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: group name required", ErrInvalidInput)
	}
	if !types.IsValidDonationType(input.DonationType) {
		return nil, fmt.Errorf("%w: unknown donation type %q", ErrInvalidInput, input.DonationType)
	}
	if input.Goal.IsNegative() {
		return nil, fmt.Errorf("%w: goal cannot be negative", ErrInvalidInput)
	}

	if input.BeneficiaryID != nil {
		beneficiary, err := s.beneficiaryRepo.FindByID(ctx, *input.BeneficiaryID)
		if err != nil {
			return nil, err
		}
		if beneficiary == nil {
			return nil, fmt.Errorf("%w: beneficiary not found", ErrInvalidInput)
		}
	}

	group := &repository.Group{
		Name:           strings.TrimSpace(input.Name),
		City:           input.City,
		DonationType:   input.DonationType,
		Goal:           input.Goal,
		LeaderID:       input.LeaderID,
		IsPrivate:      input.IsPrivate,
		MembersVisible: input.MembersVisible,
		BeneficiaryID:  input.BeneficiaryID,
		EndsAt:         input.EndsAt,
	}

	leaderName := input.LeaderName
	if leaderName == "" {
		leaderName = "Líder"
	}

	if err := s.groupRepo.CreateWithLeader(ctx, group, leaderName, input.LeaderHandle); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

func (s *groupService) GetByID(ctx context.Context, id, viewerID string) (*repository.Group, error) {
	group, err := s.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil || group.DeactivatedAt != nil {
		return nil, ErrNotFound
	}
	return group, nil
}

func (s *groupService) ListPublic(ctx context.Context, city, donationType string, limit, offset int) ([]*repository.Group, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.groupRepo.FindPublic(ctx, city, donationType, limit, offset)
}

func (s *groupService) ListByUser(ctx context.Context, userID string) ([]*repository.Group, error) {
	return s.groupRepo.FindByMemberUser(ctx, userID)
}

func (s *groupService) Update(ctx context.Context, groupID, actorID string, input UpdateGroupInput) (*repository.Group, error) {
	group, err := s.requireLeader(ctx, groupID, actorID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		group.Name = strings.TrimSpace(*input.Name)
	}
	if input.City != nil {
		group.City = *input.City
	}
	if input.DonationType != nil {
		if !types.IsValidDonationType(*input.DonationType) {
			return nil, fmt.Errorf("%w: unknown donation type %q", ErrInvalidInput, *input.DonationType)
		}
		group.DonationType = *input.DonationType
	}
	if input.Goal != nil {
		if input.Goal.IsNegative() {
			return nil, fmt.Errorf("%w: goal cannot be negative", ErrInvalidInput)
		}
		group.Goal = *input.Goal
	}
	if input.IsPrivate != nil {
		group.IsPrivate = *input.IsPrivate
	}
	if input.MembersVisible != nil {
		group.MembersVisible = *input.MembersVisible
	}
	if input.BeneficiaryID != nil {
		group.BeneficiaryID = input.BeneficiaryID
	}
	if input.EndsAt != nil {
		group.EndsAt = input.EndsAt
	}

	if err := s.groupRepo.Update(ctx, group); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastGroupUpdated(group.ID, map[string]interface{}{
			"id":   group.ID,
			"name": group.Name,
		}, actorID)
	}
	return group, nil
}

func (s *groupService) Deactivate(ctx context.Context, groupID, actorID string) error {
	if _, err := s.requireLeader(ctx, groupID, actorID); err != nil {
		return err
	}
	return s.groupRepo.Deactivate(ctx, groupID)
}

func (s *groupService) AddMember(ctx context.Context, groupID, actorID, name, contactHandle string, goal decimal.Decimal) (*repository.Member, error) {
	if _, err := s.requireLeader(ctx, groupID, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: member name required", ErrInvalidInput)
	}
	if goal.IsNegative() {
		return nil, fmt.Errorf("%w: member goal cannot be negative", ErrInvalidInput)
	}

	member := &repository.Member{
		GroupID: groupID,
		Name:    strings.TrimSpace(name),
		Goal:    goal,
	}
	if contactHandle != "" {
		normalized := normalizeHandle(contactHandle)
		member.ContactHandle = &normalized
	}

	if err := s.memberRepo.Create(ctx, member); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastMemberAdded(groupID, map[string]interface{}{
			"id":   member.ID,
			"name": member.Name,
		})
	}
	return member, nil
}

func (s *groupService) ListMembers(ctx context.Context, groupID, viewerID string) ([]*repository.Member, error) {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil || group.DeactivatedAt != nil {
		return nil, ErrNotFound
	}

	// Hidden rosters are visible only to the leader.
	if !group.MembersVisible && group.LeaderID != viewerID {
		return nil, ErrForbidden
	}
	return s.memberRepo.FindByGroup(ctx, groupID)
}

func (s *groupService) RemoveMember(ctx context.Context, groupID, memberID, actorID string) error {
	group, err := s.requireLeader(ctx, groupID, actorID)
	if err != nil {
		return err
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return err
	}
	if member == nil || member.GroupID != groupID {
		return ErrNotFound
	}
	if member.UserID != nil && *member.UserID == group.LeaderID {
		return fmt.Errorf("%w: cannot remove the group leader", ErrInvalidInput)
	}
	return s.memberRepo.Delete(ctx, memberID)
}

// requireLeader loads the group and checks the actor is its leader.
func (s *groupService) requireLeader(ctx context.Context, groupID, actorID string) (*repository.Group, error) {
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
