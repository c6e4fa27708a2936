package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/types"
)

type memberFixture struct {
	groups      *fakeGroupRepo
	members     *fakeMemberRepo
	requests    *fakeJoinRequestRepo
	service     MemberService
	group       *repository.Group
	leaderID    string
	applicantID string
}

func newMemberFixture(t *testing.T) *memberFixture {
	t.Helper()

	members := newFakeMemberRepo()
	groups := newFakeGroupRepo(members)
	requests := newFakeJoinRequestRepo(members)

	leaderID := "leader-1"
	group := &repository.Group{
		Name:         "Cesta Básica Centro",
		City:         "São Paulo",
		DonationType: types.DonationFood,
		Goal:         decimal.NewFromInt(100),
		LeaderID:     leaderID,
		IsPrivate:    true,
	}
	require.NoError(t, groups.CreateWithLeader(context.Background(), group, "Líder", nil))

	return &memberFixture{
		groups:      groups,
		members:     members,
		requests:    requests,
		service:     NewMemberService(groups, members, requests, nil, nil),
		group:       group,
		leaderID:    leaderID,
		applicantID: "user-2",
	}
}

func TestSubmitJoinRequest(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	request, err := f.service.SubmitJoinRequest(ctx, f.group.ID, f.applicantID, "Maria", nil)
	require.NoError(t, err)
	assert.Equal(t, types.RequestPending, request.Status)
	assert.Equal(t, f.group.ID, request.GroupID)
}

func TestSubmitJoinRequestDuplicatePending(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	_, err := f.service.SubmitJoinRequest(ctx, f.group.ID, f.applicantID, "Maria", nil)
	require.NoError(t, err)

	_, err = f.service.SubmitJoinRequest(ctx, f.group.ID, f.applicantID, "Maria", nil)
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestSubmitJoinRequestAfterRejectionCreatesNewRequest(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	first, err := f.service.SubmitJoinRequest(ctx, f.group.ID, f.applicantID, "Maria", nil)
	require.NoError(t, err)
	require.NoError(t, f.service.RejectJoinRequest(ctx, first.ID, f.leaderID))

	second, err := f.service.SubmitJoinRequest(ctx, f.group.ID, f.applicantID, "Maria", nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	// The rejected row stays as history.
	history, err := f.service.ListMyRequests(ctx, f.applicantID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestSubmitJoinRequestAlreadyMember(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	_, err := f.service.SubmitJoinRequest(ctx, f.group.ID, f.leaderID, "Líder", nil)
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestSubmitJoinRequestGroupNotFound(t *testing.T) {
	f := newMemberFixture(t)

	_, err := f.service.SubmitJoinRequest(context.Background(), "missing", f.applicantID, "Maria", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveJoinRequestCreatesMember(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	request, err := f.service.SubmitJoinRequest(ctx, f.group.ID, f.applicantID, "Maria", nil)
	require.NoError(t, err)

	member, err := f.service.ApproveJoinRequest(ctx, request.ID, f.leaderID)
	require.NoError(t, err)
	require.NotNil(t, member.UserID)
	assert.Equal(t, f.applicantID, *member.UserID)

	exists, err := f.members.ExistsByGroupAndUser(ctx, f.group.ID, f.applicantID)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestApproveJoinRequestTwice(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	request, err := f.service.SubmitJoinRequest(ctx, f.group.ID, f.applicantID, "Maria", nil)
	require.NoError(t, err)

	_, err = f.service.ApproveJoinRequest(ctx, request.ID, f.leaderID)
	require.NoError(t, err)

	_, err = f.service.ApproveJoinRequest(ctx, request.ID, f.leaderID)
	assert.ErrorIs(t, err, ErrAlreadyResolved)
}

func TestRejectThenApproveFails(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	request, err := f.service.SubmitJoinRequest(ctx, f.group.ID, f.applicantID, "Maria", nil)
	require.NoError(t, err)

	require.NoError(t, f.service.RejectJoinRequest(ctx, request.ID, f.leaderID))

	_, err = f.service.ApproveJoinRequest(ctx, request.ID, f.leaderID)
	assert.ErrorIs(t, err, ErrAlreadyResolved)

	exists, err := f.members.ExistsByGroupAndUser(ctx, f.group.ID, f.applicantID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestResolveRequiresLeader(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	request, err := f.service.SubmitJoinRequest(ctx, f.group.ID, f.applicantID, "Maria", nil)
	require.NoError(t, err)

	_, err = f.service.ApproveJoinRequest(ctx, request.ID, "user-3")
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.service.RejectJoinRequest(ctx, request.ID, f.applicantID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListPendingRequestsLeaderOnly(t *testing.T) {
	f := newMemberFixture(t)
	ctx := context.Background()

	_, err := f.service.SubmitJoinRequest(ctx, f.group.ID, f.applicantID, "Maria", nil)
	require.NoError(t, err)

	pending, err := f.service.ListPendingRequests(ctx, f.group.ID, f.leaderID)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	_, err = f.service.ListPendingRequests(ctx, f.group.ID, f.applicantID)
	assert.ErrorIs(t, err, ErrForbidden)
}
