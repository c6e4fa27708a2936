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

type groupFixture struct {
	groups        *fakeGroupRepo
	members       *fakeMemberRepo
	beneficiaries *fakeBeneficiaryRepo
	service       GroupService
}

func newGroupFixture() *groupFixture {
	members := newFakeMemberRepo()
	groups := newFakeGroupRepo(members)
	beneficiaries := newFakeBeneficiaryRepo()
	return &groupFixture{
		groups:        groups,
		members:       members,
		beneficiaries: beneficiaries,
		service:       NewGroupService(groups, members, beneficiaries, nil),
	}
}

func (f *groupFixture) createGroup(t *testing.T, leaderID string, isPrivate, membersVisible bool) *repository.Group {
	t.Helper()
	group, err := f.service.Create(context.Background(), CreateGroupInput{
		Name:           "Cesta Básica Centro",
		City:           "São Paulo",
		DonationType:   types.DonationFood,
		Goal:           decimal.NewFromInt(100),
		LeaderID:       leaderID,
		LeaderName:     "Líder",
		IsPrivate:      isPrivate,
		MembersVisible: membersVisible,
	})
	require.NoError(t, err)
	return group
}

func TestCreateGroupAddsLeaderSlot(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()

	group := f.createGroup(t, "leader-1", false, true)

	exists, err := f.members.ExistsByGroupAndUser(ctx, group.ID, "leader-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateGroupRejectsUnknownDonationType(t *testing.T) {
	f := newGroupFixture()

	_, err := f.service.Create(context.Background(), CreateGroupInput{
		Name:         "Grupo",
		City:         "São Paulo",
		DonationType: "eletronicos",
		Goal:         decimal.NewFromInt(10),
		LeaderID:     "leader-1",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateGroupRejectsNegativeGoal(t *testing.T) {
	f := newGroupFixture()

	_, err := f.service.Create(context.Background(), CreateGroupInput{
		Name:         "Grupo",
		City:         "São Paulo",
		DonationType: types.DonationFood,
		Goal:         decimal.NewFromInt(-5),
		LeaderID:     "leader-1",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateGroupRejectsMissingBeneficiary(t *testing.T) {
	f := newGroupFixture()

	missing := "no-such-beneficiary"
	_, err := f.service.Create(context.Background(), CreateGroupInput{
		Name:          "Grupo",
		City:          "São Paulo",
		DonationType:  types.DonationFood,
		Goal:          decimal.NewFromInt(10),
		LeaderID:      "leader-1",
		BeneficiaryID: &missing,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateGroupWithBeneficiary(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()

	beneficiary := &repository.Beneficiary{Name: "Lar São Francisco"}
	require.NoError(t, f.beneficiaries.Create(ctx, beneficiary))

	group, err := f.service.Create(ctx, CreateGroupInput{
		Name:          "Grupo",
		City:          "São Paulo",
		DonationType:  types.DonationFood,
		Goal:          decimal.NewFromInt(10),
		LeaderID:      "leader-1",
		BeneficiaryID: &beneficiary.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, group.BeneficiaryID)
	assert.Equal(t, beneficiary.ID, *group.BeneficiaryID)
}

func TestUpdateGroupLeaderOnly(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	group := f.createGroup(t, "leader-1", false, true)

	newName := "Novo Nome"
	_, err := f.service.Update(ctx, group.ID, "user-2", UpdateGroupInput{Name: &newName})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.service.Update(ctx, group.ID, "leader-1", UpdateGroupInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Novo Nome", updated.Name)
}

func TestDeactivatedGroupDisappears(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	group := f.createGroup(t, "leader-1", false, true)

	require.NoError(t, f.service.Deactivate(ctx, group.ID, "leader-1"))

	_, err := f.service.GetByID(ctx, group.ID, "leader-1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddMemberNormalizesHandle(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	group := f.createGroup(t, "leader-1", false, true)

	member, err := f.service.AddMember(ctx, group.ID, "leader-1", "Dona Maria", "(11) 98765-4321", decimal.NewFromInt(20))
	require.NoError(t, err)
	require.NotNil(t, member.ContactHandle)
	assert.Equal(t, "11987654321", *member.ContactHandle)
	assert.Nil(t, member.UserID)
}

func TestAddMemberLeaderOnly(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	group := f.createGroup(t, "leader-1", false, true)

	_, err := f.service.AddMember(ctx, group.ID, "user-2", "Dona Maria", "", decimal.Zero)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListMembersHiddenRoster(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	group := f.createGroup(t, "leader-1", true, false)

	_, err := f.service.ListMembers(ctx, group.ID, "user-2")
	assert.ErrorIs(t, err, ErrForbidden)

	members, err := f.service.ListMembers(ctx, group.ID, "leader-1")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestRemoveMemberCannotRemoveLeader(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	group := f.createGroup(t, "leader-1", false, true)

	roster, err := f.members.FindByGroup(ctx, group.ID)
	require.NoError(t, err)
	require.Len(t, roster, 1)

	err = f.service.RemoveMember(ctx, group.ID, roster[0].ID, "leader-1")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRemoveMember(t *testing.T) {
	f := newGroupFixture()
	ctx := context.Background()
	group := f.createGroup(t, "leader-1", false, true)

	member, err := f.service.AddMember(ctx, group.ID, "leader-1", "Dona Maria", "", decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, f.service.RemoveMember(ctx, group.ID, member.ID, "leader-1"))

	roster, err := f.members.FindByGroup(ctx, group.ID)
	require.NoError(t, err)
	assert.Len(t, roster, 1)
}
