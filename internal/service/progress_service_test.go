package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/types"
)

type progressFixture struct {
	groups   *fakeGroupRepo
	members  *fakeMemberRepo
	progress *fakeProgressRepo
	service  ProgressService
	group    *repository.Group
	member   *repository.Member
	leaderID string
	userID   string
}

func newProgressFixture(t *testing.T) *progressFixture {
	t.Helper()

	members := newFakeMemberRepo()
	groups := newFakeGroupRepo(members)
	progress := newFakeProgressRepo(members)

	leaderID := "leader-1"
	group := &repository.Group{
		Name:         "Sangue Bom",
		City:         "Recife",
		DonationType: types.DonationBlood,
		Goal:         decimal.NewFromInt(200),
		LeaderID:     leaderID,
	}
	require.NoError(t, groups.CreateWithLeader(context.Background(), group, "Líder", nil))

	userID := "user-2"
	member := &repository.Member{
		GroupID: group.ID,
		Name:    "Maria",
		UserID:  &userID,
		Goal:    decimal.NewFromInt(50),
	}
	require.NoError(t, members.Create(context.Background(), member))

	return &progressFixture{
		groups:   groups,
		members:  members,
		progress: progress,
		service:  NewProgressService(groups, members, progress, nil, nil, nil),
		group:    group,
		member:   member,
		leaderID: leaderID,
		userID:   userID,
	}
}

func (f *progressFixture) record(t *testing.T, amount int64) *repository.ProgressEntry {
	t.Helper()
	entry, err := f.service.Record(context.Background(), f.member.ID, f.userID, decimal.NewFromInt(amount), nil)
	require.NoError(t, err)
	return entry
}

func TestRecordRejectsNonPositiveAmount(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	_, err := f.service.Record(ctx, f.member.ID, f.userID, decimal.Zero, nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = f.service.Record(ctx, f.member.ID, f.userID, decimal.NewFromInt(-5), nil)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestRecordAccumulatesMemberTotal(t *testing.T) {
	f := newProgressFixture(t)

	f.record(t, 10)
	f.record(t, 30)
	f.record(t, 35)

	member, err := f.members.FindByID(context.Background(), f.member.ID)
	require.NoError(t, err)
	assert.True(t, member.TotalContributed.Equal(decimal.NewFromInt(75)),
		"expected 75, got %s", member.TotalContributed)

	// Crossed the member goal of 50 exactly once.
	assert.Equal(t, 1, member.GoalsReached)
}

func TestRecordLedgerIsAppendOnly(t *testing.T) {
	f := newProgressFixture(t)

	f.record(t, 10)
	f.record(t, 30)

	entries, err := f.service.ListByMember(context.Background(), f.member.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].Amount.Equal(decimal.NewFromInt(10)))
	assert.True(t, entries[1].Amount.Equal(decimal.NewFromInt(30)))
}

func TestRecordPermissions(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()
	amount := decimal.NewFromInt(5)

	// The slot's own account and the leader may record.
	_, err := f.service.Record(ctx, f.member.ID, f.userID, amount, nil)
	assert.NoError(t, err)
	_, err = f.service.Record(ctx, f.member.ID, f.leaderID, amount, nil)
	assert.NoError(t, err)

	// Anyone else may not.
	_, err = f.service.Record(ctx, f.member.ID, "user-9", amount, nil)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestRecordUnknownMember(t *testing.T) {
	f := newProgressFixture(t)

	_, err := f.service.Record(context.Background(), "missing", f.userID, decimal.NewFromInt(5), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordDeactivatedGroup(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()
	require.NoError(t, f.groups.Deactivate(ctx, f.group.ID))

	_, err := f.service.Record(ctx, f.member.ID, f.userID, decimal.NewFromInt(5), nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTimelineBucketsByDayWithRunningTotal(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	e1 := f.record(t, 10)
	e2 := f.record(t, 30)
	e3 := f.record(t, 35)
	e1.CreatedAt = base
	e2.CreatedAt = base.Add(2 * time.Hour) // same day
	e3.CreatedAt = base.AddDate(0, 0, 1)

	points, err := f.service.Timeline(ctx, f.group.ID)
	require.NoError(t, err)
	require.Len(t, points, 2)

	assert.Equal(t, "2026-03-10", points[0].Date)
	assert.True(t, points[0].Amount.Equal(decimal.NewFromInt(40)))
	assert.True(t, points[0].Cumulative.Equal(decimal.NewFromInt(40)))

	assert.Equal(t, "2026-03-11", points[1].Date)
	assert.True(t, points[1].Amount.Equal(decimal.NewFromInt(35)))
	assert.True(t, points[1].Cumulative.Equal(decimal.NewFromInt(75)))
}

func TestTimelineEmptyGroup(t *testing.T) {
	f := newProgressFixture(t)

	points, err := f.service.Timeline(context.Background(), f.group.ID)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestRankingOrdersByTotalDesc(t *testing.T) {
	f := newProgressFixture(t)
	ctx := context.Background()

	// Ten slots with increasing totals; the leaderboard keeps the top 8.
	for i := 1; i <= 10; i++ {
		userID := fmt.Sprintf("user-rank-%d", i)
		member := &repository.Member{
			GroupID: f.group.ID,
			Name:    fmt.Sprintf("Membro %d", i),
			UserID:  &userID,
		}
		require.NoError(t, f.members.Create(ctx, member))
		_, err := f.service.Record(ctx, member.ID, userID, decimal.NewFromInt(int64(i*10)), nil)
		require.NoError(t, err)
	}

	ranking, err := f.service.Ranking(ctx, f.group.ID)
	require.NoError(t, err)
	require.Len(t, ranking, RankingSize)

	assert.Equal(t, "Membro 10", ranking[0].Name)
	assert.True(t, ranking[0].TotalContributed.Equal(decimal.NewFromInt(100)))
	for i := 1; i < len(ranking); i++ {
		assert.False(t, ranking[i].TotalContributed.GreaterThan(ranking[i-1].TotalContributed))
	}
}

func TestGroupTotalSumsLedger(t *testing.T) {
	f := newProgressFixture(t)

	f.record(t, 10)
	f.record(t, 30)

	total, err := f.service.GroupTotal(context.Background(), f.group.ID)
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(40)))
}
