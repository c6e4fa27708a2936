package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/db"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/notification"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/socket"
)

// RankingSize caps the leaderboard shown on group pages.
const RankingSize = 8

// TimelinePoint is one local-date bucket of a group's donation history
// with the running total up to and including that day.
type TimelinePoint struct {
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Cumulative decimal.Decimal `json:"cumulative"`
}

type ProgressService interface {
	// Record appends a ledger entry. The member's materialized total is
	// maintained by the storage layer in the same transaction; nothing
	// here recomputes it.
	Record(ctx context.Context, memberID, actorID string, amount decimal.Decimal, description *string) (*repository.ProgressEntry, error)
	ListByMember(ctx context.Context, memberID string) ([]*repository.ProgressEntry, error)
	// Timeline buckets a group's entries by local date in entry order
	// and carries a cumulative sum.
	Timeline(ctx context.Context, groupID string) ([]TimelinePoint, error)
	// Ranking returns the top contributors, largest total first.
	Ranking(ctx context.Context, groupID string) ([]*repository.MemberRanking, error)
	GroupTotal(ctx context.Context, groupID string) (decimal.Decimal, error)
}

type progressService struct {
	groupRepo    repository.GroupRepository
	memberRepo   repository.MemberRepository
	progressRepo repository.ProgressRepository
	notifSvc     *notification.Service
	broadcaster  *socket.Broadcaster
	cache        *db.RedisDB
}

func NewProgressService(
	groupRepo repository.GroupRepository,
	memberRepo repository.MemberRepository,
	progressRepo repository.ProgressRepository,
	notifSvc *notification.Service,
	broadcaster *socket.Broadcaster,
	cache *db.RedisDB,
) ProgressService {
	return &progressService{
		groupRepo:    groupRepo,
		memberRepo:   memberRepo,
		progressRepo: progressRepo,
		notifSvc:     notifSvc,
		broadcaster:  broadcaster,
		cache:        cache,
	}
}

func (s *progressService) Record(ctx context.Context, memberID, actorID string, amount decimal.Decimal, description *string) (*repository.ProgressEntry, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	member, err := s.memberRepo.FindByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound
	}

	group, err := s.groupRepo.FindByID(ctx, member.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil || group.DeactivatedAt != nil {
		return nil, ErrNotFound
	}

	// Only the member's own account or the leader may log progress for
	// a slot.
	ownSlot := member.UserID != nil && *member.UserID == actorID
	if !ownSlot && group.LeaderID != actorID {
		return nil, ErrForbidden
	}

	entry := &repository.ProgressEntry{
		MemberID:    memberID,
		GroupID:     member.GroupID,
		Amount:      amount,
		Description: description,
	}
	if err := s.progressRepo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record progress: %w", err)
	}

	s.invalidateRanking(ctx, member.GroupID)

	if s.notifSvc != nil {
		s.notifSvc.Dispatch(notification.Event{
			Type:      notification.TypeNewDonation,
			LeaderID:  group.LeaderID,
			GroupID:   group.ID,
			GroupName: group.Name,
			ActorName: member.Name,
			Details:   amount.String(),
		})
	}
	if s.broadcaster != nil {
		s.broadcaster.BroadcastDonationRecorded(group.ID, map[string]interface{}{
			"entryId":    entry.ID,
			"memberId":   member.ID,
			"memberName": member.Name,
			"amount":     amount.String(),
		}, actorID)
	}
	return entry, nil
}

func (s *progressService) ListByMember(ctx context.Context, memberID string) ([]*repository.ProgressEntry, error) {
	return s.progressRepo.FindByMember(ctx, memberID)
}

func (s *progressService) Timeline(ctx context.Context, groupID string) ([]TimelinePoint, error) {
	entries, err := s.progressRepo.FindByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	var points []TimelinePoint
	cumulative := decimal.Zero
	for _, entry := range entries {
		date := entry.CreatedAt.Local().Format("2006-01-02")
		cumulative = cumulative.Add(entry.Amount)

		if n := len(points); n > 0 && points[n-1].Date == date {
			points[n-1].Amount = points[n-1].Amount.Add(entry.Amount)
			points[n-1].Cumulative = cumulative
			continue
		}
		points = append(points, TimelinePoint{
			Date:       date,
			Amount:     entry.Amount,
			Cumulative: cumulative,
		})
	}
	return points, nil
}

func (s *progressService) Ranking(ctx context.Context, groupID string) ([]*repository.MemberRanking, error) {
	cacheKey := "ranking:" + groupID
	if s.cache != nil {
		var cached []*repository.MemberRanking
		if err := s.cache.GetCache(ctx, cacheKey, &cached); err == nil && cached != nil {
			return cached, nil
		}
	}

	ranking, err := s.memberRepo.Ranking(ctx, groupID, RankingSize)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCache(ctx, cacheKey, ranking, 5*time.Minute); err != nil {
			log.Printf("[Progress] ⚠️ Failed to cache ranking for group %s: %v", groupID, err)
		}
	}
	return ranking, nil
}

func (s *progressService) GroupTotal(ctx context.Context, groupID string) (decimal.Decimal, error) {
	return s.progressRepo.GroupTotal(ctx, groupID)
}

func (s *progressService) invalidateRanking(ctx context.Context, groupID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateCache(ctx, "ranking:"+groupID); err != nil {
		log.Printf("[Progress] ⚠️ Failed to invalidate ranking cache for group %s: %v", groupID, err)
	}
}
