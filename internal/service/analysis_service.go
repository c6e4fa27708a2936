package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/meta-solidaria/meta-solidaria-backend/internal/analysis"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/db"
	"github.com/meta-solidaria/meta-solidaria-backend/internal/repository"
)

// analysisCacheTTL keeps summaries around long enough to absorb page
// refreshes without hammering the rate-limited endpoint.
const analysisCacheTTL = time.Hour

// AnalysisService assembles a group's aggregated progress and sends it
// to the external analysis collaborator for a natural-language summary.
type AnalysisService interface {
	AnalyzeGroup(ctx context.Context, groupID, requesterID string) (*analysis.Summary, error)
}

type analysisService struct {
	client      *analysis.Client
	groupRepo   repository.GroupRepository
	memberRepo  repository.MemberRepository
	progressSvc ProgressService
	cache       *db.RedisDB
}

func NewAnalysisService(
	client *analysis.Client,
	groupRepo repository.GroupRepository,
	memberRepo repository.MemberRepository,
	progressSvc ProgressService,
	cache *db.RedisDB,
) AnalysisService {
	return &analysisService{
		client:      client,
		groupRepo:   groupRepo,
		memberRepo:  memberRepo,
		progressSvc: progressSvc,
		cache:       cache,
	}
}

func (s *analysisService) AnalyzeGroup(ctx context.Context, groupID, requesterID string) (*analysis.Summary, error) {
	if s.client == nil || !s.client.Enabled() {
		return nil, fmt.Errorf("analysis is not configured: %w", ErrNotFound)
	}

	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrNotFound
	}

	// Members see what leaders see here; outsiders see nothing.
	if group.LeaderID != requesterID {
		member, err := s.memberRepo.FindByGroupAndUser(ctx, groupID, requesterID)
		if err != nil {
			return nil, err
		}
		if member == nil {
			return nil, ErrForbidden
		}
	}

	cacheKey := "analysis:" + groupID
	if s.cache != nil {
		cached := &analysis.Summary{}
		if err := s.cache.GetCache(ctx, cacheKey, cached); err == nil && cached.Summary != "" {
			return cached, nil
		}
	}

	stats, err := s.buildStats(ctx, group)
	if err != nil {
		return nil, err
	}

	summary, err := s.client.Analyze(ctx, stats)
	if err != nil {
		if errors.Is(err, analysis.ErrRateLimited) {
			return nil, ErrRateLimited
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetCache(ctx, cacheKey, summary, analysisCacheTTL); err != nil {
			log.Printf("[Analysis] ⚠️ Failed to cache summary for group %s: %v", groupID, err)
		}
	}
	return summary, nil
}

func (s *analysisService) buildStats(ctx context.Context, group *repository.Group) (*analysis.GroupStats, error) {
	timeline, err := s.progressSvc.Timeline(ctx, group.ID)
	if err != nil {
		return nil, err
	}
	ranking, err := s.progressSvc.Ranking(ctx, group.ID)
	if err != nil {
		return nil, err
	}

	stats := &analysis.GroupStats{
		GroupName:    group.Name,
		DonationType: group.DonationType,
		Goal:         group.Goal.String(),
		TotalRaised:  group.TotalRaised.String(),
		MemberCount:  group.MemberCount,
	}
	for _, p := range timeline {
		stats.Timeline = append(stats.Timeline, analysis.TimelinePoint{
			Date:       p.Date,
			Amount:     p.Amount.String(),
			Cumulative: p.Cumulative.String(),
		})
	}
	for _, r := range ranking {
		stats.Ranking = append(stats.Ranking, analysis.RankingEntry{
			Name:             r.Name,
			TotalContributed: r.TotalContributed.String(),
			GoalsReached:     r.GoalsReached,
		})
	}
	return stats, nil
}
