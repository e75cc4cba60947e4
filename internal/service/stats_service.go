package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"autofill-api/internal/logger"
	"autofill-api/internal/model"
	"autofill-api/internal/repository"
)

// StatsService rolls up pattern, user, and feedback counts for the
// observability endpoints. Every count is computed at call time and degrades
// to zero when the store can't answer; the summary endpoint never fails.
type StatsService struct {
	patternRepo  repository.PatternRepo
	profileRepo  repository.ProfileRepo
	feedbackRepo repository.FeedbackRepo
	log          *logger.Logger
}

// NewStatsService creates a new stats service
func NewStatsService(patternRepo repository.PatternRepo, profileRepo repository.ProfileRepo, feedbackRepo repository.FeedbackRepo, log *logger.Logger) *StatsService {
	return &StatsService{
		patternRepo:  patternRepo,
		profileRepo:  profileRepo,
		feedbackRepo: feedbackRepo,
		log:          log,
	}
}

// PatternStats summarizes the global pattern store
func (s *StatsService) PatternStats(ctx context.Context) model.PatternStats {
	stats := model.PatternStats{IntentBreakdown: map[string]int{}}

	patterns, err := s.patternRepo.ListGlobal(ctx)
	if err != nil {
		s.log.Error("pattern stats unavailable", "error", err)
		return stats
	}

	stats.TotalGlobalPatterns = len(patterns)
	for _, p := range patterns {
		intent := p.Intent
		if intent == "" {
			intent = model.IntentUnknown
		}
		stats.IntentBreakdown[intent]++
	}
	return stats
}

// Summary returns user and feedback totals with trailing-24h windows
func (s *StatsService) Summary(ctx context.Context) model.SummaryStats {
	yesterday := time.Now().Add(-24 * time.Hour)

	return model.SummaryStats{
		Users: model.CountStats{
			Total:     s.count(ctx, "users total", s.profileRepo.CountAll),
			Recent24h: s.countSince(ctx, "users recent", s.profileRepo.CountUpdatedSince, yesterday),
		},
		Feedback: model.CountStats{
			Total:     s.count(ctx, "feedback total", s.feedbackRepo.CountAll),
			Recent24h: s.countSince(ctx, "feedback recent", s.feedbackRepo.CountCreatedSince, yesterday),
		},
	}
}

// TrackFeedback records one feedback interaction
func (s *StatsService) TrackFeedback(ctx context.Context, email, feedbackType string) error {
	if feedbackType == "" {
		feedbackType = "click"
	}
	feedback := &model.Feedback{
		ID:           uuid.NewString(),
		Email:        email,
		FeedbackType: feedbackType,
		CreatedAt:    time.Now(),
	}
	if err := s.feedbackRepo.Create(ctx, feedback); err != nil {
		return fmt.Errorf("track feedback: %w", err)
	}
	return nil
}

func (s *StatsService) count(ctx context.Context, what string, fn func(context.Context) (int, error)) int {
	n, err := fn(ctx)
	if err != nil {
		s.log.Error("count unavailable", "what", what, "error", err)
		return 0
	}
	return n
}

func (s *StatsService) countSince(ctx context.Context, what string, fn func(context.Context, time.Time) (int, error), since time.Time) int {
	n, err := fn(ctx, since)
	if err != nil {
		s.log.Error("count unavailable", "what", what, "error", err)
		return 0
	}
	return n
}
