package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofill-api/internal/logger"
	"autofill-api/internal/model"
)

func TestPatternStats(t *testing.T) {
	patternRepo := newFakePatternRepo()
	patternRepo.global = []model.Pattern{
		globalPattern("g1", "first name", "personal.firstName", "x"),
		globalPattern("g2", "given name", "personal.firstName", "x"),
		globalPattern("g3", "your gender", "eeo.gender", "x"),
		globalPattern("g4", "odd question", "", "x"),
	}
	svc := NewStatsService(patternRepo, newFakeProfileRepo(), &fakeFeedbackRepo{}, logger.NewNop())

	stats := svc.PatternStats(context.Background())

	assert.Equal(t, 4, stats.TotalGlobalPatterns)
	assert.Equal(t, map[string]int{
		"personal.firstName": 2,
		"eeo.gender":         1,
		"unknown":            1,
	}, stats.IntentBreakdown)
}

func TestPatternStatsDegradesToZero(t *testing.T) {
	patternRepo := newFakePatternRepo()
	patternRepo.listGlobalErr = fmt.Errorf("store unreachable")
	svc := NewStatsService(patternRepo, newFakeProfileRepo(), &fakeFeedbackRepo{}, logger.NewNop())

	stats := svc.PatternStats(context.Background())

	assert.Equal(t, 0, stats.TotalGlobalPatterns)
	assert.NotNil(t, stats.IntentBreakdown)
	assert.Empty(t, stats.IntentBreakdown)
}

func TestSummaryCounts(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	require.NoError(t, profileRepo.Upsert(context.Background(), "a@x.com", nil))
	require.NoError(t, profileRepo.Upsert(context.Background(), "b@x.com", nil))

	feedbackRepo := &fakeFeedbackRepo{created: []model.Feedback{
		{ID: "f1", Email: "a@x.com", CreatedAt: time.Now()},
		{ID: "f2", Email: "a@x.com", CreatedAt: time.Now().Add(-48 * time.Hour)},
	}}
	svc := NewStatsService(newFakePatternRepo(), profileRepo, feedbackRepo, logger.NewNop())

	summary := svc.Summary(context.Background())

	assert.Equal(t, model.CountStats{Total: 2, Recent24h: 2}, summary.Users)
	assert.Equal(t, model.CountStats{Total: 2, Recent24h: 1}, summary.Feedback)
}

func TestSummaryDegradesToZero(t *testing.T) {
	profileRepo := newFakeProfileRepo()
	profileRepo.countErr = fmt.Errorf("store unreachable")
	feedbackRepo := &fakeFeedbackRepo{countErr: fmt.Errorf("store unreachable")}
	svc := NewStatsService(newFakePatternRepo(), profileRepo, feedbackRepo, logger.NewNop())

	summary := svc.Summary(context.Background())

	assert.Equal(t, model.CountStats{}, summary.Users)
	assert.Equal(t, model.CountStats{}, summary.Feedback)
}

func TestTrackFeedback(t *testing.T) {
	feedbackRepo := &fakeFeedbackRepo{}
	svc := NewStatsService(newFakePatternRepo(), newFakeProfileRepo(), feedbackRepo, logger.NewNop())

	require.NoError(t, svc.TrackFeedback(context.Background(), "a@x.com", ""))

	require.Len(t, feedbackRepo.created, 1)
	fb := feedbackRepo.created[0]
	assert.Equal(t, "a@x.com", fb.Email)
	assert.Equal(t, "click", fb.FeedbackType, "type defaults to click")
	assert.NotEmpty(t, fb.ID)
	assert.False(t, fb.CreatedAt.IsZero())
}
