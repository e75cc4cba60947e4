package service

import (
	"time"

	"autofill-api/internal/model"
)

// LearnerService decides whether a fresh model answer is worth remembering
// and builds the pattern record to persist
type LearnerService struct {
	threshold float64
}

// NewLearnerService creates a learner gated at the given confidence threshold
func NewLearnerService(threshold float64) *LearnerService {
	return &LearnerService{threshold: threshold}
}

// ShouldLearn is true only for a non-empty answer at or above the threshold
func (s *LearnerService) ShouldLearn(answer string, confidence float64) bool {
	return answer != "" && confidence >= s.threshold
}

// BuildPattern assembles the record for a confident fresh prediction: one
// answer mapping seeded with the answer itself, context options copied from
// the request. An empty intent becomes the "unknown" sentinel.
func (s *LearnerService) BuildPattern(question, answer, intent, fieldType string, confidence float64, contextOptions []string) model.Pattern {
	if intent == "" {
		intent = model.IntentUnknown
	}
	options := append([]string{}, contextOptions...)

	now := time.Now()
	return model.Pattern{
		QuestionPattern: Normalize(question),
		Intent:          intent,
		FieldType:       fieldType,
		Confidence:      confidence,
		Source:          model.PatternSourceAI,
		AnswerMappings: []model.AnswerMapping{
			{
				CanonicalValue: answer,
				Variants:       []string{answer},
				ContextOptions: options,
			},
		},
		CreatedAt: now,
		LastUsed:  now,
	}
}
