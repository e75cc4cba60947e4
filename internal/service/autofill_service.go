package service

import (
	"context"
	"fmt"

	"autofill-api/internal/logger"
	"autofill-api/internal/model"
)

// AutofillService is the prediction front door: pattern memory first, then
// the hosted model, then a best-effort learn of the fresh answer
type AutofillService struct {
	matcher          *MatcherService
	learner          *LearnerService
	patterns         *PatternService
	profiles         *ProfileService
	predictor        Predictor
	memoryConfidence float64
	log              *logger.Logger
}

// NewAutofillService creates a new autofill service
func NewAutofillService(
	matcher *MatcherService,
	learner *LearnerService,
	patterns *PatternService,
	profiles *ProfileService,
	predictor Predictor,
	memoryConfidence float64,
	log *logger.Logger,
) *AutofillService {
	return &AutofillService{
		matcher:          matcher,
		learner:          learner,
		patterns:         patterns,
		profiles:         profiles,
		predictor:        predictor,
		memoryConfidence: memoryConfidence,
		log:              log,
	}
}

// Predict answers a form question. Pattern memory is consulted first; a miss
// falls through to the hosted model, and a confident fresh answer is written
// back through the learner. The write-back is best-effort: its failure never
// costs the user the answer.
func (s *AutofillService) Predict(ctx context.Context, req *model.PredictRequest) (*model.PredictResponse, error) {
	if match := s.matcher.Search(ctx, req.Question, req.UserEmail); match != nil {
		if answer := match.Pattern.PrimaryAnswer(); answer != "" {
			s.log.Debug("pattern memory hit", "patternId", match.Pattern.ID, "scope", match.Scope)
			return &model.PredictResponse{
				Answer:     answer,
				Confidence: s.memoryConfidence,
				Intent:     match.Pattern.Intent,
				Reasoning:  "Retrieved from Pattern Memory",
			}, nil
		}
	}

	var profile *model.UserProfile
	if req.UserProfile != nil {
		profile = &model.UserProfile{Email: req.UserEmail, ProfileData: req.UserProfile}
	} else if req.UserEmail != "" {
		// Best effort; the model can answer without a profile
		var lookupErr error
		profile, lookupErr = s.profiles.Get(ctx, req.UserEmail)
		if lookupErr != nil {
			s.log.Warn("profile lookup failed, predicting without profile", "error", lookupErr)
		}
	}

	resp, err := s.predictor.Predict(ctx, req, profile)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	// A returned prediction never carries an empty intent
	if resp.Intent == "" {
		resp.Intent = model.IntentUnknown
	}

	if s.learner.ShouldLearn(resp.Answer, resp.Confidence) {
		pattern := s.learner.BuildPattern(req.Question, resp.Answer, resp.Intent, req.FieldType, resp.Confidence, req.Options)
		if err := s.patterns.SavePattern(ctx, pattern, req.UserEmail); err != nil {
			s.log.Warn("learning pattern failed", "error", err)
		}
	}

	return resp, nil
}
