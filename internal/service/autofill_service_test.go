package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofill-api/internal/logger"
	"autofill-api/internal/model"
)

const testMemoryConfidence = 0.95

func newTestAutofillService(patternRepo *fakePatternRepo, profileRepo *fakeProfileRepo, predictor Predictor) *AutofillService {
	log := logger.NewNop()
	matcher := NewMatcherService(patternRepo, nil, 0.5, log)
	learner := NewLearnerService(0.70)
	patterns := NewPatternService(patternRepo, profileRepo, log)
	profiles := NewProfileService(profileRepo, log)
	return NewAutofillService(matcher, learner, patterns, profiles, predictor, testMemoryConfidence, log)
}

func TestPredictServesFromPatternMemory(t *testing.T) {
	patternRepo := newFakePatternRepo()
	p := privatePattern("a@x.com", "what is your gender?", "eeo.gender", "Male")
	patternRepo.rows[p.ID] = p
	predictor := &fakePredictor{resp: &model.PredictResponse{Answer: "should not be used"}}
	svc := newTestAutofillService(patternRepo, newFakeProfileRepo(), predictor)

	resp, err := svc.Predict(context.Background(), &model.PredictRequest{
		Question:  "What is your gender?",
		UserEmail: "a@x.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "Male", resp.Answer)
	assert.Equal(t, testMemoryConfidence, resp.Confidence)
	assert.Equal(t, "eeo.gender", resp.Intent)
	assert.Equal(t, "Retrieved from Pattern Memory", resp.Reasoning)
	assert.Equal(t, 0, predictor.calls, "memory hit skips the model")
}

func TestPredictFallsBackToModelAndLearns(t *testing.T) {
	patternRepo := newFakePatternRepo()
	predictor := &fakePredictor{resp: &model.PredictResponse{
		Answer:     "John",
		Confidence: 0.85,
		Intent:     "personal.firstName",
		Reasoning:  "from profile",
	}}
	svc := newTestAutofillService(patternRepo, newFakeProfileRepo(), predictor)

	resp, err := svc.Predict(context.Background(), &model.PredictRequest{
		Question:  "First name",
		FieldType: "text",
		UserEmail: "a@x.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "John", resp.Answer)
	assert.Equal(t, 1, predictor.calls)
	assert.Equal(t, 1, patternRepo.upsertCalls, "confident answer learned exactly once")

	stored := patternRepo.rows[PatternID("a@x.com", "first name", "personal.firstName")]
	assert.Equal(t, "John", stored.AnswerMappings[0].CanonicalValue)
	assert.Equal(t, model.PatternSourceAI, stored.Source)
}

func TestPredictDoesNotLearnBelowThreshold(t *testing.T) {
	patternRepo := newFakePatternRepo()
	predictor := &fakePredictor{resp: &model.PredictResponse{
		Answer:     "John",
		Confidence: 0.69,
		Intent:     "personal.firstName",
	}}
	svc := newTestAutofillService(patternRepo, newFakeProfileRepo(), predictor)

	resp, err := svc.Predict(context.Background(), &model.PredictRequest{
		Question:  "First name",
		UserEmail: "a@x.com",
	})

	require.NoError(t, err)
	assert.Equal(t, "John", resp.Answer, "answer still returned")
	assert.Equal(t, 0, patternRepo.upsertCalls)
}

func TestPredictSubstitutesUnknownIntent(t *testing.T) {
	patternRepo := newFakePatternRepo()
	predictor := &fakePredictor{resp: &model.PredictResponse{
		Answer:     "something",
		Confidence: 0.40,
	}}
	svc := newTestAutofillService(patternRepo, newFakeProfileRepo(), predictor)

	resp, err := svc.Predict(context.Background(), &model.PredictRequest{Question: "odd question"})

	require.NoError(t, err)
	assert.Equal(t, model.IntentUnknown, resp.Intent)
}

func TestPredictUsesInlineProfileWithoutStoreLookup(t *testing.T) {
	patternRepo := newFakePatternRepo()
	profileRepo := newFakeProfileRepo()
	predictor := &fakePredictor{resp: &model.PredictResponse{
		Answer:     "John",
		Confidence: 0.40,
		Intent:     "personal.firstName",
	}}
	svc := newTestAutofillService(patternRepo, profileRepo, predictor)

	resp, err := svc.Predict(context.Background(), &model.PredictRequest{
		Question:  "First name",
		UserEmail: "a@x.com",
		UserProfile: map[string]interface{}{
			"personal": map[string]interface{}{"firstName": "John"},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, "John", resp.Answer)
	assert.Equal(t, 0, profileRepo.getCalls, "inline profile skips the store read")
}

func TestPredictSurvivesProfileLookupFailure(t *testing.T) {
	patternRepo := newFakePatternRepo()
	profileRepo := newFakeProfileRepo()
	profileRepo.getErr = fmt.Errorf("store down")
	predictor := &fakePredictor{resp: &model.PredictResponse{
		Answer:     "John",
		Confidence: 0.40,
		Intent:     "personal.firstName",
	}}
	svc := newTestAutofillService(patternRepo, profileRepo, predictor)

	resp, err := svc.Predict(context.Background(), &model.PredictRequest{
		Question:  "First name",
		UserEmail: "a@x.com",
	})

	require.NoError(t, err, "lookup failure degrades to a profile-less prediction")
	assert.Equal(t, "John", resp.Answer)
	assert.Equal(t, 1, profileRepo.getCalls)
}

func TestPredictSwallowsLearnFailure(t *testing.T) {
	patternRepo := newFakePatternRepo()
	patternRepo.upsertErr = fmt.Errorf("store down")
	predictor := &fakePredictor{resp: &model.PredictResponse{
		Answer:     "John",
		Confidence: 0.90,
		Intent:     "personal.firstName",
	}}
	svc := newTestAutofillService(patternRepo, newFakeProfileRepo(), predictor)

	resp, err := svc.Predict(context.Background(), &model.PredictRequest{
		Question:  "First name",
		UserEmail: "a@x.com",
	})

	require.NoError(t, err, "learn failure never costs the user the answer")
	assert.Equal(t, "John", resp.Answer)
}

func TestPredictSurfacesModelFailure(t *testing.T) {
	patternRepo := newFakePatternRepo()
	predictor := &fakePredictor{err: fmt.Errorf("model timeout")}
	svc := newTestAutofillService(patternRepo, newFakeProfileRepo(), predictor)

	_, err := svc.Predict(context.Background(), &model.PredictRequest{Question: "First name"})
	assert.Error(t, err)
}

// Upload-then-search round trip: the canonical value comes back as the answer
// when the mapping carries no variants.
func TestUploadThenSearchRoundTrip(t *testing.T) {
	patternRepo := newFakePatternRepo()
	profileRepo := newFakeProfileRepo()
	log := logger.NewNop()
	patterns := NewPatternService(patternRepo, profileRepo, log)
	matcher := NewMatcherService(patternRepo, nil, 0.5, log)
	ctx := context.Background()

	uploaded := model.Pattern{
		QuestionPattern: "What is your gender?",
		Intent:          "eeo.gender",
		AnswerMappings:  []model.AnswerMapping{{CanonicalValue: "Male"}},
	}
	require.NoError(t, patterns.SavePattern(ctx, uploaded, "a@x.com"))

	match := matcher.Search(ctx, "what is your gender?", "a@x.com")
	require.NotNil(t, match)
	assert.Equal(t, "Male", match.Pattern.PrimaryAnswer())
}
