package service

import (
	"context"
	"time"

	"autofill-api/internal/model"
)

// In-memory stand-ins for the store so the engine is testable without
// postgres or redis.

type fakePatternRepo struct {
	rows   map[string]model.Pattern // private patterns by id
	global []model.Pattern

	findCalls   int
	upsertCalls int

	findNil       bool // existence check reports a miss even when a row exists
	findErr       error
	upsertErr     error
	upsertErrOnce error // returned for the next upsert only, then cleared

	listPrivateErr error
	listGlobalErr  error
}

func newFakePatternRepo() *fakePatternRepo {
	return &fakePatternRepo{rows: map[string]model.Pattern{}}
}

func (f *fakePatternRepo) FindPrivateByOwnerAndQuestion(_ context.Context, email, normalizedQuestion string) (*model.Pattern, error) {
	f.findCalls++
	if f.findErr != nil {
		return nil, f.findErr
	}
	if f.findNil {
		return nil, nil
	}
	for _, p := range f.rows {
		if p.OwnerEmail == email && p.QuestionPattern == normalizedQuestion {
			row := p
			return &row, nil
		}
	}
	return nil, nil
}

func (f *fakePatternRepo) UpsertPrivate(_ context.Context, p *model.Pattern) error {
	f.upsertCalls++
	if f.upsertErrOnce != nil {
		err := f.upsertErrOnce
		f.upsertErrOnce = nil
		return err
	}
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.rows[p.ID] = *p
	return nil
}

func (f *fakePatternRepo) ListPrivate(_ context.Context, email string) ([]model.Pattern, error) {
	if f.listPrivateErr != nil {
		return nil, f.listPrivateErr
	}
	var patterns []model.Pattern
	for _, p := range f.rows {
		if p.OwnerEmail == email {
			patterns = append(patterns, p)
		}
	}
	return patterns, nil
}

func (f *fakePatternRepo) ListGlobal(_ context.Context) ([]model.Pattern, error) {
	if f.listGlobalErr != nil {
		return nil, f.listGlobalErr
	}
	return f.global, nil
}

type fakeProfileRepo struct {
	profiles  map[string]model.UserProfile
	stubCalls int
	getCalls  int
	stubErr   error
	getErr    error
	countErr  error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[string]model.UserProfile{}}
}

func (f *fakeProfileRepo) Upsert(_ context.Context, email string, profileData map[string]interface{}) error {
	f.profiles[email] = model.UserProfile{Email: email, ProfileData: profileData, UpdatedAt: time.Now()}
	return nil
}

func (f *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*model.UserProfile, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	if p, ok := f.profiles[email]; ok {
		row := p
		return &row, nil
	}
	return nil, nil
}

func (f *fakeProfileRepo) CreateStub(_ context.Context, email string) error {
	f.stubCalls++
	if f.stubErr != nil {
		return f.stubErr
	}
	if _, ok := f.profiles[email]; !ok {
		f.profiles[email] = model.UserProfile{
			Email:       email,
			ProfileData: map[string]interface{}{"personal": map[string]interface{}{"email": email}},
			UpdatedAt:   time.Now(),
		}
	}
	return nil
}

func (f *fakeProfileRepo) CountAll(_ context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.profiles), nil
}

func (f *fakeProfileRepo) CountUpdatedSince(_ context.Context, since time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, p := range f.profiles {
		if !p.UpdatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type fakeFeedbackRepo struct {
	created   []model.Feedback
	createErr error
	countErr  error
}

func (f *fakeFeedbackRepo) Create(_ context.Context, feedback *model.Feedback) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *feedback)
	return nil
}

func (f *fakeFeedbackRepo) CountAll(_ context.Context) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	return len(f.created), nil
}

func (f *fakeFeedbackRepo) CountCreatedSince(_ context.Context, since time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, fb := range f.created {
		if !fb.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type fakePredictor struct {
	resp  *model.PredictResponse
	err   error
	calls int
}

func (f *fakePredictor) Predict(_ context.Context, _ *model.PredictRequest, _ *model.UserProfile) (*model.PredictResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	resp := *f.resp
	return &resp, nil
}
