package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"autofill-api/internal/logger"
	"autofill-api/internal/model"
	"autofill-api/internal/repository"
)

// ErrOwnerRequired rejects a private pattern write with no owner before it
// ever reaches the store
var ErrOwnerRequired = errors.New("owner email required for private pattern")

// ErrEmptyAnswerMappings rejects a pattern with nothing to answer with
var ErrEmptyAnswerMappings = errors.New("pattern requires at least one answer mapping")

// PatternService is the write gateway for private patterns plus the direct
// read paths over the pattern store. Writes are idempotent: the same
// (owner, question, intent) always converges to one row.
type PatternService struct {
	patternRepo repository.PatternRepo
	profileRepo repository.ProfileRepo
	log         *logger.Logger
}

// NewPatternService creates a new pattern service
func NewPatternService(patternRepo repository.PatternRepo, profileRepo repository.ProfileRepo, log *logger.Logger) *PatternService {
	return &PatternService{
		patternRepo: patternRepo,
		profileRepo: profileRepo,
		log:         log,
	}
}

// PatternID is the deterministic identity of a private pattern: a stable hash
// of owner, normalized question, and intent, truncated and namespaced.
// Repeated learning of the same triple converges to this one id.
func PatternID(ownerEmail, normalizedQuestion, intent string) string {
	sum := md5.Sum([]byte(ownerEmail + ":" + normalizedQuestion + ":" + intent))
	return "pattern_" + hex.EncodeToString(sum[:])[:12]
}

// SavePattern upserts a private pattern for the owner. If an earlier row
// exists for the same (owner, normalized question) its identity is reused so
// no second id is ever minted. The write itself is always a merge-on-conflict
// upsert: the deterministic id means two racing saves of the same triple both
// land on one row, with the later write's fields winning at the store rather
// than behind any in-process lock. A write blocked on the owner-profile
// foreign key self-heals: a stub profile is created and the write retried
// exactly once; a second failure surfaces.
func (s *PatternService) SavePattern(ctx context.Context, pattern model.Pattern, ownerEmail string) error {
	if ownerEmail == "" {
		return ErrOwnerRequired
	}
	if len(pattern.AnswerMappings) == 0 {
		return ErrEmptyAnswerMappings
	}

	record := pattern
	record.OwnerEmail = ownerEmail
	record.QuestionPattern = Normalize(pattern.QuestionPattern)
	if record.Intent == "" {
		record.Intent = model.IntentUnknown
	}
	if record.Confidence == 0 {
		record.Confidence = 1.0
	}
	if record.Source == "" {
		record.Source = model.PatternSourceManual
	}
	record.ID = PatternID(ownerEmail, record.QuestionPattern, record.Intent)

	now := time.Now()
	record.LastUsed = now
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	existing, err := s.patternRepo.FindPrivateByOwnerAndQuestion(ctx, ownerEmail, record.QuestionPattern)
	if err != nil {
		return fmt.Errorf("look up existing pattern: %w", err)
	}

	if existing != nil {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}

	s.log.Debug("saving pattern", "patternId", record.ID, "existing", existing != nil)
	err = s.patternRepo.UpsertPrivate(ctx, &record)

	if errors.Is(err, repository.ErrForeignKeyViolation) {
		// Owner has no profile row yet. Create the minimal stub and retry once.
		s.log.Warn("owner profile missing, creating stub", "patternId", record.ID)
		if stubErr := s.profileRepo.CreateStub(ctx, ownerEmail); stubErr != nil {
			return fmt.Errorf("create stub profile: %w", stubErr)
		}
		err = s.patternRepo.UpsertPrivate(ctx, &record)
	}

	if err != nil {
		return fmt.Errorf("save pattern %s: %w", record.ID, err)
	}

	s.log.Info("pattern saved", "patternId", record.ID, "intent", record.Intent)
	return nil
}

// GlobalPatterns returns every global pattern, fresh from the store.
// Failures degrade to an empty list so the sync endpoint stays available.
func (s *PatternService) GlobalPatterns(ctx context.Context) []model.Pattern {
	patterns, err := s.patternRepo.ListGlobal(ctx)
	if err != nil {
		s.log.Error("reading global patterns failed", "error", err)
		return []model.Pattern{}
	}
	if patterns == nil {
		patterns = []model.Pattern{}
	}
	return patterns
}

// UserPatterns returns all learned patterns for one user, degrading to empty
func (s *PatternService) UserPatterns(ctx context.Context, email string) []model.Pattern {
	patterns, err := s.patternRepo.ListPrivate(ctx, email)
	if err != nil {
		s.log.Error("reading user patterns failed", "error", err)
		return []model.Pattern{}
	}
	if patterns == nil {
		patterns = []model.Pattern{}
	}
	return patterns
}
