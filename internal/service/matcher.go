package service

import (
	"context"
	"strings"

	"autofill-api/internal/cache"
	"autofill-api/internal/logger"
	"autofill-api/internal/model"
	"autofill-api/internal/repository"
)

// MatcherService performs tiered pattern lookup: the owner's private patterns
// first (exact match only), then the global set (exact, then word-overlap
// fuzzy). Matching is read-only; store failures degrade to a miss.
type MatcherService struct {
	patternRepo  repository.PatternRepo
	patternCache cache.PatternCache
	threshold    float64
	log          *logger.Logger
}

// NewMatcherService creates a matcher with the given fuzzy-match threshold.
// patternCache may be nil, in which case every global scan reads the store.
func NewMatcherService(patternRepo repository.PatternRepo, patternCache cache.PatternCache, threshold float64, log *logger.Logger) *MatcherService {
	return &MatcherService{
		patternRepo:  patternRepo,
		patternCache: patternCache,
		threshold:    threshold,
		log:          log,
	}
}

// Search returns the first pattern matching the question, or nil when nothing
// qualifies. A private hit always wins over any global match.
func (s *MatcherService) Search(ctx context.Context, question, ownerEmail string) *model.MatchResult {
	normalized := Normalize(question)
	if normalized == "" {
		return nil
	}

	if ownerEmail != "" {
		patterns, err := s.patternRepo.ListPrivate(ctx, ownerEmail)
		if err != nil {
			s.log.Error("private pattern scan failed", "error", err)
		}
		for i := range patterns {
			if Normalize(patterns[i].QuestionPattern) == normalized {
				return &model.MatchResult{Pattern: patterns[i], Scope: model.MatchScopePrivate}
			}
		}
	}

	queryWords := wordSet(normalized)
	for _, p := range s.globalPatterns(ctx) {
		candidate := Normalize(p.QuestionPattern)
		if candidate == normalized {
			return &model.MatchResult{Pattern: p, Scope: model.MatchScopeGlobal}
		}
		// First candidate clearing the threshold wins; no ranking pass.
		if overlap(queryWords, wordSet(candidate)) >= s.threshold {
			return &model.MatchResult{Pattern: p, Scope: model.MatchScopeGlobal}
		}
	}

	return nil
}

// globalPatterns reads the global set through the cache when one is wired
func (s *MatcherService) globalPatterns(ctx context.Context) []model.Pattern {
	if s.patternCache != nil {
		cached, err := s.patternCache.GetGlobal(ctx)
		if err != nil {
			s.log.Warn("global pattern cache read failed", "error", err)
		} else if cached != nil {
			return cached
		}
	}

	patterns, err := s.patternRepo.ListGlobal(ctx)
	if err != nil {
		s.log.Error("global pattern scan failed", "error", err)
		return nil
	}

	if s.patternCache != nil {
		if err := s.patternCache.SetGlobal(ctx, patterns); err != nil {
			s.log.Warn("global pattern cache write failed", "error", err)
		}
	}
	return patterns
}

func wordSet(text string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(text) {
		words[w] = struct{}{}
	}
	return words
}

// overlap is |intersection| / max(|a|, |b|). Empty sides score zero so a
// degenerate division never happens.
func overlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for w := range a {
		if _, ok := b[w]; ok {
			shared++
		}
	}
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	return float64(shared) / float64(longest)
}
