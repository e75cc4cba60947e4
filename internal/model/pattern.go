package model

import "time"

// MatchScope identifies which tier of the pattern store a match came from
type MatchScope string

const (
	MatchScopePrivate MatchScope = "private"
	MatchScopeGlobal  MatchScope = "global"
)

// PatternSource tags where a pattern came from
const (
	PatternSourceAI     = "AI"
	PatternSourceManual = "manual"
)

// IntentUnknown is the low-value sentinel used when the model supplies no intent.
// A stored or returned pattern never carries an empty intent.
const IntentUnknown = "unknown"

// AnswerMapping maps a canonical answer value to its accepted variants and the
// form options it was seen with. The first variant (or the canonical value when
// there are none) is the answer served back to the extension.
type AnswerMapping struct {
	CanonicalValue string   `json:"canonicalValue"`
	Variants       []string `json:"variants"`
	ContextOptions []string `json:"contextOptions"`
}

// Pattern is a learned question -> answer association.
// QuestionPattern is always stored normalized (lowercase, trimmed) so identity
// and matching never diverge on casing or whitespace. OwnerEmail is empty for
// global patterns; private pattern ids are a deterministic function of
// (owner, question, intent), global ids are store-assigned.
type Pattern struct {
	ID              string          `json:"id"`
	OwnerEmail      string          `json:"ownerEmail,omitempty"`
	QuestionPattern string          `json:"questionPattern"`
	Intent          string          `json:"intent"`
	CanonicalKey    string          `json:"canonicalKey,omitempty"`
	FieldType       string          `json:"fieldType,omitempty"`
	Confidence      float64         `json:"confidence"`
	AnswerMappings  []AnswerMapping `json:"answerMappings"`
	Source          string          `json:"source,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastUsed        time.Time       `json:"lastUsed"`
}

// PrimaryAnswer returns the answer this pattern resolves to: the first
// mapping's first variant, falling back to its canonical value.
func (p *Pattern) PrimaryAnswer() string {
	if len(p.AnswerMappings) == 0 {
		return ""
	}
	m := p.AnswerMappings[0]
	if len(m.Variants) > 0 {
		return m.Variants[0]
	}
	return m.CanonicalValue
}

// MatchResult is a successful pattern lookup together with the tier it hit
type MatchResult struct {
	Pattern Pattern    `json:"pattern"`
	Scope   MatchScope `json:"scope"`
}
