package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autofill-api/internal/model"
)

// PatternRepo is the narrow relational-store contract for patterns. Writes
// report referential-integrity failures as ErrForeignKeyViolation.
type PatternRepo interface {
	FindPrivateByOwnerAndQuestion(ctx context.Context, email, normalizedQuestion string) (*model.Pattern, error)
	UpsertPrivate(ctx context.Context, p *model.Pattern) error
	ListPrivate(ctx context.Context, email string) ([]model.Pattern, error)
	ListGlobal(ctx context.Context) ([]model.Pattern, error)
}

type patternRepo struct {
	pool *pgxpool.Pool
}

// NewPatternRepo creates a pattern repository backed by postgres
func NewPatternRepo(pool *pgxpool.Pool) PatternRepo {
	return &patternRepo{pool: pool}
}

const privatePatternColumns = `id, user_email, question_pattern, intent, canonical_key, field_type, confidence, answer_mappings, source, created_at, last_used`

func (r *patternRepo) FindPrivateByOwnerAndQuestion(ctx context.Context, email, normalizedQuestion string) (*model.Pattern, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+privatePatternColumns+` FROM learned_patterns
		 WHERE user_email = $1 AND question_pattern = $2
		 LIMIT 1`,
		email, normalizedQuestion)

	p, err := scanPrivatePattern(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find private pattern: %w", err)
	}
	return p, nil
}

func (r *patternRepo) UpsertPrivate(ctx context.Context, p *model.Pattern) error {
	mappings, err := json.Marshal(p.AnswerMappings)
	if err != nil {
		return fmt.Errorf("marshal answer mappings: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO learned_patterns (`+privatePatternColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (id) DO UPDATE SET
			user_email = EXCLUDED.user_email,
			question_pattern = EXCLUDED.question_pattern,
			intent = EXCLUDED.intent,
			canonical_key = EXCLUDED.canonical_key,
			field_type = EXCLUDED.field_type,
			confidence = EXCLUDED.confidence,
			answer_mappings = EXCLUDED.answer_mappings,
			source = EXCLUDED.source,
			last_used = EXCLUDED.last_used`,
		p.ID, p.OwnerEmail, p.QuestionPattern, p.Intent, nullable(p.CanonicalKey), nullable(p.FieldType),
		p.Confidence, mappings, nullable(p.Source), p.CreatedAt, p.LastUsed)
	if err != nil {
		return mapWriteError(fmt.Errorf("upsert private pattern: %w", err))
	}
	return nil
}

func (r *patternRepo) ListPrivate(ctx context.Context, email string) ([]model.Pattern, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+privatePatternColumns+` FROM learned_patterns
		 WHERE user_email = $1
		 ORDER BY created_at`,
		email)
	if err != nil {
		return nil, fmt.Errorf("list private patterns: %w", err)
	}
	defer rows.Close()

	var patterns []model.Pattern
	for rows.Next() {
		p, err := scanPrivatePattern(rows)
		if err != nil {
			return nil, fmt.Errorf("list private patterns: %w", err)
		}
		patterns = append(patterns, *p)
	}
	return patterns, rows.Err()
}

func (r *patternRepo) ListGlobal(ctx context.Context) ([]model.Pattern, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, question_pattern, intent, canonical_key, field_type, confidence, answer_mappings, source, created_at
		 FROM global_patterns
		 ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list global patterns: %w", err)
	}
	defer rows.Close()

	var patterns []model.Pattern
	for rows.Next() {
		var (
			p            model.Pattern
			canonicalKey *string
			fieldType    *string
			source       *string
			mappings     []byte
		)
		if err := rows.Scan(&p.ID, &p.QuestionPattern, &p.Intent, &canonicalKey, &fieldType,
			&p.Confidence, &mappings, &source, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("list global patterns: %w", err)
		}
		p.CanonicalKey = deref(canonicalKey)
		p.FieldType = deref(fieldType)
		p.Source = deref(source)
		if err := json.Unmarshal(mappings, &p.AnswerMappings); err != nil {
			return nil, fmt.Errorf("decode answer mappings for %s: %w", p.ID, err)
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

func scanPrivatePattern(row pgx.Row) (*model.Pattern, error) {
	var (
		p            model.Pattern
		canonicalKey *string
		fieldType    *string
		source       *string
		mappings     []byte
	)
	if err := row.Scan(&p.ID, &p.OwnerEmail, &p.QuestionPattern, &p.Intent, &canonicalKey, &fieldType,
		&p.Confidence, &mappings, &source, &p.CreatedAt, &p.LastUsed); err != nil {
		return nil, err
	}
	p.CanonicalKey = deref(canonicalKey)
	p.FieldType = deref(fieldType)
	p.Source = deref(source)
	if err := json.Unmarshal(mappings, &p.AnswerMappings); err != nil {
		return nil, fmt.Errorf("decode answer mappings for %s: %w", p.ID, err)
	}
	return &p, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
