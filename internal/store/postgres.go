package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"autofill-api/internal/logger"
)

// Connect opens a pgx pool against the given DSN and verifies it with a ping
func Connect(ctx context.Context, databaseURL string, log *logger.Logger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.ConnConfig.ConnectTimeout = 10 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	log.Info("connected to postgres")
	return pool, nil
}

// EnsureSchema creates the tables the service needs if they don't exist yet.
// learned_patterns references user_profiles(email); the pattern service relies
// on that constraint being reported as a foreign key violation.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS user_profiles (
			email        TEXT PRIMARY KEY,
			profile_data JSONB NOT NULL DEFAULT '{}'::jsonb,
			updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS learned_patterns (
			id               TEXT PRIMARY KEY,
			user_email       TEXT NOT NULL REFERENCES user_profiles(email),
			question_pattern TEXT NOT NULL,
			intent           TEXT NOT NULL,
			canonical_key    TEXT,
			field_type       TEXT,
			confidence       DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			answer_mappings  JSONB NOT NULL DEFAULT '[]'::jsonb,
			source           TEXT,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
			last_used        TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_learned_patterns_owner_question
			ON learned_patterns (user_email, question_pattern)`,
		`CREATE TABLE IF NOT EXISTS global_patterns (
			id               TEXT PRIMARY KEY,
			question_pattern TEXT NOT NULL,
			intent           TEXT NOT NULL,
			canonical_key    TEXT,
			field_type       TEXT,
			confidence       DOUBLE PRECISION NOT NULL DEFAULT 1.0,
			answer_mappings  JSONB NOT NULL DEFAULT '[]'::jsonb,
			source           TEXT,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS feedbacks (
			id            UUID PRIMARY KEY,
			email         TEXT NOT NULL,
			feedback_type TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
