package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"autofill-api/internal/model"
)

// FeedbackRepo stores tracked feedback interactions
type FeedbackRepo interface {
	Create(ctx context.Context, feedback *model.Feedback) error
	CountAll(ctx context.Context) (int, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}

type feedbackRepo struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepo creates a feedback repository backed by postgres
func NewFeedbackRepo(pool *pgxpool.Pool) FeedbackRepo {
	return &feedbackRepo{pool: pool}
}

func (r *feedbackRepo) Create(ctx context.Context, feedback *model.Feedback) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO feedbacks (id, email, feedback_type, created_at)
		 VALUES ($1, $2, $3, $4)`,
		feedback.ID, feedback.Email, feedback.FeedbackType, feedback.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

func (r *feedbackRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM feedbacks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count feedbacks: %w", err)
	}
	return count, nil
}

func (r *feedbackRepo) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM feedbacks WHERE created_at >= $1`, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recent feedbacks: %w", err)
	}
	return count, nil
}
