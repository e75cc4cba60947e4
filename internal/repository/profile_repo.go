package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autofill-api/internal/model"
)

// ProfileRepo stores user autofill profiles keyed by email
type ProfileRepo interface {
	Upsert(ctx context.Context, email string, profileData map[string]interface{}) error
	GetByEmail(ctx context.Context, email string) (*model.UserProfile, error)
	// CreateStub inserts a minimal profile row carrying only the email, so a
	// pattern write blocked on the profile foreign key can be retried.
	CreateStub(ctx context.Context, email string) error
	CountAll(ctx context.Context) (int, error)
	CountUpdatedSince(ctx context.Context, since time.Time) (int, error)
}

type profileRepo struct {
	pool *pgxpool.Pool
}

// NewProfileRepo creates a profile repository backed by postgres
func NewProfileRepo(pool *pgxpool.Pool) ProfileRepo {
	return &profileRepo{pool: pool}
}

func (r *profileRepo) Upsert(ctx context.Context, email string, profileData map[string]interface{}) error {
	data, err := json.Marshal(profileData)
	if err != nil {
		return fmt.Errorf("marshal profile data: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO user_profiles (email, profile_data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (email) DO UPDATE SET
			profile_data = EXCLUDED.profile_data,
			updated_at = now()`,
		email, data)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	var (
		profile model.UserProfile
		data    []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT email, profile_data, updated_at FROM user_profiles WHERE email = $1`,
		email).Scan(&profile.Email, &data, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if err := json.Unmarshal(data, &profile.ProfileData); err != nil {
		return nil, fmt.Errorf("decode profile data: %w", err)
	}
	return &profile, nil
}

func (r *profileRepo) CreateStub(ctx context.Context, email string) error {
	data, err := json.Marshal(map[string]interface{}{
		"personal": map[string]interface{}{"email": email},
	})
	if err != nil {
		return fmt.Errorf("marshal stub profile: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO user_profiles (email, profile_data, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (email) DO NOTHING`,
		email, data)
	if err != nil {
		return fmt.Errorf("create stub profile: %w", err)
	}
	return nil
}

func (r *profileRepo) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM user_profiles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return count, nil
}

func (r *profileRepo) CountUpdatedSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM user_profiles WHERE updated_at >= $1`, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recent profiles: %w", err)
	}
	return count, nil
}
