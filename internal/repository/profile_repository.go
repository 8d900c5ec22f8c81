package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/melcoco/registration-service/internal/domain"
)

// ProfileRepository defines persistence access for registrant profiles.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByUID(ctx context.Context, uid string) (*domain.Profile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository returns a Postgres-backed implementation.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

// Upsert writes the profile with merge semantics: re-registration updates the
// existing row, app metadata is merged key-by-key, and created_at plus
// trial_start_date are write-once.
func (r *profileRepository) Upsert(ctx context.Context, profile *domain.Profile) error {
	appsJSON, err := json.Marshal(profile.Apps)
	if err != nil {
		return fmt.Errorf("encode apps: %w", err)
	}

	var trialStartDate *string
	if profile.TrialStartDate != "" {
		trialStartDate = &profile.TrialStartDate
	}

	const query = `
        INSERT INTO profiles (uid, status, email, display_name, salon_name, prefecture, apps, trial_start_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        ON CONFLICT (uid) DO UPDATE SET
            status = EXCLUDED.status,
            email = EXCLUDED.email,
            display_name = EXCLUDED.display_name,
            salon_name = EXCLUDED.salon_name,
            prefecture = EXCLUDED.prefecture,
            apps = profiles.apps || EXCLUDED.apps,
            trial_start_date = COALESCE(profiles.trial_start_date, EXCLUDED.trial_start_date),
            updated_at = NOW()
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		profile.UID,
		profile.Status,
		profile.Email,
		profile.DisplayName,
		profile.SalonName,
		profile.Prefecture,
		appsJSON,
		trialStartDate,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	const query = `
        SELECT uid, status, email, display_name, salon_name, prefecture, apps, trial_start_date, created_at, updated_at
        FROM profiles WHERE uid=$1`

	var (
		profile        domain.Profile
		appsJSON       []byte
		trialStartDate *string
	)
	if err := r.pool.QueryRow(ctx, query, uid).Scan(
		&profile.UID,
		&profile.Status,
		&profile.Email,
		&profile.DisplayName,
		&profile.SalonName,
		&profile.Prefecture,
		&appsJSON,
		&trialStartDate,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(appsJSON, &profile.Apps); err != nil {
		return nil, fmt.Errorf("decode apps: %w", err)
	}
	if trialStartDate != nil {
		profile.TrialStartDate = *trialStartDate
	}
	return &profile, nil
}
