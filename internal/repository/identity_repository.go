package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/melcoco/registration-service/internal/domain"
)

const pgUniqueViolation = "23505"

// IdentityRepository defines persistence access for authentication identities.
type IdentityRepository interface {
	Create(ctx context.Context, identity *domain.Identity) error
	GetByUID(ctx context.Context, uid string) (*domain.Identity, error)
	GetByEmail(ctx context.Context, email string) (*domain.Identity, error)
	List(ctx context.Context) ([]domain.Identity, error)
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
	MarkEmailVerified(ctx context.Context, email string) error
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

func (r *identityRepository) Create(ctx context.Context, identity *domain.Identity) error {
	const query = `
        INSERT INTO identities (uid, email, display_name, password_hash, email_verified)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		identity.UID,
		identity.Email,
		identity.DisplayName,
		identity.PasswordHash,
		identity.EmailVerified,
	).Scan(&identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *identityRepository) GetByUID(ctx context.Context, uid string) (*domain.Identity, error) {
	const query = `
        SELECT uid, email, display_name, password_hash, email_verified, created_at, updated_at
        FROM identities WHERE uid=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, uid))
}

func (r *identityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	const query = `
        SELECT uid, email, display_name, password_hash, email_verified, created_at, updated_at
        FROM identities WHERE email=$1`

	return r.scanOne(r.pool.QueryRow(ctx, query, email))
}

func (r *identityRepository) List(ctx context.Context) ([]domain.Identity, error) {
	const query = `
        SELECT uid, email, display_name, password_hash, email_verified, created_at, updated_at
        FROM identities ORDER BY created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var identities []domain.Identity
	for rows.Next() {
		var identity domain.Identity
		if err := rows.Scan(
			&identity.UID,
			&identity.Email,
			&identity.DisplayName,
			&identity.PasswordHash,
			&identity.EmailVerified,
			&identity.CreatedAt,
			&identity.UpdatedAt,
		); err != nil {
			return nil, err
		}
		identities = append(identities, identity)
	}
	return identities, rows.Err()
}

func (r *identityRepository) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	const query = `
        UPDATE identities SET password_hash=$1, updated_at=NOW()
        WHERE uid=$2`

	cmd, err := r.pool.Exec(ctx, query, passwordHash, uid)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *identityRepository) MarkEmailVerified(ctx context.Context, email string) error {
	const query = `
        UPDATE identities SET email_verified=TRUE, updated_at=NOW()
        WHERE email=$1`

	cmd, err := r.pool.Exec(ctx, query, email)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *identityRepository) scanOne(row pgx.Row) (*domain.Identity, error) {
	var identity domain.Identity
	if err := row.Scan(
		&identity.UID,
		&identity.Email,
		&identity.DisplayName,
		&identity.PasswordHash,
		&identity.EmailVerified,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &identity, nil
}
