package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/melcoco/registration-service/internal/auth"
	"github.com/melcoco/registration-service/internal/domain"
	"github.com/melcoco/registration-service/internal/repository"
	apperrors "github.com/melcoco/registration-service/pkg/util/errorutil"
)

// AccountService backs the operator endpoints: listing registered
// identities and forcing a password reset.
type AccountService struct {
	identities repository.IdentityRepository
	bcryptCost int
}

// NewAccountService builds the service.
func NewAccountService(identities repository.IdentityRepository, bcryptCost int) *AccountService {
	return &AccountService{identities: identities, bcryptCost: bcryptCost}
}

// ListIdentities returns every provisioned identity.
func (s *AccountService) ListIdentities(ctx context.Context) ([]domain.Identity, error) {
	return s.identities.List(ctx)
}

// ResetPassword replaces the identity's password with a new hash.
func (s *AccountService) ResetPassword(ctx context.Context, uid, newPassword string) error {
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.identities.UpdatePassword(ctx, uid, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("user")
		}
		return err
	}
	return nil
}
