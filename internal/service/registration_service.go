package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/melcoco/registration-service/internal/auth"
	"github.com/melcoco/registration-service/internal/config"
	"github.com/melcoco/registration-service/internal/domain"
	"github.com/melcoco/registration-service/internal/events"
	"github.com/melcoco/registration-service/internal/repository"
	apperrors "github.com/melcoco/registration-service/pkg/util/errorutil"
)

// RegisterInput is a validated registration submission. Apps is kept raw
// because the form has historically sent it in more than one shape.
type RegisterInput struct {
	Email      string
	Name       string
	SalonName  string
	Prefecture string
	Status     string
	Apps       json.RawMessage
}

// RegistrationResult reports the outcome of a registration.
type RegistrationResult struct {
	UID     string
	Created bool // false when an existing identity was reused
	Trial   bool
}

// RegistrationService runs the registration workflow: provision an identity,
// persist the profile, then schedule notifications.
type RegistrationService struct {
	identities repository.IdentityRepository
	profiles   repository.ProfileRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.RegistrationConfig
	now        func() time.Time
}

// RegistrationDependencies encapsulates repo requirements for the service.
type RegistrationDependencies struct {
	IdentityRepo repository.IdentityRepository
	ProfileRepo  repository.ProfileRepository
	Dispatcher   events.Dispatcher
}

// NewRegistrationService builds the service.
func NewRegistrationService(cfg config.RegistrationConfig, deps RegistrationDependencies, logger *zap.Logger) *RegistrationService {
	return &RegistrationService{
		identities: deps.IdentityRepo,
		profiles:   deps.ProfileRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Register provisions an identity for the submission, upserts the profile and
// publishes the registration event for background notification. The event is
// enqueued, never awaited, so callers are not blocked on mail delivery.
func (s *RegistrationService) Register(ctx context.Context, input RegisterInput) (*RegistrationResult, error) {
	trial := domain.IsTrial(input.Status)
	now := s.now()
	apps := domain.NormalizeApps(input.Apps, trial, now, s.cfg.DefaultAppKeys)

	identity, created, err := s.provisionIdentity(ctx, input.Email, input.Name)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		UID:         identity.UID,
		Status:      input.Status,
		Email:       input.Email,
		DisplayName: input.Name,
		SalonName:   input.SalonName,
		Prefecture:  input.Prefecture,
		Apps:        apps,
	}
	if trial {
		profile.TrialStartDate = domain.DateString(now)
	}

	if err := s.profiles.Upsert(ctx, profile); err != nil {
		// The identity may already exist at this point; there is no
		// compensating rollback.
		return nil, fmt.Errorf("persist profile: %w", err)
	}

	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventUserRegistered,
		Timestamp: now,
		Payload: events.UserRegisteredPayload{
			UID:        identity.UID,
			Email:      input.Email,
			Name:       input.Name,
			SalonName:  input.SalonName,
			Prefecture: input.Prefecture,
			Trial:      trial,
			Apps:       apps,
		},
	})

	s.logger.Info("registration completed",
		zap.String("uid", identity.UID),
		zap.Bool("created", created),
		zap.Bool("trial", trial))

	return &RegistrationResult{UID: identity.UID, Created: created, Trial: trial}, nil
}

// provisionIdentity creates an identity with the fixed default password. When
// the email is already registered the existing identity is reused, unless the
// reuse policy is disabled, in which case the conflict is surfaced.
func (s *RegistrationService) provisionIdentity(ctx context.Context, email, name string) (*domain.Identity, bool, error) {
	hash, err := auth.HashPassword(s.cfg.DefaultPassword, s.cfg.BcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}

	identity := &domain.Identity{
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: hash,
	}

	err = s.identities.Create(ctx, identity)
	if err == nil {
		return identity, true, nil
	}
	if !errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, false, fmt.Errorf("create identity: %w", err)
	}

	if !s.cfg.ReuseExisting {
		return nil, false, apperrors.NewConflict("email already registered")
	}

	existing, err := s.identities.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("lookup existing identity: %w", err)
	}
	return existing, false, nil
}
