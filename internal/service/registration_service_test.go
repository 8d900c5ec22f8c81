package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/melcoco/registration-service/internal/config"
	"github.com/melcoco/registration-service/internal/domain"
	"github.com/melcoco/registration-service/internal/events"
	"github.com/melcoco/registration-service/internal/repository"
	apperrors "github.com/melcoco/registration-service/pkg/util/errorutil"
)

type mockIdentityRepo struct {
	createFn     func(ctx context.Context, identity *domain.Identity) error
	getByEmailFn func(ctx context.Context, email string) (*domain.Identity, error)
}

func (m *mockIdentityRepo) Create(ctx context.Context, identity *domain.Identity) error {
	if m.createFn != nil {
		return m.createFn(ctx, identity)
	}
	return nil
}
func (m *mockIdentityRepo) GetByUID(ctx context.Context, uid string) (*domain.Identity, error) {
	return nil, repository.ErrNotFound
}
func (m *mockIdentityRepo) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, repository.ErrNotFound
}
func (m *mockIdentityRepo) List(ctx context.Context) ([]domain.Identity, error) { return nil, nil }
func (m *mockIdentityRepo) UpdatePassword(ctx context.Context, uid, passwordHash string) error {
	return nil
}
func (m *mockIdentityRepo) MarkEmailVerified(ctx context.Context, email string) error { return nil }

type mockProfileRepo struct {
	upsertFn func(ctx context.Context, profile *domain.Profile) error
	upserted *domain.Profile
}

func (m *mockProfileRepo) Upsert(ctx context.Context, profile *domain.Profile) error {
	m.upserted = profile
	if m.upsertFn != nil {
		return m.upsertFn(ctx, profile)
	}
	return nil
}
func (m *mockProfileRepo) GetByUID(ctx context.Context, uid string) (*domain.Profile, error) {
	return nil, repository.ErrNotFound
}

type captureDispatcher struct {
	published []events.Event
}

func (d *captureDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}
func (d *captureDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}
func (d *captureDispatcher) Close()                                             {}

func testRegistrationConfig() config.RegistrationConfig {
	return config.RegistrationConfig{
		DefaultPassword: "melcoco",
		DefaultAppKeys:  []string{"i-agent", "i-timer"},
		ReuseExisting:   true,
		TrialDays:       7,
		BcryptCost:      4, // min cost keeps tests fast
	}
}

func newTestService(identities *mockIdentityRepo, profiles *mockProfileRepo, dispatcher events.Dispatcher, cfg config.RegistrationConfig) *RegistrationService {
	svc := NewRegistrationService(cfg, RegistrationDependencies{
		IdentityRepo: identities,
		ProfileRepo:  profiles,
		Dispatcher:   dispatcher,
	}, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func trialInput() RegisterInput {
	return RegisterInput{
		Email:      "a@x.com",
		Name:       "A",
		SalonName:  "S",
		Prefecture: "Tokyo",
		Status:     "trial",
		Apps:       json.RawMessage(`["agent","timer"]`),
	}
}

func TestRegister_TrialSuccess(t *testing.T) {
	identities := &mockIdentityRepo{}
	profiles := &mockProfileRepo{}
	dispatcher := &captureDispatcher{}
	svc := newTestService(identities, profiles, dispatcher, testRegistrationConfig())

	result, err := svc.Register(context.Background(), trialInput())
	require.NoError(t, err)
	require.NotEmpty(t, result.UID)
	require.True(t, result.Created)
	require.True(t, result.Trial)

	require.NotNil(t, profiles.upserted)
	require.Equal(t, result.UID, profiles.upserted.UID)
	require.Equal(t, "trial", profiles.upserted.Status)
	require.Equal(t, "2025-06-15", profiles.upserted.TrialStartDate)
	require.Equal(t, "2025-06-15", profiles.upserted.Apps["agent"].TrialStartDate)
	require.Equal(t, "2025-06-15", profiles.upserted.Apps["timer"].TrialStartDate)

	require.Len(t, dispatcher.published, 1)
	payload, ok := dispatcher.published[0].Payload.(events.UserRegisteredPayload)
	require.True(t, ok)
	require.Equal(t, result.UID, payload.UID)
	require.True(t, payload.Trial)
}

func TestRegister_NonTrialHasNoTrialStartDate(t *testing.T) {
	identities := &mockIdentityRepo{}
	profiles := &mockProfileRepo{}
	svc := newTestService(identities, profiles, &captureDispatcher{}, testRegistrationConfig())

	input := trialInput()
	input.Status = "active"
	input.Apps = nil

	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	require.Equal(t, "", profiles.upserted.TrialStartDate)
	// absent apps fall back to the configured default key set
	require.Len(t, profiles.upserted.Apps, 2)
	require.Contains(t, profiles.upserted.Apps, "i-agent")
	require.Contains(t, profiles.upserted.Apps, "i-timer")
}

func TestRegister_DuplicateEmailReusesIdentity(t *testing.T) {
	existing := &domain.Identity{UID: "existing-uid", Email: "a@x.com"}
	identities := &mockIdentityRepo{
		createFn: func(_ context.Context, _ *domain.Identity) error {
			return repository.ErrDuplicateEmail
		},
		getByEmailFn: func(_ context.Context, _ string) (*domain.Identity, error) {
			return existing, nil
		},
	}
	profiles := &mockProfileRepo{}
	dispatcher := &captureDispatcher{}
	svc := newTestService(identities, profiles, dispatcher, testRegistrationConfig())

	result, err := svc.Register(context.Background(), trialInput())
	require.NoError(t, err)
	require.Equal(t, "existing-uid", result.UID)
	require.False(t, result.Created)
	require.Len(t, dispatcher.published, 1)
}

func TestRegister_DuplicateEmailConflictWhenReuseDisabled(t *testing.T) {
	identities := &mockIdentityRepo{
		createFn: func(_ context.Context, _ *domain.Identity) error {
			return repository.ErrDuplicateEmail
		},
	}
	profiles := &mockProfileRepo{}
	dispatcher := &captureDispatcher{}
	cfg := testRegistrationConfig()
	cfg.ReuseExisting = false
	svc := newTestService(identities, profiles, dispatcher, cfg)

	_, err := svc.Register(context.Background(), trialInput())
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	require.Equal(t, "CONFLICT", domainErr.Code)
	require.Nil(t, profiles.upserted)
	require.Empty(t, dispatcher.published)
}

func TestRegister_ProvisioningFailureAborts(t *testing.T) {
	identities := &mockIdentityRepo{
		createFn: func(_ context.Context, _ *domain.Identity) error {
			return errors.New("provider unavailable")
		},
	}
	profiles := &mockProfileRepo{}
	dispatcher := &captureDispatcher{}
	svc := newTestService(identities, profiles, dispatcher, testRegistrationConfig())

	_, err := svc.Register(context.Background(), trialInput())
	require.Error(t, err)
	require.Nil(t, profiles.upserted)
	require.Empty(t, dispatcher.published)
}

func TestRegister_PersistenceFailureAbortsBeforePublish(t *testing.T) {
	identities := &mockIdentityRepo{}
	profiles := &mockProfileRepo{
		upsertFn: func(_ context.Context, _ *domain.Profile) error {
			return errors.New("store down")
		},
	}
	dispatcher := &captureDispatcher{}
	svc := newTestService(identities, profiles, dispatcher, testRegistrationConfig())

	_, err := svc.Register(context.Background(), trialInput())
	require.Error(t, err)
	require.Empty(t, dispatcher.published)
}
