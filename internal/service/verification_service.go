package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/melcoco/registration-service/internal/auth"
	"github.com/melcoco/registration-service/internal/config"
	"github.com/melcoco/registration-service/internal/repository"
	apperrors "github.com/melcoco/registration-service/pkg/util/errorutil"
)

const verifyKeyPrefix = "verify:jti:"

// VerificationService issues one-time email-verification links and confirms
// them. Token ids live in Redis with the same TTL as the token itself so a
// link cannot be replayed.
type VerificationService struct {
	tokens     *auth.VerifyTokenManager
	redis      *redis.Client
	identities repository.IdentityRepository
	baseURL    string
	ttl        time.Duration
	logger     *zap.Logger
}

// NewVerificationService builds the service.
func NewVerificationService(cfg config.VerificationConfig, redisClient *redis.Client, identities repository.IdentityRepository, logger *zap.Logger) *VerificationService {
	return &VerificationService{
		tokens:     auth.NewVerifyTokenManager(cfg.Secret, cfg.TTLHours),
		redis:      redisClient,
		identities: identities,
		baseURL:    strings.TrimRight(cfg.PublicBaseURL, "/"),
		ttl:        time.Duration(cfg.TTLHours) * time.Hour,
		logger:     logger,
	}
}

// GenerateLink signs a verification token for the email and returns the
// public URL that confirms it.
func (s *VerificationService) GenerateLink(ctx context.Context, email string) (string, error) {
	token, jti, _, err := s.tokens.GenerateToken(email)
	if err != nil {
		return "", fmt.Errorf("sign verification token: %w", err)
	}

	if err := s.redis.Set(ctx, verifyKeyPrefix+jti, email, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store verification token: %w", err)
	}

	return s.baseURL + "/verify?token=" + url.QueryEscape(token), nil
}

// Confirm validates the link token, consumes it and marks the identity's
// email as verified. It returns the verified email.
func (s *VerificationService) Confirm(ctx context.Context, tokenStr string) (string, error) {
	claims, err := s.tokens.ParseToken(tokenStr)
	if err != nil {
		return "", apperrors.NewValidationError("invalid or expired verification token")
	}

	if err := s.redis.GetDel(ctx, verifyKeyPrefix+claims.ID).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperrors.NewValidationError("verification link already used or expired")
		}
		return "", fmt.Errorf("consume verification token: %w", err)
	}

	if err := s.identities.MarkEmailVerified(ctx, claims.Email); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewNotFound("identity")
		}
		return "", fmt.Errorf("mark email verified: %w", err)
	}

	s.logger.Info("email verified", zap.String("email", claims.Email))
	return claims.Email, nil
}
