package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// VerifyTokenManager issues and validates the signed tokens embedded in
// email-verification links.
type VerifyTokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewVerifyTokenManager builds a new manager.
func NewVerifyTokenManager(secret string, ttlHours int) *VerifyTokenManager {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &VerifyTokenManager{secret: []byte(secret), ttl: time.Duration(ttlHours) * time.Hour}
}

// VerifyClaims describes the verification token payload.
type VerifyClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateToken signs a verification token for the email. The returned jti
// identifies the token for one-time-use accounting.
func (tm *VerifyTokenManager) GenerateToken(email string) (token, jti string, expiresAt time.Time, err error) {
	jti = uuid.NewString()
	expiresAt = time.Now().Add(tm.ttl)
	claims := &VerifyClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   email,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return signed, jti, expiresAt, nil
}

// ParseToken validates and returns claims.
func (tm *VerifyTokenManager) ParseToken(tokenStr string) (*VerifyClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &VerifyClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return tm.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*VerifyClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
