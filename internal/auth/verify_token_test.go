package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestVerifyToken_RoundTrip(t *testing.T) {
	tm := NewVerifyTokenManager("secret", 24)

	token, jti, expiresAt, err := tm.GenerateToken("a@x.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, jti)
	require.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", claims.Email)
	require.Equal(t, jti, claims.ID)
}

func TestVerifyToken_WrongSecretRejected(t *testing.T) {
	token, _, _, err := NewVerifyTokenManager("secret-a", 1).GenerateToken("a@x.com")
	require.NoError(t, err)

	_, err = NewVerifyTokenManager("secret-b", 1).ParseToken(token)
	require.Error(t, err)
}

func TestVerifyToken_GarbageRejected(t *testing.T) {
	_, err := NewVerifyTokenManager("secret", 1).ParseToken("not-a-token")
	require.Error(t, err)
}
