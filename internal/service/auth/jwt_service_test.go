package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskraft/taskraft-api/internal/config"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:                   "test-secret-key-thats-long-enough-for-hmac",
		TokenLifetimeMinutes:        60,
		RefreshTokenLifetimeMinutes: 10080,
	}
}

func newTestService(t *testing.T) *hmacJWTService {
	t.Helper()
	svc, err := NewJWTService(testAuthConfig())
	require.NoError(t, err)
	impl, ok := svc.(*hmacJWTService)
	require.True(t, ok)
	return impl
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		svc, err := NewJWTService(testAuthConfig())
		require.NoError(t, err)
		assert.NotNil(t, svc)
	})

	t.Run("secret too short", func(t *testing.T) {
		t.Parallel()
		cfg := testAuthConfig()
		cfg.JWTSecret = "short"
		_, err := NewJWTService(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 32 characters")
	})
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 3, len(strings.Split(token, ".")), "expected JWS compact form")

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestGenerateAndValidateRefreshToken(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	userID := uuid.New()

	token, err := svc.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, tokenTypeRefresh, claims.TokenType)
}

func TestTokenTypeEnforcement(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	userID := uuid.New()

	access, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(context.Background(), access)
	assert.ErrorIs(t, err, ErrWrongTokenType)

	_, err = svc.ValidateToken(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestTokenExpiry(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)
	userID := uuid.New()
	issuedAt := time.Now()
	svc.timeFunc = func() time.Time { return issuedAt }

	access, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	refresh, err := svc.GenerateRefreshToken(context.Background(), userID)
	require.NoError(t, err)

	// Just inside the lifetime plus clock skew: still valid.
	svc.timeFunc = func() time.Time {
		return issuedAt.Add(svc.tokenLifetime + svc.clockSkew - time.Second)
	}
	_, err = svc.ValidateToken(context.Background(), access)
	assert.NoError(t, err)

	// Past the lifetime and the skew allowance: expired.
	svc.timeFunc = func() time.Time {
		return issuedAt.Add(svc.tokenLifetime + svc.clockSkew + time.Second)
	}
	_, err = svc.ValidateToken(context.Background(), access)
	assert.ErrorIs(t, err, ErrExpiredToken)

	// The refresh token outlives the access token.
	_, err = svc.ValidateRefreshToken(context.Background(), refresh)
	assert.NoError(t, err)

	svc.timeFunc = func() time.Time {
		return issuedAt.Add(svc.refreshTokenLifetime + svc.clockSkew + time.Second)
	}
	_, err = svc.ValidateRefreshToken(context.Background(), refresh)
	assert.ErrorIs(t, err, ErrExpiredRefreshToken)
}

func TestTamperedToken(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	token, err := svc.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	_, err = svc.ValidateToken(context.Background(), tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestWrongSigningKey(t *testing.T) {
	t.Parallel()
	issuer := newTestService(t)
	verifier := newTestService(t)
	verifier.signingKey = []byte("a-completely-different-32-byte-key!!")

	token, err := issuer.GenerateToken(context.Background(), uuid.New())
	require.NoError(t, err)

	_, err = verifier.ValidateToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageToken(t *testing.T) {
	t.Parallel()
	svc := newTestService(t)

	_, err := svc.ValidateToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.ValidateRefreshToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}
