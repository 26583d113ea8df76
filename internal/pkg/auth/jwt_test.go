package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := newTestService(time.Hour)

	access, refresh, expiresIn, refreshExpiresIn, err := svc.GenerateTokenPair(42, "user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)
	assert.Greater(t, expiresIn, int64(0))
	assert.Greater(t, refreshExpiresIn, expiresIn)

	claims, err := svc.ValidateAndExtractClaims(access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
}

func TestClaimsCarryNoRole(t *testing.T) {
	svc := newTestService(time.Hour)

	access, _, _, _, err := svc.GenerateTokenPair(1, "a@b.com")
	require.NoError(t, err)

	claims, err := svc.ValidateAndExtractClaims(access)
	require.NoError(t, err)

	// Roles are resolved from the database per request; the token only
	// proves identity.
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestValidateExpiredToken(t *testing.T) {
	svc := newTestService(-time.Minute)

	access, _, _, _, err := svc.GenerateTokenPair(1, "a@b.com")
	require.NoError(t, err)

	_, err = svc.ValidateAndExtractClaims(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTamperedToken(t *testing.T) {
	svc := newTestService(time.Hour)
	other := NewJWTService(JWTConfig{
		SecretKey:       "different-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "test",
	})

	access, _, _, _, err := other.GenerateTokenPair(1, "a@b.com")
	require.NoError(t, err)

	_, err = svc.ValidateAndExtractClaims(access)
	assert.Error(t, err)
}

func TestValidateEmptyToken(t *testing.T) {
	svc := newTestService(time.Hour)
	_, err := svc.ValidateAndExtractClaims("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	svc := newTestService(time.Hour)

	_, r1, _, _, err := svc.GenerateTokenPair(1, "a@b.com")
	require.NoError(t, err)
	_, r2, _, _, err := svc.GenerateTokenPair(1, "a@b.com")
	require.NoError(t, err)

	assert.NotEqual(t, r1, r2)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
