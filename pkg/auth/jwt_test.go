package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/config"
	"github.com/dmehra2102/prod-golang-projects/vetcare/internal/domain"
)

func newManager() *JWTManager {
	return NewJWTManager(config.JWTConfig{
		Secret:          "test-secret-that-is-long-enough-0123456789",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		Issuer:          "vetcare-test",
	})
}

func TestGenerateAndValidate(t *testing.T) {
	m := newManager()
	claims := &domain.Claims{UserID: uuid.New(), RUT: "12345678-5", Role: domain.RoleVeterinarian}

	pair, err := m.GenerateTokenPair(claims)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	got, err := m.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, claims, got)

	got, err = m.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, claims.UserID, got.UserID)
}

func TestTokenTypeMismatch(t *testing.T) {
	m := newManager()
	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin})
	require.NoError(t, err)

	_, err = m.ValidateAccessToken(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
	_, err = m.ValidateRefreshToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenTypeMismatch)
}

func TestExpiredToken(t *testing.T) {
	m := newManager()
	issued := time.Now().Add(-time.Hour)
	m.now = func() time.Time { return issued }

	pair, err := m.GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RoleCashier})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestWrongSecret(t *testing.T) {
	pair, err := newManager().GenerateTokenPair(&domain.Claims{UserID: uuid.New(), Role: domain.RoleAdmin})
	require.NoError(t, err)

	other := NewJWTManager(config.JWTConfig{Secret: "another-secret-entirely-0123456789abcd", Issuer: "vetcare-test"})
	_, err = other.ValidateAccessToken(pair.AccessToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = other.ValidateAccessToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
