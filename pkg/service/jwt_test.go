package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "callcentre-backend/pkg/errors"
)

func TestJWTService_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", time.Hour, 24*time.Hour, zap.NewNop())

	access, refresh, err := svc.GenerateTokens(42, "director", "dir@example.com", []string{"Казань", "Пермь"})
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "director", claims.Role)
	assert.Equal(t, []string{"Казань", "Пермь"}, claims.Cities)
	assert.False(t, claims.IsRefreshToken)

	refreshClaims, err := svc.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, refreshClaims.IsRefreshToken)
	// Города в refresh-токен не кладутся.
	assert.Empty(t, refreshClaims.Cities)
}

func TestJWTService_WrongSecret(t *testing.T) {
	svc := NewJWTService("secret-one", time.Hour, time.Hour, zap.NewNop())
	other := NewJWTService("secret-two", time.Hour, time.Hour, zap.NewNop())

	access, _, err := svc.GenerateTokens(1, "admin", "admin", nil)
	require.NoError(t, err)

	_, err = other.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestJWTService_Expired(t *testing.T) {
	svc := NewJWTService("secret", -time.Minute, time.Hour, zap.NewNop())

	access, _, err := svc.GenerateTokens(1, "operator", "op", nil)
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.Error(t, err)
}
