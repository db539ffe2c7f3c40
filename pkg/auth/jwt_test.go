package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/booking-api/internal/model"
)

func testConfig() Config {
	return Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	}
}

func testUser() *model.User {
	user := &model.User{
		Email: "provider@example.com",
		Role:  model.UserRoleProvider,
	}
	user.ID = uuid.New()
	return user
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(testConfig())
	user := testUser()

	token, err := svc.GenerateAccessToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
	assert.Equal(t, model.UserRoleProvider, claims.Role)
	assert.Equal(t, user.ID.String(), claims.Subject)
}

func TestAccessTokenRejectedAsRefresh(t *testing.T) {
	svc := NewTokenService(testConfig())

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateRefreshToken(token)
	assert.Error(t, err)
}

func TestTokenWrongSecret(t *testing.T) {
	svc := NewTokenService(testConfig())
	other := NewTokenService(Config{
		Secret:        "different-secret",
		RefreshSecret: "different-refresh",
		Expiry:        time.Hour,
		RefreshExpiry: time.Hour,
	})

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Expiry = -time.Minute
	svc := NewTokenService(cfg)

	token, err := svc.GenerateAccessToken(testUser())
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	svc := NewTokenService(testConfig())

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)
}
