package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookhaven/booking-api/internal/model"
	"github.com/bookhaven/booking-api/internal/repository/memory"
	"github.com/bookhaven/booking-api/pkg/auth"
	apperrors "github.com/bookhaven/booking-api/pkg/errors"
	"github.com/bookhaven/booking-api/pkg/security"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	tokens := auth.NewTokenService(auth.Config{
		Secret:        "access-secret",
		RefreshSecret: "refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
	users := memory.NewUserRepository(memory.NewStore())
	// bcrypt.MinCost keeps the hashing fast in tests.
	return NewService(users, tokens, security.NewPasswordHasher(4))
}

func registerRequest() *model.RegisterRequest {
	return &model.RegisterRequest{
		Email:    "provider@example.com",
		Password: "s3cret-password",
		Name:     "Dr. Sara",
		Role:     "provider",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, model.UserRoleProvider, user.Role)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	assert.NotEqual(t, "s3cret-password", user.PasswordHash)

	loggedIn, loginTokens, err := svc.Login(ctx, &model.LoginRequest{
		Email:    "provider@example.com",
		Password: "s3cret-password",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, loginTokens.AccessToken)

	claims, err := svc.ValidateToken(ctx, loginTokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, model.UserRoleProvider, claims.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, registerRequest())
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestLoginBadCredentials(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, &model.LoginRequest{
		Email:    "provider@example.com",
		Password: "wrong-password",
	})
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.HTTPStatus(err))

	_, _, err = svc.Login(ctx, &model.LoginRequest{
		Email:    "nobody@example.com",
		Password: "s3cret-password",
	})
	require.Error(t, err)
	assert.Equal(t, 401, apperrors.HTTPStatus(err))
}

func TestRefreshTokens(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, tokens, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(ctx, tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not accepted as a refresh token.
	_, err = svc.RefreshTokens(ctx, tokens.AccessToken)
	assert.Error(t, err)
}
