package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArielVlevin/maintainer-backend/internal/domain/entities"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/config"
	"github.com/ArielVlevin/maintainer-backend/internal/infrastructure/logger"
	"github.com/ArielVlevin/maintainer-backend/internal/ports"
)

func newAuthService(userRepo *fakeUserRepo) *AuthService {
	cfg := config.JWTConfig{
		Secret:    "test-secret",
		ExpiresIn: time.Hour,
		Issuer:    "maintainer-test",
	}
	// Token expiry is checked against the wall clock by the JWT library, so
	// the auth tests use the real clock.
	return NewAuthService(userRepo, cfg, ports.ClockFunc(time.Now), logger.NewNop())
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	userRepo := newFakeUserRepo()
	svc := newAuthService(userRepo)

	resp, err := svc.Register(ctx, ports.RegisterRequest{
		Email:    "new@example.com",
		Name:     "New User",
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "new@example.com", resp.User.Email)
	// The hash never equals the raw password.
	assert.NotEqual(t, "s3cret-pass", resp.User.PasswordHash)

	login, err := svc.Login(ctx, ports.LoginRequest{Email: "new@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)

	claims, err := svc.ValidateToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	assert.Equal(t, "new@example.com", claims.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.Register(ctx, ports.RegisterRequest{Email: "a@example.com", Name: "A", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, ports.RegisterRequest{Email: "a@example.com", Name: "B", Password: "password2"})
	assert.ErrorIs(t, err, entities.ErrValidation)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.Register(ctx, ports.RegisterRequest{Email: "a@example.com", Name: "A", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, ports.LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, entities.ErrUnauthorized)

	_, err = svc.Login(ctx, ports.LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.ErrorIs(t, err, entities.ErrUnauthorized)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())

	_, err := svc.ValidateToken("not-a-token")
	assert.Error(t, err)

	// A token signed with a different secret is rejected.
	other := NewAuthService(newFakeUserRepo(), config.JWTConfig{
		Secret:    "other-secret",
		ExpiresIn: time.Hour,
		Issuer:    "maintainer-test",
	}, ports.ClockFunc(time.Now), logger.NewNop())

	resp, err := other.Register(context.Background(), ports.RegisterRequest{
		Email: "x@example.com", Name: "X", Password: "password1",
	})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	assert.Error(t, err)
}
