package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/sneakers-backend/internal/config"
	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

func newAuthService(f *fixture) *AuthService {
	return NewAuthService(f.repos.Users, config.JWTConfig{AccessTokenTTL: 1, RefreshTokenTTL: 2})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newFixture())

	resp, err := svc.Register(ctx, &RegisterRequest{
		Name:     "Sam",
		Email:    "Sam@Example.com",
		Password: "Sneakers1!",
		Role:     models.UserRoleSeller,
	})
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", resp.User.Email)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	assert.Equal(t, string(models.UserRoleSeller), claims.Role)

	login, err := svc.Login(ctx, &LoginRequest{Email: "sam@example.com", Password: "Sneakers1!"})
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, login.User.ID)

	_, err = svc.Login(ctx, &LoginRequest{Email: "sam@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "Sneakers1!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	refreshed, err := svc.RefreshToken(ctx, resp.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, refreshed.User.ID)
}

func TestRegisterRejectsDuplicatesAndAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService(newFixture())

	req := &RegisterRequest{Name: "Ada", Email: "ada@example.com", Password: "Sneakers1!"}
	resp, err := svc.Register(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleUser, resp.User.Role)

	_, err = svc.Register(ctx, req)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = svc.Register(ctx, &RegisterRequest{
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: "Sneakers1!",
		Role:     models.UserRoleAdmin,
	})
	assert.Equal(t, KindValidation, KindOf(err))
}
