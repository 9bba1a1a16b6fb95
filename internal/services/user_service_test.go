package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/sneakers-backend/internal/models"
	"github.com/javajoker/sneakers-backend/internal/utils"
)

func TestUserAdminViews(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.repos)
	admin := f.user(t, "admin", models.UserRoleAdmin)
	seller := f.user(t, "seller", models.UserRoleSeller)
	f.item(t, seller, "jordan-1", 200)
	f.item(t, seller, "dunk", 100)

	_, _, err := svc.List(context.Background(), seller, utils.PaginationParams{Page: 1, Limit: 10})
	assert.Equal(t, KindAuthorization, KindOf(err))
	_, err = svc.Stats(context.Background(), seller)
	assert.Equal(t, KindAuthorization, KindOf(err))

	users, total, err := svc.List(context.Background(), admin, utils.PaginationParams{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 1)

	stats, err := svc.Stats(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, AppStats{Users: 2, Items: 2}, *stats)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	svc := NewUserService(f.repos)
	me := f.user(t, "me", models.UserRoleUser)
	f.user(t, "taken", models.UserRoleUser)

	location := "Taipei"
	email := "  Me.New@Example.com "
	user, err := svc.UpdateProfile(context.Background(), me, &UpdateProfileRequest{Location: &location, Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "me.new@example.com", user.Email)
	assert.Equal(t, "Taipei", user.Location)
	assert.Equal(t, models.UserRoleUser, user.Role)

	stored, err := f.repos.Users.FindByID(context.Background(), me.UserID)
	require.NoError(t, err)
	assert.Equal(t, "me", stored.Name)
	assert.Equal(t, "me.new@example.com", stored.Email)
	assert.NoError(t, stored.CheckPassword("Sneakers1!"))

	taken := "TAKEN@example.com"
	_, err = svc.UpdateProfile(context.Background(), me, &UpdateProfileRequest{Email: &taken})
	assert.Equal(t, KindConflict, KindOf(err))

	blank := "  "
	_, err = svc.UpdateProfile(context.Background(), me, &UpdateProfileRequest{Name: &blank})
	assert.Equal(t, KindValidation, KindOf(err))
}
