package services_test

import (
	"context"
	"testing"
	"time"

	"edujobs_backend/internal/auth"
	"edujobs_backend/internal/services/dto"
	"edujobs_backend/internal/testutil"
	"edujobs_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestUserService_UpdateProfileEmailResetsVerification(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "old@example.com", "password1", auth.RoleStudent)

	updated, err := f.user.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{
		FirstName: strPtr(" Ada "),
		Email:     strPtr("New@Example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ada", updated.FirstName)
	assert.Equal(t, "new@example.com", updated.Email)
	assert.False(t, updated.IsEmailVerified)

	testutil.CreateUser(t, f.db, "taken@example.com", "password1", auth.RoleStudent)
	_, err = f.user.UpdateProfile(ctx, u.ID, &dto.UpdateProfileRequest{Email: strPtr("taken@example.com")})
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "cp@example.com", "password1", auth.RoleStudent)

	oldToken, err := f.tokens.IssueSessionToken(u.ID, u.Role)
	require.NoError(t, err)

	_, err = f.user.ChangePassword(ctx, u.ID, &dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "newpassword2"})
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 401, appErr.HTTPCode)

	f.clock.Advance(time.Second)
	pair, err := f.user.ChangePassword(ctx, u.ID, &dto.ChangePasswordRequest{CurrentPassword: "password1", NewPassword: "newpassword2"})
	require.NoError(t, err)

	_, err = f.auth.Authenticate(ctx, oldToken)
	assert.ErrorIs(t, err, apperrors.ErrPasswordChanged)

	got, err := f.auth.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err, "tokens issued with the change stay valid")
	assert.Equal(t, u.ID, got.ID)
}

func TestUserService_AdminGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := testutil.CreateUser(t, f.db, "admin@example.com", "password1", auth.RoleAdmin)
	manager := testutil.CreateUser(t, f.db, "manager@example.com", "password1", auth.RoleManager)
	student := testutil.CreateUser(t, f.db, "student@example.com", "password1", auth.RoleStudent)

	_, err := f.user.SetActive(ctx, admin, admin.ID, false)
	assert.ErrorIs(t, err, apperrors.ErrCannotModifySelf)

	_, err = f.user.UpdateRole(ctx, manager, student.ID, auth.RoleAdmin)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	err = f.user.DeleteUser(ctx, manager, admin.ID)
	assert.ErrorIs(t, err, apperrors.ErrInsufficientPermissions)

	_, err = f.user.UpdateRole(ctx, admin, student.ID, "wizard")
	assert.ErrorIs(t, err, apperrors.ErrInvalidUserRole)

	promoted, err := f.user.UpdateRole(ctx, admin, student.ID, auth.RoleInstructor)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleInstructor, promoted.Role)

	disabled, err := f.user.SetActive(ctx, manager, student.ID, false)
	require.NoError(t, err)
	assert.False(t, disabled.IsActive)

	require.NoError(t, f.user.DeleteUser(ctx, admin, student.ID))
	_, err = f.user.GetProfile(ctx, student.ID)
	assert.Error(t, err)
}

func TestUserService_ListUsers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	testutil.CreateUser(t, f.db, "s1@example.com", "password1", auth.RoleStudent)
	testutil.CreateUser(t, f.db, "s2@example.com", "password1", auth.RoleStudent)
	testutil.CreateUser(t, f.db, "i1@example.com", "password1", auth.RoleInstructor)

	page, err := f.user.ListUsers(ctx, &dto.AdminUserFilter{Role: auth.RoleStudent})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	for _, u := range page.Users {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestUserService_ChangePasswordWithinSameSecond(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	u := testutil.CreateUser(t, f.db, "fast@example.com", "password1", auth.RoleStudent)

	oldToken, err := f.tokens.IssueSessionToken(u.ID, u.Role)
	require.NoError(t, err)

	f.clock.Advance(20 * time.Millisecond)
	pair, err := f.user.ChangePassword(ctx, u.ID, &dto.ChangePasswordRequest{CurrentPassword: "password1", NewPassword: "newpassword2"})
	require.NoError(t, err)

	_, err = f.auth.Authenticate(ctx, oldToken)
	assert.ErrorIs(t, err, apperrors.ErrPasswordChanged)

	_, err = f.auth.Authenticate(ctx, pair.AccessToken)
	assert.NoError(t, err)
}
