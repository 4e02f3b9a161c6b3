package service

import (
	"context"
	"filedock/internal/auth"
	"filedock/internal/domain/user"
	apperrors "filedock/pkg/errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type userTestEnv struct {
	*testEnv
	users   *memUserRepo
	userSvc *UserService
}

func newUserTestEnv() *userTestEnv {
	base := newTestEnv()
	users := newMemUserRepo(base.folders.clock)
	jwtSvc := auth.NewJWTService("user-service-test-secret-32-chars!!", time.Hour)

	return &userTestEnv{
		testEnv: base,
		users:   users,
		userSvc: NewUserService(users, base.files, base.folders, base.blobs, jwtSvc, ListLimits{}, zerolog.Nop()),
	}
}

func adminIdentity(u *user.User) *user.Identity {
	return &user.Identity{UserID: u.ID, IsAdmin: u.IsAdmin}
}

func TestRegisterAndLogin(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	result, err := env.userSvc.Register(ctx, "  Alice@Example.COM ", "correct-horse-battery")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.False(t, result.User.IsAdmin)
	assert.NotEmpty(t, result.Token)

	login, err := env.userSvc.Login(ctx, "alice@example.com", "correct-horse-battery")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, login.User.ID)
	assert.NotEmpty(t, login.Token)
}

func TestRegisterValidation(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"bad email", "not-an-email", "long-enough-password"},
		{"short password", "ok@example.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.userSvc.Register(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	_, err := env.userSvc.Register(ctx, "dup@example.com", "first-password-1")
	require.NoError(t, err)

	_, err = env.userSvc.Register(ctx, "DUP@example.com", "second-password-2")
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestLoginFailures(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	reg, err := env.userSvc.Register(ctx, "bob@example.com", "bobs-password-123")
	require.NoError(t, err)

	_, err = env.userSvc.Login(ctx, "bob@example.com", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCreds)

	// Unknown accounts fail identically to wrong passwords.
	_, err = env.userSvc.Login(ctx, "ghost@example.com", "any-password-at-all")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCreds)

	_, err = env.userSvc.Login(ctx, "", "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCreds)

	// Deactivated accounts cannot sign in even with the right password.
	inactive := false
	adminUser, err := env.users.Create(ctx, user.CreateUserInput{
		Email: "root@example.com", PasswordHash: "x", IsAdmin: true,
	})
	require.NoError(t, err)
	_, err = env.userSvc.Update(ctx, adminIdentity(adminUser), reg.User.ID, AdminPatch{IsActive: &inactive})
	require.NoError(t, err)

	_, err = env.userSvc.Login(ctx, "bob@example.com", "bobs-password-123")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestUserGetScoping(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	a, err := env.userSvc.Register(ctx, "a@example.com", "password-for-a1")
	require.NoError(t, err)
	b, err := env.userSvc.Register(ctx, "b@example.com", "password-for-b1")
	require.NoError(t, err)

	self := &user.Identity{UserID: a.User.ID}
	_, err = env.userSvc.Get(ctx, self, a.User.ID)
	assert.NoError(t, err)

	_, err = env.userSvc.Get(ctx, self, b.User.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	admin := &user.Identity{UserID: b.User.ID, IsAdmin: true}
	_, err = env.userSvc.Get(ctx, admin, a.User.ID)
	assert.NoError(t, err)
}

func TestAdminUserManagement(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	rootUser, err := env.users.Create(ctx, user.CreateUserInput{
		Email: "root@example.com", PasswordHash: "x", IsAdmin: true,
	})
	require.NoError(t, err)
	admin := adminIdentity(rootUser)
	nonAdmin := &user.Identity{UserID: rootUser.ID, IsAdmin: false}

	created, err := env.userSvc.Create(ctx, admin, "staff@example.com", "staff-password-1", true)
	require.NoError(t, err)
	assert.True(t, created.IsAdmin)

	_, err = env.userSvc.Create(ctx, nonAdmin, "nope@example.com", "nope-password-11", false)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	page, err := env.userSvc.List(ctx, admin, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	_, err = env.userSvc.List(ctx, nonAdmin, 1, 10)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	demoted := false
	updated, err := env.userSvc.Update(ctx, admin, created.ID, AdminPatch{IsAdmin: &demoted})
	require.NoError(t, err)
	assert.False(t, updated.IsAdmin)
}

func TestDeleteUserCascades(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	rootUser, err := env.users.Create(ctx, user.CreateUserInput{
		Email: "root@example.com", PasswordHash: "x", IsAdmin: true,
	})
	require.NoError(t, err)
	admin := adminIdentity(rootUser)

	victim, err := env.userSvc.Register(ctx, "victim@example.com", "victim-password1")
	require.NoError(t, err)
	victimIdent := &user.Identity{UserID: victim.User.ID}

	dir, err := env.folderSvc.Create(ctx, victimIdent, "stuff", nil)
	require.NoError(t, err)
	f1 := env.seedFile(t, victim.User.ID, "one.txt", &dir.ID)
	f2 := env.seedFile(t, victim.User.ID, "two.txt", nil)

	require.NoError(t, env.userSvc.Delete(ctx, admin, victim.User.ID))

	_, err = env.users.GetByID(ctx, victim.User.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = env.files.GetByID(ctx, f1.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = env.files.GetByID(ctx, f2.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = env.folders.GetByID(ctx, dir.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NotContains(t, env.blobs.objects, f1.StorageKey)
	assert.NotContains(t, env.blobs.objects, f2.StorageKey)
}

func TestDeleteUserSelfBlocked(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	rootUser, err := env.users.Create(ctx, user.CreateUserInput{
		Email: "root@example.com", PasswordHash: "x", IsAdmin: true,
	})
	require.NoError(t, err)
	admin := adminIdentity(rootUser)

	err = env.userSvc.Delete(ctx, admin, rootUser.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = env.users.GetByID(ctx, rootUser.ID)
	assert.NoError(t, err)
}

func TestDeleteUserBlobFailureAborts(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	rootUser, err := env.users.Create(ctx, user.CreateUserInput{
		Email: "root@example.com", PasswordHash: "x", IsAdmin: true,
	})
	require.NoError(t, err)
	admin := adminIdentity(rootUser)

	victim, err := env.userSvc.Register(ctx, "victim@example.com", "victim-password1")
	require.NoError(t, err)
	f := env.seedFile(t, victim.User.ID, "stuck.txt", nil)
	env.blobs.failDeletes[f.StorageKey] = true

	err = env.userSvc.Delete(ctx, admin, victim.User.ID)
	assert.ErrorIs(t, err, apperrors.ErrPartialDeletion)

	// Nothing was torn down; the delete can be retried.
	_, err = env.users.GetByID(ctx, victim.User.ID)
	assert.NoError(t, err)
	_, err = env.files.GetByID(ctx, f.ID)
	assert.NoError(t, err)
}

func TestDeleteUserPartialBlobFailureLeavesNoDanglingRows(t *testing.T) {
	env := newUserTestEnv()
	ctx := context.Background()

	rootUser, err := env.users.Create(ctx, user.CreateUserInput{
		Email: "root@example.com", PasswordHash: "x", IsAdmin: true,
	})
	require.NoError(t, err)
	admin := adminIdentity(rootUser)

	victim, err := env.userSvc.Register(ctx, "victim@example.com", "victim-password1")
	require.NoError(t, err)
	good := env.seedFile(t, victim.User.ID, "good.txt", nil)
	stuck := env.seedFile(t, victim.User.ID, "stuck.txt", nil)
	env.blobs.failDeletes[stuck.StorageKey] = true

	err = env.userSvc.Delete(ctx, admin, victim.User.ID)
	assert.ErrorIs(t, err, apperrors.ErrPartialDeletion)

	// The removed blob's row went with it.
	assert.NotContains(t, env.blobs.objects, good.StorageKey)
	_, err = env.files.GetByID(ctx, good.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// The stuck file and the account survive for a retry.
	assert.Contains(t, env.blobs.objects, stuck.StorageKey)
	_, err = env.files.GetByID(ctx, stuck.ID)
	assert.NoError(t, err)
	_, err = env.users.GetByID(ctx, victim.User.ID)
	assert.NoError(t, err)
}
