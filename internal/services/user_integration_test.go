//go:build integration

package services_test

import (
	"context"
	"testing"

	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/internal/testutil"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_Integration_CreateAndAuthenticate(t *testing.T) {
	tdb, _ := setupTest(t)
	svc := services.NewUserService(tdb.DB)
	ctx := context.Background()

	created, err := svc.Create(ctx, services.NewUser{
		Username:   " mila ",
		Email:      "mila@example.com",
		FirstName:  "Mila",
		Password:   "correct horse",
		Role:       access.RoleUser,
		Department: access.DepartmentCreative,
		Subteam:    "Design",
	})
	require.NoError(t, err)
	assert.Equal(t, "mila", created.Username)
	require.NotNil(t, created.Subteam)
	assert.Equal(t, "Design", *created.Subteam)

	byName, err := svc.Authenticate(ctx, "mila", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	byEmail, err := svc.Authenticate(ctx, "mila@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	_, err = svc.Authenticate(ctx, "mila", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, "nobody", "correct horse")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestUserService_Integration_DuplicateEmail(t *testing.T) {
	tdb, fixtures := setupTest(t)
	svc := services.NewUserService(tdb.DB)

	fixtures.CreateUser(t, access.RoleAdmin, testutil.WithEmail("taken@example.com"))

	_, err := svc.Create(context.Background(), services.NewUser{
		Username: "someone",
		Email:    "taken@example.com",
		Password: "password123",
		Role:     access.RoleAdmin,
	})
	assert.ErrorIs(t, err, services.ErrDuplicate)
}

func TestUserService_Integration_SetRole(t *testing.T) {
	tdb, fixtures := setupTest(t)
	svc := services.NewUserService(tdb.DB)

	admin := fixtures.CreateUser(t, access.RoleAdmin)

	promoted, err := svc.SetRole(context.Background(), admin.Username, access.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Equal(t, access.RoleSuperAdmin, promoted.Role)

	_, err = svc.SetRole(context.Background(), "ghost", access.RoleAdmin)
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}
