package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var userColumnNames = []string{
	"id", "username", "email", "first_name", "last_name", "password_hash",
	"role", "department", "subteam", "created_at", "updated_at",
}

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	svc := NewUserService(db)
	svc.cost = bcrypt.MinCost
	return svc, mock
}

func strPtr(s string) *string { return &s }

func userRow(id uuid.UUID, username string, role access.Role, hash string) *pgxmock.Rows {
	now := time.Now()
	var dept, sub *string
	if role == access.RoleUser {
		dept, sub = strPtr(access.DepartmentSearch), strPtr("SEO")
	}
	return pgxmock.NewRows(userColumnNames).
		AddRow(id, username, username+"@example.com", "First", "Last", hash, role, dept, sub, now, now)
}

func TestUserService_Authenticate(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()
	hash, err := svc.HashPassword("correct-horse")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE username = \$1 OR`).
		WithArgs("jdoe").
		WillReturnRows(userRow(userID, "jdoe", access.RoleUser, hash))

	user, err := svc.Authenticate(ctx, "jdoe", "correct-horse")

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, access.RoleUser, user.Role)
	assert.Equal(t, "SEO", *user.Subteam)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Authenticate_WrongPassword(t *testing.T) {
	svc, mock := setupUserService(t)
	hash, err := svc.HashPassword("correct-horse")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("jdoe@example.com").
		WillReturnRows(userRow(uuid.New(), "jdoe", access.RoleUser, hash))

	_, err = svc.Authenticate(context.Background(), "jdoe@example.com", "battery-staple")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Authenticate_UnknownUser(t *testing.T) {
	svc, mock := setupUserService(t)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.Authenticate(context.Background(), "ghost", "whatever")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUserService_Create(t *testing.T) {
	svc, mock := setupUserService(t)
	userID := uuid.New()
	in := NewUser{
		Username:   "newbie",
		Email:      "newbie@example.com",
		Password:   "long-enough",
		Role:       access.RoleUser,
		Department: access.DepartmentSearch,
		Subteam:    "SEO",
	}

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("newbie", "newbie@example.com", "", "", pgxmock.AnyArg(), access.RoleUser, strPtr("Search"), strPtr("SEO")).
		WillReturnRows(userRow(userID, "newbie", access.RoleUser, "hash"))

	user, err := svc.Create(context.Background(), in)

	require.NoError(t, err)
	assert.Equal(t, userID, user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Create_Duplicate(t *testing.T) {
	svc, mock := setupUserService(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := svc.Create(context.Background(), NewUser{
		Username: "taken", Email: "taken@example.com", Password: "long-enough", Role: access.RoleAdmin,
	})

	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserService_List_Filters(t *testing.T) {
	svc, mock := setupUserService(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users\s+WHERE`).
		WithArgs([]string{"User"}, "Search", "").
		WillReturnRows(userRow(id, "worker", access.RoleUser, "hash"))

	users, err := svc.List(context.Background(), models.UserFilter{
		Roles:      []access.Role{access.RoleUser},
		Department: access.DepartmentSearch,
	})

	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, id, users[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SetPassword_UnknownUser(t *testing.T) {
	svc, mock := setupUserService(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs(pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.SetPassword(context.Background(), id, "new-password")

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestValidateNewUser(t *testing.T) {
	base := NewUser{Username: "u", Email: "u@example.com", Password: "12345678"}

	tests := []struct {
		name   string
		actor  access.Role
		mutate func(*NewUser)
		field  string
		denied bool
	}{
		{"super admin creates admin", access.RoleSuperAdmin, func(n *NewUser) { n.Role = access.RoleAdmin }, "", false},
		{"super admin creates super admin", access.RoleSuperAdmin, func(n *NewUser) { n.Role = access.RoleSuperAdmin }, "", false},
		{"admin creates team leader", access.RoleAdmin, func(n *NewUser) {
			n.Role, n.Department = access.RoleTeamLeader, access.DepartmentCreative
		}, "", false},
		{"admin cannot create admin", access.RoleAdmin, func(n *NewUser) { n.Role = access.RoleAdmin }, "", true},
		{"team leader cannot register", access.RoleTeamLeader, func(n *NewUser) {
			n.Role, n.Department, n.Subteam = access.RoleUser, access.DepartmentSearch, "SEO"
		}, "", true},
		{"user needs matching subteam", access.RoleAdmin, func(n *NewUser) {
			n.Role, n.Department, n.Subteam = access.RoleUser, access.DepartmentSearch, "Design"
		}, "subteam", false},
		{"team leader needs department", access.RoleSuperAdmin, func(n *NewUser) { n.Role = access.RoleTeamLeader }, "department", false},
		{"admin has no department", access.RoleSuperAdmin, func(n *NewUser) {
			n.Role, n.Department = access.RoleAdmin, access.DepartmentSearch
		}, "department", false},
		{"short password", access.RoleSuperAdmin, func(n *NewUser) { n.Role, n.Password = access.RoleAdmin, "short" }, "password", false},
		{"bad email", access.RoleSuperAdmin, func(n *NewUser) { n.Role, n.Email = access.RoleAdmin, "nope" }, "email", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			err := ValidateNewUser(tt.actor, in)

			switch {
			case tt.denied:
				assert.ErrorIs(t, err, access.ErrForbidden)
			case tt.field != "":
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			default:
				assert.NoError(t, err)
			}
		})
	}
}
