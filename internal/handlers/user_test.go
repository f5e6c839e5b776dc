package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/internal/testutil"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupUserTest(t *testing.T) (*testutil.MockUserService, *UserHandler, *services.JWTService) {
	t.Helper()
	mockUserService := new(testutil.MockUserService)
	return mockUserService, NewUserHandler(mockUserService), testutil.TestJWTService()
}

func TestUserHandler_GetMe_Success(t *testing.T) {
	mockUserService, handler, jwtSvc := setupUserTest(t)
	user := newUser(access.RoleUser)
	dept, sub := access.DepartmentSearch, "SEO"
	user.Department, user.Subteam = &dept, &sub

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)

	app := mount(jwtSvc, http.MethodGet, "/api/me/", handler.GetMe)
	rec := do(t, app, jwtSvc, user, http.MethodGet, "/api/me/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, user.ID, resp.ID)
	assert.Equal(t, "User", resp.UserType)
	assert.Equal(t, "SEO", *resp.Subteam)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestUserHandler_GetMe_NotAuthenticated(t *testing.T) {
	_, handler, jwtSvc := setupUserTest(t)

	app := mount(jwtSvc, http.MethodGet, "/api/me/", handler.GetMe)
	rec := do(t, app, jwtSvc, nil, http.MethodGet, "/api/me/", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserHandler_Get_Visibility(t *testing.T) {
	tests := []struct {
		name   string
		actor  access.Role
		target access.Role
		status int
	}{
		{"admin reads team leader", access.RoleAdmin, access.RoleTeamLeader, http.StatusOK},
		{"team leader reads user", access.RoleTeamLeader, access.RoleUser, http.StatusOK},
		{"team leader cannot read admin", access.RoleTeamLeader, access.RoleAdmin, http.StatusForbidden},
		{"user cannot read another user", access.RoleUser, access.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserService, handler, jwtSvc := setupUserTest(t)
			actor := newUser(tt.actor)
			target := newUser(tt.target)
			mockUserService.On("GetByID", mock.Anything, target.ID).Return(target, nil)

			app := mount(jwtSvc, http.MethodGet, "/api/users/:id/", handler.Get)
			rec := do(t, app, jwtSvc, actor, http.MethodGet, "/api/users/"+target.ID.String()+"/", nil)

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestUserHandler_Get_InvalidID(t *testing.T) {
	_, handler, jwtSvc := setupUserTest(t)

	app := mount(jwtSvc, http.MethodGet, "/api/users/:id/", handler.Get)
	rec := do(t, app, jwtSvc, newUser(access.RoleAdmin), http.MethodGet, "/api/users/not-a-uuid/", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "id", decodeError(t, rec).Field)
}

func TestUserHandler_List_NarrowsToSubordinates(t *testing.T) {
	mockUserService, handler, jwtSvc := setupUserTest(t)
	admin := newUser(access.RoleAdmin)

	mockUserService.On("List", mock.Anything, models.UserFilter{
		Roles:      []access.Role{access.RoleTeamLeader},
		Department: "Search",
	}).Return([]models.User{*newUser(access.RoleTeamLeader)}, nil)

	app := mount(jwtSvc, http.MethodGet, "/api/users/", handler.List)
	rec := do(t, app, jwtSvc, admin, http.MethodGet, "/api/users/?usertype=SuperAdmin,Admin,TeamLeader&department=Search", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	mockUserService.AssertExpectations(t)
}

func TestUserHandler_List_NothingVisible(t *testing.T) {
	mockUserService, handler, jwtSvc := setupUserTest(t)

	app := mount(jwtSvc, http.MethodGet, "/api/users/", handler.List)
	rec := do(t, app, jwtSvc, newUser(access.RoleTeamLeader), http.MethodGet, "/api/users/?usertype=Admin", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	mockUserService.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestUserHandler_List_UnknownUsertype(t *testing.T) {
	_, handler, jwtSvc := setupUserTest(t)

	app := mount(jwtSvc, http.MethodGet, "/api/users/", handler.List)
	rec := do(t, app, jwtSvc, newUser(access.RoleAdmin), http.MethodGet, "/api/users/?usertype=Intern", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "usertype", decodeError(t, rec).Field)
}

func TestUserHandler_List_UserForbidden(t *testing.T) {
	_, handler, jwtSvc := setupUserTest(t)

	app := mount(jwtSvc, http.MethodGet, "/api/users/", handler.List)
	rec := do(t, app, jwtSvc, newUser(access.RoleUser), http.MethodGet, "/api/users/", nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserHandler_Register_Success(t *testing.T) {
	mockUserService, handler, jwtSvc := setupUserTest(t)
	admin := newUser(access.RoleAdmin)
	created := newUser(access.RoleTeamLeader)

	mockUserService.On("Create", mock.Anything, mock.MatchedBy(func(in services.NewUser) bool {
		return in.Username == "lead" && in.Role == access.RoleTeamLeader && in.Department == "Creative"
	})).Return(created, nil)

	app := mount(jwtSvc, http.MethodPost, "/api/register/", handler.Register)
	rec := do(t, app, jwtSvc, admin, http.MethodPost, "/api/register/", dto.RegisterRequest{
		Username:   "lead",
		Email:      "lead@example.com",
		Password:   "password123",
		FirstName:  "Lea",
		UserType:   "TeamLeader",
		Department: "Creative",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)
	mockUserService.AssertExpectations(t)
}

func TestUserHandler_Register_Rejected(t *testing.T) {
	tests := []struct {
		name   string
		actor  access.Role
		req    dto.RegisterRequest
		status int
		field  string
	}{
		{
			name:   "team leader cannot register",
			actor:  access.RoleTeamLeader,
			req:    dto.RegisterRequest{Username: "u", Email: "u@example.com", Password: "password123", UserType: "User", Department: "Search", Subteam: "SEO"},
			status: http.StatusForbidden,
		},
		{
			name:   "admin cannot create admin",
			actor:  access.RoleAdmin,
			req:    dto.RegisterRequest{Username: "a", Email: "a@example.com", Password: "password123", UserType: "Admin"},
			status: http.StatusForbidden,
		},
		{
			name:   "subteam outside department",
			actor:  access.RoleAdmin,
			req:    dto.RegisterRequest{Username: "u", Email: "u@example.com", Password: "password123", UserType: "User", Department: "Search", Subteam: "Design"},
			status: http.StatusBadRequest,
			field:  "subteam",
		},
		{
			name:   "short password",
			actor:  access.RoleSuperAdmin,
			req:    dto.RegisterRequest{Username: "a", Email: "a@example.com", Password: "short", UserType: "Admin"},
			status: http.StatusBadRequest,
			field:  "password",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUserService, handler, jwtSvc := setupUserTest(t)

			app := mount(jwtSvc, http.MethodPost, "/api/register/", handler.Register)
			rec := do(t, app, jwtSvc, newUser(tt.actor), http.MethodPost, "/api/register/", tt.req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.field != "" {
				assert.Equal(t, tt.field, decodeError(t, rec).Field)
			}
			mockUserService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUserHandler_UpdateProfile_Self(t *testing.T) {
	mockUserService, handler, jwtSvc := setupUserTest(t)
	user := newUser(access.RoleUser)
	updated := *user
	updated.FirstName = "Ana"

	mockUserService.On("UpdateProfile", mock.Anything, user.ID, "Ana", "Smith", "ana@example.com").Return(&updated, nil)

	app := mount(jwtSvc, http.MethodPut, "/api/update-profile/:id/", handler.UpdateProfile)
	rec := do(t, app, jwtSvc, user, http.MethodPut, "/api/update-profile/"+user.ID.String()+"/", dto.UpdateProfileRequest{
		FirstName: " Ana ",
		LastName:  "Smith",
		Email:     "ana@example.com",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp dto.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Ana", resp.FirstName)
}

func TestUserHandler_UpdateProfile_OtherUserForbidden(t *testing.T) {
	mockUserService, handler, jwtSvc := setupUserTest(t)
	admin := newUser(access.RoleAdmin)
	other := newUser(access.RoleUser)

	app := mount(jwtSvc, http.MethodPut, "/api/update-profile/:id/", handler.UpdateProfile)
	rec := do(t, app, jwtSvc, admin, http.MethodPut, "/api/update-profile/"+other.ID.String()+"/", dto.UpdateProfileRequest{FirstName: "X"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
	mockUserService.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUserHandler_UpdateProfile_DuplicateEmail(t *testing.T) {
	mockUserService, handler, jwtSvc := setupUserTest(t)
	user := newUser(access.RoleUser)
	mockUserService.On("UpdateProfile", mock.Anything, user.ID, "Ana", "", "taken@example.com").Return(nil, services.ErrDuplicate)

	app := mount(jwtSvc, http.MethodPut, "/api/update-profile/:id/", handler.UpdateProfile)
	rec := do(t, app, jwtSvc, user, http.MethodPut, "/api/update-profile/"+user.ID.String()+"/", dto.UpdateProfileRequest{
		FirstName: "Ana",
		Email:     "taken@example.com",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}
