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
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTeamTest(t *testing.T) (*testutil.MockTeamService, *testutil.MockUserService, *TeamHandler, *services.JWTService) {
	t.Helper()
	mockTeamService := new(testutil.MockTeamService)
	mockUserService := new(testutil.MockUserService)
	handler := NewTeamHandler(mockTeamService, mockUserService)
	return mockTeamService, mockUserService, handler, testutil.TestJWTService()
}

func TestTeamHandler_Create_Success(t *testing.T) {
	mockTeamService, _, handler, jwtSvc := setupTeamTest(t)
	admin := newUser(access.RoleAdmin)
	leader := uuid.New()
	member := uuid.New()
	projectID := uuid.New()

	in := services.TeamInput{
		Name:             "Alpha",
		ProjectID:        projectID,
		TeamLeaderSearch: &leader,
		AccountManagers:  []uuid.UUID{admin.ID},
		Subteams:         map[string][]uuid.UUID{"SEO": {member}},
	}
	team := &models.Team{
		ID:               uuid.New(),
		Name:             "Alpha",
		ProjectID:        projectID,
		TeamLeaderSearch: &leader,
		AccountManagers:  []uuid.UUID{admin.ID},
		Subteams:         in.Subteams,
		CreatedBy:        admin.ID,
	}
	mockTeamService.On("Create", mock.Anything, admin.Actor(), in).Return(team, nil)

	app := mount(jwtSvc, http.MethodPost, "/api/teams/", handler.Create)
	rec := do(t, app, jwtSvc, admin, http.MethodPost, "/api/teams/", dto.TeamRequest{
		Name:              "Alpha",
		ProjectID:         projectID,
		TeamLeaderSearch:  &leader,
		AccountManagerIDs: []uuid.UUID{admin.ID},
		Subteams:          map[string][]uuid.UUID{"SEO": {member}},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp dto.TeamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, team.ID, resp.ID)
	assert.Equal(t, []uuid.UUID{member}, resp.Subteams["SEO"])
	mockTeamService.AssertExpectations(t)
}

func TestTeamHandler_Create_ValidationError(t *testing.T) {
	mockTeamService, _, handler, jwtSvc := setupTeamTest(t)
	admin := newUser(access.RoleAdmin)
	mockTeamService.On("Create", mock.Anything, admin.Actor(), mock.Anything).
		Return(nil, &services.ValidationError{Field: "team_leader_search", Message: "team leader must belong to the Search department"})

	app := mount(jwtSvc, http.MethodPost, "/api/teams/", handler.Create)
	rec := do(t, app, jwtSvc, admin, http.MethodPost, "/api/teams/", dto.TeamRequest{Name: "Alpha", ProjectID: uuid.New()})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "team_leader_search", decodeError(t, rec).Field)
}

func TestTeamHandler_List(t *testing.T) {
	mockTeamService, _, handler, jwtSvc := setupTeamTest(t)
	admin := newUser(access.RoleAdmin)
	mockTeamService.On("List", mock.Anything, admin.Actor()).Return([]*models.Team{{ID: uuid.New(), Name: "Alpha"}}, nil)

	app := mount(jwtSvc, http.MethodGet, "/api/teams/", handler.List)
	rec := do(t, app, jwtSvc, admin, http.MethodGet, "/api/teams/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.TeamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
}

func TestTeamHandler_Update_NotOwner(t *testing.T) {
	mockTeamService, _, handler, jwtSvc := setupTeamTest(t)
	admin := newUser(access.RoleAdmin)
	id := uuid.New()
	mockTeamService.On("Update", mock.Anything, admin.Actor(), id, mock.Anything).Return(nil, access.ErrForbidden)

	app := mount(jwtSvc, http.MethodPut, "/api/teams/:id/", handler.Update)
	rec := do(t, app, jwtSvc, admin, http.MethodPut, "/api/teams/"+id.String()+"/", dto.TeamRequest{Name: "Alpha", ProjectID: uuid.New()})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTeamHandler_Delete(t *testing.T) {
	mockTeamService, _, handler, jwtSvc := setupTeamTest(t)
	admin := newUser(access.RoleAdmin)
	id := uuid.New()
	mockTeamService.On("Delete", mock.Anything, admin.Actor(), id).Return(nil)

	app := mount(jwtSvc, http.MethodDelete, "/api/teams/:id/", handler.Delete)
	rec := do(t, app, jwtSvc, admin, http.MethodDelete, "/api/teams/"+id.String()+"/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockTeamService.AssertExpectations(t)
}

func TestTeamHandler_SubmittedToUsers(t *testing.T) {
	mockTeamService, mockUserService, handler, jwtSvc := setupTeamTest(t)
	user := newUser(access.RoleUser)
	leaders := []models.User{*newUser(access.RoleTeamLeader), *newUser(access.RoleTeamLeader)}

	mockUserService.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	mockTeamService.On("ReviewersFor", mock.Anything, user).Return(leaders, nil)

	app := mount(jwtSvc, http.MethodGet, "/api/submitted-to-users/", handler.SubmittedToUsers)
	rec := do(t, app, jwtSvc, user, http.MethodGet, "/api/submitted-to-users/", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []dto.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "TeamLeader", resp[0].UserType)
}

func TestTeamHandler_SubmittedToUsers_NoStage(t *testing.T) {
	mockTeamService, mockUserService, handler, jwtSvc := setupTeamTest(t)
	admin := newUser(access.RoleAdmin)

	mockUserService.On("GetByID", mock.Anything, admin.ID).Return(admin, nil)
	mockTeamService.On("ReviewersFor", mock.Anything, admin).Return([]models.User{}, nil)

	app := mount(jwtSvc, http.MethodGet, "/api/submitted-to-users/", handler.SubmittedToUsers)
	rec := do(t, app, jwtSvc, admin, http.MethodGet, "/api/submitted-to-users/", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestTeamHandler_LeaderTeams(t *testing.T) {
	mockTeamService, _, handler, jwtSvc := setupTeamTest(t)
	leader := newUser(access.RoleTeamLeader)
	mockTeamService.On("LedBy", mock.Anything, leader.ID).Return([]*models.Team{{ID: uuid.New(), Name: "Alpha"}}, nil)

	app := mount(jwtSvc, http.MethodGet, "/api/team-leader/teams/", handler.LeaderTeams)

	rec := do(t, app, jwtSvc, leader, http.MethodGet, "/api/team-leader/teams/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, app, jwtSvc, newUser(access.RoleAdmin), http.MethodGet, "/api/team-leader/teams/", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestTeamHandler_InvalidTeamID(t *testing.T) {
	_, _, handler, jwtSvc := setupTeamTest(t)

	app := mount(jwtSvc, http.MethodDelete, "/api/teams/:id/", handler.Delete)
	rec := do(t, app, jwtSvc, newUser(access.RoleAdmin), http.MethodDelete, "/api/teams/nope/", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
