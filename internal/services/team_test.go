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
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var teamColumnNames = []string{
	"id", "name", "project_id", "team_leader_search", "team_leader_creative",
	"team_leader_development", "created_by", "created_at", "updated_at",
}

func setupTeamService(t *testing.T) (*TeamService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewTeamService(db, NewUserService(db)), mock
}

func member(role access.Role, dept, subteam string) *models.User {
	u := &models.User{ID: uuid.New(), Username: string(role) + "-" + subteam, Role: role}
	if dept != "" {
		u.Department = &dept
	}
	if subteam != "" {
		u.Subteam = &subteam
	}
	return u
}

func index(users ...*models.User) map[uuid.UUID]*models.User {
	out := make(map[uuid.UUID]*models.User, len(users))
	for _, u := range users {
		out[u.ID] = u
	}
	return out
}

func TestValidateTeam(t *testing.T) {
	searchLead := member(access.RoleTeamLeader, access.DepartmentSearch, "")
	devLead := member(access.RoleTeamLeader, access.DepartmentDevelopment, "")
	admin := member(access.RoleAdmin, "", "")
	seo := member(access.RoleUser, access.DepartmentSearch, "SEO")
	web := member(access.RoleUser, access.DepartmentDevelopment, "Web Development")
	users := index(searchLead, devLead, admin, seo, web)

	valid := TeamInput{
		Name:                  "Acme",
		ProjectID:             uuid.New(),
		TeamLeaderSearch:      &searchLead.ID,
		TeamLeaderDevelopment: &devLead.ID,
		AccountManagers:       []uuid.UUID{admin.ID},
		Subteams: map[string][]uuid.UUID{
			"SEO":             {seo.ID},
			"Web Development": {web.ID},
		},
	}
	require.NoError(t, ValidateTeam(valid, users))

	tests := []struct {
		name   string
		mutate func(*TeamInput)
		field  string
	}{
		{"leader in wrong slot", func(in *TeamInput) { in.TeamLeaderCreative = &searchLead.ID }, "team_leader_creative"},
		{"user as leader", func(in *TeamInput) { in.TeamLeaderSearch = &seo.ID }, "team_leader_search"},
		{"team leader as account manager", func(in *TeamInput) { in.AccountManagers = []uuid.UUID{devLead.ID} }, "account_manager_ids"},
		{"member in two subteams", func(in *TeamInput) {
			in.Subteams = map[string][]uuid.UUID{"SEO": {seo.ID}, "SEM": {seo.ID}}
		}, "subteams"},
		{"member in foreign subteam", func(in *TeamInput) {
			in.Subteams = map[string][]uuid.UUID{"Design": {seo.ID}}
		}, "subteams"},
		{"unknown subteam", func(in *TeamInput) {
			in.Subteams = map[string][]uuid.UUID{"Marketing": {}}
		}, "subteams"},
		{"missing project", func(in *TeamInput) { in.ProjectID = uuid.Nil }, "project_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			var verr *ValidationError
			require.ErrorAs(t, ValidateTeam(in, users), &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func expectTeamLoad(mock pgxmock.PgxPoolIface, team *models.Team) {
	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM teams t WHERE t.id`).
		WithArgs(team.ID).
		WillReturnRows(pgxmock.NewRows(teamColumnNames).AddRow(
			team.ID, team.Name, team.ProjectID, team.TeamLeaderSearch, team.TeamLeaderCreative,
			team.TeamLeaderDevelopment, &team.CreatedBy, now, now))

	managers := pgxmock.NewRows([]string{"team_id", "user_id"})
	for _, id := range team.AccountManagers {
		managers.AddRow(team.ID, id)
	}
	mock.ExpectQuery(`SELECT team_id, user_id FROM team_account_managers`).
		WithArgs([]uuid.UUID{team.ID}).
		WillReturnRows(managers)

	members := pgxmock.NewRows([]string{"team_id", "subteam", "user_id"})
	for name, ids := range team.Subteams {
		for _, id := range ids {
			members.AddRow(team.ID, name, id)
		}
	}
	mock.ExpectQuery(`SELECT team_id, subteam, user_id FROM team_subteam_members`).
		WithArgs([]uuid.UUID{team.ID}).
		WillReturnRows(members)
}

func TestTeamService_GetByID(t *testing.T) {
	svc, mock := setupTeamService(t)
	leader, managerID, memberID := uuid.New(), uuid.New(), uuid.New()
	team := &models.Team{
		ID: uuid.New(), Name: "Acme", ProjectID: uuid.New(), CreatedBy: uuid.New(),
		TeamLeaderSearch: &leader,
		AccountManagers:  []uuid.UUID{managerID},
		Subteams:         map[string][]uuid.UUID{"SEO": {memberID}},
	}
	expectTeamLoad(mock, team)

	got, err := svc.GetByID(context.Background(), team.ID)

	require.NoError(t, err)
	assert.Equal(t, leader, *got.TeamLeaderSearch)
	assert.Nil(t, got.TeamLeaderCreative)
	assert.Equal(t, []uuid.UUID{managerID}, got.AccountManagers)
	name, ok := got.SubteamOf(memberID)
	assert.True(t, ok)
	assert.Equal(t, "SEO", name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Delete_AdminMustManage(t *testing.T) {
	svc, mock := setupTeamService(t)
	team := &models.Team{ID: uuid.New(), Name: "Acme", ProjectID: uuid.New(), CreatedBy: uuid.New()}
	expectTeamLoad(mock, team)

	err := svc.Delete(context.Background(), actorOf(access.RoleAdmin), team.ID)

	assert.ErrorIs(t, err, access.ErrForbidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Delete_AccountManager(t *testing.T) {
	svc, mock := setupTeamService(t)
	admin := actorOf(access.RoleAdmin)
	team := &models.Team{ID: uuid.New(), Name: "Acme", ProjectID: uuid.New(), CreatedBy: uuid.New(),
		AccountManagers: []uuid.UUID{admin.ID}}
	expectTeamLoad(mock, team)
	mock.ExpectExec(`DELETE FROM teams WHERE id`).
		WithArgs(team.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.Delete(context.Background(), admin, team.ID)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupTeamService(t)
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM teams t WHERE t.id`).
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(teamColumnNames))

	_, err := svc.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestTeamService_ReviewersFor_User(t *testing.T) {
	svc, mock := setupTeamService(t)
	creator := member(access.RoleUser, access.DepartmentSearch, "SEO")
	leaderID := uuid.New()

	mock.ExpectQuery(`SELECT DISTINCT .+ FROM team_subteam_members sm`).
		WithArgs(creator.ID, access.DepartmentSearch).
		WillReturnRows(userRow(leaderID, "lead", access.RoleTeamLeader, "hash"))

	reviewers, err := svc.ReviewersFor(context.Background(), creator)

	require.NoError(t, err)
	require.Len(t, reviewers, 1)
	assert.Equal(t, leaderID, reviewers[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_ReviewersFor_AdminHasNone(t *testing.T) {
	svc, mock := setupTeamService(t)

	reviewers, err := svc.ReviewersFor(context.Background(), member(access.RoleAdmin, "", ""))

	assert.NoError(t, err)
	assert.Empty(t, reviewers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_ReviewableCreators_TeamLeader(t *testing.T) {
	svc, mock := setupTeamService(t)
	lead := actorOf(access.RoleTeamLeader)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT DISTINCT sm.user_id FROM teams t`).
		WithArgs(lead.ID).
		WillReturnRows(pgxmock.NewRows([]string{"user_id"}).AddRow(a).AddRow(b))

	ids, err := svc.ReviewableCreators(context.Background(), lead)

	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_ReviewersFor_QueryError(t *testing.T) {
	svc, mock := setupTeamService(t)
	creator := member(access.RoleTeamLeader, access.DepartmentCreative, "")

	mock.ExpectQuery(`SELECT DISTINCT .+ FROM teams t`).
		WithArgs(creator.ID).
		WillReturnError(pgx.ErrTxClosed)

	_, err := svc.ReviewersFor(context.Background(), creator)
	assert.Error(t, err)
}
