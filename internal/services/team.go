package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	teamColumns = `t.id, t.name, t.project_id, t.team_leader_search, t.team_leader_creative, t.team_leader_development, t.created_by, t.created_at, t.updated_at`

	userColumnsU = `u.id, u.username, u.email, u.first_name, u.last_name, u.password_hash, u.role, u.department, u.subteam, u.created_at, u.updated_at`
)

type TeamService struct {
	db    *database.DB
	users *UserService
}

func NewTeamService(db *database.DB, users *UserService) *TeamService {
	return &TeamService{db: db, users: users}
}

type TeamInput struct {
	Name                  string
	ProjectID             uuid.UUID
	TeamLeaderSearch      *uuid.UUID
	TeamLeaderCreative    *uuid.UUID
	TeamLeaderDevelopment *uuid.UUID
	AccountManagers       []uuid.UUID
	Subteams              map[string][]uuid.UUID
}

func (in TeamInput) leaders() map[string]*uuid.UUID {
	return map[string]*uuid.UUID{
		access.DepartmentSearch:      in.TeamLeaderSearch,
		access.DepartmentCreative:    in.TeamLeaderCreative,
		access.DepartmentDevelopment: in.TeamLeaderDevelopment,
	}
}

func (in TeamInput) referencedUsers() []uuid.UUID {
	var ids []uuid.UUID
	for _, id := range in.leaders() {
		if id != nil {
			ids = append(ids, *id)
		}
	}
	ids = append(ids, in.AccountManagers...)
	for _, members := range in.Subteams {
		ids = append(ids, members...)
	}
	return ids
}

// ValidateTeam checks slot and membership rules against the loaded users.
// Each leader must lead the slot's department, account managers must be
// Admins, and every member must be a User of that sub-team placed once.
func ValidateTeam(in TeamInput, users map[uuid.UUID]*models.User) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "name is required")
	}
	if in.ProjectID == uuid.Nil {
		return invalid("project_id", "project is required")
	}

	for dept, id := range in.leaders() {
		if id == nil {
			continue
		}
		field := "team_leader_" + strings.ToLower(dept)
		u, ok := users[*id]
		if !ok || u.Role != access.RoleTeamLeader {
			return invalid(field, "must be a team leader")
		}
		if u.Department == nil || *u.Department != dept {
			return invalid(field, fmt.Sprintf("team leader must belong to the %s department", dept))
		}
	}

	for _, id := range in.AccountManagers {
		if u, ok := users[id]; !ok || u.Role != access.RoleAdmin {
			return invalid("account_manager_ids", "account managers must be admins")
		}
	}

	placed := make(map[uuid.UUID]string)
	for name, members := range in.Subteams {
		if _, ok := access.DepartmentOf(name); !ok {
			return invalid("subteams", fmt.Sprintf("unknown subteam %q", name))
		}
		for _, id := range members {
			if prev, dup := placed[id]; dup {
				return invalid("subteams", fmt.Sprintf("member %s is in both %s and %s", id, prev, name))
			}
			placed[id] = name
			u, ok := users[id]
			if !ok || u.Role != access.RoleUser {
				return invalid("subteams", "subteam members must be users")
			}
			if u.Subteam == nil || *u.Subteam != name {
				return invalid("subteams", fmt.Sprintf("%s does not belong to subteam %s", u.Username, name))
			}
		}
	}
	return nil
}

// Relation reports how actor relates to team for the policy table.
func (s *TeamService) Relation(actor models.Actor, team *models.Team) access.Relation {
	return access.Relation{
		Owner: actor.Kind == access.RoleSuperAdmin || team.CreatedBy == actor.ID || team.IsAccountManager(actor.ID),
	}
}

func scanTeam(row pgx.Row) (*models.Team, error) {
	var t models.Team
	var createdBy *uuid.UUID
	err := row.Scan(&t.ID, &t.Name, &t.ProjectID, &t.TeamLeaderSearch, &t.TeamLeaderCreative,
		&t.TeamLeaderDevelopment, &createdBy, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTeamNotFound
	}
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		t.CreatedBy = *createdBy
	}
	t.AccountManagers = []uuid.UUID{}
	t.Subteams = map[string][]uuid.UUID{}
	return &t, nil
}

// loadTeams runs a team query and attaches account managers and sub-teams.
func (s *TeamService) loadTeams(ctx context.Context, query string, args ...any) ([]*models.Team, error) {
	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*models.Team
	byID := make(map[uuid.UUID]*models.Team)
	var ids []uuid.UUID
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, t)
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return teams, nil
	}

	mrows, err := s.db.Pool.Query(ctx, `
		SELECT team_id, user_id FROM team_account_managers WHERE team_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer mrows.Close()
	for mrows.Next() {
		var teamID, userID uuid.UUID
		if err := mrows.Scan(&teamID, &userID); err != nil {
			return nil, err
		}
		byID[teamID].AccountManagers = append(byID[teamID].AccountManagers, userID)
	}
	if err := mrows.Err(); err != nil {
		return nil, err
	}

	srows, err := s.db.Pool.Query(ctx, `
		SELECT team_id, subteam, user_id FROM team_subteam_members WHERE team_id = ANY($1)
		ORDER BY subteam
	`, ids)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var teamID, userID uuid.UUID
		var subteam string
		if err := srows.Scan(&teamID, &subteam, &userID); err != nil {
			return nil, err
		}
		t := byID[teamID]
		t.Subteams[subteam] = append(t.Subteams[subteam], userID)
	}
	return teams, srows.Err()
}

func (s *TeamService) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	teams, err := s.loadTeams(ctx, `SELECT `+teamColumns+` FROM teams t WHERE t.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, ErrTeamNotFound
	}
	return teams[0], nil
}

// List returns the teams visible to actor: all for SuperAdmin, managed or
// created teams for Admin, led teams for TeamLeader, joined teams for User.
func (s *TeamService) List(ctx context.Context, actor models.Actor) ([]*models.Team, error) {
	switch actor.Kind {
	case access.RoleSuperAdmin:
		return s.loadTeams(ctx, `SELECT `+teamColumns+` FROM teams t ORDER BY t.name`)
	case access.RoleAdmin:
		return s.loadTeams(ctx, `
			SELECT `+teamColumns+` FROM teams t
			WHERE t.created_by = $1
			OR EXISTS (SELECT 1 FROM team_account_managers m WHERE m.team_id = t.id AND m.user_id = $1)
			ORDER BY t.name
		`, actor.ID)
	case access.RoleTeamLeader:
		return s.LedBy(ctx, actor.ID)
	case access.RoleUser:
		return s.loadTeams(ctx, `
			SELECT `+teamColumns+` FROM teams t
			JOIN team_subteam_members sm ON sm.team_id = t.id
			WHERE sm.user_id = $1
			ORDER BY t.name
		`, actor.ID)
	}
	return nil, access.ErrForbidden
}

// LedBy returns the teams where leaderID occupies a leader slot.
func (s *TeamService) LedBy(ctx context.Context, leaderID uuid.UUID) ([]*models.Team, error) {
	return s.loadTeams(ctx, `
		SELECT `+teamColumns+` FROM teams t
		WHERE $1 IN (t.team_leader_search, t.team_leader_creative, t.team_leader_development)
		ORDER BY t.name
	`, leaderID)
}

func (s *TeamService) validate(ctx context.Context, in TeamInput) error {
	users, err := s.users.GetMany(ctx, in.referencedUsers())
	if err != nil {
		return err
	}
	return ValidateTeam(in, users)
}

func (s *TeamService) Create(ctx context.Context, actor models.Actor, in TeamInput) (*models.Team, error) {
	if !access.CanPerform(actor.Kind, access.ActionCreateTeam, access.Relation{}) {
		return nil, access.ErrForbidden
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id uuid.UUID
	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, project_id, team_leader_search, team_leader_creative, team_leader_development, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, strings.TrimSpace(in.Name), in.ProjectID, in.TeamLeaderSearch, in.TeamLeaderCreative,
		in.TeamLeaderDevelopment, actor.ID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create team: %w", err)
	}

	if err := writeTeamMembers(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *TeamService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, in TeamInput) (*models.Team, error) {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanPerform(actor.Kind, access.ActionEditTeam, s.Relation(actor, existing)) {
		return nil, access.ErrForbidden
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE teams SET name = $1, project_id = $2, team_leader_search = $3,
			team_leader_creative = $4, team_leader_development = $5, updated_at = NOW()
		WHERE id = $6
	`, strings.TrimSpace(in.Name), in.ProjectID, in.TeamLeaderSearch, in.TeamLeaderCreative,
		in.TeamLeaderDevelopment, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update team: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM team_account_managers WHERE team_id = $1`, id); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM team_subteam_members WHERE team_id = $1`, id); err != nil {
		return nil, err
	}
	if err := writeTeamMembers(ctx, tx, id, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return s.GetByID(ctx, id)
}

func writeTeamMembers(ctx context.Context, tx pgx.Tx, teamID uuid.UUID, in TeamInput) error {
	for _, id := range in.AccountManagers {
		if _, err := tx.Exec(ctx, `
			INSERT INTO team_account_managers (team_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, teamID, id); err != nil {
			return fmt.Errorf("failed to add account manager: %w", err)
		}
	}
	for name, members := range in.Subteams {
		for _, id := range members {
			if _, err := tx.Exec(ctx, `
				INSERT INTO team_subteam_members (team_id, subteam, user_id) VALUES ($1, $2, $3)
			`, teamID, name, id); err != nil {
				if isUniqueViolation(err) {
					return invalid("subteams", "a member may belong to only one subteam per team")
				}
				return fmt.Errorf("failed to add subteam member: %w", err)
			}
		}
	}
	return nil
}

func (s *TeamService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanPerform(actor.Kind, access.ActionDeleteTeam, s.Relation(actor, existing)) {
		return access.ErrForbidden
	}
	_, err = s.db.Pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	return err
}

func (s *TeamService) collectUsers(rows pgx.Rows, err error) ([]models.User, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ReviewersFor returns the authorized reviewer set for tables created by
// creator. A User is reviewed by the leader of their department's slot on
// each team they are a sub-team member of; a TeamLeader by the account
// managers of the teams they lead. Other roles have no reviewers.
func (s *TeamService) ReviewersFor(ctx context.Context, creator *models.User) ([]models.User, error) {
	switch creator.Role {
	case access.RoleUser:
		if creator.Department == nil {
			return nil, nil
		}
		return s.collectUsers(s.db.Pool.Query(ctx, `
			SELECT DISTINCT `+userColumnsU+` FROM team_subteam_members sm
			JOIN teams t ON t.id = sm.team_id
			JOIN users u ON u.id = CASE $2
				WHEN 'Search' THEN t.team_leader_search
				WHEN 'Creative' THEN t.team_leader_creative
				WHEN 'Development' THEN t.team_leader_development
			END
			WHERE sm.user_id = $1 AND u.role = 'TeamLeader'
			ORDER BY u.username
		`, creator.ID, *creator.Department))
	case access.RoleTeamLeader:
		return s.collectUsers(s.db.Pool.Query(ctx, `
			SELECT DISTINCT `+userColumnsU+` FROM teams t
			JOIN team_account_managers m ON m.team_id = t.id
			JOIN users u ON u.id = m.user_id
			WHERE $1 IN (t.team_leader_search, t.team_leader_creative, t.team_leader_development)
			AND u.role = 'Admin'
			ORDER BY u.username
		`, creator.ID))
	}
	return nil, nil
}

func (s *TeamService) IsReviewerFor(ctx context.Context, reviewerID uuid.UUID, creator *models.User) (bool, error) {
	reviewers, err := s.ReviewersFor(ctx, creator)
	if err != nil {
		return false, err
	}
	for _, r := range reviewers {
		if r.ID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

// ReviewableCreators is the inverse of ReviewersFor: the users whose tables
// reviewer is authorized to act on.
func (s *TeamService) ReviewableCreators(ctx context.Context, reviewer models.Actor) ([]uuid.UUID, error) {
	var query string
	switch reviewer.Kind {
	case access.RoleTeamLeader:
		query = `
			SELECT DISTINCT sm.user_id FROM teams t
			JOIN team_subteam_members sm ON sm.team_id = t.id
			JOIN users u ON u.id = sm.user_id
			WHERE (u.department = 'Search' AND t.team_leader_search = $1)
			OR (u.department = 'Creative' AND t.team_leader_creative = $1)
			OR (u.department = 'Development' AND t.team_leader_development = $1)`
	case access.RoleAdmin:
		query = `
			SELECT DISTINCT l.leader FROM teams t
			JOIN team_account_managers m ON m.team_id = t.id
			CROSS JOIN LATERAL (VALUES (t.team_leader_search), (t.team_leader_creative), (t.team_leader_development)) AS l(leader)
			WHERE m.user_id = $1 AND l.leader IS NOT NULL`
	default:
		return nil, nil
	}

	rows, err := s.db.Pool.Query(ctx, query, reviewer.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
