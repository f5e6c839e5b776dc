package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// FixturePassword is the password every fixture user signs in with.
const FixturePassword = "password123"

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
	hash    string
}

func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

func (f *Fixtures) passwordHash(t *testing.T) string {
	t.Helper()
	if f.hash == "" {
		h, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		f.hash = string(h)
	}
	return f.hash
}

// CreateUser inserts a user of role. TeamLeaders default to the Search
// department and Users to its SEO sub-team.
func (f *Fixtures) CreateUser(t *testing.T, role access.Role, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Username:  fmt.Sprintf("user%d", f.counter),
		Email:     fmt.Sprintf("user%d@example.com", f.counter),
		FirstName: fmt.Sprintf("Test%d", f.counter),
		Role:      role,
	}
	switch role {
	case access.RoleTeamLeader:
		user.Department = ptr(access.DepartmentSearch)
	case access.RoleUser:
		user.Department = ptr(access.DepartmentSearch)
		user.Subteam = ptr("SEO")
	}

	for _, opt := range opts {
		opt(user)
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO users (username, email, first_name, last_name, password_hash, role, department, subteam)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, password_hash, created_at, updated_at
	`, user.Username, user.Email, user.FirstName, user.LastName, f.passwordHash(t), user.Role, user.Department, user.Subteam).Scan(
		&user.ID, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

func WithUsername(username string) UserOption {
	return func(u *models.User) {
		u.Username = username
	}
}

func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithSubteam places a User in subteam and its department.
func WithSubteam(department, subteam string) UserOption {
	return func(u *models.User) {
		u.Department = ptr(department)
		u.Subteam = ptr(subteam)
	}
}

func WithDepartment(department string) UserOption {
	return func(u *models.User) {
		u.Department = ptr(department)
	}
}

// CreateProject inserts an Ongoing project spanning the current year.
func (f *Fixtures) CreateProject(t *testing.T, createdBy *models.User) *models.Project {
	t.Helper()
	f.counter++

	year := time.Now().UTC().Year()
	p := &models.Project{
		Name:      fmt.Sprintf("Test Project %d", f.counter),
		Status:    models.ProjectOngoing,
		StartDate: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		Deadline:  time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		CreatedBy: createdBy.ID,
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO projects (name, description, status, start_date, deadline, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, p.Name, p.Description, p.Status, p.StartDate, p.Deadline, p.CreatedBy).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create project: %v", err)
	}

	return p
}

// CreateTeam inserts a team on project with leader in its department slot
// and members placed in their own sub-teams.
func (f *Fixtures) CreateTeam(t *testing.T, project *models.Project, leader *models.User, members ...*models.User) *models.Team {
	t.Helper()
	f.counter++
	ctx := context.Background()

	team := &models.Team{
		Name:      fmt.Sprintf("Test Team %d", f.counter),
		ProjectID: project.ID,
		Subteams:  map[string][]uuid.UUID{},
		CreatedBy: project.CreatedBy,
	}

	var search, creative, development *uuid.UUID
	if leader != nil && leader.Department != nil {
		switch *leader.Department {
		case access.DepartmentSearch:
			search = &leader.ID
		case access.DepartmentCreative:
			creative = &leader.ID
		case access.DepartmentDevelopment:
			development = &leader.ID
		}
	}
	team.TeamLeaderSearch, team.TeamLeaderCreative, team.TeamLeaderDevelopment = search, creative, development

	tx, err := f.db.Pool.Begin(ctx)
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, project_id, team_leader_search, team_leader_creative, team_leader_development, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, team.Name, team.ProjectID, search, creative, development, team.CreatedBy).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	for _, m := range members {
		if m.Subteam == nil {
			t.Fatalf("team member %s has no subteam", m.Username)
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO team_subteam_members (team_id, subteam, user_id) VALUES ($1, $2, $3)
		`, team.ID, *m.Subteam, m.ID); err != nil {
			t.Fatalf("failed to add team member: %v", err)
		}
		team.Subteams[*m.Subteam] = append(team.Subteams[*m.Subteam], m.ID)
	}

	if err := tx.Commit(ctx); err != nil {
		t.Fatalf("failed to commit transaction: %v", err)
	}

	return team
}

// AddAccountManager records admin as an account manager of team.
func (f *Fixtures) AddAccountManager(t *testing.T, team *models.Team, admin *models.User) {
	t.Helper()
	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO team_account_managers (team_id, user_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, team.ID, admin.ID)
	if err != nil {
		t.Fatalf("failed to add account manager: %v", err)
	}
	team.AccountManagers = append(team.AccountManagers, admin.ID)
}

func ptr[T any](v T) *T {
	return &v
}
