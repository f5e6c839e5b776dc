package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const projectColumns = `id, name, description, status, start_date, deadline, created_by, created_at, updated_at`

type ProjectService struct {
	db *database.DB
}

func NewProjectService(db *database.DB) *ProjectService {
	return &ProjectService{db: db}
}

type ProjectInput struct {
	Name        string
	Description string
	Status      string
	StartDate   time.Time
	Deadline    time.Time
}

func (in ProjectInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("name", "name is required")
	}
	if !models.IsProjectStatus(in.Status) {
		return invalid("status", "status must be one of Ongoing, Completed, Upcoming")
	}
	if in.StartDate.IsZero() || in.Deadline.IsZero() {
		return invalid("start_date", "start date and deadline are required")
	}
	if in.StartDate.After(in.Deadline) {
		return invalid("deadline", "deadline must not be before the start date")
	}
	return nil
}

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	var createdBy *uuid.UUID
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Status, &p.StartDate, &p.Deadline,
		&createdBy, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, err
	}
	if createdBy != nil {
		p.CreatedBy = *createdBy
	}
	return &p, nil
}

func (s *ProjectService) collect(rows pgx.Rows, err error) ([]models.Project, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return scanProject(s.db.Pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id))
}

// ListAll is the unrestricted listing reserved for SuperAdmin.
func (s *ProjectService) ListAll(ctx context.Context, actor models.Actor) ([]models.Project, error) {
	if !access.CanPerform(actor.Kind, access.ActionListAllProjects, access.Relation{}) {
		return nil, access.ErrForbidden
	}
	return s.collect(s.db.Pool.Query(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY start_date DESC, name`))
}

// ListAssigned returns the projects the user is attached to through a team
// (as leader, account manager or sub-team member) or created.
func (s *ProjectService) ListAssigned(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	return s.collect(s.db.Pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects p
		WHERE p.created_by = $1
		OR EXISTS (
			SELECT 1 FROM teams t
			WHERE t.project_id = p.id AND (
				$1 IN (t.team_leader_search, t.team_leader_creative, t.team_leader_development)
				OR EXISTS (SELECT 1 FROM team_account_managers m WHERE m.team_id = t.id AND m.user_id = $1)
				OR EXISTS (SELECT 1 FROM team_subteam_members sm WHERE sm.team_id = t.id AND sm.user_id = $1)
			)
		)
		ORDER BY p.start_date DESC, p.name
	`, userID))
}

func (s *ProjectService) Create(ctx context.Context, actor models.Actor, in ProjectInput) (*models.Project, error) {
	if !access.CanPerform(actor.Kind, access.ActionCreateProject, access.Relation{}) {
		return nil, access.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return scanProject(s.db.Pool.QueryRow(ctx, `
		INSERT INTO projects (name, description, status, start_date, deadline, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+projectColumns,
		strings.TrimSpace(in.Name), in.Description, in.Status, in.StartDate, in.Deadline, actor.ID,
	))
}

func (s *ProjectService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, in ProjectInput) (*models.Project, error) {
	if !access.CanPerform(actor.Kind, access.ActionEditProject, access.Relation{}) {
		return nil, access.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return scanProject(s.db.Pool.QueryRow(ctx, `
		UPDATE projects
		SET name = $1, description = $2, status = $3, start_date = $4, deadline = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+projectColumns,
		strings.TrimSpace(in.Name), in.Description, in.Status, in.StartDate, in.Deadline, id,
	))
}

// Delete is SuperAdmin only, including for projects an Admin created.
func (s *ProjectService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if !access.CanPerform(actor.Kind, access.ActionDeleteProject, access.Relation{Owner: true}) {
		return access.ErrForbidden
	}
	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProjectNotFound
	}
	return nil
}
