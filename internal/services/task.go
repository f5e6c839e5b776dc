package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const taskSelect = `
	SELECT t.id, t.title, t.description, t.project_id, t.status, t.priority, t.start_date, t.end_date,
		c.id, c.role, c.username, a.id, a.role, a.username, t.created_at, t.updated_at
	FROM tasks t
	JOIN users c ON c.id = t.created_by
	LEFT JOIN users a ON a.id = t.assigned_to`

type TaskService struct {
	db    *database.DB
	users *UserService
}

func NewTaskService(db *database.DB, users *UserService) *TaskService {
	return &TaskService{db: db, users: users}
}

type TaskInput struct {
	Title       string
	Description string
	ProjectID   uuid.UUID
	Status      string
	Priority    string
	StartDate   time.Time
	EndDate     time.Time
}

func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return invalid("title", "title is required")
	}
	if in.ProjectID == uuid.Nil {
		return invalid("project", "project is required")
	}
	if !models.IsTaskStatus(in.Status) {
		return invalid("status", "status must be one of To Do, In Progress, Review, Completed")
	}
	if !models.IsPriority(in.Priority) {
		return invalid("priority", "priority must be one of Low, Medium, High, Critical")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return invalid("start_date", "start and end dates are required")
	}
	if in.StartDate.After(in.EndDate) {
		return invalid("end_date", "end date must not be before the start date")
	}
	return nil
}

// SortTasks applies the default listing order: priority (Critical first),
// then ascending end date.
func SortTasks(tasks []models.Task) {
	rank := func(p string) int {
		if r, ok := models.PriorityRank[p]; ok {
			return r
		}
		return len(models.PriorityRank) + 1
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := rank(tasks[i].Priority), rank(tasks[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return tasks[i].EndDate.Before(tasks[j].EndDate)
	})
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var t models.Task
	var assigneeID *uuid.UUID
	var assigneeRole, assigneeName *string
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.ProjectID, &t.Status, &t.Priority, &t.StartDate, &t.EndDate,
		&t.CreatedBy.ID, &t.CreatedBy.Kind, &t.CreatedBy.Username,
		&assigneeID, &assigneeRole, &assigneeName,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	if assigneeID != nil {
		t.AssignedTo = &models.Actor{ID: *assigneeID}
		if assigneeRole != nil {
			t.AssignedTo.Kind = access.Role(*assigneeRole)
		}
		if assigneeName != nil {
			t.AssignedTo.Username = *assigneeName
		}
	}
	return &t, nil
}

func (s *TaskService) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	return scanTask(s.db.Pool.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id))
}

// List returns the tasks actor created or holds, in default order.
// SuperAdmin sees every task.
func (s *TaskService) List(ctx context.Context, actor models.Actor) ([]models.Task, error) {
	var rows pgx.Rows
	var err error
	if actor.Kind == access.RoleSuperAdmin {
		rows, err = s.db.Pool.Query(ctx, taskSelect)
	} else {
		rows, err = s.db.Pool.Query(ctx, taskSelect+` WHERE t.created_by = $1 OR t.assigned_to = $1`, actor.ID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	SortTasks(tasks)
	return tasks, nil
}

func (s *TaskService) Create(ctx context.Context, actor models.Actor, in TaskInput) (*models.Task, error) {
	if !access.CanPerform(actor.Kind, access.ActionCreateTask, access.Relation{}) {
		return nil, access.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var id uuid.UUID
	err := s.db.Pool.QueryRow(ctx, `
		INSERT INTO tasks (title, description, project_id, status, priority, start_date, end_date, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, strings.TrimSpace(in.Title), in.Description, in.ProjectID, in.Status, in.Priority,
		in.StartDate, in.EndDate, actor.ID).Scan(&id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *TaskService) relation(actor models.Actor, task *models.Task) access.Relation {
	return access.Relation{Owner: task.CreatedBy.ID == actor.ID}
}

// Update changes core fields; only the creator may do so.
func (s *TaskService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, in TaskInput) (*models.Task, error) {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanPerform(actor.Kind, access.ActionEditTask, s.relation(actor, task)) {
		return nil, access.ErrForbidden
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	_, err = s.db.Pool.Exec(ctx, `
		UPDATE tasks SET title = $1, description = $2, project_id = $3, status = $4, priority = $5,
			start_date = $6, end_date = $7, updated_at = NOW()
		WHERE id = $8
	`, strings.TrimSpace(in.Title), in.Description, in.ProjectID, in.Status, in.Priority,
		in.StartDate, in.EndDate, id)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

func (s *TaskService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanPerform(actor.Kind, access.ActionDeleteTask, s.relation(actor, task)) {
		return access.ErrForbidden
	}
	_, err = s.db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

// Assign delegates a task strictly down the authority chain. The creator or
// the current holder may delegate.
func (s *TaskService) Assign(ctx context.Context, actor models.Actor, id, assigneeID uuid.UUID) (*models.Task, error) {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rel := s.relation(actor, task)
	if task.AssignedTo != nil && task.AssignedTo.ID == actor.ID {
		rel.Owner = true
	}
	if !access.CanPerform(actor.Kind, access.ActionAssignTask, rel) {
		return nil, access.ErrForbidden
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if errors.Is(err, ErrUserNotFound) {
		return nil, invalid("assigned_to", "assignee does not exist")
	}
	if err != nil {
		return nil, err
	}
	if !actor.Kind.CanDelegateTo(assignee.Role) {
		return nil, access.ErrForbidden
	}

	if _, err := s.db.Pool.Exec(ctx, `
		UPDATE tasks SET assigned_to = $1, updated_at = NOW() WHERE id = $2
	`, assignee.ID, id); err != nil {
		return nil, err
	}

	task.AssignedTo = &models.Actor{Kind: assignee.Role, ID: assignee.ID, Username: assignee.Username}
	return task, nil
}
