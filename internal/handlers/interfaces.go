package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/notify"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/internal/sse"
	"github.com/dimitrije/worktrack-api/pkg/timesheet"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Authenticate(ctx context.Context, login, password string) (*models.User, error)
	Create(ctx context.Context, in services.NewUser) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, error)
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName, email string) (*models.User, error)
}

// AuthServiceInterface defines the password lifecycle used by AuthHandler
type AuthServiceInterface interface {
	RequestResetCode(ctx context.Context, login string) error
	ResetPassword(ctx context.Context, login, code, newPassword, confirm string) error
	ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword, confirm string) error
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(sub services.Subject) (*services.TokenPair, error)
	ValidateAccessToken(token string) (*services.Claims, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

type ProjectServiceInterface interface {
	ListAll(ctx context.Context, actor models.Actor) ([]models.Project, error)
	ListAssigned(ctx context.Context, userID uuid.UUID) ([]models.Project, error)
	Create(ctx context.Context, actor models.Actor, in services.ProjectInput) (*models.Project, error)
	Update(ctx context.Context, actor models.Actor, id uuid.UUID, in services.ProjectInput) (*models.Project, error)
	Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error
}

type TeamServiceInterface interface {
	List(ctx context.Context, actor models.Actor) ([]*models.Team, error)
	LedBy(ctx context.Context, leaderID uuid.UUID) ([]*models.Team, error)
	Create(ctx context.Context, actor models.Actor, in services.TeamInput) (*models.Team, error)
	Update(ctx context.Context, actor models.Actor, id uuid.UUID, in services.TeamInput) (*models.Team, error)
	Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error
	ReviewersFor(ctx context.Context, creator *models.User) ([]models.User, error)
}

type TaskServiceInterface interface {
	List(ctx context.Context, actor models.Actor) ([]models.Task, error)
	Create(ctx context.Context, actor models.Actor, in services.TaskInput) (*models.Task, error)
	Update(ctx context.Context, actor models.Actor, id uuid.UUID, in services.TaskInput) (*models.Task, error)
	Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error
	Assign(ctx context.Context, actor models.Actor, id, assigneeID uuid.UUID) (*models.Task, error)
}

// TimesheetServiceInterface is the review workflow as seen by the API.
type TimesheetServiceInterface interface {
	Create(ctx context.Context, actor models.Actor, entries []timesheet.Entry) (*models.TimesheetTable, error)
	Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.TimesheetTable, error)
	Edit(ctx context.Context, actor models.Actor, id uuid.UUID, entries []timesheet.Entry, expectedVersion int) (*models.TimesheetTable, error)
	Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error
	Submit(ctx context.Context, actor models.Actor, id uuid.UUID, expectedVersion int) (*models.TimesheetTable, error)
	Review(ctx context.Context, actor models.Actor, id uuid.UUID, action, feedback string, expectedVersion int) (*models.TimesheetTable, error)
	Reorder(ctx context.Context, actor models.Actor, id uuid.UUID, order []uuid.UUID) (*models.TimesheetTable, error)
	Comments(ctx context.Context, actor models.Actor, id uuid.UUID) (*services.Comments, error)
	History(ctx context.Context, actor models.Actor, id uuid.UUID) ([]models.ReviewEvent, error)
	PendingReview(ctx context.Context, actor models.Actor, w *timesheet.Window) ([]*models.TimesheetTable, error)
	ReviewQueue(ctx context.Context, actor models.Actor) ([]*models.TimesheetTable, error)
	ListSubordinate(ctx context.Context, actor models.Actor, userID uuid.UUID, w *timesheet.Window, statuses []timesheet.Status) ([]*models.TimesheetTable, error)
}

// Broadcaster queues user-to-user messages.
type Broadcaster interface {
	Broadcast(msg notify.Message, recipients []models.User) error
}

// HubInterface defines the methods used by handlers from the SSE hub
type HubInterface interface {
	Register(client *sse.Client)
	Unregister(client *sse.Client)
}
