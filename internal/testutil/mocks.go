package testutil

import (
	"context"
	"time"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/notify"
	"github.com/dimitrije/worktrack-api/internal/oauth"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/internal/sse"
	"github.com/dimitrije/worktrack-api/pkg/timesheet"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	args := m.Called(ctx, login, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, in services.NewUser) (*models.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName, email string) (*models.User, error) {
	args := m.Called(ctx, id, firstName, lastName, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockBroadcaster mocks the notifier's message fan-out
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(msg notify.Message, recipients []models.User) error {
	return m.Called(msg, recipients).Error(0)
}

// MockAuthService mocks the password lifecycle of AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) RequestResetCode(ctx context.Context, login string) error {
	args := m.Called(ctx, login)
	return args.Error(0)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, login, code, newPassword, confirm string) error {
	args := m.Called(ctx, login, code, newPassword, confirm)
	return args.Error(0)
}

func (m *MockAuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, newPassword, confirm string) error {
	args := m.Called(ctx, userID, current, newPassword, confirm)
	return args.Error(0)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(sub services.Subject) (*services.TokenPair, error) {
	args := m.Called(sub)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateAccessToken(token string) (*services.Claims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Claims), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockProjectService mocks the ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) ListAll(ctx context.Context, actor models.Actor) ([]models.Project, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockProjectService) ListAssigned(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, actor models.Actor, in services.ProjectInput) (*models.Project, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, in services.ProjectInput) (*models.Project, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockTeamService mocks the TeamService
type MockTeamService struct {
	mock.Mock
}

func (m *MockTeamService) List(ctx context.Context, actor models.Actor) ([]*models.Team, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Team), args.Error(1)
}

func (m *MockTeamService) LedBy(ctx context.Context, leaderID uuid.UUID) ([]*models.Team, error) {
	args := m.Called(ctx, leaderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Team), args.Error(1)
}

func (m *MockTeamService) Create(ctx context.Context, actor models.Actor, in services.TeamInput) (*models.Team, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, in services.TeamInput) (*models.Team, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Team), args.Error(1)
}

func (m *MockTeamService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockTeamService) ReviewersFor(ctx context.Context, creator *models.User) ([]models.User, error) {
	args := m.Called(ctx, creator)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

// MockTaskService mocks the TaskService
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) List(ctx context.Context, actor models.Actor) ([]models.Task, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Task), args.Error(1)
}

func (m *MockTaskService) Create(ctx context.Context, actor models.Actor, in services.TaskInput) (*models.Task, error) {
	args := m.Called(ctx, actor, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Update(ctx context.Context, actor models.Actor, id uuid.UUID, in services.TaskInput) (*models.Task, error) {
	args := m.Called(ctx, actor, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

func (m *MockTaskService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockTaskService) Assign(ctx context.Context, actor models.Actor, id, assigneeID uuid.UUID) (*models.Task, error) {
	args := m.Called(ctx, actor, id, assigneeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Task), args.Error(1)
}

// MockTimesheetService mocks the TimesheetService
type MockTimesheetService struct {
	mock.Mock
}

func (m *MockTimesheetService) table(args mock.Arguments) (*models.TimesheetTable, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TimesheetTable), args.Error(1)
}

func (m *MockTimesheetService) tables(args mock.Arguments) ([]*models.TimesheetTable, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TimesheetTable), args.Error(1)
}

func (m *MockTimesheetService) Create(ctx context.Context, actor models.Actor, entries []timesheet.Entry) (*models.TimesheetTable, error) {
	return m.table(m.Called(ctx, actor, entries))
}

func (m *MockTimesheetService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.TimesheetTable, error) {
	return m.table(m.Called(ctx, actor, id))
}

func (m *MockTimesheetService) Edit(ctx context.Context, actor models.Actor, id uuid.UUID, entries []timesheet.Entry, expectedVersion int) (*models.TimesheetTable, error) {
	return m.table(m.Called(ctx, actor, id, entries, expectedVersion))
}

func (m *MockTimesheetService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *MockTimesheetService) Submit(ctx context.Context, actor models.Actor, id uuid.UUID, expectedVersion int) (*models.TimesheetTable, error) {
	return m.table(m.Called(ctx, actor, id, expectedVersion))
}

func (m *MockTimesheetService) Review(ctx context.Context, actor models.Actor, id uuid.UUID, action, feedback string, expectedVersion int) (*models.TimesheetTable, error) {
	return m.table(m.Called(ctx, actor, id, action, feedback, expectedVersion))
}

func (m *MockTimesheetService) Reorder(ctx context.Context, actor models.Actor, id uuid.UUID, order []uuid.UUID) (*models.TimesheetTable, error) {
	return m.table(m.Called(ctx, actor, id, order))
}

func (m *MockTimesheetService) Comments(ctx context.Context, actor models.Actor, id uuid.UUID) (*services.Comments, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Comments), args.Error(1)
}

func (m *MockTimesheetService) History(ctx context.Context, actor models.Actor, id uuid.UUID) ([]models.ReviewEvent, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewEvent), args.Error(1)
}

func (m *MockTimesheetService) PendingReview(ctx context.Context, actor models.Actor, w *timesheet.Window) ([]*models.TimesheetTable, error) {
	return m.tables(m.Called(ctx, actor, w))
}

func (m *MockTimesheetService) ReviewQueue(ctx context.Context, actor models.Actor) ([]*models.TimesheetTable, error) {
	return m.tables(m.Called(ctx, actor))
}

func (m *MockTimesheetService) ListSubordinate(ctx context.Context, actor models.Actor, userID uuid.UUID, w *timesheet.Window, statuses []timesheet.Status) ([]*models.TimesheetTable, error) {
	return m.tables(m.Called(ctx, actor, userID, w, statuses))
}

// MockHub mocks the SSE hub
type MockHub struct {
	mock.Mock
}

func (m *MockHub) Register(client *sse.Client) {
	m.Called(client)
}

func (m *MockHub) Unregister(client *sse.Client) {
	m.Called(client)
}

// MockProvider mocks an OAuth provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) GetConsentURL(state string) string {
	args := m.Called(state)
	return args.String(0)
}

func (m *MockProvider) ExchangeCode(ctx context.Context, code string) (*oauth.UserInfo, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.UserInfo), args.Error(1)
}

func (m *MockProvider) Name() string {
	return "google"
}
