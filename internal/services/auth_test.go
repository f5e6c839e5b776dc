package services

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingNotifier struct {
	mu    sync.Mutex
	codes []string
}

func (r *recordingNotifier) PasswordResetCode(to, username, code string, ttl time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, code)
}

func setupAuthService(t *testing.T) (*AuthService, *UserService, *recordingNotifier, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	users := NewUserService(db)
	users.cost = bcrypt.MinCost
	notifier := &recordingNotifier{}
	svc := NewAuthService(users, NewTokenService(db), notifier, 15*time.Minute, zerolog.Nop())
	return svc, users, notifier, mock
}

func TestAuthService_RequestResetCode(t *testing.T) {
	svc, _, notifier, mock := setupAuthService(t)
	userID := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("jdoe").
		WillReturnRows(userRow(userID, "jdoe", access.RoleUser, "hash"))
	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM password_reset_codes`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec(`INSERT INTO password_reset_codes`).
		WithArgs(userID, pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := svc.RequestResetCode(context.Background(), "jdoe")

	require.NoError(t, err)
	require.Len(t, notifier.codes, 1)
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), notifier.codes[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_RequestResetCode_UnknownUserIsSilent(t *testing.T) {
	svc, _, notifier, mock := setupAuthService(t)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	err := svc.RequestResetCode(context.Background(), "ghost")

	assert.NoError(t, err)
	assert.Empty(t, notifier.codes)
}

func TestAuthService_ResetPassword(t *testing.T) {
	svc, _, _, mock := setupAuthService(t)
	userID, codeID := uuid.New(), uuid.New()
	codeHash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("jdoe").
		WillReturnRows(userRow(userID, "jdoe", access.RoleUser, "hash"))
	mock.ExpectQuery(`SELECT id, code_hash FROM password_reset_codes`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "code_hash"}).AddRow(codeID, string(codeHash)))
	mock.ExpectExec(`UPDATE password_reset_codes SET used_at`).
		WithArgs(codeID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`UPDATE users SET password_hash`).
		WithArgs(pgxmock.AnyArg(), userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec(`DELETE FROM refresh_tokens WHERE user_id`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))

	err = svc.ResetPassword(context.Background(), "jdoe", "123456", "new-password", "new-password")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_ResetPassword_WrongCode(t *testing.T) {
	svc, _, _, mock := setupAuthService(t)
	userID := uuid.New()
	codeHash, err := bcrypt.GenerateFromPassword([]byte("123456"), bcrypt.MinCost)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users`).
		WithArgs("jdoe").
		WillReturnRows(userRow(userID, "jdoe", access.RoleUser, "hash"))
	mock.ExpectQuery(`SELECT id, code_hash FROM password_reset_codes`).
		WithArgs(userID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "code_hash"}).AddRow(uuid.New(), string(codeHash)))

	err = svc.ResetPassword(context.Background(), "jdoe", "654321", "new-password", "new-password")

	assert.ErrorIs(t, err, ErrResetCodeInvalid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	svc, users, _, mock := setupAuthService(t)
	userID := uuid.New()
	hash, err := users.HashPassword("current-pass")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(userID).
		WillReturnRows(userRow(userID, "jdoe", access.RoleTeamLeader, hash))

	err = svc.ChangePassword(context.Background(), userID, "not-current", "new-password", "new-password")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateNewPassword(t *testing.T) {
	var verr *ValidationError

	require.ErrorAs(t, validateNewPassword("short", "short"), &verr)
	assert.Equal(t, "new_password", verr.Field)

	require.ErrorAs(t, validateNewPassword("long-enough", "long-enougH"), &verr)
	assert.Equal(t, "confirm_password", verr.Field)

	assert.NoError(t, validateNewPassword("long-enough", "long-enough"))
}
