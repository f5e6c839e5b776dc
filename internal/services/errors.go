package services

import (
	"errors"
	"fmt"

	"github.com/dimitrije/worktrack-api/pkg/timesheet"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrTeamNotFound    = errors.New("team not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrTableNotFound   = errors.New("timesheet table not found")

	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrDuplicate          = errors.New("already exists")
	ErrVersionConflict    = errors.New("version conflict: table has been modified")
)

// ValidationError reports a request field that failed validation outside
// of timesheet entries.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConflictError is returned when a table changed under the caller. Err is
// timesheet.ErrInvalidState or ErrVersionConflict; Status and Version are
// the stored values at the time of the failed write.
type ConflictError struct {
	Err     error
	Status  timesheet.Status
	Version int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v (status %q, version %d)", e.Err, e.Status, e.Version)
}

func (e *ConflictError) Unwrap() error {
	return e.Err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
