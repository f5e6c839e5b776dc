package handlers

import (
	"errors"
	"net/http"

	"github.com/dimitrije/worktrack-api/internal/notify"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/dimitrije/worktrack-api/pkg/timesheet"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

var notFoundErrors = []error{
	services.ErrUserNotFound,
	services.ErrProjectNotFound,
	services.ErrTeamNotFound,
	services.ErrTaskNotFound,
	services.ErrTableNotFound,
}

// requestLog is the per-request logger installed by middleware.RequestLog.
func requestLog(c *drift.Context) *zerolog.Logger {
	return hlog.FromRequest(c.Request)
}

func validationError(c *drift.Context, field string, index *int, message string) {
	_ = c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Code:    dto.CodeValidation,
		Field:   field,
		Index:   index,
		Message: message,
	})
}

// badRequest reports a malformed request that never reached a service.
func badRequest(c *drift.Context, field, message string) {
	validationError(c, field, nil, message)
}

// writeError maps a service error onto the API's error contract. Anything
// unrecognised is a 500 with a generic message; the cause is logged.
func writeError(c *drift.Context, err error, fallback string) {
	var entryErr *timesheet.ValidationError
	var fieldErr *services.ValidationError
	var conflict *services.ConflictError

	switch {
	case errors.As(err, &entryErr):
		var index *int
		if entryErr.Index >= 0 {
			i := entryErr.Index
			index = &i
		}
		validationError(c, entryErr.Field, index, entryErr.Message)

	case errors.As(err, &fieldErr):
		validationError(c, fieldErr.Field, nil, fieldErr.Message)

	case errors.Is(err, services.ErrResetCodeInvalid):
		validationError(c, "verification_code", nil, err.Error())

	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized(err.Error())

	case errors.Is(err, access.ErrForbidden), errors.Is(err, timesheet.ErrNoReviewStage):
		_ = c.JSON(http.StatusForbidden, dto.ErrorResponse{Code: dto.CodeForbidden, Message: err.Error()})

	case errors.As(err, &conflict):
		version := conflict.Version
		_ = c.JSON(http.StatusConflict, dto.ErrorResponse{
			Code:           dto.CodeStateConflict,
			Message:        conflict.Err.Error(),
			CurrentStatus:  string(conflict.Status),
			CurrentVersion: &version,
		})

	case errors.Is(err, timesheet.ErrInvalidState), errors.Is(err, services.ErrVersionConflict):
		_ = c.JSON(http.StatusConflict, dto.ErrorResponse{Code: dto.CodeStateConflict, Message: err.Error()})

	case errors.Is(err, services.ErrDuplicate):
		_ = c.JSON(http.StatusConflict, dto.ErrorResponse{Message: err.Error()})

	case errors.Is(err, notify.ErrBusy):
		_ = c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Message: err.Error()})

	case isNotFound(err):
		_ = c.JSON(http.StatusNotFound, dto.ErrorResponse{Code: dto.CodeNotFound, Message: err.Error()})

	default:
		requestLog(c).Error().Err(err).Msg(fallback)
		c.InternalServerError(fallback)
	}
}

func isNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
