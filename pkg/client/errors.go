package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dimitrije/worktrack-api/pkg/dto"
)

// ValidationError is a 400 from the API. Index is the zero-based entry row
// for timesheet entry errors and nil for request-level fields.
type ValidationError struct {
	Field   string
	Index   *int
	Message string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Index != nil && e.Field != "":
		return fmt.Sprintf("entry %d: %s: %s", *e.Index+1, e.Field, e.Message)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// AuthorizationError is a 401 or 403. Unauthenticated is true for 401, in
// which case the session should be dropped.
type AuthorizationError struct {
	Unauthenticated bool
	Message         string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// StateConflictError means the table moved on since it was loaded. Callers
// re-fetch and show CurrentStatus instead of retrying.
type StateConflictError struct {
	CurrentStatus  string
	CurrentVersion int
	Message        string
}

func (e *StateConflictError) Error() string {
	if e.CurrentStatus == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (now %q, version %d)", e.Message, e.CurrentStatus, e.CurrentVersion)
}

// NetworkError wraps a transport failure; the request may or may not have
// reached the server. Nothing is retried automatically.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is any other non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// errorBody accepts the API's own error shape and the {"error": "..."}
// bodies written by the router for auth failures.
type errorBody struct {
	dto.ErrorResponse
	Error string `json:"error"`
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body errorBody
	_ = json.Unmarshal(raw, &body)
	msg := body.Message
	if msg == "" {
		msg = body.Error
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		return &ValidationError{Field: body.Field, Index: body.Index, Message: msg}
	case http.StatusUnauthorized:
		return &AuthorizationError{Unauthenticated: true, Message: msg}
	case http.StatusForbidden:
		return &AuthorizationError{Message: msg}
	case http.StatusNotFound:
		return &NotFoundError{Message: msg}
	case http.StatusConflict:
		if body.Code == dto.CodeStateConflict {
			conflict := &StateConflictError{CurrentStatus: body.CurrentStatus, Message: msg}
			if body.CurrentVersion != nil {
				conflict.CurrentVersion = *body.CurrentVersion
			}
			return conflict
		}
	}
	return &APIError{StatusCode: resp.StatusCode, Code: body.Code, Message: msg}
}
