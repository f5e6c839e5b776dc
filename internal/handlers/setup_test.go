package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimitrije/worktrack-api/internal/middleware"
	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/internal/testutil"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/require"
)

func newUser(role access.Role) *models.User {
	id := uuid.New()
	return &models.User{
		ID:        id,
		Username:  "user-" + id.String()[:8],
		Email:     id.String()[:8] + "@example.com",
		FirstName: "Test",
		Role:      role,
	}
}

// mount registers h behind BodyParser and, when jwtSvc is set, Auth.
func mount(jwtSvc *services.JWTService, method, pattern string, h drift.HandlerFunc) http.Handler {
	app := drift.New()
	app.Use(driftmw.BodyParser())
	if jwtSvc != nil {
		app.Use(middleware.Auth(jwtSvc))
	}
	switch method {
	case http.MethodGet:
		app.Get(pattern, h)
	case http.MethodPost:
		app.Post(pattern, h)
	case http.MethodPut:
		app.Put(pattern, h)
	case http.MethodPatch:
		app.Patch(pattern, h)
	case http.MethodDelete:
		app.Delete(pattern, h)
	}
	return app
}

// do sends a JSON request as user; a nil user sends no Authorization header.
func do(t *testing.T, app http.Handler, jwtSvc *services.JWTService, user *models.User, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+testutil.GenerateTestToken(t, jwtSvc, user))
	}

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}
