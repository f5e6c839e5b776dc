package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *services.JWTService {
	return services.NewJWTService("test-secret-key", 15*time.Minute, 24*time.Hour)
}

func generateTestToken(t *testing.T, jwtSvc *services.JWTService, sub services.Subject) string {
	t.Helper()
	pair, err := jwtSvc.GenerateTokenPair(sub)
	require.NoError(t, err)
	return pair.AccessToken
}

func okHandler(c *drift.Context) {
	_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func protectedApp(tokens TokenValidator, handler drift.HandlerFunc, guards ...drift.HandlerFunc) http.Handler {
	app := drift.New()
	app.Use(Auth(tokens))
	for _, g := range guards {
		app.Use(g)
	}
	app.Get("/protected", handler)
	return app
}

func serve(app http.Handler, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func TestAuth_Rejections(t *testing.T) {
	jwtSvc := newTestJWTService()
	other := services.NewJWTService("another-secret", 15*time.Minute, 24*time.Hour)
	foreign := generateTestToken(t, other, services.Subject{UserID: uuid.New(), Role: access.RoleUser})

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"missing header", "", "missing authorization header"},
		{"wrong scheme", "Token some-token", "invalid authorization header format"},
		{"scheme only", "Bearer", "invalid authorization header format"},
		{"garbage token", "Bearer invalid-token", "invalid or expired token"},
		{"wrong secret", "Bearer " + foreign, "invalid or expired token"},
	}

	app := protectedApp(jwtSvc, okHandler)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(app, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}
}

func TestAuth_ExpiredToken(t *testing.T) {
	jwtSvc := services.NewJWTService("test-secret-key", time.Millisecond, 24*time.Hour)
	token := generateTestToken(t, jwtSvc, services.Subject{UserID: uuid.New(), Role: access.RoleUser})

	time.Sleep(10 * time.Millisecond)

	rec := serve(protectedApp(jwtSvc, okHandler), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_ValidTokenSetsActor(t *testing.T) {
	jwtSvc := newTestJWTService()
	sub := services.Subject{UserID: uuid.New(), Username: "jdoe", Email: "jdoe@example.com", Role: access.RoleTeamLeader}
	token := generateTestToken(t, jwtSvc, sub)

	var actor models.Actor
	var found bool
	var email string
	app := protectedApp(jwtSvc, func(c *drift.Context) {
		actor, found = GetActor(c)
		email = GetUserEmail(c)
		okHandler(c)
	})

	rec := serve(app, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, found)
	assert.Equal(t, models.Actor{Kind: access.RoleTeamLeader, ID: sub.UserID, Username: "jdoe"}, actor)
	assert.Equal(t, "jdoe@example.com", email)
}

func TestAuth_BearerCaseInsensitive(t *testing.T) {
	jwtSvc := newTestJWTService()
	token := generateTestToken(t, jwtSvc, services.Subject{UserID: uuid.New(), Role: access.RoleUser})
	app := protectedApp(jwtSvc, okHandler)

	for _, scheme := range []string{"bearer", "BEARER", "BeArEr"} {
		t.Run(scheme, func(t *testing.T) {
			assert.Equal(t, http.StatusOK, serve(app, scheme+" "+token).Code)
		})
	}
}

func TestGetActor_NotAuthenticated(t *testing.T) {
	app := drift.New()

	var found bool
	var id uuid.UUID
	app.Get("/protected", func(c *drift.Context) {
		_, found = GetActor(c)
		id = GetUserID(c)
		okHandler(c)
	})

	serve(app, "")

	assert.False(t, found)
	assert.Equal(t, uuid.Nil, id)
}

func TestRequireRole(t *testing.T) {
	jwtSvc := newTestJWTService()
	app := protectedApp(jwtSvc, okHandler, RequireRole(access.RoleSuperAdmin, access.RoleAdmin))

	tests := []struct {
		role access.Role
		want int
	}{
		{access.RoleSuperAdmin, http.StatusOK},
		{access.RoleAdmin, http.StatusOK},
		{access.RoleTeamLeader, http.StatusForbidden},
		{access.RoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			token := generateTestToken(t, jwtSvc, services.Subject{UserID: uuid.New(), Role: tt.role})
			assert.Equal(t, tt.want, serve(app, "Bearer "+token).Code)
		})
	}
}
