package handlers

import (
	"net/http"

	"github.com/dimitrije/worktrack-api/internal/middleware"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/m1z23r/drift/pkg/drift"
)

// Handlers bundles everything RegisterRoutes mounts.
type Handlers struct {
	Auth      *AuthHandler
	User      *UserHandler
	Project   *ProjectHandler
	Team      *TeamHandler
	Task      *TaskHandler
	Timesheet *TimesheetHandler
	Message   *MessageHandler
	SSE       *SSEHandler
}

// RegisterRoutes mounts the API under /api. Global middleware must already
// be installed on app; groups copy it when they are created.
//
// The router does not allow a :param segment next to static siblings for
// the same method, so fixed listings live outside the collections they
// describe (/me/, /timesheet-review/...) and creation is a POST to the
// collection root.
func RegisterRoutes(app *drift.Engine, h Handlers, tokens middleware.TokenValidator) {
	api := app.Group("/api")

	api.Post("/login/", h.Auth.Login)
	api.Post("/logout/", h.Auth.Logout)
	api.Post("/token/refresh/", h.Auth.RefreshToken)
	api.Post("/request-password-reset-code/", h.Auth.RequestResetCode)
	api.Post("/change-password/", h.Auth.ChangePassword)
	api.Get("/auth/google/consent", h.Auth.GoogleConsent)
	api.Get("/auth/google/callback", h.Auth.GoogleCallback)
	api.Post("/auth/exchange", h.Auth.ExchangeCode)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	protected := api.Group("")
	protected.Use(middleware.Auth(tokens))

	protected.Get("/events", h.SSE.Connect)

	protected.Get("/me/", h.User.GetMe)
	protected.Get("/users/", h.User.List)
	protected.Get("/users/:id/", h.User.Get)
	protected.Post("/register/", h.User.Register)
	protected.Put("/update-profile/:id/", h.User.UpdateProfile)

	protected.Get("/projects/", h.Project.List)
	protected.Get("/projects/assigned/", h.Project.Assigned)
	protected.Post("/projects/create/", h.Project.Create)
	protected.Put("/projects/:id/edit/", h.Project.Update)
	protected.Delete("/projects/:id/delete/", h.Project.Delete)

	protected.Get("/teams/", h.Team.List)
	protected.Get("/teams/submitted-to-users/", h.Team.SubmittedToUsers)
	protected.Post("/teams/create/", h.Team.Create)
	protected.Put("/teams/:id/edit/", h.Team.Update)
	protected.Delete("/teams/:id/delete/", h.Team.Delete)

	leaders := protected.Group("/teams/teamleader")
	leaders.Use(middleware.RequireRole(access.RoleTeamLeader))
	leaders.Get("/assigned_team/", h.Team.LeaderTeams)

	protected.Get("/tasks/", h.Task.List)
	protected.Post("/tasks/", h.Task.Create)
	protected.Put("/tasks/:id/edit/", h.Task.Update)
	protected.Delete("/tasks/:id/delete/", h.Task.Delete)
	protected.Post("/tasks/:id/assign/", h.Task.Assign)

	protected.Get("/timesheet-tables/", h.Timesheet.List)
	protected.Post("/timesheet-tables/", h.Timesheet.Create)
	protected.Get("/timesheet-tables/:id/", h.Timesheet.Get)
	protected.Put("/timesheet-tables/:id/edit/", h.Timesheet.Edit)
	protected.Delete("/timesheet-tables/:id/delete/", h.Timesheet.Delete)
	protected.Post("/timesheet-tables/:id/send-to-review/", h.Timesheet.SendToReview)
	protected.Post("/timesheet-tables/:id/team-leader-review/", h.Timesheet.Review)
	protected.Post("/timesheet-tables/:id/review/", h.Timesheet.Review)
	protected.Post("/timesheet-tables/:id/reorder/", h.Timesheet.Reorder)
	protected.Get("/timesheet-tables/:id/comments/", h.Timesheet.Comments)
	protected.Get("/timesheet-tables/:id/history/", h.Timesheet.History)

	protected.Get("/timesheet-review/pending/", h.Timesheet.PendingReview)
	protected.Get("/timesheet-review/queue/", h.Timesheet.ReviewQueue)

	protected.Get("/all-users/", h.Message.Directory)
	protected.Post("/send-message/", h.Message.Send)
}
