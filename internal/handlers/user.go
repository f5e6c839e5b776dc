package handlers

import (
	"net/http"
	"strings"

	"github.com/dimitrije/worktrack-api/internal/middleware"
	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type UserHandler struct {
	userService UserServiceInterface
}

func NewUserHandler(userService UserServiceInterface) *UserHandler {
	return &UserHandler{userService: userService}
}

func actorOrAbort(c *drift.Context) (models.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		c.Unauthorized("not authenticated")
	}
	return actor, ok
}

func (h *UserHandler) GetMe(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), actor.ID)
	if err != nil {
		writeError(c, err, "failed to load user")
		return
	}

	_ = c.JSON(http.StatusOK, toUserResponse(user))
}

// Get returns a single user. Callers may read themselves and anyone below
// them in the authority chain.
func (h *UserHandler) Get(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "failed to load user")
		return
	}
	if user.ID != actor.ID && !actor.Kind.Above(user.Role) {
		writeError(c, access.ErrForbidden, "")
		return
	}

	_ = c.JSON(http.StatusOK, toUserResponse(user))
}

// visibleRoles narrows the requested usertype list to what actor may see.
// SuperAdmin sees every role; everyone else only the roles below them.
func visibleRoles(actor access.Role, requested []access.Role) []access.Role {
	allowed := actor.Subordinates()
	if actor == access.RoleSuperAdmin {
		allowed = access.Roles
	}
	if len(requested) == 0 {
		return allowed
	}
	var out []access.Role
	for _, r := range requested {
		for _, a := range allowed {
			if r == a {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

func (h *UserHandler) List(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if !access.CanPerform(actor.Kind, access.ActionListUsers, access.Relation{}) {
		writeError(c, access.ErrForbidden, "")
		return
	}

	var requested []access.Role
	if v := c.QueryParam("usertype"); v != "" {
		for _, part := range strings.Split(v, ",") {
			role, ok := access.ParseRole(part)
			if !ok {
				badRequest(c, "usertype", "unknown usertype "+strings.TrimSpace(part))
				return
			}
			requested = append(requested, role)
		}
	}

	roles := visibleRoles(actor.Kind, requested)
	if len(roles) == 0 {
		_ = c.JSON(http.StatusOK, []dto.UserResponse{})
		return
	}

	users, err := h.userService.List(c.Request.Context(), models.UserFilter{
		Roles:      roles,
		Department: c.QueryParam("department"),
		Subteam:    c.QueryParam("subteam"),
	})
	if err != nil {
		writeError(c, err, "failed to list users")
		return
	}

	_ = c.JSON(http.StatusOK, toUserResponses(users))
}

func (h *UserHandler) Register(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}

	role, _ := access.ParseRole(req.UserType)
	in := services.NewUser{
		Username:   req.Username,
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Password:   req.Password,
		Role:       role,
		Department: req.Department,
		Subteam:    req.Subteam,
	}
	if err := services.ValidateNewUser(actor.Kind, in); err != nil {
		writeError(c, err, "")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err, "failed to create user")
		return
	}

	requestLog(c).Info().Str("user_id", user.ID.String()).Str("usertype", string(user.Role)).Msg("user registered")
	_ = c.JSON(http.StatusCreated, toUserResponse(user))
}

// UpdateProfile lets a user change their own name and email only.
func (h *UserHandler) UpdateProfile(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if id != actor.ID {
		writeError(c, access.ErrForbidden, "")
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	if strings.TrimSpace(req.FirstName) == "" {
		badRequest(c, "first_name", "first name is required")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), id, strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName), req.Email)
	if err != nil {
		writeError(c, err, "failed to update profile")
		return
	}

	_ = c.JSON(http.StatusOK, toUserResponse(user))
}
