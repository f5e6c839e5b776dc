package handlers

import (
	"net/http"

	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type TeamHandler struct {
	teamService TeamServiceInterface
	userService UserServiceInterface
}

func NewTeamHandler(teamService TeamServiceInterface, userService UserServiceInterface) *TeamHandler {
	return &TeamHandler{teamService: teamService, userService: userService}
}

func teamInput(req dto.TeamRequest) services.TeamInput {
	return services.TeamInput{
		Name:                  req.Name,
		ProjectID:             req.ProjectID,
		TeamLeaderSearch:      req.TeamLeaderSearch,
		TeamLeaderCreative:    req.TeamLeaderCreative,
		TeamLeaderDevelopment: req.TeamLeaderDevelopment,
		AccountManagers:       req.AccountManagerIDs,
		Subteams:              req.Subteams,
	}
}

func (h *TeamHandler) List(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	teams, err := h.teamService.List(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err, "failed to list teams")
		return
	}
	_ = c.JSON(http.StatusOK, toTeamResponses(teams))
}

func (h *TeamHandler) Create(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.TeamRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}

	team, err := h.teamService.Create(c.Request.Context(), actor, teamInput(req))
	if err != nil {
		writeError(c, err, "failed to create team")
		return
	}
	_ = c.JSON(http.StatusCreated, toTeamResponse(team))
}

func (h *TeamHandler) Update(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.TeamRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}

	team, err := h.teamService.Update(c.Request.Context(), actor, id, teamInput(req))
	if err != nil {
		writeError(c, err, "failed to update team")
		return
	}
	_ = c.JSON(http.StatusOK, toTeamResponse(team))
}

func (h *TeamHandler) Delete(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.teamService.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, err, "failed to delete team")
		return
	}
	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "team deleted"})
}

// SubmittedToUsers lists the reviewers the caller may address timesheet
// entries to. Roles without a review stage get an empty list.
func (h *TeamHandler) SubmittedToUsers(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	me, err := h.userService.GetByID(ctx, actor.ID)
	if err != nil {
		writeError(c, err, "failed to load user")
		return
	}

	reviewers, err := h.teamService.ReviewersFor(ctx, me)
	if err != nil {
		writeError(c, err, "failed to load reviewers")
		return
	}
	_ = c.JSON(http.StatusOK, toUserResponses(reviewers))
}

// LeaderTeams returns the teams where the calling TeamLeader holds a slot.
func (h *TeamHandler) LeaderTeams(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if actor.Kind != access.RoleTeamLeader {
		writeError(c, access.ErrForbidden, "")
		return
	}

	teams, err := h.teamService.LedBy(c.Request.Context(), actor.ID)
	if err != nil {
		writeError(c, err, "failed to list teams")
		return
	}
	_ = c.JSON(http.StatusOK, toTeamResponses(teams))
}
