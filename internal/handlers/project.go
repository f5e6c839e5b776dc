package handlers

import (
	"net/http"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

type ProjectHandler struct {
	projectService ProjectServiceInterface
}

func NewProjectHandler(projectService ProjectServiceInterface) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func projectInput(req dto.ProjectRequest) (services.ProjectInput, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return services.ProjectInput{}, err
	}
	deadline, err := parseDate("deadline", req.Deadline)
	if err != nil {
		return services.ProjectInput{}, err
	}
	return services.ProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		StartDate:   start,
		Deadline:    deadline,
	}, nil
}

func writeProjects(c *drift.Context, projects []models.Project) {
	out := make([]dto.ProjectResponse, len(projects))
	for i := range projects {
		out[i] = toProjectResponse(&projects[i])
	}
	_ = c.JSON(http.StatusOK, out)
}

func (h *ProjectHandler) List(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListAll(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err, "failed to list projects")
		return
	}
	writeProjects(c, projects)
}

func (h *ProjectHandler) Assigned(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListAssigned(c.Request.Context(), actor.ID)
	if err != nil {
		writeError(c, err, "failed to list projects")
		return
	}
	writeProjects(c, projects)
}

func (h *ProjectHandler) Create(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.ProjectRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	in, err := projectInput(req)
	if err != nil {
		writeError(c, err, "")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, err, "failed to create project")
		return
	}

	_ = c.JSON(http.StatusCreated, toProjectResponse(project))
}

func (h *ProjectHandler) Update(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ProjectRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	in, err := projectInput(req)
	if err != nil {
		writeError(c, err, "")
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), actor, id, in)
	if err != nil {
		writeError(c, err, "failed to update project")
		return
	}

	_ = c.JSON(http.StatusOK, toProjectResponse(project))
}

func (h *ProjectHandler) Delete(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, err, "failed to delete project")
		return
	}

	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "project deleted"})
}
