package handlers

import (
	"net/http"

	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type TaskHandler struct {
	taskService TaskServiceInterface
}

func NewTaskHandler(taskService TaskServiceInterface) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

func taskInput(req dto.TaskRequest) (services.TaskInput, error) {
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return services.TaskInput{}, err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return services.TaskInput{}, err
	}
	return services.TaskInput{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		Status:      req.Status,
		Priority:    req.Priority,
		StartDate:   start,
		EndDate:     end,
	}, nil
}

// List returns the caller's tasks, most urgent first.
func (h *TaskHandler) List(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.List(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err, "failed to list tasks")
		return
	}

	out := make([]dto.TaskResponse, len(tasks))
	for i := range tasks {
		out[i] = toTaskResponse(&tasks[i])
	}
	_ = c.JSON(http.StatusOK, out)
}

func (h *TaskHandler) Create(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.TaskRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	in, err := taskInput(req)
	if err != nil {
		writeError(c, err, "")
		return
	}

	task, err := h.taskService.Create(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, err, "failed to create task")
		return
	}
	_ = c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (h *TaskHandler) Update(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.TaskRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	in, err := taskInput(req)
	if err != nil {
		writeError(c, err, "")
		return
	}

	task, err := h.taskService.Update(c.Request.Context(), actor, id, in)
	if err != nil {
		writeError(c, err, "failed to update task")
		return
	}
	_ = c.JSON(http.StatusOK, toTaskResponse(task))
}

func (h *TaskHandler) Delete(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.taskService.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, err, "failed to delete task")
		return
	}
	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "task deleted"})
}

func (h *TaskHandler) Assign(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.AssignTaskRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}
	if req.AssignedTo == uuid.Nil {
		badRequest(c, "assigned_to", "assigned_to is required")
		return
	}

	task, err := h.taskService.Assign(c.Request.Context(), actor, id, req.AssignedTo)
	if err != nil {
		writeError(c, err, "failed to assign task")
		return
	}
	_ = c.JSON(http.StatusOK, toTaskResponse(task))
}
