package handlers

import (
	"net/http"
	"strings"

	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/dimitrije/worktrack-api/pkg/timesheet"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type TimesheetHandler struct {
	timesheetService TimesheetServiceInterface
}

func NewTimesheetHandler(timesheetService TimesheetServiceInterface) *TimesheetHandler {
	return &TimesheetHandler{timesheetService: timesheetService}
}

// bindOptional decodes a body that callers may omit entirely.
func bindOptional(c *drift.Context, v any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.BindJSON(v); err != nil {
		badRequest(c, "", "invalid request body")
		return false
	}
	return true
}

func parseWindow(c *drift.Context) (*timesheet.Window, bool) {
	w, err := timesheet.ParseWindow(c.QueryParam("viewMode"), c.QueryParam("date"))
	if err != nil {
		badRequest(c, "date", err.Error())
		return nil, false
	}
	return w, true
}

// Create stores a new Draft table. The creator is always the caller; a
// created_by sent by older clients is ignored.
func (h *TimesheetHandler) Create(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req dto.CreateTableRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}

	table, err := h.timesheetService.Create(c.Request.Context(), actor, toEntries(req.Timesheets))
	if err != nil {
		writeError(c, err, "failed to create timesheet table")
		return
	}

	_ = c.JSON(http.StatusCreated, dto.CreateTableResponse{Status: "success", Table: toTableResponse(table)})
}

func (h *TimesheetHandler) Get(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	table, err := h.timesheetService.Get(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err, "failed to load timesheet table")
		return
	}
	_ = c.JSON(http.StatusOK, toTableResponse(table))
}

func (h *TimesheetHandler) Edit(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.EditTableRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}

	table, err := h.timesheetService.Edit(c.Request.Context(), actor, id, toEntries(req.Timesheets), req.Version)
	if err != nil {
		writeError(c, err, "failed to edit timesheet table")
		return
	}
	_ = c.JSON(http.StatusOK, toTableResponse(table))
}

func (h *TimesheetHandler) Delete(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.timesheetService.Delete(c.Request.Context(), actor, id); err != nil {
		writeError(c, err, "failed to delete timesheet table")
		return
	}
	_ = c.JSON(http.StatusOK, dto.MessageResponse{Message: "timesheet table deleted"})
}

func (h *TimesheetHandler) SendToReview(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.SubmitTableRequest
	if !bindOptional(c, &req) {
		return
	}

	table, err := h.timesheetService.Submit(c.Request.Context(), actor, id, req.Version)
	if err != nil {
		writeError(c, err, "failed to submit timesheet table")
		return
	}
	_ = c.JSON(http.StatusOK, toTableResponse(table))
}

// Review serves both team-leader-review/ and its review/ alias; the
// service decides which stage applies from the table creator's role.
func (h *TimesheetHandler) Review(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}

	table, err := h.timesheetService.Review(c.Request.Context(), actor, id, req.Action, req.Feedback, req.Version)
	if err != nil {
		writeError(c, err, "failed to review timesheet table")
		return
	}
	_ = c.JSON(http.StatusOK, toTableResponse(table))
}

func (h *TimesheetHandler) Reorder(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ReorderRequest
	if err := c.BindJSON(&req); err != nil {
		badRequest(c, "", "invalid request body")
		return
	}

	table, err := h.timesheetService.Reorder(c.Request.Context(), actor, id, req.Order)
	if err != nil {
		writeError(c, err, "failed to reorder timesheet table")
		return
	}
	_ = c.JSON(http.StatusOK, toTableResponse(table))
}

func (h *TimesheetHandler) Comments(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	comments, err := h.timesheetService.Comments(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err, "failed to load comments")
		return
	}
	_ = c.JSON(http.StatusOK, dto.CommentsResponse{
		TableID:  comments.TableID,
		Status:   string(comments.Status),
		Feedback: comments.Feedback,
	})
}

func (h *TimesheetHandler) History(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	events, err := h.timesheetService.History(c.Request.Context(), actor, id)
	if err != nil {
		writeError(c, err, "failed to load history")
		return
	}

	out := make([]dto.ReviewEventResponse, len(events))
	for i, e := range events {
		out[i] = dto.ReviewEventResponse{
			Actor:      toActor(e.Actor),
			Action:     string(e.Action),
			FromStatus: string(e.FromStatus),
			ToStatus:   string(e.ToStatus),
			Feedback:   e.Feedback,
			CreatedAt:  e.CreatedAt,
		}
	}
	_ = c.JSON(http.StatusOK, out)
}

func (h *TimesheetHandler) PendingReview(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	tables, err := h.timesheetService.PendingReview(c.Request.Context(), actor, w)
	if err != nil {
		writeError(c, err, "failed to list timesheet tables")
		return
	}
	_ = c.JSON(http.StatusOK, toTableResponses(tables))
}

func (h *TimesheetHandler) ReviewQueue(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	tables, err := h.timesheetService.ReviewQueue(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err, "failed to list timesheet tables")
		return
	}
	_ = c.JSON(http.StatusOK, toTableResponses(tables))
}

// List is the supervisor view over one subordinate's tables.
func (h *TimesheetHandler) List(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		badRequest(c, "user_id", "user_id is required")
		return
	}
	w, ok := parseWindow(c)
	if !ok {
		return
	}

	var statuses []timesheet.Status
	if v := c.QueryParam("table_status"); v != "" {
		for _, part := range strings.Split(v, ",") {
			s, ok := timesheet.ParseStatus(strings.TrimSpace(part))
			if !ok {
				badRequest(c, "table_status", "unknown table status "+strings.TrimSpace(part))
				return
			}
			statuses = append(statuses, s)
		}
	}

	tables, err := h.timesheetService.ListSubordinate(c.Request.Context(), actor, userID, w, statuses)
	if err != nil {
		writeError(c, err, "failed to list timesheet tables")
		return
	}
	_ = c.JSON(http.StatusOK, toTableResponses(tables))
}
