package handlers

import (
	"strings"
	"time"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/services"
	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/dimitrije/worktrack-api/pkg/timesheet"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timesheet.DateLayout)
}

// parseDate leaves the zero time for an empty value so service validation
// reports it as missing.
func parseDate(field, v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(timesheet.DateLayout, v)
	if err != nil {
		return time.Time{}, &services.ValidationError{Field: field, Message: field + " must be formatted as YYYY-MM-DD"}
	}
	return d, nil
}

func parseID(c *drift.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, name, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func toActor(a models.Actor) dto.Actor {
	return dto.Actor{Kind: string(a.Kind), ID: a.ID, Username: a.Username}
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		UserType:   string(u.Role),
		Department: u.Department,
		Subteam:    u.Subteam,
		CreatedAt:  u.CreatedAt,
	}
}

func toUserResponses(users []models.User) []dto.UserResponse {
	out := make([]dto.UserResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	return out
}

func toProjectResponse(p *models.Project) dto.ProjectResponse {
	return dto.ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		StartDate:   formatDate(p.StartDate),
		Deadline:    formatDate(p.Deadline),
		CreatedBy:   p.CreatedBy,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toTeamResponse(t *models.Team) dto.TeamResponse {
	return dto.TeamResponse{
		ID:                    t.ID,
		Name:                  t.Name,
		ProjectID:             t.ProjectID,
		TeamLeaderSearch:      t.TeamLeaderSearch,
		TeamLeaderCreative:    t.TeamLeaderCreative,
		TeamLeaderDevelopment: t.TeamLeaderDevelopment,
		AccountManagerIDs:     t.AccountManagers,
		Subteams:              t.Subteams,
		CreatedBy:             t.CreatedBy,
	}
}

func toTeamResponses(teams []*models.Team) []dto.TeamResponse {
	out := make([]dto.TeamResponse, len(teams))
	for i, t := range teams {
		out[i] = toTeamResponse(t)
	}
	return out
}

func toTaskResponse(t *models.Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		Status:      t.Status,
		Priority:    t.Priority,
		StartDate:   formatDate(t.StartDate),
		EndDate:     formatDate(t.EndDate),
		CreatedBy:   toActor(t.CreatedBy),
		UpdatedAt:   t.UpdatedAt,
	}
	if t.AssignedTo != nil {
		a := toActor(*t.AssignedTo)
		resp.AssignedTo = &a
	}
	return resp
}

func toTableResponse(t *models.TimesheetTable) dto.TableResponse {
	entries := make([]dto.EntryResponse, len(t.Entries))
	for i, e := range t.Entries {
		entries[i] = dto.EntryResponse{
			ID:          e.ID,
			Date:        formatDate(e.Date),
			Project:     e.ProjectID,
			Task:        e.Task,
			SubmittedTo: e.SubmittedTo,
			Status:      e.Status,
			Description: e.Description,
			Hours:       e.Hours,
		}
	}
	return dto.TableResponse{
		ID:          t.ID,
		CreatedBy:   toActor(t.CreatedBy),
		Status:      string(t.Status),
		Feedback:    t.Feedback,
		Version:     t.Version,
		Timesheets:  entries,
		SubmittedAt: t.SubmittedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTableResponses(tables []*models.TimesheetTable) []dto.TableResponse {
	out := make([]dto.TableResponse, len(tables))
	for i, t := range tables {
		out[i] = toTableResponse(t)
	}
	return out
}

func toEntries(rows []dto.EntryRequest) []timesheet.Entry {
	out := make([]timesheet.Entry, len(rows))
	for i, r := range rows {
		out[i] = timesheet.Entry{
			Date:        r.Date,
			Project:     r.Project,
			Task:        r.Task,
			SubmittedTo: r.SubmittedTo,
			Status:      r.Status,
			Description: r.Description,
			Hours:       r.Hours,
		}
	}
	return out
}
