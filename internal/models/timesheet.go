package models

import (
	"time"

	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/dimitrije/worktrack-api/pkg/timesheet"
	"github.com/google/uuid"
)

type TimesheetTable struct {
	ID          uuid.UUID        `json:"id"`
	CreatedBy   Actor            `json:"created_by"`
	Status      timesheet.Status `json:"status"`
	Feedback    *string          `json:"feedback,omitempty"`
	Version     int              `json:"version"`
	Entries     []TimesheetEntry `json:"timesheets"`
	SubmittedAt *time.Time       `json:"submitted_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// CreatorRole is the role whose review stage governs this table.
func (t *TimesheetTable) CreatorRole() access.Role {
	return t.CreatedBy.Kind
}

// Reviewers returns the distinct submitted_to targets of the entries.
func (t *TimesheetTable) Reviewers() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(t.Entries))
	var out []uuid.UUID
	for _, e := range t.Entries {
		if !seen[e.SubmittedTo] {
			seen[e.SubmittedTo] = true
			out = append(out, e.SubmittedTo)
		}
	}
	return out
}

type TimesheetEntry struct {
	ID          uuid.UUID `json:"id"`
	TableID     uuid.UUID `json:"table_id"`
	Position    int       `json:"position"`
	Date        time.Time `json:"date"`
	ProjectID   uuid.UUID `json:"project"`
	Task        string    `json:"task"`
	SubmittedTo uuid.UUID `json:"submitted_to"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Hours       float64   `json:"hours"`
}

// ReviewEvent is one row of a table's audit trail.
type ReviewEvent struct {
	ID         uuid.UUID        `json:"id"`
	TableID    uuid.UUID        `json:"table_id"`
	Actor      Actor            `json:"actor"`
	Action     timesheet.Event  `json:"action"`
	FromStatus timesheet.Status `json:"from_status"`
	ToStatus   timesheet.Status `json:"to_status"`
	Feedback   *string          `json:"feedback,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

// TableFilter selects tables by owner, window and status.
type TableFilter struct {
	UserID   uuid.UUID
	From, To *time.Time
	Statuses []timesheet.Status
}
