package dto

import (
	"time"

	"github.com/google/uuid"
)

// EntryRequest is one timesheet row as typed by the submitter. Hours is a
// pointer so a missing value is distinguishable from zero.
type EntryRequest struct {
	Date        string   `json:"date"`
	Project     string   `json:"project"`
	Task        string   `json:"task"`
	SubmittedTo string   `json:"submitted_to"`
	Status      string   `json:"status"`
	Description string   `json:"description"`
	Hours       *float64 `json:"hours"`
}

type CreateTableRequest struct {
	Timesheets []EntryRequest `json:"timesheets"`
}

type EditTableRequest struct {
	Timesheets []EntryRequest `json:"timesheets"`
	Version    int            `json:"version,omitempty"`
}

type SubmitTableRequest struct {
	Version int `json:"version,omitempty"`
}

type ReviewRequest struct {
	Action   string `json:"action"`
	Feedback string `json:"feedback,omitempty"`
	Version  int    `json:"version,omitempty"`
}

type ReorderRequest struct {
	Order []uuid.UUID `json:"order"`
}

type EntryResponse struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Project     uuid.UUID `json:"project"`
	Task        string    `json:"task"`
	SubmittedTo uuid.UUID `json:"submitted_to"`
	Status      string    `json:"status"`
	Description string    `json:"description"`
	Hours       float64   `json:"hours"`
}

type TableResponse struct {
	ID          uuid.UUID       `json:"id"`
	CreatedBy   Actor           `json:"created_by"`
	Status      string          `json:"status"`
	Feedback    *string         `json:"feedback,omitempty"`
	Version     int             `json:"version"`
	Timesheets  []EntryResponse `json:"timesheets"`
	SubmittedAt *time.Time      `json:"submitted_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type CommentsResponse struct {
	TableID  uuid.UUID `json:"table_id"`
	Status   string    `json:"status"`
	Feedback *string   `json:"feedback"`
}

type ReviewEventResponse struct {
	Actor      Actor     `json:"actor"`
	Action     string    `json:"action"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Feedback   *string   `json:"feedback,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateTableResponse keeps the {status: "success"} acknowledgement older
// clients check for and carries the stored table alongside it.
type CreateTableResponse struct {
	Status string        `json:"status"`
	Table  TableResponse `json:"table"`
}
