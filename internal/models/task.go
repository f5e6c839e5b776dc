package models

import (
	"time"

	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
)

const (
	TaskToDo       = "To Do"
	TaskInProgress = "In Progress"
	TaskReview     = "Review"
	TaskCompleted  = "Completed"
)

var TaskStatuses = []string{TaskToDo, TaskInProgress, TaskReview, TaskCompleted}

const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
	PriorityLow      = "Low"
)

// PriorityRank orders priorities for the default task listing; lower sorts first.
var PriorityRank = map[string]int{
	PriorityCritical: 1,
	PriorityHigh:     2,
	PriorityMedium:   3,
	PriorityLow:      4,
}

// Actor identifies a user of any role. It is decoded once at the API
// boundary in place of per-role nested shapes.
type Actor struct {
	Kind     access.Role `json:"kind"`
	ID       uuid.UUID   `json:"id"`
	Username string      `json:"username"`
}

type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProjectID   uuid.UUID `json:"project_id"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	CreatedBy   Actor     `json:"created_by"`
	AssignedTo  *Actor    `json:"assigned_to,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func IsTaskStatus(s string) bool {
	for _, v := range TaskStatuses {
		if v == s {
			return true
		}
	}
	return false
}

func IsPriority(s string) bool {
	_, ok := PriorityRank[s]
	return ok
}
