package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ProjectOngoing   = "Ongoing"
	ProjectCompleted = "Completed"
	ProjectUpcoming  = "Upcoming"
)

var ProjectStatuses = []string{ProjectOngoing, ProjectCompleted, ProjectUpcoming}

type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	StartDate   time.Time `json:"start_date"`
	Deadline    time.Time `json:"deadline"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func IsProjectStatus(s string) bool {
	for _, v := range ProjectStatuses {
		if v == s {
			return true
		}
	}
	return false
}
