package dto

import (
	"time"

	"github.com/google/uuid"
)

type TaskRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProjectID   uuid.UUID `json:"project"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
}

type AssignTaskRequest struct {
	AssignedTo uuid.UUID `json:"assigned_to"`
}

type TaskResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	ProjectID   uuid.UUID `json:"project"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	CreatedBy   Actor     `json:"created_by"`
	AssignedTo  *Actor    `json:"assigned_to,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}
