package dto

import (
	"time"

	"github.com/google/uuid"
)

// Dates on the wire are YYYY-MM-DD.
type ProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	StartDate   string `json:"start_date"`
	Deadline    string `json:"deadline"`
}

type ProjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	StartDate   string    `json:"start_date"`
	Deadline    string    `json:"deadline"`
	CreatedBy   uuid.UUID `json:"created_by"`
	UpdatedAt   time.Time `json:"updated_at"`
}
