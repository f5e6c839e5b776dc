package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	UserType   string    `json:"usertype"`
	Department *string   `json:"department,omitempty"`
	Subteam    *string   `json:"subteam,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type RegisterRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	UserType   string `json:"usertype"`
	Department string `json:"department,omitempty"`
	Subteam    string `json:"subteam,omitempty"`
}

type UpdateProfileRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Actor is the tagged user reference used for created_by and assigned_to.
type Actor struct {
	Kind     string    `json:"kind"`
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}
