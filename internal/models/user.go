package models

import (
	"time"

	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID   `json:"id"`
	Username     string      `json:"username"`
	Email        string      `json:"email"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	PasswordHash string      `json:"-"`
	Role         access.Role `json:"usertype"`
	Department   *string     `json:"department,omitempty"`
	Subteam      *string     `json:"subteam,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (u *User) Actor() Actor {
	return Actor{Kind: u.Role, ID: u.ID, Username: u.Username}
}

// UserFilter narrows a user listing. Empty fields match everything.
type UserFilter struct {
	Roles      []access.Role
	Department string
	Subteam    string
}
