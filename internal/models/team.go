package models

import (
	"time"

	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
)

// Team groups people around one project. Each department has at most one
// leader slot; Users are placed in exactly one sub-team per team.
type Team struct {
	ID                    uuid.UUID              `json:"id"`
	Name                  string                 `json:"name"`
	ProjectID             uuid.UUID              `json:"project_id"`
	TeamLeaderSearch      *uuid.UUID             `json:"team_leader_search,omitempty"`
	TeamLeaderCreative    *uuid.UUID             `json:"team_leader_creative,omitempty"`
	TeamLeaderDevelopment *uuid.UUID             `json:"team_leader_development,omitempty"`
	AccountManagers       []uuid.UUID            `json:"account_manager_ids"`
	Subteams              map[string][]uuid.UUID `json:"subteams"`
	CreatedBy             uuid.UUID              `json:"created_by"`
	CreatedAt             time.Time              `json:"created_at"`
	UpdatedAt             time.Time              `json:"updated_at"`
}

// LeaderFor returns the leader occupying the slot for department.
func (t *Team) LeaderFor(department string) *uuid.UUID {
	switch department {
	case access.DepartmentSearch:
		return t.TeamLeaderSearch
	case access.DepartmentCreative:
		return t.TeamLeaderCreative
	case access.DepartmentDevelopment:
		return t.TeamLeaderDevelopment
	}
	return nil
}

// Leaders lists the filled leader slots keyed by department.
func (t *Team) Leaders() map[string]uuid.UUID {
	out := make(map[string]uuid.UUID, 3)
	for _, dept := range []string{access.DepartmentSearch, access.DepartmentCreative, access.DepartmentDevelopment} {
		if id := t.LeaderFor(dept); id != nil {
			out[dept] = *id
		}
	}
	return out
}

func (t *Team) IsAccountManager(userID uuid.UUID) bool {
	for _, id := range t.AccountManagers {
		if id == userID {
			return true
		}
	}
	return false
}

// SubteamOf returns the sub-team a member is placed in, if any.
func (t *Team) SubteamOf(userID uuid.UUID) (string, bool) {
	for name, members := range t.Subteams {
		for _, id := range members {
			if id == userID {
				return name, true
			}
		}
	}
	return "", false
}
