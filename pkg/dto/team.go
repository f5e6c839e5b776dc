package dto

import "github.com/google/uuid"

type TeamRequest struct {
	Name                  string                 `json:"name"`
	ProjectID             uuid.UUID              `json:"project_id"`
	TeamLeaderSearch      *uuid.UUID             `json:"team_leader_search,omitempty"`
	TeamLeaderCreative    *uuid.UUID             `json:"team_leader_creative,omitempty"`
	TeamLeaderDevelopment *uuid.UUID             `json:"team_leader_development,omitempty"`
	AccountManagerIDs     []uuid.UUID            `json:"account_manager_ids"`
	Subteams              map[string][]uuid.UUID `json:"subteams"`
}

type TeamResponse struct {
	ID                    uuid.UUID              `json:"id"`
	Name                  string                 `json:"name"`
	ProjectID             uuid.UUID              `json:"project_id"`
	TeamLeaderSearch      *uuid.UUID             `json:"team_leader_search,omitempty"`
	TeamLeaderCreative    *uuid.UUID             `json:"team_leader_creative,omitempty"`
	TeamLeaderDevelopment *uuid.UUID             `json:"team_leader_development,omitempty"`
	AccountManagerIDs     []uuid.UUID            `json:"account_manager_ids"`
	Subteams              map[string][]uuid.UUID `json:"subteams"`
	CreatedBy             uuid.UUID              `json:"created_by"`
}
