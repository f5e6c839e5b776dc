package access

import (
	"errors"
	"strings"
)

// ErrForbidden is returned when the policy table denies an action.
var ErrForbidden = errors.New("not authorized to perform this action")

type Role string

const (
	RoleSuperAdmin Role = "SuperAdmin"
	RoleAdmin      Role = "Admin"
	RoleTeamLeader Role = "TeamLeader"
	RoleUser       Role = "User"
)

// Roles lists every role from the top of the authority chain down.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleTeamLeader, RoleUser}

func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if strings.EqualFold(string(r), strings.TrimSpace(s)) {
			return r, true
		}
	}
	return "", false
}

// Valid reports whether r is one of the canonical role names. Input from
// clients goes through ParseRole first.
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// level is used only to walk the authority chain (reviewer routing,
// delegation, visibility of subordinates). Action permissions never
// compare levels; they go through the policy table below.
func (r Role) level() int {
	switch r {
	case RoleSuperAdmin:
		return 3
	case RoleAdmin:
		return 2
	case RoleTeamLeader:
		return 1
	case RoleUser:
		return 0
	}
	return -1
}

// Above reports whether r sits strictly higher in the authority chain than other.
func (r Role) Above(other Role) bool {
	return r.Valid() && other.Valid() && r.level() > other.level()
}

// Subordinates returns the roles strictly below r, highest first.
func (r Role) Subordinates() []Role {
	var out []Role
	for _, o := range Roles {
		if r.Above(o) {
			out = append(out, o)
		}
	}
	return out
}

// ReviewerRole is the role that reviews timesheet tables created by r.
func (r Role) ReviewerRole() (Role, bool) {
	switch r {
	case RoleUser:
		return RoleTeamLeader, true
	case RoleTeamLeader:
		return RoleAdmin, true
	}
	return "", false
}

// CanDelegateTo reports whether a task held by r may be assigned to target.
func (r Role) CanDelegateTo(target Role) bool {
	switch r {
	case RoleSuperAdmin:
		return target == RoleAdmin || target == RoleTeamLeader
	case RoleAdmin:
		return target == RoleTeamLeader
	case RoleTeamLeader:
		return target == RoleUser
	}
	return false
}

type Action string

const (
	ActionListAllProjects Action = "project:list-all"
	ActionCreateProject   Action = "project:create"
	ActionEditProject     Action = "project:edit"
	ActionDeleteProject   Action = "project:delete"

	ActionCreateTeam Action = "team:create"
	ActionEditTeam   Action = "team:edit"
	ActionDeleteTeam Action = "team:delete"

	ActionCreateTask Action = "task:create"
	ActionEditTask   Action = "task:edit"
	ActionDeleteTask Action = "task:delete"
	ActionAssignTask Action = "task:assign"

	ActionRegisterUser Action = "user:register"
	ActionListUsers    Action = "user:list"

	ActionSendMessage Action = "message:send"

	ActionCreateTable   Action = "timesheet:create"
	ActionEditTable     Action = "timesheet:edit"
	ActionDeleteTable   Action = "timesheet:delete"
	ActionSubmitTable   Action = "timesheet:submit"
	ActionReorderTable  Action = "timesheet:reorder"
	ActionReviewTable   Action = "timesheet:review"
	ActionViewTable     Action = "timesheet:view"
	ActionViewComments  Action = "timesheet:comments"
	ActionListSubTables Action = "timesheet:list-subordinates"
)

// Relation describes how the actor relates to the resource being acted on.
type Relation struct {
	// Owner: the actor created the resource (table, task) or manages it (team).
	Owner bool
	// Reviewer: the actor is in the authorized reviewer set for the
	// resource's creator.
	Reviewer bool
	// Superior: the actor's role is above the resource creator's role.
	Superior bool
}

type requirement int

const (
	requireNone requirement = iota
	requireOwner
	requireReviewer
	requireOwnerOrReviewer
	requireOwnerReviewerOrSuperior
)

type rule struct {
	roles    []Role
	requires requirement
}

func (r rule) allows(role Role) bool {
	for _, allowed := range r.roles {
		if allowed == role {
			return true
		}
	}
	return false
}

var (
	everyone     = []Role{RoleSuperAdmin, RoleAdmin, RoleTeamLeader, RoleUser}
	managers     = []Role{RoleSuperAdmin, RoleAdmin}
	supervisors  = []Role{RoleSuperAdmin, RoleAdmin, RoleTeamLeader}
	submitters   = []Role{RoleTeamLeader, RoleUser}
	reviewerTier = []Role{RoleAdmin, RoleTeamLeader}
)

// policy is the single allow-list for every gated action. Project deletion
// is deliberately narrower than create/edit.
var policy = map[Action]rule{
	ActionListAllProjects: {roles: []Role{RoleSuperAdmin}},
	ActionCreateProject:   {roles: managers},
	ActionEditProject:     {roles: managers},
	ActionDeleteProject:   {roles: []Role{RoleSuperAdmin}},

	ActionCreateTeam: {roles: managers},
	ActionEditTeam:   {roles: managers, requires: requireOwner},
	ActionDeleteTeam: {roles: managers, requires: requireOwner},

	ActionCreateTask: {roles: supervisors},
	ActionEditTask:   {roles: everyone, requires: requireOwner},
	ActionDeleteTask: {roles: everyone, requires: requireOwner},
	ActionAssignTask: {roles: supervisors, requires: requireOwner},

	ActionRegisterUser: {roles: managers},
	ActionListUsers:    {roles: supervisors},

	ActionSendMessage: {roles: everyone},

	ActionCreateTable:   {roles: submitters},
	ActionEditTable:     {roles: submitters, requires: requireOwner},
	ActionDeleteTable:   {roles: submitters, requires: requireOwner},
	ActionSubmitTable:   {roles: submitters, requires: requireOwner},
	ActionReorderTable:  {roles: submitters, requires: requireOwner},
	ActionReviewTable:   {roles: reviewerTier, requires: requireReviewer},
	ActionViewTable:     {roles: everyone, requires: requireOwnerReviewerOrSuperior},
	ActionViewComments:  {roles: everyone, requires: requireOwnerOrReviewer},
	ActionListSubTables: {roles: supervisors},
}

// CanPerform is a pure decision over the policy table. Unknown roles and
// unknown actions are denied.
func CanPerform(role Role, action Action, rel Relation) bool {
	r, ok := policy[action]
	if !ok || !r.allows(role) {
		return false
	}
	switch r.requires {
	case requireOwner:
		return rel.Owner
	case requireReviewer:
		return rel.Reviewer
	case requireOwnerOrReviewer:
		return rel.Owner || rel.Reviewer
	case requireOwnerReviewerOrSuperior:
		return rel.Owner || rel.Reviewer || rel.Superior
	}
	return true
}

// AllowedRoles returns the roles the policy table admits for action,
// ignoring the relation requirement. Used to render role-gated menus.
func AllowedRoles(action Action) []Role {
	r, ok := policy[action]
	if !ok {
		return nil
	}
	out := make([]Role, len(r.roles))
	copy(out, r.roles)
	return out
}
