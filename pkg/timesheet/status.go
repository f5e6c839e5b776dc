package timesheet

import (
	"errors"

	"github.com/dimitrije/worktrack-api/pkg/access"
)

// Status is the review status of a whole timesheet table.
type Status string

const (
	StatusDraft                Status = "Draft"
	StatusSentForReview        Status = "Sent for Review"
	StatusApprovedByTeamLeader Status = "Approved by Team Leader"
	StatusRejectedByTeamLeader Status = "Rejected by Team Leader"
	StatusApprovedByAdmin      Status = "Approved by Admin"
	StatusRejectedByAdmin      Status = "Rejected by Admin"
)

var AllStatuses = []Status{
	StatusDraft,
	StatusSentForReview,
	StatusApprovedByTeamLeader,
	StatusRejectedByTeamLeader,
	StatusApprovedByAdmin,
	StatusRejectedByAdmin,
}

type Event string

const (
	EventSubmit  Event = "submit"
	EventApprove Event = "approve"
	EventReject  Event = "reject"
	EventEdit    Event = "edit"
	EventDelete  Event = "delete"
	EventReorder Event = "reorder"
)

var (
	ErrInvalidState  = errors.New("timesheet table is not in a state that allows this action")
	ErrNoReviewStage = errors.New("tables created by this role have no review stage")
	ErrUnknownEvent  = errors.New("unknown timesheet event")
)

func ParseStatus(s string) (Status, bool) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

func (s Status) Approved() bool {
	return s == StatusApprovedByTeamLeader || s == StatusApprovedByAdmin
}

func (s Status) Rejected() bool {
	return s == StatusRejectedByTeamLeader || s == StatusRejectedByAdmin
}

// Terminal statuses accept no further transitions and are read-only.
func (s Status) Terminal() bool {
	return s.Approved()
}

// Editable reports whether the creator may change entries or delete the table.
func (s Status) Editable() bool {
	return s == StatusDraft || s.Rejected()
}

// Preconditions returns the statuses from which ev may fire.
func Preconditions(ev Event) []Status {
	switch ev {
	case EventSubmit, EventEdit, EventDelete:
		return []Status{StatusDraft, StatusRejectedByTeamLeader, StatusRejectedByAdmin}
	case EventApprove, EventReject:
		return []Status{StatusSentForReview}
	case EventReorder:
		return []Status{StatusDraft, StatusSentForReview, StatusRejectedByTeamLeader, StatusRejectedByAdmin}
	}
	return nil
}

// Next computes the status a table moves to when ev fires. creator is the
// role of the table's creator; it decides which review stage applies.
// Edit, delete and reorder leave the status unchanged.
func Next(current Status, ev Event, creator access.Role) (Status, error) {
	pre := Preconditions(ev)
	if pre == nil {
		return current, ErrUnknownEvent
	}
	if !contains(pre, current) {
		return current, ErrInvalidState
	}

	switch ev {
	case EventSubmit:
		if _, ok := creator.ReviewerRole(); !ok {
			return current, ErrNoReviewStage
		}
		return StatusSentForReview, nil
	case EventApprove:
		switch creator {
		case access.RoleUser:
			return StatusApprovedByTeamLeader, nil
		case access.RoleTeamLeader:
			return StatusApprovedByAdmin, nil
		}
		return current, ErrNoReviewStage
	case EventReject:
		switch creator {
		case access.RoleUser:
			return StatusRejectedByTeamLeader, nil
		case access.RoleTeamLeader:
			return StatusRejectedByAdmin, nil
		}
		return current, ErrNoReviewStage
	}
	return current, nil
}

// Pending reports whether a table still needs an action from its creator
// or its reviewer.
func (s Status) Pending() bool {
	return !s.Terminal()
}

func contains(list []Status, s Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
