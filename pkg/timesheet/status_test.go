package timesheet

import (
	"testing"

	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_UserLifecycle(t *testing.T) {
	s, err := Next(StatusDraft, EventSubmit, access.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, StatusSentForReview, s)

	s, err = Next(s, EventReject, access.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, StatusRejectedByTeamLeader, s)

	s, err = Next(s, EventEdit, access.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, StatusRejectedByTeamLeader, s)

	s, err = Next(s, EventSubmit, access.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, StatusSentForReview, s)

	s, err = Next(s, EventApprove, access.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, StatusApprovedByTeamLeader, s)
	assert.True(t, s.Terminal())
}

func TestNext_TeamLeaderSkipsTeamLeaderStage(t *testing.T) {
	s, err := Next(StatusSentForReview, EventApprove, access.RoleTeamLeader)
	require.NoError(t, err)
	assert.Equal(t, StatusApprovedByAdmin, s)

	s, err = Next(StatusSentForReview, EventReject, access.RoleTeamLeader)
	require.NoError(t, err)
	assert.Equal(t, StatusRejectedByAdmin, s)
}

func TestNext_ReviewOutsideSentForReviewIsRejected(t *testing.T) {
	for _, st := range AllStatuses {
		if st == StatusSentForReview {
			continue
		}
		for _, ev := range []Event{EventApprove, EventReject} {
			got, err := Next(st, ev, access.RoleUser)
			assert.ErrorIs(t, err, ErrInvalidState, "%s on %s", ev, st)
			assert.Equal(t, st, got, "status must be unchanged")
		}
	}
}

func TestNext_ApprovedIsTerminal(t *testing.T) {
	for _, ev := range []Event{EventSubmit, EventApprove, EventReject, EventEdit, EventDelete, EventReorder} {
		got, err := Next(StatusApprovedByAdmin, ev, access.RoleTeamLeader)
		assert.ErrorIs(t, err, ErrInvalidState)
		assert.Equal(t, StatusApprovedByAdmin, got)
	}
}

func TestNext_SubmitTwice(t *testing.T) {
	_, err := Next(StatusSentForReview, EventSubmit, access.RoleUser)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestNext_AdminTablesHaveNoReviewStage(t *testing.T) {
	_, err := Next(StatusDraft, EventSubmit, access.RoleAdmin)
	assert.ErrorIs(t, err, ErrNoReviewStage)
}

func TestNext_UnknownEvent(t *testing.T) {
	_, err := Next(StatusDraft, Event("archive"), access.RoleUser)
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestStatus_Predicates(t *testing.T) {
	assert.True(t, StatusDraft.Editable())
	assert.True(t, StatusRejectedByAdmin.Editable())
	assert.False(t, StatusSentForReview.Editable())
	assert.False(t, StatusApprovedByTeamLeader.Editable())
	assert.True(t, StatusSentForReview.Pending())

	st, ok := ParseStatus("Approved by Admin")
	assert.True(t, ok)
	assert.Equal(t, StatusApprovedByAdmin, st)
	_, ok = ParseStatus("approved")
	assert.False(t, ok)
}
