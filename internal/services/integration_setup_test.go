//go:build integration

package services_test

import (
	"sync"
	"testing"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/testutil"
	"github.com/google/uuid"
)

// setupTest creates a test database and returns it with its fixtures.
func setupTest(t *testing.T) (*testutil.TestDB, *testutil.Fixtures) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	tdb := testutil.SetupTestDB(t)
	return tdb, testutil.NewFixtures(tdb.DB)
}

// recordingNotifier keeps what the timesheet service announced.
type recordingNotifier struct {
	mu        sync.Mutex
	submitted [][]uuid.UUID
	reviewed  []models.Actor
}

func (n *recordingNotifier) TimesheetSubmitted(_ *models.TimesheetTable, reviewers []uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted = append(n.submitted, reviewers)
}

func (n *recordingNotifier) TimesheetReviewed(_ *models.TimesheetTable, reviewer models.Actor) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reviewed = append(n.reviewed, reviewer)
}
