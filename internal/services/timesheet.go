package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dimitrije/worktrack-api/internal/database"
	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/dimitrije/worktrack-api/pkg/timesheet"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	tableSelect = `
	SELECT t.id, u.id, u.role, u.username, t.status, t.feedback, t.version, t.submitted_at, t.created_at, t.updated_at
	FROM timesheet_tables t
	JOIN users u ON u.id = t.created_by`

	entryColumns = `id, table_id, position, entry_date, project_id, task, submitted_to, status, description, hours`
)

// ReviewNotifier is told about review traffic after it is committed.
type ReviewNotifier interface {
	TimesheetSubmitted(table *models.TimesheetTable, reviewers []uuid.UUID)
	TimesheetReviewed(table *models.TimesheetTable, reviewer models.Actor)
}

// TimesheetService runs the table lifecycle. Every status change is a
// single conditional UPDATE guarded by the allowed source statuses and,
// when the caller sends one, the table version.
type TimesheetService struct {
	db       *database.DB
	users    *UserService
	teams    *TeamService
	projects *ProjectService
	notifier ReviewNotifier
	log      zerolog.Logger
}

func NewTimesheetService(db *database.DB, users *UserService, teams *TeamService, projects *ProjectService, notifier ReviewNotifier, log zerolog.Logger) *TimesheetService {
	return &TimesheetService{
		db:       db,
		users:    users,
		teams:    teams,
		projects: projects,
		notifier: notifier,
		log:      log.With().Str("component", "timesheet").Logger(),
	}
}

// Comments is the feedback view of a table.
type Comments struct {
	TableID  uuid.UUID        `json:"table_id"`
	Status   timesheet.Status `json:"status"`
	Feedback *string          `json:"feedback"`
}

func scanTable(row pgx.Row) (*models.TimesheetTable, error) {
	var t models.TimesheetTable
	err := row.Scan(
		&t.ID, &t.CreatedBy.ID, &t.CreatedBy.Kind, &t.CreatedBy.Username,
		&t.Status, &t.Feedback, &t.Version, &t.SubmittedAt, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTableNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// loadTables runs a table query and attaches entries in position order.
func (s *TimesheetService) loadTables(ctx context.Context, query string, args ...any) ([]*models.TimesheetTable, error) {
	rows, err := s.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var tables []*models.TimesheetTable
	byID := make(map[uuid.UUID]*models.TimesheetTable)
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		t.Entries = []models.TimesheetEntry{}
		tables = append(tables, t)
		byID[t.ID] = t
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return tables, nil
	}

	ids := make([]uuid.UUID, len(tables))
	for i, t := range tables {
		ids[i] = t.ID
	}
	entryRows, err := s.db.Pool.Query(ctx, `
		SELECT `+entryColumns+` FROM timesheet_entries
		WHERE table_id = ANY($1)
		ORDER BY table_id, position
	`, ids)
	if err != nil {
		return nil, err
	}
	defer entryRows.Close()

	for entryRows.Next() {
		var e models.TimesheetEntry
		if err := entryRows.Scan(
			&e.ID, &e.TableID, &e.Position, &e.Date, &e.ProjectID, &e.Task,
			&e.SubmittedTo, &e.Status, &e.Description, &e.Hours,
		); err != nil {
			return nil, err
		}
		if t, ok := byID[e.TableID]; ok {
			t.Entries = append(t.Entries, e)
		}
	}
	return tables, entryRows.Err()
}

func (s *TimesheetService) load(ctx context.Context, id uuid.UUID) (*models.TimesheetTable, error) {
	tables, err := s.loadTables(ctx, tableSelect+` WHERE t.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(tables) == 0 {
		return nil, ErrTableNotFound
	}
	return tables[0], nil
}

// scopeFor collects the projects and reviewers creator may reference.
func (s *TimesheetService) scopeFor(ctx context.Context, creator *models.User) (timesheet.Scope, error) {
	projects, err := s.projects.ListAssigned(ctx, creator.ID)
	if err != nil {
		return timesheet.Scope{}, fmt.Errorf("failed to load assigned projects: %w", err)
	}
	reviewers, err := s.teams.ReviewersFor(ctx, creator)
	if err != nil {
		return timesheet.Scope{}, fmt.Errorf("failed to load reviewers: %w", err)
	}

	projectIDs := make([]uuid.UUID, len(projects))
	for i, p := range projects {
		projectIDs[i] = p.ID
	}
	reviewerIDs := make([]uuid.UUID, len(reviewers))
	for i, r := range reviewers {
		reviewerIDs[i] = r.ID
	}
	return timesheet.NewScope(projectIDs, reviewerIDs), nil
}

func (s *TimesheetService) validateFor(ctx context.Context, creatorID uuid.UUID, entries []timesheet.Entry) ([]timesheet.ParsedEntry, error) {
	creator, err := s.users.GetByID(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(ctx, creator)
	if err != nil {
		return nil, err
	}
	return timesheet.ValidateEntries(entries, scope)
}

// relation works out how actor stands to table. The reviewer lookup only
// runs when actor holds the reviewing role for the creator.
func (s *TimesheetService) relation(ctx context.Context, actor models.Actor, table *models.TimesheetTable) (access.Relation, error) {
	rel := access.Relation{
		Owner:    table.CreatedBy.ID == actor.ID,
		Superior: actor.Kind.Above(table.CreatorRole()),
	}
	reviewerRole, ok := table.CreatorRole().ReviewerRole()
	if !ok || reviewerRole != actor.Kind {
		return rel, nil
	}
	creator, err := s.users.GetByID(ctx, table.CreatedBy.ID)
	if err != nil {
		return rel, err
	}
	rel.Reviewer, err = s.teams.IsReviewerFor(ctx, actor.ID, creator)
	return rel, err
}

func insertEntries(ctx context.Context, tx pgx.Tx, tableID uuid.UUID, entries []timesheet.ParsedEntry) ([]models.TimesheetEntry, error) {
	out := make([]models.TimesheetEntry, len(entries))
	for i, p := range entries {
		e := models.TimesheetEntry{
			TableID:     tableID,
			Position:    i,
			Date:        p.Date,
			ProjectID:   p.ProjectID,
			Task:        p.Task,
			SubmittedTo: p.SubmittedTo,
			Status:      p.Status,
			Description: p.Description,
			Hours:       p.Hours,
		}
		err := tx.QueryRow(ctx, `
			INSERT INTO timesheet_entries (table_id, position, entry_date, project_id, task, submitted_to, status, description, hours)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id
		`, tableID, i, p.Date, p.ProjectID, p.Task, p.SubmittedTo, p.Status, p.Description, p.Hours).Scan(&e.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert entry %d: %w", i+1, err)
		}
		out[i] = e
	}
	return out, nil
}

// Create stores a new Draft table owned by actor.
func (s *TimesheetService) Create(ctx context.Context, actor models.Actor, entries []timesheet.Entry) (*models.TimesheetTable, error) {
	if !access.CanPerform(actor.Kind, access.ActionCreateTable, access.Relation{}) {
		return nil, access.ErrForbidden
	}
	parsed, err := s.validateFor(ctx, actor.ID, entries)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	table := &models.TimesheetTable{CreatedBy: actor}
	err = tx.QueryRow(ctx, `
		INSERT INTO timesheet_tables (created_by)
		VALUES ($1)
		RETURNING id, status, version, created_at, updated_at
	`, actor.ID).Scan(&table.ID, &table.Status, &table.Version, &table.CreatedAt, &table.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	if table.Entries, err = insertEntries(ctx, tx, table.ID, parsed); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info().
		Str("table_id", table.ID.String()).
		Str("actor_id", actor.ID.String()).
		Int("entries", len(table.Entries)).
		Msg("timesheet table created")
	return table, nil
}

// Get returns a table to its owner, its reviewers and higher roles.
func (s *TimesheetService) Get(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.TimesheetTable, error) {
	table, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rel, err := s.relation(ctx, actor, table)
	if err != nil {
		return nil, err
	}
	if !access.CanPerform(actor.Kind, access.ActionViewTable, rel) {
		return nil, access.ErrForbidden
	}
	return table, nil
}

// conflict explains why a guarded write matched no row.
func (s *TimesheetService) conflict(ctx context.Context, id uuid.UUID, expectedVersion int) error {
	var status timesheet.Status
	var version int
	err := s.db.Pool.QueryRow(ctx, `SELECT status, version FROM timesheet_tables WHERE id = $1`, id).Scan(&status, &version)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrTableNotFound
	}
	if err != nil {
		return err
	}
	if expectedVersion != 0 && version != expectedVersion {
		return &ConflictError{Err: ErrVersionConflict, Status: status, Version: version}
	}
	return &ConflictError{Err: timesheet.ErrInvalidState, Status: status, Version: version}
}

// precheck rejects a write the loaded row already rules out.
func precheck(table *models.TimesheetTable, ev timesheet.Event, expectedVersion int) error {
	if !containsStatus(timesheet.Preconditions(ev), table.Status) {
		return &ConflictError{Err: timesheet.ErrInvalidState, Status: table.Status, Version: table.Version}
	}
	if expectedVersion != 0 && expectedVersion != table.Version {
		return &ConflictError{Err: ErrVersionConflict, Status: table.Status, Version: table.Version}
	}
	return nil
}

func containsStatus(list []timesheet.Status, s timesheet.Status) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func statusStrings(list []timesheet.Status) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = string(s)
	}
	return out
}

// transition moves table to status `to` and records the review event in
// the same transaction.
func (s *TimesheetService) transition(ctx context.Context, table *models.TimesheetTable, actor models.Actor, ev timesheet.Event, to timesheet.Status, feedback *string, expectedVersion int) error {
	var submittedAt *time.Time
	if ev == timesheet.EventSubmit {
		now := time.Now().UTC()
		submittedAt = &now
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE timesheet_tables
		SET status = $1, feedback = $2, version = version + 1,
			submitted_at = COALESCE($3, submitted_at), updated_at = NOW()
		WHERE id = $4 AND status = ANY($5) AND ($6 = 0 OR version = $6)
		RETURNING version, submitted_at, updated_at
	`, string(to), feedback, submittedAt, table.ID, statusStrings(timesheet.Preconditions(ev)), expectedVersion).
		Scan(&table.Version, &table.SubmittedAt, &table.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.conflict(ctx, table.ID, expectedVersion)
	}
	if err != nil {
		return fmt.Errorf("failed to update table: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO timesheet_review_events (table_id, actor_id, action, from_status, to_status, feedback)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, table.ID, actor.ID, string(ev), string(table.Status), string(to), feedback); err != nil {
		return fmt.Errorf("failed to record review event: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info().
		Str("table_id", table.ID.String()).
		Str("actor_id", actor.ID.String()).
		Str("event", string(ev)).
		Str("from", string(table.Status)).
		Str("to", string(to)).
		Msg("timesheet transition")

	table.Status = to
	table.Feedback = feedback
	return nil
}

// Edit replaces the entries of a Draft or rejected table. The status is
// left alone; a rejected table keeps its feedback until it is resubmitted
// and reviewed again.
func (s *TimesheetService) Edit(ctx context.Context, actor models.Actor, id uuid.UUID, entries []timesheet.Entry, expectedVersion int) (*models.TimesheetTable, error) {
	table, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanPerform(actor.Kind, access.ActionEditTable, access.Relation{Owner: table.CreatedBy.ID == actor.ID}) {
		return nil, access.ErrForbidden
	}
	if err := precheck(table, timesheet.EventEdit, expectedVersion); err != nil {
		return nil, err
	}
	parsed, err := s.validateFor(ctx, actor.ID, entries)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		UPDATE timesheet_tables SET version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = ANY($2) AND ($3 = 0 OR version = $3)
		RETURNING version, updated_at
	`, id, statusStrings(timesheet.Preconditions(timesheet.EventEdit)), expectedVersion).
		Scan(&table.Version, &table.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, s.conflict(ctx, id, expectedVersion)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update table: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM timesheet_entries WHERE table_id = $1`, id); err != nil {
		return nil, fmt.Errorf("failed to clear entries: %w", err)
	}
	if table.Entries, err = insertEntries(ctx, tx, id, parsed); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return table, nil
}

// Delete removes a table that has not been approved.
func (s *TimesheetService) Delete(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	table, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanPerform(actor.Kind, access.ActionDeleteTable, access.Relation{Owner: table.CreatedBy.ID == actor.ID}) {
		return access.ErrForbidden
	}
	if err := precheck(table, timesheet.EventDelete, 0); err != nil {
		return err
	}

	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM timesheet_tables WHERE id = $1 AND status = ANY($2)
	`, id, statusStrings(timesheet.Preconditions(timesheet.EventDelete)))
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return s.conflict(ctx, id, 0)
	}
	s.log.Info().Str("table_id", id.String()).Str("actor_id", actor.ID.String()).Msg("timesheet table deleted")
	return nil
}

func entryInputs(entries []models.TimesheetEntry) []timesheet.Entry {
	out := make([]timesheet.Entry, len(entries))
	for i, e := range entries {
		hours := e.Hours
		out[i] = timesheet.Entry{
			Date:        e.Date.Format(timesheet.DateLayout),
			Project:     e.ProjectID.String(),
			Task:        e.Task,
			SubmittedTo: e.SubmittedTo.String(),
			Status:      e.Status,
			Description: e.Description,
			Hours:       &hours,
		}
	}
	return out
}

// Submit sends a Draft or rejected table to review. Stored entries are
// validated again since the creator's projects or reviewers may have
// changed since they were saved.
func (s *TimesheetService) Submit(ctx context.Context, actor models.Actor, id uuid.UUID, expectedVersion int) (*models.TimesheetTable, error) {
	table, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanPerform(actor.Kind, access.ActionSubmitTable, access.Relation{Owner: table.CreatedBy.ID == actor.ID}) {
		return nil, access.ErrForbidden
	}
	if err := precheck(table, timesheet.EventSubmit, expectedVersion); err != nil {
		return nil, err
	}
	to, err := timesheet.Next(table.Status, timesheet.EventSubmit, table.CreatorRole())
	if err != nil {
		return nil, err
	}
	if _, err := s.validateFor(ctx, actor.ID, entryInputs(table.Entries)); err != nil {
		return nil, err
	}

	if err := s.transition(ctx, table, actor, timesheet.EventSubmit, to, table.Feedback, expectedVersion); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.TimesheetSubmitted(table, table.Reviewers())
	}
	return table, nil
}

// Review applies an approve or reject decision from an authorized reviewer.
// Rejection stores feedback for the creator; approval clears it.
func (s *TimesheetService) Review(ctx context.Context, actor models.Actor, id uuid.UUID, action, feedback string, expectedVersion int) (*models.TimesheetTable, error) {
	var ev timesheet.Event
	switch strings.ToLower(strings.TrimSpace(action)) {
	case string(timesheet.EventApprove):
		ev = timesheet.EventApprove
	case string(timesheet.EventReject):
		ev = timesheet.EventReject
	default:
		return nil, invalid("action", `action must be "approve" or "reject"`)
	}

	table, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rel, err := s.relation(ctx, actor, table)
	if err != nil {
		return nil, err
	}
	if !access.CanPerform(actor.Kind, access.ActionReviewTable, rel) {
		return nil, access.ErrForbidden
	}
	if err := precheck(table, ev, expectedVersion); err != nil {
		return nil, err
	}
	to, err := timesheet.Next(table.Status, ev, table.CreatorRole())
	if err != nil {
		return nil, err
	}

	var stored *string
	if ev == timesheet.EventReject {
		stored = nullableString(strings.TrimSpace(feedback))
	}
	if err := s.transition(ctx, table, actor, ev, to, stored, expectedVersion); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.TimesheetReviewed(table, actor)
	}
	return table, nil
}

// Reorder sets the display order of entries. It never touches status or
// version.
func (s *TimesheetService) Reorder(ctx context.Context, actor models.Actor, id uuid.UUID, order []uuid.UUID) (*models.TimesheetTable, error) {
	table, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !access.CanPerform(actor.Kind, access.ActionReorderTable, access.Relation{Owner: table.CreatedBy.ID == actor.ID}) {
		return nil, access.ErrForbidden
	}
	if err := precheck(table, timesheet.EventReorder, 0); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.TimesheetEntry, len(table.Entries))
	for _, e := range table.Entries {
		byID[e.ID] = e
	}
	if len(order) != len(byID) {
		return nil, invalid("order", "order must list every entry of the table exactly once")
	}
	reordered := make([]models.TimesheetEntry, 0, len(order))
	for _, eid := range order {
		e, ok := byID[eid]
		if !ok {
			return nil, invalid("order", "order must list every entry of the table exactly once")
		}
		delete(byID, eid)
		e.Position = len(reordered)
		reordered = append(reordered, e)
	}

	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `
		UPDATE timesheet_tables SET updated_at = NOW() WHERE id = $1 AND status = ANY($2)
	`, id, statusStrings(timesheet.Preconditions(timesheet.EventReorder)))
	if err != nil {
		return nil, err
	}
	if result.RowsAffected() == 0 {
		return nil, s.conflict(ctx, id, 0)
	}
	for _, e := range reordered {
		if _, err := tx.Exec(ctx, `UPDATE timesheet_entries SET position = $1 WHERE id = $2 AND table_id = $3`,
			e.Position, e.ID, id); err != nil {
			return nil, fmt.Errorf("failed to move entry: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	table.Entries = reordered
	return table, nil
}

// Comments returns the stored feedback to the creator or a reviewer.
func (s *TimesheetService) Comments(ctx context.Context, actor models.Actor, id uuid.UUID) (*Comments, error) {
	table, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rel, err := s.relation(ctx, actor, table)
	if err != nil {
		return nil, err
	}
	if !access.CanPerform(actor.Kind, access.ActionViewComments, rel) {
		return nil, access.ErrForbidden
	}
	return &Comments{TableID: table.ID, Status: table.Status, Feedback: table.Feedback}, nil
}

// History returns the review events of a table, oldest first.
func (s *TimesheetService) History(ctx context.Context, actor models.Actor, id uuid.UUID) ([]models.ReviewEvent, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return nil, err
	}

	rows, err := s.db.Pool.Query(ctx, `
		SELECT e.id, e.table_id, u.id, u.role, u.username, e.action, e.from_status, e.to_status, e.feedback, e.created_at
		FROM timesheet_review_events e
		JOIN users u ON u.id = e.actor_id
		WHERE e.table_id = $1
		ORDER BY e.created_at, e.id
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []models.ReviewEvent{}
	for rows.Next() {
		var ev models.ReviewEvent
		if err := rows.Scan(
			&ev.ID, &ev.TableID, &ev.Actor.ID, &ev.Actor.Kind, &ev.Actor.Username,
			&ev.Action, &ev.FromStatus, &ev.ToStatus, &ev.Feedback, &ev.CreatedAt,
		); err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// filterQuery renders f as a WHERE clause over tableSelect.
func filterQuery(f models.TableFilter) (string, []any) {
	where := []string{"t.created_by = $1"}
	args := []any{f.UserID}
	if f.From != nil && f.To != nil {
		args = append(args, *f.From, *f.To)
		where = append(where, "EXISTS (SELECT 1 FROM timesheet_entries e WHERE e.table_id = t.id AND e.entry_date BETWEEN $"+
			strconv.Itoa(len(args)-1)+" AND $"+strconv.Itoa(len(args))+")")
	}
	if len(f.Statuses) > 0 {
		args = append(args, statusStrings(f.Statuses))
		where = append(where, "t.status = ANY($"+strconv.Itoa(len(args))+")")
	}
	return tableSelect + " WHERE " + strings.Join(where, " AND ") + " ORDER BY t.created_at DESC", args
}

func applyWindow(f *models.TableFilter, w *timesheet.Window) {
	if w != nil {
		f.From, f.To = &w.From, &w.To
	}
}

// PendingReview lists the caller's own tables that are not yet approved.
func (s *TimesheetService) PendingReview(ctx context.Context, actor models.Actor, w *timesheet.Window) ([]*models.TimesheetTable, error) {
	f := models.TableFilter{
		UserID: actor.ID,
		Statuses: []timesheet.Status{
			timesheet.StatusDraft, timesheet.StatusSentForReview,
			timesheet.StatusRejectedByTeamLeader, timesheet.StatusRejectedByAdmin,
		},
	}
	applyWindow(&f, w)
	query, args := filterQuery(f)
	return s.loadTables(ctx, query, args...)
}

// ReviewQueue lists tables waiting for the caller's decision.
func (s *TimesheetService) ReviewQueue(ctx context.Context, actor models.Actor) ([]*models.TimesheetTable, error) {
	creators, err := s.teams.ReviewableCreators(ctx, actor)
	if err != nil {
		return nil, err
	}
	if len(creators) == 0 {
		return []*models.TimesheetTable{}, nil
	}
	return s.loadTables(ctx, tableSelect+`
		WHERE t.created_by = ANY($1) AND t.status = $2
		ORDER BY t.submitted_at
	`, creators, string(timesheet.StatusSentForReview))
}

// ListSubordinate lists the tables of a user strictly below the caller.
func (s *TimesheetService) ListSubordinate(ctx context.Context, actor models.Actor, userID uuid.UUID, w *timesheet.Window, statuses []timesheet.Status) ([]*models.TimesheetTable, error) {
	if !access.CanPerform(actor.Kind, access.ActionListSubTables, access.Relation{}) {
		return nil, access.ErrForbidden
	}
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !actor.Kind.Above(target.Role) {
		return nil, access.ErrForbidden
	}

	f := models.TableFilter{UserID: userID, Statuses: statuses}
	applyWindow(&f, w)
	query, args := filterQuery(f)
	return s.loadTables(ctx, query, args...)
}
