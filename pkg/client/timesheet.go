package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/dimitrije/worktrack-api/pkg/timesheet"
	"github.com/google/uuid"
)

func tablePath(id uuid.UUID, action string) string {
	return "/timesheet-tables/" + id.String() + "/" + action
}

// CheckEntries runs the entry rules locally so a form can flag the first
// bad field before anything is sent. The server checks again.
func CheckEntries(entries []dto.EntryRequest, projects, reviewers []uuid.UUID) error {
	rows := make([]timesheet.Entry, len(entries))
	for i, e := range entries {
		rows[i] = timesheet.Entry(e)
	}
	_, err := timesheet.ValidateEntries(rows, timesheet.NewScope(projects, reviewers))
	return err
}

// CreateTable stores a new Draft table owned by the session's user.
func (c *Client) CreateTable(ctx context.Context, sess *Session, entries []dto.EntryRequest) (*dto.TableResponse, error) {
	var resp dto.CreateTableResponse
	if err := c.do(ctx, sess, http.MethodPost, "/timesheet-tables/", nil, dto.CreateTableRequest{Timesheets: entries}, &resp); err != nil {
		return nil, err
	}
	return &resp.Table, nil
}

func (c *Client) GetTable(ctx context.Context, sess *Session, id uuid.UUID) (*dto.TableResponse, error) {
	var out dto.TableResponse
	if err := c.do(ctx, sess, http.MethodGet, tablePath(id, ""), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EditTable replaces the entries. A non-zero version makes the write fail
// with *StateConflictError if someone else changed the table first.
func (c *Client) EditTable(ctx context.Context, sess *Session, id uuid.UUID, entries []dto.EntryRequest, version int) (*dto.TableResponse, error) {
	var out dto.TableResponse
	body := dto.EditTableRequest{Timesheets: entries, Version: version}
	if err := c.do(ctx, sess, http.MethodPut, tablePath(id, "edit/"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteTable(ctx context.Context, sess *Session, id uuid.UUID) error {
	return c.do(ctx, sess, http.MethodDelete, tablePath(id, "delete/"), nil, nil, nil)
}

func (c *Client) SendToReview(ctx context.Context, sess *Session, id uuid.UUID, version int) (*dto.TableResponse, error) {
	var out dto.TableResponse
	if err := c.do(ctx, sess, http.MethodPost, tablePath(id, "send-to-review/"), nil, dto.SubmitTableRequest{Version: version}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type ReviewAction string

const (
	Approve ReviewAction = "approve"
	Reject  ReviewAction = "reject"
)

// Review approves or rejects a table awaiting the session user's review.
// Feedback is only kept on rejection.
func (c *Client) Review(ctx context.Context, sess *Session, id uuid.UUID, action ReviewAction, feedback string, version int) (*dto.TableResponse, error) {
	var out dto.TableResponse
	body := dto.ReviewRequest{Action: string(action), Feedback: feedback, Version: version}
	if err := c.do(ctx, sess, http.MethodPost, tablePath(id, "team-leader-review/"), nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Reorder(ctx context.Context, sess *Session, id uuid.UUID, order []uuid.UUID) (*dto.TableResponse, error) {
	var out dto.TableResponse
	if err := c.do(ctx, sess, http.MethodPost, tablePath(id, "reorder/"), nil, dto.ReorderRequest{Order: order}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Comments(ctx context.Context, sess *Session, id uuid.UUID) (*dto.CommentsResponse, error) {
	var out dto.CommentsResponse
	if err := c.do(ctx, sess, http.MethodGet, tablePath(id, "comments/"), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) History(ctx context.Context, sess *Session, id uuid.UUID) ([]dto.ReviewEventResponse, error) {
	var out []dto.ReviewEventResponse
	if err := c.do(ctx, sess, http.MethodGet, tablePath(id, "history/"), nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PendingReview lists the session user's own tables that still need their
// action. A zero date lists all of them; otherwise only tables with an
// entry in the day or month containing date.
func (c *Client) PendingReview(ctx context.Context, sess *Session, mode timesheet.ViewMode, date time.Time) ([]dto.TableResponse, error) {
	q := url.Values{}
	if !date.IsZero() {
		q.Set("date", date.Format(timesheet.DateLayout))
		if mode != "" {
			q.Set("viewMode", string(mode))
		}
	}
	var out []dto.TableResponse
	if err := c.do(ctx, sess, http.MethodGet, "/timesheet-review/pending/", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReviewQueue lists tables waiting for the session user's decision.
func (c *Client) ReviewQueue(ctx context.Context, sess *Session) ([]dto.TableResponse, error) {
	var out []dto.TableResponse
	if err := c.do(ctx, sess, http.MethodGet, "/timesheet-review/queue/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
