// Package notify delivers review, password and user-to-user notifications
// off the request path on a bounded worker pool.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/sse"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
)

const lookupTimeout = 10 * time.Second

// ErrBusy is returned by calls that must tell the caller their
// notification was not queued.
var ErrBusy = errors.New("notification queue is full, try again later")

type Mailer interface {
	SendPasswordResetCode(to, username, code string, ttl time.Duration) error
	SendTimesheetSubmitted(to, reviewerName, creatorName, tableURL string) error
	SendTimesheetReviewed(to, creatorName, status, reviewerName string, feedback *string, tableURL string) error
	SendMessage(to, recipientName, senderName, text string, attachment *models.Attachment) error
}

type Publisher interface {
	TimesheetSubmitted(reviewers []uuid.UUID, data sse.TimesheetSubmittedEvent)
	TimesheetReviewed(creatorID uuid.UUID, data sse.TimesheetReviewedEvent)
	Message(recipients []uuid.UUID, data sse.MessageEvent)
}

// Directory resolves user ids to mail addresses.
type Directory interface {
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

// Notifier is fire-and-forget: when every worker is busy the notification
// is dropped with a warning and the caller is never blocked.
type Notifier struct {
	pool        *ants.Pool
	mail        Mailer
	hub         Publisher
	users       Directory
	frontendURL string
	log         zerolog.Logger
}

func New(workers int, mail Mailer, hub Publisher, users Directory, frontendURL string, log zerolog.Logger) (*Notifier, error) {
	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("failed to create notification pool: %w", err)
	}
	return &Notifier{
		pool:        pool,
		mail:        mail,
		hub:         hub,
		users:       users,
		frontendURL: frontendURL,
		log:         log.With().Str("component", "notify").Logger(),
	}, nil
}

// Close waits up to timeout for queued notifications to finish.
func (n *Notifier) Close(timeout time.Duration) error {
	return n.pool.ReleaseTimeout(timeout)
}

func (n *Notifier) submit(kind string, fn func()) bool {
	if err := n.pool.Submit(fn); err != nil {
		n.log.Warn().Err(err).Str("notification", kind).Msg("notification dropped")
		return false
	}
	return true
}

func (n *Notifier) tableURL(id uuid.UUID) string {
	return fmt.Sprintf("%s/timesheets/%s", n.frontendURL, id)
}

func (n *Notifier) PasswordResetCode(to, username, code string, ttl time.Duration) {
	n.submit("password_reset_code", func() {
		if err := n.mail.SendPasswordResetCode(to, username, code, ttl); err != nil {
			n.log.Error().Err(err).Str("username", username).Msg("failed to send reset code")
		}
	})
}

func (n *Notifier) lookup(ids []uuid.UUID) map[uuid.UUID]*models.User {
	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()
	users, err := n.users.GetMany(ctx, ids)
	if err != nil {
		n.log.Error().Err(err).Msg("failed to resolve notification recipients")
		return nil
	}
	return users
}

func (n *Notifier) TimesheetSubmitted(table *models.TimesheetTable, reviewers []uuid.UUID) {
	event := sse.TimesheetSubmittedEvent{
		TableID:     table.ID,
		CreatorID:   table.CreatedBy.ID,
		CreatorName: table.CreatedBy.Username,
		Status:      string(table.Status),
		Version:     table.Version,
	}
	recipients := append([]uuid.UUID(nil), reviewers...)

	n.submit("timesheet_submitted", func() {
		n.hub.TimesheetSubmitted(recipients, event)
		for _, u := range n.lookup(recipients) {
			if err := n.mail.SendTimesheetSubmitted(u.Email, u.Username, event.CreatorName, n.tableURL(event.TableID)); err != nil {
				n.log.Error().Err(err).Str("table_id", event.TableID.String()).Str("to", u.Username).Msg("failed to send review request")
			}
		}
	})
}

func (n *Notifier) TimesheetReviewed(table *models.TimesheetTable, reviewer models.Actor) {
	event := sse.TimesheetReviewedEvent{
		TableID:      table.ID,
		ReviewerID:   reviewer.ID,
		ReviewerName: reviewer.Username,
		Status:       string(table.Status),
		Version:      table.Version,
	}
	if table.Feedback != nil {
		feedback := *table.Feedback
		event.Feedback = &feedback
	}
	creatorID := table.CreatedBy.ID

	n.submit("timesheet_reviewed", func() {
		n.hub.TimesheetReviewed(creatorID, event)
		creator, ok := n.lookup([]uuid.UUID{creatorID})[creatorID]
		if !ok {
			return
		}
		if err := n.mail.SendTimesheetReviewed(creator.Email, creator.Username, event.Status, event.ReviewerName,
			event.Feedback, n.tableURL(event.TableID)); err != nil {
			n.log.Error().Err(err).Str("table_id", event.TableID.String()).Msg("failed to send review outcome")
		}
	})
}

// Message is a free-text note from one user to others.
type Message struct {
	From       models.Actor
	Text       string
	Attachment *models.Attachment
}

// Broadcast pushes msg to the recipients' event streams and mails it with
// the attachment. Unlike review notifications the sender is told when the
// pool is full, since nothing else would deliver the message.
func (n *Notifier) Broadcast(msg Message, recipients []models.User) error {
	to := append([]models.User(nil), recipients...)
	ids := make([]uuid.UUID, len(to))
	for i, u := range to {
		ids[i] = u.ID
	}
	event := sse.MessageEvent{SenderID: msg.From.ID, SenderName: msg.From.Username, Text: msg.Text}
	if msg.Attachment != nil {
		event.AttachmentName = msg.Attachment.Name
	}

	queued := n.submit("message", func() {
		n.hub.Message(ids, event)
		for _, u := range to {
			if err := n.mail.SendMessage(u.Email, u.Username, msg.From.Username, msg.Text, msg.Attachment); err != nil {
				n.log.Error().Err(err).Str("from", msg.From.Username).Str("to", u.Username).Msg("failed to send message")
			}
		}
	})
	if !queued {
		return ErrBusy
	}
	n.log.Info().Str("from", msg.From.Username).Int("recipients", len(to)).Bool("attachment", msg.Attachment != nil).Msg("message queued")
	return nil
}
