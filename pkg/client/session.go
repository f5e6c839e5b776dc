package client

import (
	"context"
	"sync"
	"time"

	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/google/uuid"
)

const (
	// ReminderWindow is how long before expiry reminders start.
	ReminderWindow = 24 * time.Hour
	// ReminderEvery spaces reminders by remaining whole hours.
	ReminderEvery = 3

	defaultWatchInterval = time.Second
)

// Session is the signed-in user as returned by Login.
type Session struct {
	UserID       uuid.UUID
	Username     string
	FirstName    string
	Email        string
	Role         access.Role
	AccessToken  string
	RefreshToken string
	Expiry       time.Time

	mu  sync.Mutex
	now func() time.Time
}

func (s *Session) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

// tokens returns the current pair; Refresh may replace it concurrently.
func (s *Session) tokens() (accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.AccessToken, s.RefreshToken
}

// Remaining is the time until the access token expires, never negative.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	expiry := s.Expiry
	s.mu.Unlock()

	d := expiry.Sub(s.clock())
	if d < 0 {
		return 0
	}
	return d
}

// Can is the advisory UI gate: it answers from the same policy table the
// API enforces, but the API remains the authority.
func Can(sess *Session, action access.Action, rel access.Relation) bool {
	if sess == nil {
		return false
	}
	return access.CanPerform(sess.Role, action, rel)
}

type SessionEventKind int

const (
	EventReminder SessionEventKind = iota + 1
	EventExpired
)

type SessionEvent struct {
	Kind      SessionEventKind
	Remaining time.Duration
}

type WatchOptions struct {
	// Interval is how often the expiry is checked. Defaults to one second.
	Interval time.Duration
}

// reminderDue reports whether a reminder should fire with remaining time
// left, given the whole hour of the last reminder (-1 for none). Reminders
// fire once per whole remaining hour that is a multiple of ReminderEvery,
// inside the last ReminderWindow.
func reminderDue(remaining time.Duration, last int) (int, bool) {
	if remaining <= 0 || remaining > ReminderWindow {
		return last, false
	}
	hour := int(remaining / time.Hour)
	if hour%ReminderEvery != 0 || hour == last {
		return last, false
	}
	return hour, true
}

// Watch emits reminders as expiry approaches and a final EventExpired at
// expiry, then closes the channel. Cancelling ctx stops the watch without
// an expiry event.
func (s *Session) Watch(ctx context.Context, opts WatchOptions) <-chan SessionEvent {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultWatchInterval
	}
	events := make(chan SessionEvent, 1)

	go func() {
		defer close(events)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := -1
		for {
			remaining := s.Remaining()
			if remaining <= 0 {
				select {
				case events <- SessionEvent{Kind: EventExpired}:
				case <-ctx.Done():
				}
				return
			}
			var due bool
			if last, due = reminderDue(remaining, last); due {
				select {
				case events <- SessionEvent{Kind: EventReminder, Remaining: remaining}:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events
}

// Guard drops results of requests that were superseded or abandoned, for
// example when the user leaves a form while its request is in flight.
type Guard struct {
	mu      sync.Mutex
	current uint64
}

type Token uint64

// Begin starts a request and makes every earlier token stale.
func (g *Guard) Begin() Token {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
	return Token(g.current)
}

// Apply runs fn only if token is still the latest one. It reports whether
// fn ran.
func (g *Guard) Apply(token Token, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if uint64(token) != g.current {
		return false
	}
	fn()
	return true
}

// Cancel invalidates every in-flight token.
func (g *Guard) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current++
}
