package sse

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
)

const (
	EventTimesheetSubmitted = "timesheet_submitted"
	EventTimesheetReviewed  = "timesheet_reviewed"
	EventMessage            = "message"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type TimesheetSubmittedEvent struct {
	TableID     uuid.UUID `json:"table_id"`
	CreatorID   uuid.UUID `json:"creator_id"`
	CreatorName string    `json:"creator_username"`
	Status      string    `json:"status"`
	Version     int       `json:"version"`
}

type TimesheetReviewedEvent struct {
	TableID      uuid.UUID `json:"table_id"`
	ReviewerID   uuid.UUID `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_username"`
	Status       string    `json:"status"`
	Feedback     *string   `json:"feedback,omitempty"`
	Version      int       `json:"version"`
}

type MessageEvent struct {
	SenderID       uuid.UUID `json:"sender_id"`
	SenderName     string    `json:"sender_username"`
	Text           string    `json:"message"`
	AttachmentName string    `json:"attachment,omitempty"`
}

// Client is one open event stream. A user may hold several.
type Client struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan *UserMessage
	done       chan struct{}
	mu         sync.RWMutex
}

// UserMessage addresses an event to every stream of the listed users.
type UserMessage struct {
	UserIDs []uuid.UUID
	Event   Event
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *UserMessage, 256),
		done:       make(chan struct{}),
	}
}

// Run dispatches until ctx is done, then closes every client stream.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.ID]; ok {
				delete(h.clients, client.ID)
				close(client.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			data, _ := json.Marshal(msg.Event)
			targets := make(map[uuid.UUID]bool, len(msg.UserIDs))
			for _, id := range msg.UserIDs {
				targets[id] = true
			}
			h.mu.RLock()
			for _, client := range h.clients {
				if targets[client.UserID] {
					select {
					case client.Send <- data:
					default:
						// slow reader, drop
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Register adds a stream. After shutdown the stream is closed immediately.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

// Unregister is safe to call after shutdown; the hub has already closed
// every stream by then.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Connected reports whether userID has at least one open stream.
func (h *Hub) Connected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.UserID == userID {
			return true
		}
	}
	return false
}

func (h *Hub) SendToUsers(userIDs []uuid.UUID, event Event) {
	if len(userIDs) == 0 {
		return
	}
	select {
	case h.broadcast <- &UserMessage{UserIDs: userIDs, Event: event}:
	case <-h.done:
	}
}

func (h *Hub) TimesheetSubmitted(reviewers []uuid.UUID, data TimesheetSubmittedEvent) {
	h.SendToUsers(reviewers, Event{Type: EventTimesheetSubmitted, Data: data})
}

func (h *Hub) TimesheetReviewed(creatorID uuid.UUID, data TimesheetReviewedEvent) {
	h.SendToUsers([]uuid.UUID{creatorID}, Event{Type: EventTimesheetReviewed, Data: data})
}

func (h *Hub) Message(recipients []uuid.UUID, data MessageEvent) {
	h.SendToUsers(recipients, Event{Type: EventMessage, Data: data})
}
