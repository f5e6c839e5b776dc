package handlers

import (
	"time"

	"github.com/dimitrije/worktrack-api/internal/sse"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const heartbeatInterval = 30 * time.Second

type SSEHandler struct {
	hub HubInterface
}

func NewSSEHandler(hub HubInterface) *SSEHandler {
	return &SSEHandler{hub: hub}
}

// Connect streams review notifications addressed to the caller until the
// client goes away or the hub shuts down.
func (h *SSEHandler) Connect(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	stream := c.SSE()

	client := &sse.Client{
		ID:     uuid.New().String(),
		UserID: actor.ID,
		Send:   make(chan []byte, 64),
	}
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	if err := stream.SendJSON(map[string]string{
		"type":      "connected",
		"client_id": client.ID,
	}, "system", ""); err != nil {
		return
	}

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	done := c.Request.Context().Done()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := stream.Send(string(msg), "message", ""); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := stream.Send("ping", "heartbeat", ""); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
