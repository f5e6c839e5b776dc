package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/dimitrije/worktrack-api/internal/models"
	"github.com/dimitrije/worktrack-api/internal/notify"
	"github.com/dimitrije/worktrack-api/pkg/access"
	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	maxMessageLen     = 4000
	maxAttachmentSize = 10 << 20
)

// MessageHandler lets any signed-in user send a note, optionally with a
// file, to a chosen set of colleagues.
type MessageHandler struct {
	userService UserServiceInterface
	messages    Broadcaster
}

func NewMessageHandler(userService UserServiceInterface, messages Broadcaster) *MessageHandler {
	return &MessageHandler{userService: userService, messages: messages}
}

// Directory lists every account by id and username for the recipient
// picker. It exposes nothing beyond what a message header shows.
func (h *MessageHandler) Directory(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if !access.CanPerform(actor.Kind, access.ActionSendMessage, access.Relation{}) {
		writeError(c, access.ErrForbidden, "")
		return
	}

	users, err := h.userService.List(c.Request.Context(), models.UserFilter{})
	if err != nil {
		writeError(c, err, "failed to list users")
		return
	}

	resp := dto.DirectoryResponse{Users: make([]dto.DirectoryEntry, len(users))}
	for i, u := range users {
		resp.Users[i] = dto.DirectoryEntry{ID: u.ID, Username: u.Username}
	}
	_ = c.JSON(http.StatusOK, resp)
}

// parseRecipients reads the users form field: a JSON array of ids.
// Duplicates are dropped, order is kept.
func parseRecipients(raw string) ([]uuid.UUID, error) {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, errors.New("users must be a JSON array of user ids")
	}
	seen := make(map[uuid.UUID]bool, len(values))
	ids := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return nil, fmt.Errorf("invalid user id %q", v)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return nil, errors.New("select at least one user")
	}
	return ids, nil
}

// readAttachment returns the optional file field. ok is false when a
// response has already been written.
func readAttachment(c *drift.Context) (att *models.Attachment, ok bool) {
	fh, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		badRequest(c, "file", "invalid attachment")
		return nil, false
	}
	if fh.Size > maxAttachmentSize {
		badRequest(c, "file", fmt.Sprintf("attachment must be at most %d MB", maxAttachmentSize>>20))
		return nil, false
	}

	f, err := fh.Open()
	if err != nil {
		badRequest(c, "file", "invalid attachment")
		return nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxAttachmentSize))
	if err != nil {
		badRequest(c, "file", "invalid attachment")
		return nil, false
	}

	return &models.Attachment{
		Name:        filepath.Base(fh.Filename),
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, true
}

// Send accepts a multipart form with users (JSON array of ids), message
// and an optional file. Delivery is asynchronous; 202 means queued.
func (h *MessageHandler) Send(c *drift.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	if !access.CanPerform(actor.Kind, access.ActionSendMessage, access.Relation{}) {
		writeError(c, access.ErrForbidden, "")
		return
	}

	ids, err := parseRecipients(c.PostForm("users"))
	if err != nil {
		badRequest(c, "users", err.Error())
		return
	}
	text := strings.TrimSpace(c.PostForm("message"))
	if text == "" {
		badRequest(c, "message", "message is required")
		return
	}
	if utf8.RuneCountInString(text) > maxMessageLen {
		badRequest(c, "message", fmt.Sprintf("message must be at most %d characters", maxMessageLen))
		return
	}
	attachment, ok := readAttachment(c)
	if !ok {
		return
	}

	found, err := h.userService.GetMany(c.Request.Context(), ids)
	if err != nil {
		writeError(c, err, "failed to load recipients")
		return
	}
	recipients := make([]models.User, 0, len(ids))
	for _, id := range ids {
		u, ok := found[id]
		if !ok {
			badRequest(c, "users", "unknown user "+id.String())
			return
		}
		recipients = append(recipients, *u)
	}

	if err := h.messages.Broadcast(notify.Message{From: actor, Text: text, Attachment: attachment}, recipients); err != nil {
		writeError(c, err, "failed to queue message")
		return
	}
	_ = c.JSON(http.StatusAccepted, dto.SendMessageResponse{Status: "queued", Recipients: len(recipients)})
}
