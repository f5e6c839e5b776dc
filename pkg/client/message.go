package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/dimitrije/worktrack-api/pkg/dto"
	"github.com/google/uuid"
)

// Directory lists every user a message can be sent to.
func (c *Client) Directory(ctx context.Context, sess *Session) ([]dto.DirectoryEntry, error) {
	var out dto.DirectoryResponse
	if err := c.do(ctx, sess, http.MethodGet, "/all-users/", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// File is an attachment for SendMessage.
type File struct {
	Name string
	Body io.Reader
}

// SendMessage queues text, and file when non-nil, for the given users.
// It returns the number of recipients the server accepted.
func (c *Client) SendMessage(ctx context.Context, sess *Session, to []uuid.UUID, text string, file *File) (int, error) {
	ids, err := json.Marshal(to)
	if err != nil {
		return 0, fmt.Errorf("failed to encode recipients: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("users", string(ids)); err != nil {
		return 0, err
	}
	if err := w.WriteField("message", text); err != nil {
		return 0, err
	}
	if file != nil {
		part, err := w.CreateFormFile("file", file.Name)
		if err != nil {
			return 0, err
		}
		if _, err := io.Copy(part, file.Body); err != nil {
			return 0, fmt.Errorf("failed to read attachment: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	var out dto.SendMessageResponse
	if err := c.send(ctx, sess, http.MethodPost, "/send-message/", nil, &buf, w.FormDataContentType(), &out); err != nil {
		return 0, err
	}
	return out.Recipients, nil
}
