package dto

import "github.com/google/uuid"

// DirectoryEntry is the minimal user record offered when picking message
// recipients.
type DirectoryEntry struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type DirectoryResponse struct {
	Users []DirectoryEntry `json:"users"`
}

// SendMessageResponse acknowledges a queued message. Delivery happens in
// the background.
type SendMessageResponse struct {
	Status     string `json:"status"`
	Recipients int    `json:"recipients"`
}
