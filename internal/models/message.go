package models

// Attachment is a file sent along with a message, held in memory.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}
