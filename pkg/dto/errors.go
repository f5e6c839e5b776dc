package dto

const (
	CodeValidation    = "VALIDATION_ERROR"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeStateConflict = "STATE_CONFLICT"
)

// ErrorResponse is the body of every 4xx/5xx the API writes itself. Field
// and Index are set for validation errors; Index is the zero-based entry
// row, or absent for request-level fields.
type ErrorResponse struct {
	Code           string `json:"code,omitempty"`
	Message        string `json:"message"`
	Field          string `json:"field,omitempty"`
	Index          *int   `json:"index,omitempty"`
	CurrentStatus  string `json:"current_status,omitempty"`
	CurrentVersion *int   `json:"current_version,omitempty"`
}
