package timesheet

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	MinHours = 0.0
	MaxHours = 12.0
	HourStep = 0.5

	minTaskLen        = 3
	maxTaskLen        = 255
	minDescriptionLen = 5

	DateLayout = "2006-01-02"
)

// Entry progress statuses. These describe the work item, not the review.
const (
	EntryToDo       = "To Do"
	EntryOnProgress = "On Progress"
	EntryOnHold     = "On Hold"
	EntryCompleted  = "Completed"
)

var EntryStatuses = []string{EntryToDo, EntryOnProgress, EntryOnHold, EntryCompleted}

const (
	FieldDate        = "date"
	FieldProject     = "project"
	FieldTask        = "task"
	FieldSubmittedTo = "submitted_to"
	FieldStatus      = "status"
	FieldDescription = "description"
	FieldHours       = "hours"
)

// fieldOrder is the order fields appear in a row; the first failing field
// in this order is the one reported.
var fieldOrder = []string{
	FieldDate, FieldProject, FieldTask, FieldSubmittedTo,
	FieldStatus, FieldDescription, FieldHours,
}

// Entry is one row as submitted by a client.
type Entry struct {
	Date        string   `json:"date"`
	Project     string   `json:"project"`
	Task        string   `json:"task"`
	SubmittedTo string   `json:"submitted_to"`
	Status      string   `json:"status"`
	Description string   `json:"description"`
	Hours       *float64 `json:"hours"`
}

// ParsedEntry is an Entry that passed validation.
type ParsedEntry struct {
	Date        time.Time
	ProjectID   uuid.UUID
	Task        string
	SubmittedTo uuid.UUID
	Status      string
	Description string
	Hours       float64
}

// Scope carries what the submitter is allowed to reference.
type Scope struct {
	Projects  map[uuid.UUID]bool
	Reviewers map[uuid.UUID]bool
}

func NewScope(projects, reviewers []uuid.UUID) Scope {
	s := Scope{
		Projects:  make(map[uuid.UUID]bool, len(projects)),
		Reviewers: make(map[uuid.UUID]bool, len(reviewers)),
	}
	for _, id := range projects {
		s.Projects[id] = true
	}
	for _, id := range reviewers {
		s.Reviewers[id] = true
	}
	return s
}

// FieldErrors maps a field name to its error message.
type FieldErrors map[string]string

func (fe FieldErrors) First() (string, string, bool) {
	for _, f := range fieldOrder {
		if msg, ok := fe[f]; ok {
			return f, msg, true
		}
	}
	return "", "", false
}

type ValidationError struct {
	Index   int
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Index < 0 {
		return e.Message
	}
	return fmt.Sprintf("entry %d: %s: %s", e.Index+1, e.Field, e.Message)
}

func ValidateDate(v string) (time.Time, string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, "date is required"
	}
	d, err := time.Parse(DateLayout, v)
	if err != nil {
		return time.Time{}, "date must be formatted as YYYY-MM-DD"
	}
	return d, ""
}

func ValidateProject(v string, scope Scope) (uuid.UUID, string) {
	if strings.TrimSpace(v) == "" {
		return uuid.Nil, "project is required"
	}
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil || !scope.Projects[id] {
		return uuid.Nil, "project is not available to you"
	}
	return id, ""
}

func ValidateTask(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "task is required"
	}
	if utf8.RuneCountInString(v) < minTaskLen {
		return fmt.Sprintf("task must be at least %d characters", minTaskLen)
	}
	if utf8.RuneCountInString(v) > maxTaskLen {
		return fmt.Sprintf("task must be at most %d characters", maxTaskLen)
	}
	return ""
}

func ValidateSubmittedTo(v string, scope Scope) (uuid.UUID, string) {
	if strings.TrimSpace(v) == "" {
		return uuid.Nil, "submitted to is required"
	}
	id, err := uuid.Parse(strings.TrimSpace(v))
	if err != nil || !scope.Reviewers[id] {
		return uuid.Nil, "submitted to must be one of your reviewers"
	}
	return id, ""
}

func ValidateEntryStatus(v string) string {
	if v == "" {
		return "status is required"
	}
	for _, s := range EntryStatuses {
		if s == v {
			return ""
		}
	}
	return "status must be one of To Do, On Progress, On Hold, Completed"
}

func ValidateDescription(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "description is required"
	}
	if utf8.RuneCountInString(v) < minDescriptionLen {
		return fmt.Sprintf("description must be at least %d characters", minDescriptionLen)
	}
	return ""
}

// ValidateHours rejects typed values outside [0, 12] or off the 0.5 grid.
func ValidateHours(h *float64) string {
	if h == nil {
		return "hours is required"
	}
	v := *h
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "hours must be a number"
	}
	if v < MinHours || v > MaxHours {
		return fmt.Sprintf("hours must be between %g and %g", MinHours, MaxHours)
	}
	if math.Mod(v/HourStep, 1) != 0 {
		return fmt.Sprintf("hours must be in %g increments", HourStep)
	}
	return ""
}

// StepHours applies a +/- control step. Unlike typed input, stepping past
// the bounds clamps instead of failing.
func StepHours(current, delta float64) float64 {
	v := math.Round((current+delta)/HourStep) * HourStep
	return math.Min(MaxHours, math.Max(MinHours, v))
}

// ValidateEntry runs every field validator and returns the failures.
func ValidateEntry(e Entry, scope Scope) (ParsedEntry, FieldErrors) {
	errs := FieldErrors{}
	var p ParsedEntry
	var msg string

	if p.Date, msg = ValidateDate(e.Date); msg != "" {
		errs[FieldDate] = msg
	}
	if p.ProjectID, msg = ValidateProject(e.Project, scope); msg != "" {
		errs[FieldProject] = msg
	}
	if msg = ValidateTask(e.Task); msg != "" {
		errs[FieldTask] = msg
	}
	if p.SubmittedTo, msg = ValidateSubmittedTo(e.SubmittedTo, scope); msg != "" {
		errs[FieldSubmittedTo] = msg
	}
	if msg = ValidateEntryStatus(e.Status); msg != "" {
		errs[FieldStatus] = msg
	}
	if msg = ValidateDescription(e.Description); msg != "" {
		errs[FieldDescription] = msg
	}
	if msg = ValidateHours(e.Hours); msg != "" {
		errs[FieldHours] = msg
	}

	p.Task = strings.TrimSpace(e.Task)
	p.Status = e.Status
	p.Description = strings.TrimSpace(e.Description)
	if e.Hours != nil {
		p.Hours = *e.Hours
	}
	return p, errs
}

// ValidateEntries validates a whole table. It returns a *ValidationError
// naming the first invalid field of the first invalid row.
func ValidateEntries(entries []Entry, scope Scope) ([]ParsedEntry, error) {
	if len(entries) == 0 {
		return nil, &ValidationError{Index: -1, Field: "timesheets", Message: "at least one entry is required"}
	}
	parsed := make([]ParsedEntry, len(entries))
	for i, e := range entries {
		p, errs := ValidateEntry(e, scope)
		if field, msg, ok := errs.First(); ok {
			return nil, &ValidationError{Index: i, Field: field, Message: msg}
		}
		parsed[i] = p
	}
	return parsed, nil
}

// CanSubmit is true exactly when every field of every entry validates.
func CanSubmit(entries []Entry, scope Scope) bool {
	_, err := ValidateEntries(entries, scope)
	return err == nil
}
