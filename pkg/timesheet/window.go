package timesheet

import (
	"fmt"
	"time"
)

type ViewMode string

const (
	ViewDaily   ViewMode = "Daily"
	ViewMonthly ViewMode = "Monthly"
)

// Window is an inclusive range of entry dates.
type Window struct {
	From time.Time
	To   time.Time
}

// WindowFor returns the day or calendar month containing date. An empty
// mode means Daily.
func WindowFor(mode ViewMode, date time.Time) (Window, error) {
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	switch mode {
	case ViewDaily, "":
		return Window{From: day, To: day}, nil
	case ViewMonthly:
		first := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
		return Window{From: first, To: first.AddDate(0, 1, -1)}, nil
	}
	return Window{}, fmt.Errorf("unknown view mode %q", mode)
}

// ParseWindow is WindowFor over query-string values.
func ParseWindow(mode, date string) (*Window, error) {
	if date == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("date must be YYYY-MM-DD")
	}
	w, err := WindowFor(ViewMode(mode), d)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
