package task

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the serialized form of due dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidTitle     = errors.New("title is required")
	ErrInvalidDate      = errors.New("due date must be YYYY-MM-DD")
	ErrInvalidPriority  = errors.New("priority must be low, medium or high")
	ErrInvalidFrequency = errors.New("frequency must be once, daily, weekly or monthly")
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Severity orders priorities for display; unrecognized values rank 0.
func (p Priority) Severity() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool {
	return p.Severity() > 0
}

func ParsePriority(v string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(v)))
	if !p.Valid() {
		return "", ErrInvalidPriority
	}
	return p, nil
}

type Frequency string

const (
	FrequencyOnce    Frequency = "once"
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyOnce, FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	default:
		return false
	}
}

func (f Frequency) Recurring() bool {
	return f.Valid() && f != FrequencyOnce
}

func ParseFrequency(v string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(v)))
	if !f.Valid() {
		return "", ErrInvalidFrequency
	}
	return f, nil
}

type Task struct {
	ID          string
	Title       string
	Description string
	DueDate     string // YYYY-MM-DD, first occurrence
	Priority    Priority
	Completed   bool
	AddedBy     string
	Frequency   Frequency
	CreatedAt   time.Time
}

// Validate reports the first field that would keep t out of the store.
func (t Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return ErrInvalidTitle
	}
	if _, err := ParseDate(t.DueDate); err != nil {
		return err
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if !t.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

// Anchor returns the parsed due date.
func (t Task) Anchor() (time.Time, bool) {
	d, err := ParseDate(t.DueDate)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ParseDate parses a YYYY-MM-DD string as a UTC midnight.
func ParseDate(v string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// DateOf truncates t to its calendar date (as seen in t's own location),
// returned as a UTC midnight so it compares with ParseDate results.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
