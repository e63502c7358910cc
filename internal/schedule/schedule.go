// Package schedule expands recurring tasks into calendar dates and selects
// the tasks active on a given day. Every function here is a pure transform of
// its arguments: nothing reads the clock and nothing is cached between calls.
package schedule

import (
	"strings"
	"time"

	"rekindle/internal/task"
)

const (
	DefaultDailyDays     = 30
	DefaultWeeklyWeeks   = 4
	DefaultMonthlyMonths = 3
)

// Horizon bounds how far recurring tasks are expanded for calendar display.
// It does not limit FilterTasksForDate.
type Horizon struct {
	DailyDays     int
	WeeklyWeeks   int
	MonthlyMonths int
}

func DefaultHorizon() Horizon {
	return Horizon{
		DailyDays:     DefaultDailyDays,
		WeeklyWeeks:   DefaultWeeklyWeeks,
		MonthlyMonths: DefaultMonthlyMonths,
	}
}

// normalized replaces non-positive fields with the defaults.
func (h Horizon) normalized() Horizon {
	if h.DailyDays <= 0 {
		h.DailyDays = DefaultDailyDays
	}
	if h.WeeklyWeeks <= 0 {
		h.WeeklyWeeks = DefaultWeeklyWeeks
	}
	if h.MonthlyMonths <= 0 {
		h.MonthlyMonths = DefaultMonthlyMonths
	}
	return h
}

// DateEntry aggregates the tasks registered on one calendar date.
type DateEntry struct {
	Count      int
	Priorities []task.Priority
}

// Dominant returns the most severe priority in the entry, or "" when none
// of the recognized priorities is present.
func (e DateEntry) Dominant() task.Priority {
	var best task.Priority
	for _, p := range e.Priorities {
		if p.Severity() > best.Severity() {
			best = p
		}
	}
	return best
}

// Occurrences expands t over the horizon. Monthly occurrences use
// time.AddDate, so an anchor day missing from the target month rolls
// forward: 2024-01-31 yields 2024-01-31, 2024-03-02, 2024-03-31.
func Occurrences(t task.Task, h Horizon) []time.Time {
	anchor, ok := t.Anchor()
	if !ok {
		return nil
	}
	h = h.normalized()

	switch t.Frequency {
	case task.FrequencyOnce:
		return []time.Time{anchor}
	case task.FrequencyDaily:
		out := make([]time.Time, 0, h.DailyDays)
		for i := 0; i < h.DailyDays; i++ {
			out = append(out, anchor.AddDate(0, 0, i))
		}
		return out
	case task.FrequencyWeekly:
		out := make([]time.Time, 0, h.WeeklyWeeks)
		for i := 0; i < h.WeeklyWeeks; i++ {
			out = append(out, anchor.AddDate(0, 0, 7*i))
		}
		return out
	case task.FrequencyMonthly:
		out := make([]time.Time, 0, h.MonthlyMonths)
		for i := 0; i < h.MonthlyMonths; i++ {
			out = append(out, anchor.AddDate(0, i, 0))
		}
		return out
	default:
		return nil
	}
}

// BuildDateAggregate maps YYYY-MM-DD keys to the tasks registered on that
// date. Tasks with an unparseable due date or unknown frequency are skipped.
func BuildDateAggregate(tasks []task.Task, h Horizon) map[string]DateEntry {
	out := make(map[string]DateEntry)
	for _, t := range tasks {
		for _, d := range Occurrences(t, h) {
			key := task.FormatDate(d)
			e := out[key]
			e.Count++
			e.Priorities = append(e.Priorities, t.Priority)
			out[key] = e
		}
	}
	return out
}

// ActiveOn reports whether t falls on the calendar date of selected.
// Recurring tasks have no end once started.
func ActiveOn(t task.Task, selected time.Time) bool {
	anchor, ok := t.Anchor()
	if !ok {
		return false
	}
	day := task.DateOf(selected)

	switch t.Frequency {
	case task.FrequencyOnce:
		return day.Equal(anchor)
	case task.FrequencyDaily:
		return !day.Before(anchor)
	case task.FrequencyWeekly:
		return !day.Before(anchor) && day.Weekday() == anchor.Weekday()
	case task.FrequencyMonthly:
		return !day.Before(anchor) && day.Day() == anchor.Day()
	default:
		return false
	}
}

// FilterTasksForDate returns the tasks active on selected, in input order,
// narrowed to those whose title or description contains term (case
// insensitive) when term is not blank.
func FilterTasksForDate(tasks []task.Task, selected time.Time, term string) []task.Task {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if !ActiveOn(t, selected) {
			continue
		}
		if term != "" && !matchesTerm(t, term) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesTerm(t task.Task, term string) bool {
	if strings.Contains(strings.ToLower(t.Title), term) {
		return true
	}
	return t.Description != "" && strings.Contains(strings.ToLower(t.Description), term)
}
