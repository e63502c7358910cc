package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"rekindle/internal/task"
)

const icsDateLayout = "20060102"

var ErrNothingToExport = errors.New("no task with a valid due date to export")

// BuildCalendarICS renders tasks as all-day iCalendar events. Recurring tasks
// carry an open-ended RRULE, matching FilterTasksForDate rather than the
// display horizon. Tasks without a parseable due date are left out.
func BuildCalendarICS(tasks []task.Task, now time.Time) (string, error) {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//ReKindle//Task Calendar//EN",
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
	}
	stamp := now.UTC().Format("20060102T150405Z")

	exported := 0
	for i, t := range tasks {
		due, ok := t.Anchor()
		if !ok {
			continue
		}
		exported++

		title := strings.TrimSpace(t.Title)
		if title == "" {
			title = "ReKindle Task"
		}
		uid := fmt.Sprintf("task-%s@rekindle", strings.TrimSpace(t.ID))
		if strings.TrimSpace(t.ID) == "" {
			uid = fmt.Sprintf("task-export-%d-%d@rekindle", now.UnixNano(), i)
		}

		lines = append(lines,
			"BEGIN:VEVENT",
			"UID:"+escapeICSText(uid),
			"DTSTAMP:"+stamp,
			"SUMMARY:"+escapeICSText(title),
			"DTSTART;VALUE=DATE:"+due.Format(icsDateLayout),
			"DTEND;VALUE=DATE:"+due.AddDate(0, 0, 1).Format(icsDateLayout),
		)
		if desc := strings.TrimSpace(t.Description); desc != "" {
			lines = append(lines, "DESCRIPTION:"+escapeICSText(desc))
		}
		if prio := icsPriority(t.Priority); prio > 0 {
			lines = append(lines, fmt.Sprintf("PRIORITY:%d", prio))
		}
		if t.Completed {
			lines = append(lines, "STATUS:COMPLETED")
		}
		if rrule := frequencyToRRULE(t.Frequency); rrule != "" {
			lines = append(lines, "RRULE:"+rrule)
		}
		lines = append(lines, "END:VEVENT")
	}
	if exported == 0 {
		return "", ErrNothingToExport
	}
	lines = append(lines, "END:VCALENDAR", "")

	return strings.Join(lines, "\r\n"), nil
}

func frequencyToRRULE(f task.Frequency) string {
	switch f {
	case task.FrequencyDaily:
		return "FREQ=DAILY;INTERVAL=1"
	case task.FrequencyWeekly:
		return "FREQ=WEEKLY;INTERVAL=1"
	case task.FrequencyMonthly:
		return "FREQ=MONTHLY;INTERVAL=1"
	default:
		return ""
	}
}

// icsPriority maps to RFC 5545 PRIORITY (1 highest, 9 lowest).
func icsPriority(p task.Priority) int {
	switch p {
	case task.PriorityHigh:
		return 1
	case task.PriorityMedium:
		return 5
	case task.PriorityLow:
		return 9
	default:
		return 0
	}
}

func escapeICSText(s string) string {
	repl := strings.NewReplacer(
		"\\", "\\\\",
		";", "\\;",
		",", "\\,",
		"\r\n", "\\n",
		"\n", "\\n",
		"\r", "\\n",
	)
	return repl.Replace(s)
}
