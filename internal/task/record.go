package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FromRecord coerces a loosely-typed record, as exported by the hosted
// backend, into a Task. Missing priority and frequency default to medium and
// once; anything present must be one of the known values.
func FromRecord(rec map[string]any) (Task, error) {
	var t Task

	t.ID = stringField(rec, "id")
	t.Title = strings.TrimSpace(stringField(rec, "title"))
	if t.Title == "" {
		return Task{}, ErrInvalidTitle
	}
	t.Description = strings.TrimSpace(stringField(rec, "description"))
	t.AddedBy = strings.TrimSpace(stringField(rec, "added_by"))

	due, err := coerceDate(stringField(rec, "due_date"))
	if err != nil {
		return Task{}, fmt.Errorf("due_date %q: %w", stringField(rec, "due_date"), err)
	}
	t.DueDate = due

	t.Priority = PriorityMedium
	if raw := stringField(rec, "priority"); raw != "" {
		p, err := ParsePriority(raw)
		if err != nil {
			return Task{}, fmt.Errorf("priority %q: %w", raw, err)
		}
		t.Priority = p
	}

	t.Frequency = FrequencyOnce
	if raw := stringField(rec, "frequency"); raw != "" {
		f, err := ParseFrequency(raw)
		if err != nil {
			return Task{}, fmt.Errorf("frequency %q: %w", raw, err)
		}
		t.Frequency = f
	}

	done, err := boolField(rec, "completed")
	if err != nil {
		return Task{}, err
	}
	t.Completed = done
	return t, nil
}

// coerceDate accepts YYYY-MM-DD or an RFC 3339 timestamp, keeping only the
// date part as written.
func coerceDate(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", ErrInvalidDate
	}
	if d, err := ParseDate(v); err == nil {
		return FormatDate(d), nil
	}
	ts, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return "", ErrInvalidDate
	}
	return FormatDate(DateOf(ts)), nil
}

func stringField(rec map[string]any, key string) string {
	switch v := rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

func boolField(rec map[string]any, key string) (bool, error) {
	switch v := rec[key].(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case float64:
		return v != 0, nil
	case int:
		return v != 0, nil
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		switch s {
		case "", "false", "0", "no", "n":
			return false, nil
		case "true", "1", "yes", "y":
			return true, nil
		}
		return false, fmt.Errorf("%s: cannot read %q as a boolean", key, v)
	default:
		return false, fmt.Errorf("%s: unexpected type %T", key, v)
	}
}
