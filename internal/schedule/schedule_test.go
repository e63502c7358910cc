package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rekindle/internal/task"
)

func day(t *testing.T, v string) time.Time {
	t.Helper()
	d, err := task.ParseDate(v)
	require.NoError(t, err)
	return d
}

func keys(m map[string]DateEntry) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestOnceTask(t *testing.T) {
	tk := task.Task{ID: "1", Title: "Dentist", DueDate: "2024-03-01", Frequency: task.FrequencyOnce, Priority: task.PriorityHigh}
	tasks := []task.Task{tk}

	agg := BuildDateAggregate(tasks, DefaultHorizon())
	assert.Equal(t, map[string]DateEntry{
		"2024-03-01": {Count: 1, Priorities: []task.Priority{task.PriorityHigh}},
	}, agg)

	assert.Equal(t, []task.Task{tk}, FilterTasksForDate(tasks, day(t, "2024-03-01"), ""))
	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-03-02"), ""))
	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-02-29"), ""))
}

func TestDailyTask(t *testing.T) {
	tk := task.Task{ID: "1", Title: "Pills", DueDate: "2024-03-01", Frequency: task.FrequencyDaily, Priority: task.PriorityMedium}
	tasks := []task.Task{tk}

	agg := BuildDateAggregate(tasks, DefaultHorizon())
	require.Len(t, agg, 30)
	start := day(t, "2024-03-01")
	for i := 0; i < 30; i++ {
		key := task.FormatDate(start.AddDate(0, 0, i))
		assert.Equal(t, 1, agg[key].Count, key)
	}
	assert.Contains(t, agg, "2024-03-30")
	assert.NotContains(t, agg, "2024-03-31")
	assert.NotContains(t, agg, "2024-02-29")

	for _, d := range []time.Time{start, start.AddDate(0, 0, 30), start.AddDate(0, 0, 365), day(t, "2024-06-01")} {
		assert.Equal(t, []task.Task{tk}, FilterTasksForDate(tasks, d, ""), task.FormatDate(d))
	}
	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-02-29"), ""))
}

func TestWeeklyTask(t *testing.T) {
	// 2024-03-01 is a Friday.
	tk := task.Task{ID: "1", Title: "Groceries", DueDate: "2024-03-01", Frequency: task.FrequencyWeekly, Priority: task.PriorityLow}
	tasks := []task.Task{tk}

	agg := BuildDateAggregate(tasks, DefaultHorizon())
	assert.ElementsMatch(t, []string{"2024-03-01", "2024-03-08", "2024-03-15", "2024-03-22"}, keys(agg))

	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-03-09"), ""))
	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-02-23"), ""), "friday before the anchor")
	assert.Equal(t, []task.Task{tk}, FilterTasksForDate(tasks, day(t, "2024-03-08"), ""))
	assert.Equal(t, []task.Task{tk}, FilterTasksForDate(tasks, day(t, "2024-12-27"), ""), "beyond the display horizon")
}

func TestMonthlyTask(t *testing.T) {
	tk := task.Task{ID: "1", Title: "Pay rent", DueDate: "2024-03-15", Frequency: task.FrequencyMonthly, Priority: task.PriorityHigh}
	tasks := []task.Task{tk}

	agg := BuildDateAggregate(tasks, DefaultHorizon())
	assert.ElementsMatch(t, []string{"2024-03-15", "2024-04-15", "2024-05-15"}, keys(agg))

	assert.Equal(t, []task.Task{tk}, FilterTasksForDate(tasks, day(t, "2025-01-15"), ""))
	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-04-16"), ""))
	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-02-15"), ""))
}

func TestMonthlyRolloverFromDay31(t *testing.T) {
	tk := task.Task{ID: "1", Title: "Refill", DueDate: "2024-01-31", Frequency: task.FrequencyMonthly, Priority: task.PriorityMedium}
	tasks := []task.Task{tk}

	// February has no 31st: AddDate normalizes Feb 31 2024 to Mar 2.
	agg := BuildDateAggregate(tasks, DefaultHorizon())
	assert.ElementsMatch(t, []string{"2024-01-31", "2024-03-02", "2024-03-31"}, keys(agg))

	// The filter only matches the 31st, so the rolled-over date is display only.
	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-02-29"), ""))
	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-03-02"), ""))
	assert.Equal(t, []task.Task{tk}, FilterTasksForDate(tasks, day(t, "2024-03-31"), ""))
}

func TestMixedPrioritiesOnOneDate(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "Walk", DueDate: "2024-03-01", Frequency: task.FrequencyOnce, Priority: task.PriorityLow},
		{ID: "2", Title: "Doctor", DueDate: "2024-03-01", Frequency: task.FrequencyOnce, Priority: task.PriorityHigh},
	}
	agg := BuildDateAggregate(tasks, DefaultHorizon())
	entry := agg["2024-03-01"]
	assert.Equal(t, DateEntry{Count: 2, Priorities: []task.Priority{task.PriorityLow, task.PriorityHigh}}, entry)
	assert.Equal(t, task.PriorityHigh, entry.Dominant())
}

func TestDominant(t *testing.T) {
	assert.Equal(t, task.PriorityMedium, DateEntry{Priorities: []task.Priority{task.PriorityLow, task.PriorityMedium, task.PriorityLow}}.Dominant())
	assert.Equal(t, task.PriorityLow, DateEntry{Priorities: []task.Priority{task.PriorityLow}}.Dominant())
	assert.Equal(t, task.Priority(""), DateEntry{Priorities: []task.Priority{"urgent"}}.Dominant())
	assert.Equal(t, task.Priority(""), DateEntry{}.Dominant())
}

func TestInvalidInputsAreOmitted(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "bad date", DueDate: "2024-13-01", Frequency: task.FrequencyDaily, Priority: task.PriorityHigh},
		{ID: "2", Title: "bad freq", DueDate: "2024-03-01", Frequency: "yearly", Priority: task.PriorityHigh},
	}
	assert.Empty(t, BuildDateAggregate(tasks, DefaultHorizon()))
	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-03-01"), ""))
	assert.Empty(t, FilterTasksForDate(tasks, day(t, "2024-04-01"), ""))
}

func TestCustomHorizon(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "d", DueDate: "2024-03-01", Frequency: task.FrequencyDaily, Priority: task.PriorityLow},
		{ID: "2", Title: "w", DueDate: "2024-03-01", Frequency: task.FrequencyWeekly, Priority: task.PriorityLow},
		{ID: "3", Title: "m", DueDate: "2024-03-01", Frequency: task.FrequencyMonthly, Priority: task.PriorityLow},
	}
	h := Horizon{DailyDays: 7, WeeklyWeeks: 2, MonthlyMonths: 12}
	assert.Len(t, Occurrences(tasks[0], h), 7)
	assert.Len(t, Occurrences(tasks[1], h), 2)
	assert.Len(t, Occurrences(tasks[2], h), 12)

	// Zero fields fall back to the defaults.
	assert.Len(t, Occurrences(tasks[0], Horizon{}), DefaultDailyDays)
}

func TestFilterSearch(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "Take Medication", DueDate: "2024-03-01", Frequency: task.FrequencyDaily, Priority: task.PriorityHigh},
		{ID: "2", Title: "Call", Description: "Ask about MEDICATION refill", DueDate: "2024-03-01", Frequency: task.FrequencyOnce, Priority: task.PriorityLow},
		{ID: "3", Title: "Walk", DueDate: "2024-03-01", Frequency: task.FrequencyOnce, Priority: task.PriorityLow},
	}
	d := day(t, "2024-03-01")

	got := FilterTasksForDate(tasks, d, "medication")
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "2", got[1].ID)

	assert.Len(t, FilterTasksForDate(tasks, d, "   "), 3)

	all := FilterTasksForDate(tasks, d, "")
	for _, term := range []string{"a", "walk", "refill", "zzz", "CALL"} {
		for _, tk := range FilterTasksForDate(tasks, d, term) {
			assert.Contains(t, all, tk, term)
		}
	}
}

func TestFilterPreservesInputOrder(t *testing.T) {
	tasks := []task.Task{
		{ID: "b", Title: "b", DueDate: "2024-03-01", Frequency: task.FrequencyDaily, Priority: task.PriorityLow},
		{ID: "a", Title: "a", DueDate: "2024-02-01", Frequency: task.FrequencyMonthly, Priority: task.PriorityLow},
		{ID: "c", Title: "c", DueDate: "2024-03-01", Frequency: task.FrequencyOnce, Priority: task.PriorityLow},
	}
	got := FilterTasksForDate(tasks, day(t, "2024-03-01"), "")
	require.Len(t, got, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
}

func TestSelectedDateIgnoresTimeOfDay(t *testing.T) {
	tasks := []task.Task{{ID: "1", Title: "x", DueDate: "2024-03-01", Frequency: task.FrequencyOnce, Priority: task.PriorityLow}}
	loc := time.FixedZone("UTC-8", -8*3600)
	evening := time.Date(2024, 3, 1, 23, 59, 0, 0, loc)
	assert.Len(t, FilterTasksForDate(tasks, evening, ""), 1)
}

func TestTransformsAreIdempotent(t *testing.T) {
	tasks := []task.Task{
		{ID: "1", Title: "x", DueDate: "2024-03-01", Frequency: task.FrequencyDaily, Priority: task.PriorityLow},
		{ID: "2", Title: "y", DueDate: "2024-03-08", Frequency: task.FrequencyWeekly, Priority: task.PriorityHigh},
	}
	assert.Equal(t, BuildDateAggregate(tasks, DefaultHorizon()), BuildDateAggregate(tasks, DefaultHorizon()))
	d := day(t, "2024-03-15")
	assert.Equal(t, FilterTasksForDate(tasks, d, "x"), FilterTasksForDate(tasks, d, "x"))
}
