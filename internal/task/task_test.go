package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrioritySeverity(t *testing.T) {
	assert.Greater(t, PriorityHigh.Severity(), PriorityMedium.Severity())
	assert.Greater(t, PriorityMedium.Severity(), PriorityLow.Severity())
	assert.Equal(t, 0, Priority("urgent").Severity())
	assert.False(t, Priority("").Valid())
}

func TestParsePriorityAndFrequency(t *testing.T) {
	p, err := ParsePriority(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrInvalidPriority)

	f, err := ParseFrequency("Weekly")
	require.NoError(t, err)
	assert.Equal(t, FrequencyWeekly, f)
	assert.True(t, f.Recurring())
	assert.False(t, FrequencyOnce.Recurring())

	_, err = ParseFrequency("yearly")
	assert.ErrorIs(t, err, ErrInvalidFrequency)
}

func TestValidate(t *testing.T) {
	ok := Task{Title: "Take pills", DueDate: "2024-03-01", Priority: PriorityHigh, Frequency: FrequencyDaily}
	require.NoError(t, ok.Validate())

	noTitle := ok
	noTitle.Title = "  "
	assert.ErrorIs(t, noTitle.Validate(), ErrInvalidTitle)

	badDate := ok
	badDate.DueDate = "2024-02-30"
	assert.ErrorIs(t, badDate.Validate(), ErrInvalidDate)

	badPrio := ok
	badPrio.Priority = "urgent"
	assert.ErrorIs(t, badPrio.Validate(), ErrInvalidPriority)

	badFreq := ok
	badFreq.Frequency = "hourly"
	assert.ErrorIs(t, badFreq.Validate(), ErrInvalidFrequency)
}

func TestDateOfUsesOwnLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	late := time.Date(2024, 3, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, "2024-03-01", FormatDate(DateOf(late)))
}

func TestFromRecord(t *testing.T) {
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"id": "a1",
		"title": " Call Mom ",
		"description": "Sunday call",
		"due_date": "2024-03-03T10:00:00Z",
		"priority": "Low",
		"completed": "true",
		"added_by": "Sam",
		"frequency": "weekly"
	}`), &rec))

	got, err := FromRecord(rec)
	require.NoError(t, err)
	assert.Equal(t, Task{
		ID:          "a1",
		Title:       "Call Mom",
		Description: "Sunday call",
		DueDate:     "2024-03-03",
		Priority:    PriorityLow,
		Completed:   true,
		AddedBy:     "Sam",
		Frequency:   FrequencyWeekly,
	}, got)
}

func TestFromRecordDefaults(t *testing.T) {
	got, err := FromRecord(map[string]any{"title": "Walk", "due_date": "2024-03-01"})
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, got.Priority)
	assert.Equal(t, FrequencyOnce, got.Frequency)
	assert.False(t, got.Completed)
}

func TestFromRecordRejects(t *testing.T) {
	cases := []struct {
		name string
		rec  map[string]any
		want error
	}{
		{"missing title", map[string]any{"due_date": "2024-03-01"}, ErrInvalidTitle},
		{"bad date", map[string]any{"title": "x", "due_date": "03/01/2024"}, ErrInvalidDate},
		{"missing date", map[string]any{"title": "x"}, ErrInvalidDate},
		{"bad priority", map[string]any{"title": "x", "due_date": "2024-03-01", "priority": "urgent"}, ErrInvalidPriority},
		{"bad frequency", map[string]any{"title": "x", "due_date": "2024-03-01", "frequency": "yearly"}, ErrInvalidFrequency},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromRecord(tc.rec)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := FromRecord(map[string]any{"title": "x", "due_date": "2024-03-01", "completed": "maybe"})
	assert.Error(t, err)
}
