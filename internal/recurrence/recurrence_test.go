package recurrence_test

import (
	"testing"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/recurrence"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(y int, m time.Month, d, hh, mm int) *time.Time {
	t := time.Date(y, m, d, hh, mm, 0, 0, time.Local)
	return &t
}

// TestNext_DailyPreservesReminderOffset tests that a daily task keeps its reminder lead time
func TestNext_DailyPreservesReminderOffset(t *testing.T) {
	now := time.Date(2024, 1, 31, 10, 0, 0, 0, time.Local)
	orig := task.Task{
		ID:              "t1",
		Title:           "Standup",
		Repeat:          true,
		RepeatFrequency: task.FrequencyDaily,
		DueDate:         at(2024, 1, 31, 9, 0),
		Reminder:        at(2024, 1, 31, 8, 0),
		Completed:       true,
		CompletedAt:     &now,
		Tags:            []string{"work"},
		ParentID:        "p1",
		Order:           4,
		Collapsed:       true,
	}

	next, ok := recurrence.Next(orig, now)
	require.True(t, ok)

	assert.Equal(t, *at(2024, 2, 1, 9, 0), *next.DueDate)
	assert.Equal(t, *at(2024, 2, 1, 8, 0), *next.Reminder)
	assert.Equal(t, "t1", next.PreviousInstanceID)
	assert.Equal(t, "p1", next.ParentID)
	assert.False(t, next.Completed)
	assert.Nil(t, next.CompletedAt)
	assert.Empty(t, next.ID)
	assert.Equal(t, now, next.CreatedAt)
	assert.Equal(t, []string{"work"}, next.Tags)
	assert.True(t, next.Collapsed)

	next.Tags[0] = "changed"
	assert.Equal(t, "work", orig.Tags[0])
}

// TestNext_MonthlyClampsToMonthEnd pins the month-end rollover rule
func TestNext_MonthlyClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name string
		freq task.Frequency
		due  *time.Time
		want *time.Time
	}{
		{"jan 31 leap year", task.FrequencyMonthly, at(2024, 1, 31, 0, 0), at(2024, 2, 29, 0, 0)},
		{"jan 31 common year", task.FrequencyMonthly, at(2023, 1, 31, 12, 30), at(2023, 2, 28, 12, 30)},
		{"mar 31 to apr 30", task.FrequencyMonthly, at(2024, 3, 31, 9, 0), at(2024, 4, 30, 9, 0)},
		{"dec 15 to jan 15", task.FrequencyMonthly, at(2024, 12, 15, 9, 0), at(2025, 1, 15, 9, 0)},
		{"feb 29 yearly", task.FrequencyYearly, at(2024, 2, 29, 9, 0), at(2025, 2, 28, 9, 0)},
		{"weekly over month end", task.FrequencyWeekly, at(2024, 1, 29, 9, 0), at(2024, 2, 5, 9, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := task.Task{ID: "x", Title: "x", Repeat: true, RepeatFrequency: tt.freq, DueDate: tt.due}
			next, ok := recurrence.Next(orig, time.Now())
			require.True(t, ok)
			assert.Equal(t, *tt.want, *next.DueDate)
			assert.Nil(t, next.Reminder)
		})
	}
}

// TestNext_NoDueDate tests that a successor without a due date carries no reminder
func TestNext_NoDueDate(t *testing.T) {
	orig := task.Task{
		ID:              "x",
		Title:           "Water plants",
		Repeat:          true,
		RepeatFrequency: task.FrequencyWeekly,
		Reminder:        at(2024, 5, 1, 8, 0),
	}

	next, ok := recurrence.Next(orig, time.Now())
	require.True(t, ok)
	assert.Nil(t, next.DueDate)
	assert.Nil(t, next.Reminder)
}

// TestNext_NotRecurring tests that non-repeating tasks yield nothing
func TestNext_NotRecurring(t *testing.T) {
	_, ok := recurrence.Next(task.Task{ID: "x", Title: "once"}, time.Now())
	assert.False(t, ok)

	_, ok = recurrence.Next(task.Task{ID: "x", Title: "broken", Repeat: true}, time.Now())
	assert.False(t, ok)
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 29, recurrence.DaysIn(2024, time.February))
	assert.Equal(t, 28, recurrence.DaysIn(2100, time.February))
	assert.Equal(t, 31, recurrence.DaysIn(2024, time.December))
}
