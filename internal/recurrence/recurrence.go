// Package recurrence derives the next occurrence of a repeating task.
//
// Month and year steps clamp to the last valid day of the target month:
// Jan 31 + 1 month is Feb 29 in a leap year and Feb 28 otherwise, and
// Feb 29 + 1 year is Feb 28.
package recurrence

import (
	"time"

	"taskManager/internal/models/task"
)

// Next returns the successor of a completed repeating task. The successor has
// no ID and no order yet; the store assigns both when appending it.
// ok is false when t does not repeat.
func Next(t task.Task, now time.Time) (task.Task, bool) {
	if !t.IsRecurring() {
		return task.Task{}, false
	}

	next := t.Clone()
	next.ID = ""
	next.Order = 0
	next.Completed = false
	next.CompletedAt = nil
	next.CreatedAt = now
	next.PreviousInstanceID = t.ID

	if t.DueDate == nil {
		next.DueDate = nil
		next.Reminder = nil
		return next, true
	}

	due := Advance(*t.DueDate, t.RepeatFrequency)
	next.DueDate = &due

	next.Reminder = nil
	if t.Reminder != nil {
		lead := t.DueDate.Sub(*t.Reminder)
		reminder := due.Add(-lead)
		next.Reminder = &reminder
	}
	return next, true
}

// Advance moves d forward by one calendar unit of freq, keeping the wall clock.
func Advance(d time.Time, freq task.Frequency) time.Time {
	switch freq {
	case task.FrequencyDaily:
		return d.AddDate(0, 0, 1)
	case task.FrequencyWeekly:
		return d.AddDate(0, 0, 7)
	case task.FrequencyMonthly:
		return AddMonthsClamped(d, 1)
	case task.FrequencyYearly:
		return AddMonthsClamped(d, 12)
	default:
		return d
	}
}

// AddMonthsClamped adds n months, clamping the day to the target month's length.
func AddMonthsClamped(d time.Time, n int) time.Time {
	y, m, day := d.Date()
	first := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, d.Location())
	if last := DaysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day,
		d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
