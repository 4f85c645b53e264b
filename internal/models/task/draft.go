package task

import (
	"database/sql"
	"time"
)

// Draft carries the caller-supplied fields of a task that does not exist yet.
type Draft struct {
	Title           string
	Description     string
	Category        Category
	Priority        Priority
	DueDate         *time.Time
	Reminder        *time.Time
	Repeat          bool
	RepeatFrequency Frequency
	Tags            []string
	ParentID        string
}

// Patch represents a partial update.
// nil pointer => "no change"
// NullTime with Valid=false => clear the field
// empty ParentID => detach from parent
type Patch struct {
	Title           *string
	Description     *string
	Category        *Category
	Priority        *Priority
	DueDate         *sql.NullTime
	Reminder        *sql.NullTime
	Repeat          *bool
	RepeatFrequency *Frequency
	Tags            *[]string
	ParentID        *string
	Collapsed       *bool
}

func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply writes the patch onto t. Validation is the caller's concern.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		t.DueDate = nullTimePtr(*p.DueDate)
	}
	if p.Reminder != nil {
		t.Reminder = nullTimePtr(*p.Reminder)
	}
	if p.Repeat != nil {
		t.Repeat = *p.Repeat
	}
	if p.RepeatFrequency != nil {
		t.RepeatFrequency = *p.RepeatFrequency
	}
	if p.Tags != nil {
		if *p.Tags == nil {
			t.Tags = []string{}
		} else {
			t.Tags = append([]string{}, (*p.Tags)...)
		}
	}
	if p.ParentID != nil {
		t.ParentID = *p.ParentID
	}
	if p.Collapsed != nil {
		t.Collapsed = *p.Collapsed
	}
}

func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	v := nt.Time
	return &v
}
