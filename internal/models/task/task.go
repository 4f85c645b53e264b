package task

import (
	"slices"
	"strings"
	"time"
)

type Task struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           Category   `json:"category"`
	Priority           Priority   `json:"priority"`
	DueDate            *time.Time `json:"dueDate,omitempty"`
	Reminder           *time.Time `json:"reminder,omitempty"`
	Repeat             bool       `json:"repeat"`
	RepeatFrequency    Frequency  `json:"repeatFrequency,omitempty"`
	Tags               []string   `json:"tags"`
	Completed          bool       `json:"completed"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	Order              float64    `json:"order"`
	ParentID           string     `json:"parentId,omitempty"`
	PreviousInstanceID string     `json:"previousInstanceId,omitempty"`
	Collapsed          bool       `json:"collapsed"`
}

type Category string
type Priority string
type Frequency string

const CategoryPersonal Category = "personal"
const CategoryOffice Category = "office"
const CategoryMisc Category = "misc"

const PriorityUrgent Priority = "urgent"
const PriorityHigh Priority = "high"
const PriorityMedium Priority = "medium"
const PriorityLow Priority = "low"

const FrequencyDaily Frequency = "daily"
const FrequencyWeekly Frequency = "weekly"
const FrequencyMonthly Frequency = "monthly"
const FrequencyYearly Frequency = "yearly"

// Rank orders priorities from most to least pressing. Unknown priorities rank last.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

func (p Priority) Valid() bool {
	return p.Rank() < 4
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// ParsePriority accepts any casing and surrounding whitespace.
func ParsePriority(s string) (Priority, bool) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

func ParseFrequency(s string) (Frequency, bool) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	return f, f.Valid()
}

func NormalizeCategory(s string) Category {
	return Category(strings.ToLower(strings.TrimSpace(s)))
}

// IsRecurring reports whether completing the task spawns a successor.
func (t Task) IsRecurring() bool {
	return t.Repeat && t.RepeatFrequency.Valid()
}

func (t Task) HasTag(tag string) bool {
	return slices.Contains(t.Tags, tag)
}

// Clone returns a copy that shares no memory with t.
func (t Task) Clone() Task {
	c := t
	c.DueDate = cloneTime(t.DueDate)
	c.Reminder = cloneTime(t.Reminder)
	c.CompletedAt = cloneTime(t.CompletedAt)
	if t.Tags != nil {
		c.Tags = slices.Clone(t.Tags)
	}
	return c
}

// CloneAll deep-copies a collection, preserving order.
func CloneAll(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// SameTime treats two absent times as equal.
func SameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
