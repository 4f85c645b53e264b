package importer

import (
	"fmt"
	"strings"

	"taskManager/internal/models/task"
)

const DefaultThreshold = 0.5

// Field is a task field that can take part in duplicate matching.
type Field string

const (
	FieldTitle    Field = "title"
	FieldCategory Field = "category"
	FieldPriority Field = "priority"
	FieldDueDate  Field = "dueDate"
)

// DefaultMatch is used when the caller does not choose match fields.
var DefaultMatch = []Field{FieldTitle, FieldCategory}

// ParseMatch reads a comma separated field list. An empty string selects
// DefaultMatch; "none" selects nothing, which disables duplicate detection.
func ParseMatch(s string) ([]Field, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return append([]Field(nil), DefaultMatch...), nil
	case "none":
		return []Field{}, nil
	}
	var fields []Field
	for _, part := range strings.Split(s, ",") {
		f := Field(strings.TrimSpace(part))
		switch f {
		case FieldTitle, FieldCategory, FieldPriority, FieldDueDate:
			fields = append(fields, f)
		case "due_date":
			fields = append(fields, FieldDueDate)
		default:
			return nil, fmt.Errorf("unknown match field %q", part)
		}
	}
	return fields, nil
}

// MatchRatio compares candidate with existing on the selected fields. Fields
// the candidate leaves empty are not considered. ok is false when nothing
// could be considered.
func MatchRatio(candidate, existing task.Task, fields []Field) (float64, bool) {
	considered, matched := 0, 0
	for _, f := range fields {
		switch f {
		case FieldTitle:
			if candidate.Title == "" {
				continue
			}
			considered++
			if strings.EqualFold(strings.TrimSpace(candidate.Title), strings.TrimSpace(existing.Title)) {
				matched++
			}
		case FieldCategory:
			if candidate.Category == "" {
				continue
			}
			considered++
			if candidate.Category == existing.Category {
				matched++
			}
		case FieldPriority:
			if candidate.Priority == "" {
				continue
			}
			considered++
			if candidate.Priority == existing.Priority {
				matched++
			}
		case FieldDueDate:
			if candidate.DueDate == nil {
				continue
			}
			considered++
			if task.SameTime(candidate.DueDate, existing.DueDate) {
				matched++
			}
		}
	}
	if considered == 0 {
		return 0, false
	}
	return float64(matched) / float64(considered), true
}

// DetectDuplicate returns the first existing task, in collection order, whose
// match ratio reaches threshold.
func DetectDuplicate(candidate task.Task, existing []task.Task, fields []Field, threshold float64) (task.Task, bool) {
	for _, e := range existing {
		if ratio, ok := MatchRatio(candidate, e, fields); ok && ratio >= threshold {
			return e, true
		}
	}
	return task.Task{}, false
}

type Status string

const (
	StatusNew       Status = "new"
	StatusDuplicate Status = "duplicate"
	StatusUpdated   Status = "updated"
)

type Item struct {
	Candidate task.Task  `json:"candidate"`
	Status    Status     `json:"status"`
	Match     *task.Task `json:"match,omitempty"`
	Changes   []string   `json:"changes,omitempty"`
}

type Plan struct {
	Items      []Item `json:"items"`
	New        int    `json:"new"`
	Duplicates int    `json:"duplicates"`
	Updated    int    `json:"updated"`
}

// Classify labels each candidate against existing. Candidates are matched
// only against existing tasks, never against each other.
func Classify(candidates, existing []task.Task, fields []Field, threshold float64) Plan {
	plan := Plan{Items: make([]Item, 0, len(candidates))}
	for _, c := range candidates {
		item := Item{Candidate: c, Status: StatusNew}
		if match, ok := DetectDuplicate(c, existing, fields, threshold); ok {
			m := match.Clone()
			item.Match = &m
			item.Changes = changes(c, match)
			item.Status = StatusDuplicate
			if len(item.Changes) > 0 {
				item.Status = StatusUpdated
			}
		}
		switch item.Status {
		case StatusNew:
			plan.New++
		case StatusDuplicate:
			plan.Duplicates++
		case StatusUpdated:
			plan.Updated++
		}
		plan.Items = append(plan.Items, item)
	}
	return plan
}

// changes lists the tracked fields the candidate supplies with a different value.
func changes(candidate, existing task.Task) []string {
	var out []string
	if candidate.Description != "" && candidate.Description != existing.Description {
		out = append(out, "description")
	}
	if candidate.Priority != "" && candidate.Priority != existing.Priority {
		out = append(out, "priority")
	}
	if candidate.DueDate != nil && !task.SameTime(candidate.DueDate, existing.DueDate) {
		out = append(out, "dueDate")
	}
	if candidate.Reminder != nil && !task.SameTime(candidate.Reminder, existing.Reminder) {
		out = append(out, "reminder")
	}
	return out
}
