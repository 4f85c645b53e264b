package importer

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"taskManager/internal/models/task"
)

type Strategy string

const (
	StrategyMerge     Strategy = "merge"
	StrategyUpdate    Strategy = "update"
	StrategyOverwrite Strategy = "overwrite"
)

func ParseStrategy(s string) (Strategy, error) {
	switch st := Strategy(strings.ToLower(strings.TrimSpace(s))); st {
	case "":
		return StrategyMerge, nil
	case StrategyMerge, StrategyUpdate, StrategyOverwrite:
		return st, nil
	default:
		return "", fmt.Errorf("unknown import strategy %q", s)
	}
}

// Destructive reports whether the strategy discards existing tasks.
func (s Strategy) Destructive() bool {
	return s == StrategyOverwrite
}

// Update is an in-place change to one existing task.
type Update struct {
	ID    string
	Patch task.Patch
}

// Actions is what a strategy asks the store to do.
type Actions struct {
	Replace bool
	Insert  []task.Task
	Updates []Update
}

// Actions converts the classified plan into store mutations for strategy.
func (p Plan) Actions(strategy Strategy) Actions {
	var a Actions
	switch strategy {
	case StrategyOverwrite:
		a.Replace = true
		for _, item := range p.Items {
			a.Insert = append(a.Insert, item.Candidate.Clone())
		}
	case StrategyUpdate:
		for _, item := range p.Items {
			switch item.Status {
			case StatusNew:
				a.Insert = append(a.Insert, item.Candidate.Clone())
			case StatusUpdated:
				a.Updates = append(a.Updates, Update{ID: item.Match.ID, Patch: changedFields(item)})
			}
		}
	default:
		for _, item := range p.Items {
			if item.Status == StatusNew {
				a.Insert = append(a.Insert, item.Candidate.Clone())
			}
		}
	}
	return a
}

func changedFields(item Item) task.Patch {
	c := item.Candidate
	var opts []task.PatchOption
	if slices.Contains(item.Changes, "description") {
		opts = append(opts, task.WithDescription(c.Description))
	}
	if slices.Contains(item.Changes, "priority") {
		opts = append(opts, task.WithPriority(c.Priority))
	}
	if slices.Contains(item.Changes, "dueDate") && c.DueDate != nil {
		opts = append(opts, task.WithDueDate(*c.DueDate))
		if c.Reminder == nil && item.Match != nil {
			opts = append(opts, followDueDate(*item.Match, *c.DueDate)...)
		}
	}
	if slices.Contains(item.Changes, "reminder") && c.Reminder != nil {
		opts = append(opts, task.WithReminder(*c.Reminder))
	}
	return task.BuildPatch(opts...)
}

// followDueDate moves an existing reminder along with a rescheduled due date,
// keeping its lead time. A reminder with no due date to lead is cleared when
// it would fall after the new due date.
func followDueDate(existing task.Task, due time.Time) []task.PatchOption {
	if existing.Reminder == nil {
		return nil
	}
	if existing.DueDate != nil {
		lead := existing.DueDate.Sub(*existing.Reminder)
		return []task.PatchOption{task.WithReminder(due.Add(-lead))}
	}
	if existing.Reminder.After(due) {
		return []task.PatchOption{task.ClearReminder()}
	}
	return nil
}
