package task

import (
	"database/sql"
	"time"
)

type PatchOption func(*Patch)

// BuildPatch folds options into a Patch. nil options are skipped.
func BuildPatch(options ...PatchOption) Patch {
	var p Patch
	for _, opt := range options {
		if opt != nil {
			opt(&p)
		}
	}
	return p
}

func WithTitle(title string) PatchOption {
	return func(p *Patch) {
		p.Title = &title
	}
}

func WithDescription(description string) PatchOption {
	return func(p *Patch) {
		p.Description = &description
	}
}

func WithCategory(category Category) PatchOption {
	if category == "" {
		return nil
	}
	return func(p *Patch) {
		p.Category = &category
	}
}

func WithPriority(priority Priority) PatchOption {
	if priority == "" {
		return nil
	}
	return func(p *Patch) {
		p.Priority = &priority
	}
}

func WithDueDate(dueDate time.Time) PatchOption {
	if dueDate.IsZero() {
		return nil
	}
	return func(p *Patch) {
		p.DueDate = &sql.NullTime{Time: dueDate, Valid: true}
	}
}

func ClearDueDate() PatchOption {
	return func(p *Patch) {
		p.DueDate = &sql.NullTime{}
	}
}

func WithReminder(reminder time.Time) PatchOption {
	if reminder.IsZero() {
		return nil
	}
	return func(p *Patch) {
		p.Reminder = &sql.NullTime{Time: reminder, Valid: true}
	}
}

func ClearReminder() PatchOption {
	return func(p *Patch) {
		p.Reminder = &sql.NullTime{}
	}
}

func WithRepeat(frequency Frequency) PatchOption {
	return func(p *Patch) {
		on := frequency != ""
		p.Repeat = &on
		p.RepeatFrequency = &frequency
	}
}

func WithTags(tags []string) PatchOption {
	return func(p *Patch) {
		p.Tags = &tags
	}
}

func WithParent(parentID string) PatchOption {
	return func(p *Patch) {
		p.ParentID = &parentID
	}
}

func WithCollapsed(collapsed bool) PatchOption {
	return func(p *Patch) {
		p.Collapsed = &collapsed
	}
}
