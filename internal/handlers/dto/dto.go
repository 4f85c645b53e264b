package dto

import (
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/pipeline"
	"taskManager/internal/store"
)

type CreateTaskRequest struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Priority        string     `json:"priority"`
	DueDate         *time.Time `json:"dueDate"`
	Reminder        *time.Time `json:"reminder"`
	RepeatFrequency string     `json:"repeatFrequency"`
	Tags            []string   `json:"tags"`
	ParentID        string     `json:"parentId"`
}

// UpdateTaskRequest: отсутствующее поле не меняется; clear* сбрасывают даты,
// пустая repeatFrequency выключает повторение, пустой parentId отвязывает от родителя
type UpdateTaskRequest struct {
	Title           *string    `json:"title,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Category        *string    `json:"category,omitempty"`
	Priority        *string    `json:"priority,omitempty"`
	DueDate         *time.Time `json:"dueDate,omitempty"`
	ClearDueDate    bool       `json:"clearDueDate,omitempty"`
	Reminder        *time.Time `json:"reminder,omitempty"`
	ClearReminder   bool       `json:"clearReminder,omitempty"`
	RepeatFrequency *string    `json:"repeatFrequency,omitempty"`
	Tags            *[]string  `json:"tags,omitempty"`
	ParentID        *string    `json:"parentId,omitempty"`
}

type MoveTaskRequest struct {
	After string `json:"after"`
}

type CollapseTaskRequest struct {
	Collapsed bool `json:"collapsed"`
}

type BulkDeleteRequest struct {
	IDs []string `json:"ids"`
}

type TaskResponse struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Category           string     `json:"category"`
	Priority           string     `json:"priority"`
	DueDate            *time.Time `json:"dueDate,omitempty"`
	Reminder           *time.Time `json:"reminder,omitempty"`
	Repeat             bool       `json:"repeat"`
	RepeatFrequency    string     `json:"repeatFrequency,omitempty"`
	Tags               []string   `json:"tags"`
	Completed          bool       `json:"completed"`
	CompletedAt        *time.Time `json:"completedAt,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	Order              float64    `json:"order"`
	ParentID           string     `json:"parentId,omitempty"`
	PreviousInstanceID string     `json:"previousInstanceId,omitempty"`
	Collapsed          bool       `json:"collapsed"`
	IsOverdue          bool       `json:"isOverdue"`
}

type RowResponse struct {
	Task    TaskResponse `json:"task"`
	Depth   int          `json:"depth"`
	Context bool         `json:"context,omitempty"`
}

type PageResponse struct {
	Rows       []RowResponse `json:"rows"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Total      int           `json:"total"`
	TotalPages int           `json:"totalPages"`
}

type CompletionResponse struct {
	Task      TaskResponse  `json:"task"`
	Changed   bool          `json:"changed"`
	Successor *TaskResponse `json:"successor,omitempty"`
	Removed   []string      `json:"removed"`
}

type BulkDeleteResponse struct {
	Removed []string `json:"removed"`
	Blocked []string `json:"blocked"`
}

func (r CreateTaskRequest) ToDraft() task.Draft {
	return task.Draft{
		Title:           r.Title,
		Description:     r.Description,
		Category:        task.NormalizeCategory(r.Category),
		Priority:        task.Priority(r.Priority),
		DueDate:         r.DueDate,
		Reminder:        r.Reminder,
		Repeat:          r.RepeatFrequency != "",
		RepeatFrequency: task.Frequency(r.RepeatFrequency),
		Tags:            r.Tags,
		ParentID:        r.ParentID,
	}
}

func (r UpdateTaskRequest) ToOptions() []task.PatchOption {
	var opts []task.PatchOption
	if r.Title != nil {
		opts = append(opts, task.WithTitle(*r.Title))
	}
	if r.Description != nil {
		opts = append(opts, task.WithDescription(*r.Description))
	}
	if r.Category != nil {
		opts = append(opts, task.WithCategory(task.NormalizeCategory(*r.Category)))
	}
	if r.Priority != nil {
		opts = append(opts, task.WithPriority(task.Priority(*r.Priority)))
	}
	switch {
	case r.ClearDueDate:
		opts = append(opts, task.ClearDueDate())
	case r.DueDate != nil:
		opts = append(opts, task.WithDueDate(*r.DueDate))
	}
	switch {
	case r.ClearReminder:
		opts = append(opts, task.ClearReminder())
	case r.Reminder != nil:
		opts = append(opts, task.WithReminder(*r.Reminder))
	}
	if r.RepeatFrequency != nil {
		opts = append(opts, task.WithRepeat(task.Frequency(*r.RepeatFrequency)))
	}
	if r.Tags != nil {
		opts = append(opts, task.WithTags(*r.Tags))
	}
	if r.ParentID != nil {
		opts = append(opts, task.WithParent(*r.ParentID))
	}
	return opts
}

// FromTask: просроченной считается невыполненная задача со сроком раньше now
func FromTask(t task.Task, now time.Time) TaskResponse {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return TaskResponse{
		ID:                 t.ID,
		Title:              t.Title,
		Description:        t.Description,
		Category:           string(t.Category),
		Priority:           string(t.Priority),
		DueDate:            t.DueDate,
		Reminder:           t.Reminder,
		Repeat:             t.Repeat,
		RepeatFrequency:    string(t.RepeatFrequency),
		Tags:               tags,
		Completed:          t.Completed,
		CompletedAt:        t.CompletedAt,
		CreatedAt:          t.CreatedAt,
		Order:              t.Order,
		ParentID:           t.ParentID,
		PreviousInstanceID: t.PreviousInstanceID,
		Collapsed:          t.Collapsed,
		IsOverdue:          !t.Completed && t.DueDate != nil && t.DueDate.Before(now),
	}
}

func FromPage(p pipeline.Page, now time.Time) PageResponse {
	rows := make([]RowResponse, len(p.Rows))
	for i, row := range p.Rows {
		rows[i] = RowResponse{
			Task:    FromTask(row.Task, now),
			Depth:   row.Depth,
			Context: row.Context,
		}
	}
	return PageResponse{
		Rows:       rows,
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}

func FromCompletion(c store.Completion, now time.Time) CompletionResponse {
	resp := CompletionResponse{
		Task:    FromTask(c.Task, now),
		Changed: c.Changed,
		Removed: orEmpty(c.Removed),
	}
	if c.Successor != nil {
		successor := FromTask(*c.Successor, now)
		resp.Successor = &successor
	}
	return resp
}

func FromBulk(b store.BulkResult) BulkDeleteResponse {
	return BulkDeleteResponse{
		Removed: orEmpty(b.Removed),
		Blocked: orEmpty(b.Blocked),
	}
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
