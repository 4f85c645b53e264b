package handlers

import (
	"context"

	"taskManager/internal/importer"
	"taskManager/internal/models/task"
	"taskManager/internal/pipeline"
	"taskManager/internal/service"
	"taskManager/internal/store"
)

type Service interface {
	CreateTask(context.Context, task.Draft) (task.Task, error)
	GetTaskByID(context.Context, string) (task.Task, error)
	UpdateTask(context.Context, string, ...task.PatchOption) (task.Task, error)
	DeleteTask(context.Context, string) ([]string, error)
	BulkDelete(context.Context, []string) (store.BulkResult, error)
	ClearCompleted(context.Context) (store.BulkResult, error)
	ClearAll(context.Context, bool) (int, error)
	SetCompleted(context.Context, string, bool) (store.Completion, error)
	MoveTask(context.Context, string, string) (task.Task, error)
	SetCollapsed(context.Context, string, bool) (task.Task, error)
	ListTasks(context.Context, pipeline.Query) pipeline.Page

	Undo(context.Context) service.HistoryStep
	Redo(context.Context) service.HistoryStep
	History(context.Context) service.HistoryView

	PreviewImport(context.Context, []byte, service.ImportOptions) (importer.Plan, error)
	ApplyImport(context.Context, []byte, service.ImportOptions) (service.ImportResult, error)

	GetSettings(context.Context) task.Settings
	UpdateSettings(context.Context, task.Settings) (task.Settings, error)

	Flush(context.Context) error
	HealthCheck(context.Context) error
}
