package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskManager/internal/importer"
	"taskManager/internal/models/task"
	"taskManager/internal/pipeline"
	"taskManager/internal/repository"
	"taskManager/internal/repository/inmemory"
	"taskManager/internal/service"
	"taskManager/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPersister - мок фоновой записи
type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) Notify() {
	m.Called()
}

func (m *MockPersister) Flush(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var fixedNow = time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)

func newService(t *testing.T, options ...service.Option) (*service.TaskService, *inmemory.Storage) {
	t.Helper()
	repo := inmemory.New()
	opts := append([]service.Option{service.WithClock(func() time.Time { return fixedNow })}, options...)
	return service.NewTaskService(repo, opts...), repo
}

func at(s string) *time.Time {
	v, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &v
}

func requireCode(t *testing.T, err error, code string) *service.BusinessError {
	t.Helper()
	var busErr *service.BusinessError
	require.ErrorAs(t, err, &busErr)
	assert.Equal(t, code, busErr.Code)
	return busErr
}

// TestTaskService_CreateTask тестирует подстановку значений из настроек
func TestTaskService_CreateTask(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	settings := svc.GetSettings(ctx)
	settings.DefaultCategory = task.CategoryOffice
	settings.DefaultPriority = task.PriorityHigh
	settings.DefaultReminderHours = 2
	_, err := svc.UpdateSettings(ctx, settings)
	require.NoError(t, err)

	created, err := svc.CreateTask(ctx, task.Draft{Title: "  Report  ", DueDate: at("2024-01-12T10:00:00Z")})
	require.NoError(t, err)

	assert.Equal(t, "Report", created.Title)
	assert.Equal(t, task.CategoryOffice, created.Category)
	assert.Equal(t, task.PriorityHigh, created.Priority)
	require.NotNil(t, created.Reminder)
	assert.True(t, created.Reminder.Equal(*at("2024-01-12T08:00:00Z")))
	assert.Equal(t, fixedNow, created.CreatedAt)

	got, err := svc.GetTaskByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

// TestTaskService_CreateTask_Validation тестирует, что ошибка проверки ничего не меняет
func TestTaskService_CreateTask_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.CreateTask(ctx, task.Draft{Title: "   "})
	busErr := requireCode(t, err, service.CodeValidation)
	assert.Equal(t, "title", busErr.Details["field"])

	_, err = svc.CreateTask(ctx, task.Draft{Title: "Child", ParentID: "missing"})
	requireCode(t, err, service.CodeValidation)

	assert.Equal(t, 0, svc.ListTasks(ctx, pipeline.Query{}).Total)
	assert.Len(t, svc.History(ctx).Entries, 1)
}

// TestTaskService_NotFound тестирует ошибки для несуществующих задач
func TestTaskService_NotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	_, err := svc.GetTaskByID(ctx, "nope")
	requireCode(t, err, service.CodeNotFound)

	_, err = svc.UpdateTask(ctx, "nope", task.WithTitle("x"))
	requireCode(t, err, service.CodeNotFound)

	_, err = svc.DeleteTask(ctx, "nope")
	requireCode(t, err, service.CodeNotFound)

	_, err = svc.SetCompleted(ctx, "nope", true)
	requireCode(t, err, service.CodeNotFound)

	_, err = svc.MoveTask(ctx, "nope", "")
	requireCode(t, err, service.CodeNotFound)
}

// TestTaskService_UpdateTask_Parent тестирует запрет циклов в иерархии
func TestTaskService_UpdateTask_Parent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	root, err := svc.CreateTask(ctx, task.Draft{Title: "Root"})
	require.NoError(t, err)
	child, err := svc.CreateTask(ctx, task.Draft{Title: "Child", ParentID: root.ID})
	require.NoError(t, err)

	_, err = svc.UpdateTask(ctx, root.ID, task.WithParent(child.ID))
	requireCode(t, err, service.CodeValidation)

	_, err = svc.UpdateTask(ctx, root.ID, task.WithParent(root.ID))
	requireCode(t, err, service.CodeValidation)

	updated, err := svc.UpdateTask(ctx, child.ID, task.WithParent(""), task.WithTitle("Orphan"))
	require.NoError(t, err)
	assert.Empty(t, updated.ParentID)
	assert.Equal(t, "Orphan", updated.Title)
}

// TestTaskService_DeleteTask_Cascade тестирует каскадное удаление и одну запись истории
func TestTaskService_DeleteTask_Cascade(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	root, _ := svc.CreateTask(ctx, task.Draft{Title: "Root"})
	child, _ := svc.CreateTask(ctx, task.Draft{Title: "Child", ParentID: root.ID})
	_, _ = svc.CreateTask(ctx, task.Draft{Title: "Grandchild", ParentID: child.ID})
	_, _ = svc.CreateTask(ctx, task.Draft{Title: "Other"})
	entries := len(svc.History(ctx).Entries)

	removed, err := svc.DeleteTask(ctx, root.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 3)
	assert.Equal(t, 1, svc.ListTasks(ctx, pipeline.Query{}).Total)
	assert.Len(t, svc.History(ctx).Entries, entries+1)
}

// TestTaskService_DeleteTask_Blocked тестирует блокировку удаления при живом повторении
func TestTaskService_DeleteTask_Blocked(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	daily, err := svc.CreateTask(ctx, task.Draft{
		Title:           "Standup",
		DueDate:         at("2024-01-10T09:30:00Z"),
		Repeat:          true,
		RepeatFrequency: task.FrequencyDaily,
	})
	require.NoError(t, err)

	res, err := svc.SetCompleted(ctx, daily.ID, true)
	require.NoError(t, err)
	require.NotNil(t, res.Successor)
	assert.Equal(t, daily.ID, res.Successor.PreviousInstanceID)

	_, err = svc.DeleteTask(ctx, daily.ID)
	busErr := requireCode(t, err, service.CodeBlocked)
	assert.Equal(t, []string{res.Successor.ID}, busErr.Details["blocking_ids"])
	assert.True(t, errors.Is(err, store.ErrBlockedBySuccessor))

	_, err = svc.GetTaskByID(ctx, daily.ID)
	assert.NoError(t, err)

	reopened, err := svc.SetCompleted(ctx, daily.ID, false)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Successor.ID}, reopened.Removed)

	_, err = svc.DeleteTask(ctx, daily.ID)
	assert.NoError(t, err)
}

// TestTaskService_BulkDelete тестирует частичное удаление
func TestTaskService_BulkDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	daily, _ := svc.CreateTask(ctx, task.Draft{Title: "Daily", Repeat: true, RepeatFrequency: task.FrequencyDaily})
	plain, _ := svc.CreateTask(ctx, task.Draft{Title: "Plain"})
	res, err := svc.SetCompleted(ctx, daily.ID, true)
	require.NoError(t, err)
	require.NotNil(t, res.Successor)

	bulk, err := svc.BulkDelete(ctx, []string{daily.ID, plain.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{plain.ID}, bulk.Removed)
	assert.Equal(t, []string{daily.ID}, bulk.Blocked)

	_, err = svc.BulkDelete(ctx, nil)
	requireCode(t, err, service.CodeValidation)
}

// TestTaskService_ClearCompleted тестирует удаление только выполненных задач
func TestTaskService_ClearCompleted(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	done, _ := svc.CreateTask(ctx, task.Draft{Title: "Done"})
	_, _ = svc.CreateTask(ctx, task.Draft{Title: "Pending"})
	_, err := svc.SetCompleted(ctx, done.ID, true)
	require.NoError(t, err)

	res, err := svc.ClearCompleted(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{done.ID}, res.Removed)

	page := svc.ListTasks(ctx, pipeline.Query{Tab: pipeline.TabCompleted})
	assert.Equal(t, 0, page.Total)
}

// TestTaskService_ClearAll тестирует обязательное подтверждение
func TestTaskService_ClearAll(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, _ = svc.CreateTask(ctx, task.Draft{Title: "One"})
	_, _ = svc.CreateTask(ctx, task.Draft{Title: "Two"})

	_, err := svc.ClearAll(ctx, false)
	requireCode(t, err, service.CodeConfirmationRequired)
	assert.Equal(t, 2, svc.ListTasks(ctx, pipeline.Query{}).Total)

	n, err := svc.ClearAll(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, svc.ListTasks(ctx, pipeline.Query{}).Total)

	step := svc.Undo(ctx)
	assert.True(t, step.Applied)
	assert.Equal(t, 2, svc.ListTasks(ctx, pipeline.Query{}).Total)
}

// TestTaskService_UndoRedo тестирует отмену и повтор действий
func TestTaskService_UndoRedo(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	step := svc.Undo(ctx)
	assert.False(t, step.Applied)

	first, _ := svc.CreateTask(ctx, task.Draft{Title: "First"})
	_, err := svc.UpdateTask(ctx, first.ID, task.WithTitle("Renamed"))
	require.NoError(t, err)

	step = svc.Undo(ctx)
	assert.True(t, step.Applied)
	assert.Equal(t, "Изменена задача: Renamed", step.Label)
	got, _ := svc.GetTaskByID(ctx, first.ID)
	assert.Equal(t, "First", got.Title)

	step = svc.Redo(ctx)
	assert.True(t, step.Applied)
	got, _ = svc.GetTaskByID(ctx, first.ID)
	assert.Equal(t, "Renamed", got.Title)

	view := svc.History(ctx)
	assert.Len(t, view.Entries, 3)
	assert.Equal(t, 2, view.Cursor)
	assert.True(t, view.CanUndo)
	assert.False(t, view.CanRedo)
}

// TestTaskService_HistoryLimit тестирует ограничение истории из настроек
func TestTaskService_HistoryLimit(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, service.WithHistoryLimit(3))

	for range 5 {
		_, err := svc.CreateTask(ctx, task.Draft{Title: "Task"})
		require.NoError(t, err)
	}

	view := svc.History(ctx)
	assert.Len(t, view.Entries, 3)
	assert.Equal(t, 3, view.Entries[0].Tasks)
}

// TestTaskService_SetCollapsed тестирует, что сворачивание не пишется в историю
func TestTaskService_SetCollapsed(t *testing.T) {
	ctx := context.Background()
	persister := new(MockPersister)
	persister.On("Notify").Return()
	svc, _ := newService(t, service.WithPersister(persister))

	created, _ := svc.CreateTask(ctx, task.Draft{Title: "Parent"})
	entries := len(svc.History(ctx).Entries)

	updated, err := svc.SetCollapsed(ctx, created.ID, true)
	require.NoError(t, err)
	assert.True(t, updated.Collapsed)
	assert.Len(t, svc.History(ctx).Entries, entries)
	persister.AssertNumberOfCalls(t, "Notify", 2)
}

// TestTaskService_MoveTask тестирует ручную сортировку
func TestTaskService_MoveTask(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	a, _ := svc.CreateTask(ctx, task.Draft{Title: "A"})
	b, _ := svc.CreateTask(ctx, task.Draft{Title: "B"})
	c, _ := svc.CreateTask(ctx, task.Draft{Title: "C"})

	moved, err := svc.MoveTask(ctx, c.ID, a.ID)
	require.NoError(t, err)
	assert.Greater(t, moved.Order, a.Order)
	assert.Less(t, moved.Order, b.Order)

	page := svc.ListTasks(ctx, pipeline.Query{Sort: pipeline.SortOrder})
	require.Len(t, page.Rows, 3)
	assert.Equal(t, []string{"A", "C", "B"}, []string{page.Rows[0].Task.Title, page.Rows[1].Task.Title, page.Rows[2].Task.Title})

	_, err = svc.MoveTask(ctx, a.ID, a.ID)
	requireCode(t, err, service.CodeValidation)
}

// TestTaskService_ListTasks тестирует размер страницы из политики
func TestTaskService_ListTasks(t *testing.T) {
	ctx := context.Background()
	policy := pipeline.DefaultPolicy()
	policy.DefaultPageSize = 5
	svc, _ := newService(t, service.WithPolicy(policy))

	for range 12 {
		_, _ = svc.CreateTask(ctx, task.Draft{Title: "Item"})
	}

	page := svc.ListTasks(ctx, pipeline.Query{Page: 3})
	assert.Equal(t, 12, page.Total)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Rows, 2)
}

// TestTaskService_ImportMerge тестирует аддитивный импорт
func TestTaskService_ImportMerge(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, _ = svc.CreateTask(ctx, task.Draft{Title: "Pay rent", Category: task.CategoryPersonal, Priority: task.PriorityLow})

	data := []byte(`[{"title":"pay rent","category":"personal","priority":"high"},{"Name":"Buy milk"}]`)

	plan, err := svc.PreviewImport(ctx, data, service.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.New)
	assert.Equal(t, 1, plan.Updated)
	assert.Equal(t, 1, svc.ListTasks(ctx, pipeline.Query{}).Total)

	res, err := svc.ApplyImport(ctx, data, service.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, importer.StrategyMerge, res.Strategy)
	assert.Len(t, res.Inserted, 1)
	assert.Empty(t, res.Updated)
	assert.Equal(t, 2, svc.ListTasks(ctx, pipeline.Query{}).Total)

	step := svc.Undo(ctx)
	assert.True(t, step.Applied)
	assert.Equal(t, 1, svc.ListTasks(ctx, pipeline.Query{}).Total)
}

// TestTaskService_ImportUpdate тестирует применение изменённых полей на месте
func TestTaskService_ImportUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	rent, _ := svc.CreateTask(ctx, task.Draft{Title: "Pay rent", Category: task.CategoryPersonal, Priority: task.PriorityLow})

	data := []byte(`{"tasks":[{"title":"pay rent","category":"personal","priority":"high"},{"title":"Buy milk"}]}`)
	res, err := svc.ApplyImport(ctx, data, service.ImportOptions{Strategy: importer.StrategyUpdate})
	require.NoError(t, err)
	assert.Equal(t, []string{rent.ID}, res.Updated)
	assert.Len(t, res.Inserted, 1)

	got, _ := svc.GetTaskByID(ctx, rent.ID)
	assert.Equal(t, task.PriorityHigh, got.Priority)
	assert.Equal(t, "Pay rent", got.Title)
}

// TestTaskService_ImportUpdate_Rollback тестирует откат всего пакета при ошибке
func TestTaskService_ImportUpdate_Rollback(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	first, _ := svc.CreateTask(ctx, task.Draft{Title: "First", Priority: task.PriorityLow})
	_, _ = svc.CreateTask(ctx, task.Draft{
		Title:    "Second",
		DueDate:  at("2024-01-20T10:00:00Z"),
		Reminder: at("2024-01-19T10:00:00Z"),
	})
	entries := len(svc.History(ctx).Entries)

	data := []byte(`[{"title":"First","priority":"urgent"},{"title":"Second","dueDate":"2024-01-01T00:00:00Z","reminder":"2024-01-05T00:00:00Z"}]`)
	_, err := svc.ApplyImport(ctx, data, service.ImportOptions{Strategy: importer.StrategyUpdate})
	requireCode(t, err, service.CodeImportFailed)

	got, _ := svc.GetTaskByID(ctx, first.ID)
	assert.Equal(t, task.PriorityLow, got.Priority)
	assert.Len(t, svc.History(ctx).Entries, entries)
}

// TestTaskService_ImportUpdate_Reschedule тестирует перенос срока раньше существующего напоминания
func TestTaskService_ImportUpdate_Reschedule(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	dentist, _ := svc.CreateTask(ctx, task.Draft{
		Title:    "Dentist",
		DueDate:  at("2024-01-20T10:00:00Z"),
		Reminder: at("2024-01-19T10:00:00Z"),
	})

	data := []byte(`[{"title":"Dentist","dueDate":"2024-01-01T10:00:00Z"}]`)
	res, err := svc.ApplyImport(ctx, data, service.ImportOptions{Strategy: importer.StrategyUpdate})
	require.NoError(t, err)
	assert.Equal(t, []string{dentist.ID}, res.Updated)

	got, _ := svc.GetTaskByID(ctx, dentist.ID)
	require.NotNil(t, got.DueDate)
	require.NotNil(t, got.Reminder)
	assert.True(t, got.DueDate.Equal(*at("2024-01-01T10:00:00Z")))
	assert.True(t, got.Reminder.Equal(*at("2023-12-31T10:00:00Z")))
}

// TestTaskService_ImportDefaults тестирует категорию и приоритет из настроек для импортированных задач
func TestTaskService_ImportDefaults(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	settings := svc.GetSettings(ctx)
	settings.DefaultCategory = task.CategoryOffice
	settings.DefaultPriority = task.PriorityHigh
	_, err := svc.UpdateSettings(ctx, settings)
	require.NoError(t, err)

	data := []byte(`[{"title":"Imported"},{"title":"Explicit","category":"misc","priority":"low"}]`)
	res, err := svc.ApplyImport(ctx, data, service.ImportOptions{})
	require.NoError(t, err)
	require.Len(t, res.Inserted, 2)

	imported, _ := svc.GetTaskByID(ctx, res.Inserted[0])
	assert.Equal(t, task.CategoryOffice, imported.Category)
	assert.Equal(t, task.PriorityHigh, imported.Priority)

	explicit, _ := svc.GetTaskByID(ctx, res.Inserted[1])
	assert.Equal(t, task.CategoryMisc, explicit.Category)
	assert.Equal(t, task.PriorityLow, explicit.Priority)

	overwrite, err := svc.ApplyImport(ctx, []byte(`[{"title":"Fresh"}]`), service.ImportOptions{Strategy: importer.StrategyOverwrite, Confirm: true})
	require.NoError(t, err)
	fresh, _ := svc.GetTaskByID(ctx, overwrite.Inserted[0])
	assert.Equal(t, task.CategoryOffice, fresh.Category)
	assert.Equal(t, task.PriorityHigh, fresh.Priority)
}

// TestTaskService_PreviewImport_DefaultMatch тестирует поиск дубликатов по полям по умолчанию
func TestTaskService_PreviewImport_DefaultMatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	_, _ = svc.CreateTask(ctx, task.Draft{Title: "Pay rent", Category: task.CategoryPersonal})

	data := []byte(`[{"title":"pay rent","category":"personal"}]`)

	plan, err := svc.PreviewImport(ctx, data, service.ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.Duplicates)
	assert.Equal(t, 0, plan.New)

	plan, err = svc.PreviewImport(ctx, data, service.ImportOptions{Match: []importer.Field{}})
	require.NoError(t, err)
	assert.Equal(t, 1, plan.New)
}

// TestTaskService_ImportOverwrite тестирует замену коллекции с подтверждением
func TestTaskService_ImportOverwrite(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)
	old, _ := svc.CreateTask(ctx, task.Draft{Title: "Old"})

	data := []byte("title,priority\nOld,high\nFresh,low\n")

	_, err := svc.ApplyImport(ctx, data, service.ImportOptions{Strategy: importer.StrategyOverwrite})
	requireCode(t, err, service.CodeConfirmationRequired)

	res, err := svc.ApplyImport(ctx, data, service.ImportOptions{Strategy: importer.StrategyOverwrite, Confirm: true})
	require.NoError(t, err)
	assert.True(t, res.Replaced)
	assert.Len(t, res.Inserted, 2)

	_, err = svc.GetTaskByID(ctx, old.ID)
	requireCode(t, err, service.CodeNotFound)
	assert.Equal(t, 2, svc.ListTasks(ctx, pipeline.Query{}).Total)
}

// TestTaskService_ImportErrors тестирует ошибки разбора
func TestTaskService_ImportErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	tests := []struct {
		name string
		data string
	}{
		{name: "empty", data: "   "},
		{name: "malformed json", data: `[{"title":`},
		{name: "no titles", data: `[{"priority":"high"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ApplyImport(ctx, []byte(tt.data), service.ImportOptions{})
			requireCode(t, err, service.CodeImportFailed)
		})
	}
	assert.Equal(t, 0, svc.ListTasks(ctx, pipeline.Query{}).Total)
}

// TestTaskService_SnapshotLoad тестирует запись снимка и загрузку в новый сервис
func TestTaskService_SnapshotLoad(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	parent, _ := svc.CreateTask(ctx, task.Draft{Title: "Parent", Tags: []string{"home"}})
	_, _ = svc.CreateTask(ctx, task.Draft{Title: "Child", ParentID: parent.ID})
	settings := svc.GetSettings(ctx)
	settings.Theme = "dark"
	_, err := svc.UpdateSettings(ctx, settings)
	require.NoError(t, err)

	snapshot, err := svc.Snapshot()
	require.NoError(t, err)
	for name, records := range snapshot {
		require.NoError(t, repository.ReplaceAll(ctx, repo, name, records))
	}

	loaded := service.NewTaskService(repo, service.WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, loaded.Load(ctx))

	page := loaded.ListTasks(ctx, pipeline.Query{})
	require.Len(t, page.Rows, 2)
	assert.Equal(t, "Parent", page.Rows[0].Task.Title)
	assert.Equal(t, 1, page.Rows[1].Depth)
	assert.Equal(t, []string{"home"}, page.Rows[0].Task.Tags)
	assert.Equal(t, "dark", loaded.GetSettings(ctx).Theme)
	assert.False(t, loaded.History(ctx).CanUndo)
}

// TestTaskService_UpdateSettings тестирует проверку настроек
func TestTaskService_UpdateSettings(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t)

	tests := []struct {
		name   string
		modify func(*task.Settings)
		field  string
	}{
		{name: "priority", modify: func(s *task.Settings) { s.DefaultPriority = "asap" }, field: "defaultPriority"},
		{name: "reminder", modify: func(s *task.Settings) { s.DefaultReminderHours = -1 }, field: "defaultReminderHours"},
		{name: "pin", modify: func(s *task.Settings) { s.PinEnabled = true; s.Pin = " " }, field: "pin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := svc.GetSettings(ctx)
			tt.modify(&settings)
			_, err := svc.UpdateSettings(ctx, settings)
			busErr := requireCode(t, err, service.CodeValidation)
			assert.Equal(t, tt.field, busErr.Details["field"])
		})
	}
}

// TestTaskService_Flush тестирует ошибку записи
func TestTaskService_Flush(t *testing.T) {
	ctx := context.Background()
	persister := new(MockPersister)
	persister.On("Flush", mock.Anything).Return(errors.New("disk full")).Once()
	persister.On("Flush", mock.Anything).Return(nil).Once()
	svc, _ := newService(t, service.WithPersister(persister))

	requireCode(t, svc.Flush(ctx), service.CodePersistence)
	assert.NoError(t, svc.Flush(ctx))
	persister.AssertExpectations(t)
}

// TestTaskService_HealthCheck тестирует проверку хранилища
func TestTaskService_HealthCheck(t *testing.T) {
	ctx := context.Background()
	svc, repo := newService(t)

	assert.NoError(t, svc.HealthCheck(ctx))
	require.NoError(t, repo.Close())
	requireCode(t, svc.HealthCheck(ctx), service.CodePersistence)
}
