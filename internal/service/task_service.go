package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"taskManager/internal/history"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"
	"taskManager/internal/pipeline"
	"taskManager/internal/repository"
	"taskManager/internal/store"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики
// каждое намерение пользователя выполняется целиком под одной блокировкой
// и записывается в историю ровно один раз

const initialLabel = "Начальное состояние"

type TaskService struct {
	mtx          sync.Mutex
	repo         repository.Repository
	store        *store.TaskStore
	history      *history.Manager
	persister    Persister
	settings     task.Settings
	policy       pipeline.Policy
	threshold    float64
	historyLimit int
	now          func() time.Time
}

func NewTaskService(repo repository.Repository, options ...Option) *TaskService {
	s := &TaskService{
		repo:      repo,
		settings:  task.DefaultSettings(),
		threshold: 0.5,
		now:       time.Now,
	}
	for _, opt := range append(defaultOptions(), options...) {
		opt(s)
	}

	s.store = store.NewTaskStore(store.WithClock(s.now))
	s.history = history.New(s.store, s.historyLimit).WithClock(s.now)
	s.history.Reset(initialLabel)
	return s
}

// SetPersister подключает фоновую запись после создания сервиса
func (s *TaskService) SetPersister(p Persister) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.persister = p
}

// Load читает задачи и настройки из хранилища и начинает историю заново
func (s *TaskService) Load(ctx context.Context) error {
	start := time.Now()

	raw, err := s.repo.GetAll(ctx, repository.StoreTasks)
	if err != nil {
		logger.Error("Service: Не удалось прочитать задачи", err)
		return NewPersistenceFailure(fmt.Errorf("чтение задач: %w", err))
	}

	tasks := make([]task.Task, 0, len(raw))
	for _, data := range raw {
		var t task.Task
		if err := json.Unmarshal(data, &t); err != nil {
			logger.Warn("Service: Пропущена повреждённая запись задачи", zap.Error(err))
			continue
		}
		tasks = append(tasks, t)
	}

	settings := task.DefaultSettings()
	data, err := s.repo.Get(ctx, repository.StoreSettings, task.SettingsKey)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		logger.Info("Service: Настройки не найдены, используются значения по умолчанию")
	case err != nil:
		logger.Error("Service: Не удалось прочитать настройки", err)
		return NewPersistenceFailure(fmt.Errorf("чтение настроек: %w", err))
	default:
		if err := json.Unmarshal(data, &settings); err != nil {
			logger.Warn("Service: Повреждённые настройки заменены значениями по умолчанию", zap.Error(err))
			settings = task.DefaultSettings()
		}
		settings.ID = task.SettingsKey
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.store.Restore(tasks)
	s.settings = settings
	s.history.Reset(initialLabel)

	logger.Info("Service: Состояние загружено",
		zap.Int("tasks", s.store.Len()),
		zap.Duration("ms", time.Since(start)))
	return nil
}

// Snapshot отдаёт полное состояние для записи в хранилище
func (s *TaskService) Snapshot() (map[string][]repository.Record, error) {
	s.mtx.Lock()
	tasks := s.store.All()
	settings := s.settings
	s.mtx.Unlock()

	records := make([]repository.Record, 0, len(tasks))
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("сериализация задачи %s: %w", t.ID, err)
		}
		records = append(records, repository.Record{Key: t.ID, Value: data})
	}

	settingsData, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("сериализация настроек: %w", err)
	}

	return map[string][]repository.Record{
		repository.StoreTasks:    records,
		repository.StoreSettings: {{Key: task.SettingsKey, Value: settingsData}},
	}, nil
}

func (s *TaskService) CreateTask(ctx context.Context, draft task.Draft) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if draft.Category == "" {
		draft.Category = s.settings.DefaultCategory
	}
	if draft.Priority == "" {
		draft.Priority = s.settings.DefaultPriority
	}
	if draft.DueDate != nil && draft.Reminder == nil && s.settings.DefaultReminderHours > 0 {
		reminder := draft.DueDate.Add(-time.Duration(s.settings.DefaultReminderHours) * time.Hour)
		draft.Reminder = &reminder
	}
	if draft.ParentID != "" {
		if _, ok := s.store.Get(draft.ParentID); !ok {
			return task.Task{}, NewValidationError("parentId", "родительская задача не найдена")
		}
	}

	created, err := s.store.Create(draft)
	if err != nil {
		logger.Warn("Service: Задача не создана", zap.Error(err))
		return task.Task{}, fromDomain(err)
	}

	s.commit("Добавлена задача: " + created.Title)
	logger.Info("Service: Задача создана", zap.String("task_id", created.ID))
	return created, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id string) (task.Task, error) {
	t, ok := s.store.Get(id)
	if !ok {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return task.Task{}, NewNotFound("задача", id)
	}
	return t, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id string, options ...task.PatchOption) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	current, ok := s.store.Get(id)
	if !ok {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return task.Task{}, NewNotFound("задача", id)
	}

	patch := task.BuildPatch(options...)
	if patch.Empty() {
		return current, nil
	}
	if patch.ParentID != nil && *patch.ParentID != "" {
		if err := s.checkParent(id, *patch.ParentID); err != nil {
			return task.Task{}, err
		}
	}

	updated, _, err := s.store.Update(id, patch)
	if err != nil {
		logger.Warn("Service: Задача не обновлена", zap.Error(err), zap.String("task_id", id))
		return task.Task{}, fromDomain(err)
	}

	s.commit("Изменена задача: " + updated.Title)
	logger.Info("Service: Задача обновлена", zap.String("task_id", id))
	return updated, nil
}

// checkParent не даёт задаче стать родителем самой себя или своего предка
func (s *TaskService) checkParent(id, parentID string) error {
	if parentID == id {
		return NewValidationError("parentId", "задача не может быть родителем самой себя")
	}
	if _, ok := s.store.Get(parentID); !ok {
		return NewValidationError("parentId", "родительская задача не найдена")
	}
	for _, d := range s.store.DescendantsOf(id) {
		if d.ID == parentID {
			return NewValidationError("parentId", "родитель не может быть потомком задачи")
		}
	}
	return nil
}

// DeleteTask удаляет задачу вместе со всеми потомками
func (s *TaskService) DeleteTask(ctx context.Context, id string) ([]string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	current, ok := s.store.Get(id)
	if !ok {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return nil, NewNotFound("задача", id)
	}

	removed, err := s.store.Delete(id)
	if err != nil {
		logger.Warn("Service: Удаление заблокировано", zap.Error(err), zap.String("task_id", id))
		return nil, fromDomain(err)
	}

	label := "Удалена задача: " + current.Title
	if len(removed) > 1 {
		label = fmt.Sprintf("%s (и подзадач: %d)", label, len(removed)-1)
	}
	s.commit(label)
	logger.Info("Service: Задача удалена",
		zap.String("task_id", id),
		zap.Int("removed", len(removed)))
	return removed, nil
}

// BulkDelete удаляет всё, что можно, и отдельно сообщает о заблокированных задачах
func (s *TaskService) BulkDelete(ctx context.Context, ids []string) (store.BulkResult, error) {
	if len(ids) == 0 {
		return store.BulkResult{}, NewValidationError("ids", "список пуст")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	return s.deleteManyLocked(ids, fmt.Sprintf("Удалено задач: %d", len(ids))), nil
}

// ClearCompleted удаляет все выполненные задачи по тем же правилам, что и BulkDelete
func (s *TaskService) ClearCompleted(ctx context.Context) (store.BulkResult, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var ids []string
	for _, t := range s.store.All() {
		if t.Completed {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) == 0 {
		return store.BulkResult{}, nil
	}
	return s.deleteManyLocked(ids, "Очищены выполненные задачи"), nil
}

func (s *TaskService) deleteManyLocked(ids []string, label string) store.BulkResult {
	res := s.store.DeleteMany(ids)
	if len(res.Removed) > 0 {
		s.commit(label)
	}
	if len(res.Blocked) > 0 {
		logger.Warn("Service: Часть задач не удалена из-за повторений",
			zap.Strings("blocked", res.Blocked))
	}
	logger.Info("Service: Пакетное удаление",
		zap.Int("removed", len(res.Removed)),
		zap.Int("blocked", len(res.Blocked)))
	return res
}

// ClearAll удаляет всю коллекцию только с подтверждением
func (s *TaskService) ClearAll(ctx context.Context, confirm bool) (int, error) {
	if !confirm {
		return 0, NewConfirmationRequired("clear_all")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	n := s.store.Len()
	s.store.Restore(nil)
	s.commit("Удалены все задачи")
	logger.Warn("Service: Коллекция очищена", zap.Int("removed", n))
	return n, nil
}

// SetCompleted переключает выполнение; для повторяющихся задач порождает или убирает следующее повторение
func (s *TaskService) SetCompleted(ctx context.Context, id string, completed bool) (store.Completion, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	res, ok, err := s.store.SetCompleted(id, completed)
	if !ok {
		logger.Info("Service: Задача не найдена", zap.String("target_id", id))
		return store.Completion{}, NewNotFound("задача", id)
	}
	if err != nil {
		logger.Warn("Service: Возобновление заблокировано", zap.Error(err), zap.String("task_id", id))
		return store.Completion{}, fromDomain(err)
	}
	if !res.Changed {
		return res, nil
	}

	label := "Выполнена задача: " + res.Task.Title
	if !completed {
		label = "Возобновлена задача: " + res.Task.Title
	}
	s.commit(label)

	fields := []zap.Field{zap.String("task_id", id), zap.Bool("completed", completed)}
	if res.Successor != nil {
		fields = append(fields, zap.String("successor_id", res.Successor.ID))
	}
	logger.Info("Service: Статус выполнения изменён", fields...)
	return res, nil
}

// MoveTask ставит задачу сразу после afterID или первой, если afterID пуст
func (s *TaskService) MoveTask(ctx context.Context, id, afterID string) (task.Task, error) {
	if id == afterID {
		return task.Task{}, NewValidationError("after", "задача не может следовать за собой")
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.store.Get(id); !ok {
		return task.Task{}, NewNotFound("задача", id)
	}
	if afterID != "" {
		if _, ok := s.store.Get(afterID); !ok {
			return task.Task{}, NewNotFound("задача", afterID)
		}
	}

	moved, ok := s.store.Move(id, afterID)
	if !ok {
		return task.Task{}, NewNotFound("задача", id)
	}
	s.commit("Перемещена задача: " + moved.Title)
	return moved, nil
}

// SetCollapsed меняет только признак отображения и не попадает в историю
func (s *TaskService) SetCollapsed(ctx context.Context, id string, collapsed bool) (task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	updated, ok, err := s.store.Update(id, task.BuildPatch(task.WithCollapsed(collapsed)))
	if !ok {
		return task.Task{}, NewNotFound("задача", id)
	}
	if err != nil {
		return task.Task{}, fromDomain(err)
	}
	s.notify()
	return updated, nil
}

// ListTasks строит страницу выборки на текущем состоянии, ничего не кэшируя
func (s *TaskService) ListTasks(ctx context.Context, query pipeline.Query) pipeline.Page {
	s.mtx.Lock()
	tasks := s.store.All()
	s.mtx.Unlock()

	return pipeline.Run(tasks, query, s.now(), s.policy)
}

// Flush немедленно записывает состояние и возвращает ошибку хранилища
func (s *TaskService) Flush(ctx context.Context) error {
	s.mtx.Lock()
	p := s.persister
	s.mtx.Unlock()

	if p == nil {
		return nil
	}
	if err := p.Flush(ctx); err != nil {
		return NewPersistenceFailure(err)
	}
	return nil
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return NewPersistenceFailure(err)
	}
	return nil
}

// commit фиксирует намерение в истории и планирует запись
func (s *TaskService) commit(label string) {
	s.history.Record(label)
	s.notify()
}

func (s *TaskService) notify() {
	if s.persister != nil {
		s.persister.Notify()
	}
}

func taskIDs(tasks []task.Task) []string {
	ids := make([]string, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return ids
}
