package handlers

import (
	"net/http"
	"strings"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService Service
	now         func() time.Time
}

func NewTaskHandler(taskService Service) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
		now:         time.Now,
	}
}

// taskID достаёт id из пути; при ошибке ответ уже отправлен
func taskID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		logger.Warn("HTTP: Неверное значение id",
			zap.String("error", "empty id"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "id не может быть пустым")
		return "", false
	}
	return id, true
}

func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	query, err := parseListQuery(r.URL.Query())
	if err != nil {
		logger.Warn("HTTP: Ошибка получения параметра",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page := s.TaskService.ListTasks(r.Context(), query)

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("total", page.Total),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("page", dto.FromPage(page, s.now())))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if strings.TrimSpace(request.Title) == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "title"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "название не может быть пустым")
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), request.ToDraft())
	if err != nil {
		serviceError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created, s.now())))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	found, err := s.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		serviceError(w, r, err, "get_task")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", found.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(found, s.now())))
}

func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, request.ToOptions()...)
	if err != nil {
		serviceError(w, r, err, "update_task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated, s.now())))
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	removed, err := s.TaskService.DeleteTask(r.Context(), id)
	if err != nil {
		serviceError(w, r, err, "delete_task")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id),
		zap.Int("removed", len(removed)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("removed", removed))
}

func (s *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	s.setCompleted(w, r, true)
}

func (s *TaskHandler) UncompleteTask(w http.ResponseWriter, r *http.Request) {
	s.setCompleted(w, r, false)
}

func (s *TaskHandler) setCompleted(w http.ResponseWriter, r *http.Request, completed bool) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	res, err := s.TaskService.SetCompleted(r.Context(), id, completed)
	if err != nil {
		serviceError(w, r, err, "set_completed")
		return
	}

	logger.Info("HTTP_OUT: Статус выполнения изменён",
		zap.String("task_id", id),
		zap.Bool("completed", completed),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("result", dto.FromCompletion(res, s.now())))
}

func (s *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var request dto.MoveTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	moved, err := s.TaskService.MoveTask(r.Context(), id, request.After)
	if err != nil {
		serviceError(w, r, err, "move_task")
		return
	}

	logger.Info("HTTP_OUT: Задача перемещена",
		zap.String("task_id", id),
		zap.Float64("order", moved.Order),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(moved, s.now())))
}

func (s *TaskHandler) CollapseTask(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := taskID(w, r)
	if !ok {
		return
	}

	var request dto.CollapseTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := s.TaskService.SetCollapsed(r.Context(), id, request.Collapsed)
	if err != nil {
		serviceError(w, r, err, "collapse_task")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated, s.now())))
}

func (s *TaskHandler) BulkDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.BulkDeleteRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	res, err := s.TaskService.BulkDelete(r.Context(), request.IDs)
	if err != nil {
		serviceError(w, r, err, "bulk_delete")
		return
	}

	logger.Info("HTTP_OUT: Пакетное удаление",
		zap.Int("removed", len(res.Removed)),
		zap.Int("blocked", len(res.Blocked)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("result", dto.FromBulk(res)))
}

func (s *TaskHandler) ClearCompleted(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	res, err := s.TaskService.ClearCompleted(r.Context())
	if err != nil {
		serviceError(w, r, err, "clear_completed")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("result", dto.FromBulk(res)))
}

func (s *TaskHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	removed, err := s.TaskService.ClearAll(r.Context(), queryBool(r.URL.Query(), "confirm"))
	if err != nil {
		serviceError(w, r, err, "clear_all")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("removed", removed))
}

func (s *TaskHandler) Sync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if err := s.TaskService.Flush(r.Context()); err != nil {
		serviceError(w, r, err, "sync")
		return
	}

	logger.Info("HTTP_OUT: Состояние записано",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, toPayload("status", "synced"))
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Warn("HTTP: Хранилище недоступно", zap.Error(err))

		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", "task-manager"),
			toPayload("error", err.Error()))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", "task-manager"),
		toPayload("time", s.now().Format(time.RFC3339)))
}
