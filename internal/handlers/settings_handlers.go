package handlers

import (
	"net/http"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"
)

func (s *TaskHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	responseWithJSON(w, http.StatusOK, toPayload("settings", s.TaskService.GetSettings(r.Context())))
}

func (s *TaskHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request task.Settings
	if !decodeJSON(w, r, &request) {
		return
	}

	updated, err := s.TaskService.UpdateSettings(r.Context(), request)
	if err != nil {
		serviceError(w, r, err, "update_settings")
		return
	}

	responseWithJSON(w, http.StatusOK, toPayload("settings", updated))
}
