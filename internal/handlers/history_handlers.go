package handlers

import (
	"net/http"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

func (s *TaskHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	responseWithJSON(w, http.StatusOK, toPayload("history", s.TaskService.History(r.Context())))
}

func (s *TaskHandler) Undo(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	step := s.TaskService.Undo(r.Context())
	logger.Info("HTTP_OUT: Отмена", zap.Bool("applied", step.Applied), zap.String("label", step.Label))

	responseWithJSON(w, http.StatusOK, toPayload("step", step))
}

func (s *TaskHandler) Redo(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	step := s.TaskService.Redo(r.Context())
	logger.Info("HTTP_OUT: Повтор", zap.Bool("applied", step.Applied), zap.String("label", step.Label))

	responseWithJSON(w, http.StatusOK, toPayload("step", step))
}
