package handlers

import (
	"errors"
	"net/http"

	"taskManager/internal/logger"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

func handleBusinessError(w http.ResponseWriter, err error, operation string) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}
	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("operation", operation),
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeBlocked:
		return http.StatusConflict
	case service.CodePersistence:
		return http.StatusServiceUnavailable
	case service.CodeImportFailed:
		return http.StatusUnprocessableEntity
	case service.CodeConfirmationRequired:
		return http.StatusPreconditionRequired
	default:
		return http.StatusBadRequest
	}
}

// serviceError отвечает бизнес-ошибкой или 500 для всего остального
func serviceError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if handleBusinessError(w, err, operation) {
		return
	}
	logger.Error("HTTP: Ошибка в Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))

	responseWithError(w, http.StatusInternalServerError, err.Error())
}
