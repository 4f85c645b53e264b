package service

import (
	"errors"
	"fmt"

	"taskManager/internal/importer"
	"taskManager/internal/store"
)

const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeBlocked              = "BLOCKED_BY_RECURRENCE_SUCCESSOR"
	CodeNotFound             = "NOT_FOUND"
	CodePersistence          = "PERSISTENCE_FAILURE"
	CodeImportFailed         = "IMPORT_FAILED"
	CodeConfirmationRequired = "CONFIRMATION_REQUIRED"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource string, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewBlocked(ids []string) *BusinessError {
	return &BusinessError{
		Code:    CodeBlocked,
		Message: "Удаление запрещено: существует следующее повторение задачи",
		Details: map[string]any{
			"blocking_ids": ids,
			"count":        len(ids),
		},
		Err: store.ErrBlockedBySuccessor,
	}
}

func NewPersistenceFailure(err error) *BusinessError {
	return &BusinessError{
		Code:    CodePersistence,
		Message: "Хранилище отклонило запись",
		Details: map[string]any{},
		Err:     err,
	}
}

func NewConfirmationRequired(action string) *BusinessError {
	return &BusinessError{
		Code:    CodeConfirmationRequired,
		Message: fmt.Sprintf("Операция '%s' необратимо заменяет задачи и требует подтверждения", action),
		Details: map[string]any{
			"action": action,
		},
	}
}

// fromDomain переводит ошибки пакетов store и importer в BusinessError
func fromDomain(err error) error {
	if err == nil {
		return nil
	}

	var busErr *BusinessError
	if errors.As(err, &busErr) {
		return busErr
	}

	var validationErr *store.ValidationError
	if errors.As(err, &validationErr) {
		e := NewValidationError(validationErr.Field, validationErr.Reason)
		e.Err = err
		return e
	}

	var blockedErr *store.BlockedError
	if errors.As(err, &blockedErr) {
		return NewBlocked(blockedErr.IDs)
	}

	switch {
	case errors.Is(err, importer.ErrEmpty),
		errors.Is(err, importer.ErrMalformed),
		errors.Is(err, importer.ErrUnsupported):
		return &BusinessError{
			Code:    CodeImportFailed,
			Message: "Импорт отменён",
			Details: map[string]any{},
			Err:     err,
		}
	}
	return err
}
