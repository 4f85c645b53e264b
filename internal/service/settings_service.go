package service

import (
	"context"
	"strings"

	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"go.uber.org/zap"
)

func (s *TaskService) GetSettings(ctx context.Context) task.Settings {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.settings
}

// UpdateSettings заменяет запись настроек целиком; в историю не попадает
func (s *TaskService) UpdateSettings(ctx context.Context, settings task.Settings) (task.Settings, error) {
	settings.ID = task.SettingsKey
	settings.DefaultCategory = task.NormalizeCategory(string(settings.DefaultCategory))
	if settings.DefaultCategory == "" {
		settings.DefaultCategory = task.CategoryPersonal
	}
	priority, ok := task.ParsePriority(string(settings.DefaultPriority))
	if !ok {
		return task.Settings{}, NewValidationError("defaultPriority", "неизвестный приоритет")
	}
	settings.DefaultPriority = priority
	if settings.DefaultReminderHours < 0 {
		return task.Settings{}, NewValidationError("defaultReminderHours", "не может быть отрицательным")
	}
	settings.Pin = strings.TrimSpace(settings.Pin)
	if settings.PinEnabled && settings.Pin == "" {
		return task.Settings{}, NewValidationError("pin", "обязателен, когда PIN включён")
	}
	if settings.Theme == "" {
		settings.Theme = task.DefaultSettings().Theme
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.settings = settings
	s.notify()
	logger.Info("Service: Настройки обновлены",
		zap.String("default_category", string(settings.DefaultCategory)),
		zap.String("default_priority", string(settings.DefaultPriority)))
	return settings, nil
}
