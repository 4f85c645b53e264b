package service

import (
	"time"

	"taskManager/internal/history"
	"taskManager/internal/pipeline"
)

// Option настраивает сервис при создании
type Option func(*TaskService)

func WithPolicy(policy pipeline.Policy) Option {
	return func(s *TaskService) {
		s.policy = policy
	}
}

func WithDuplicateThreshold(threshold float64) Option {
	return func(s *TaskService) {
		if threshold > 0 && threshold <= 1 {
			s.threshold = threshold
		}
	}
}

func WithHistoryLimit(limit int) Option {
	return func(s *TaskService) {
		s.historyLimit = limit
	}
}

// WithClock подменяет источник времени для задач, истории и выборки
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

func WithPersister(p Persister) Option {
	return func(s *TaskService) {
		s.persister = p
	}
}

func defaultOptions() []Option {
	return []Option{
		WithPolicy(pipeline.DefaultPolicy()),
		WithHistoryLimit(history.DefaultLimit),
	}
}
