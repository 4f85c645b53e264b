package service

import (
	"context"
	"time"

	"taskManager/internal/logger"

	"go.uber.org/zap"
)

type HistoryEntry struct {
	Label string    `json:"label"`
	At    time.Time `json:"at"`
	Tasks int       `json:"tasks"`
}

type HistoryView struct {
	Entries []HistoryEntry `json:"entries"`
	Cursor  int            `json:"cursor"`
	CanUndo bool           `json:"canUndo"`
	CanRedo bool           `json:"canRedo"`
}

// HistoryStep - результат undo/redo; Applied=false, если двигаться некуда
type HistoryStep struct {
	Label   string `json:"label"`
	Applied bool   `json:"applied"`
}

func (s *TaskService) Undo(ctx context.Context) HistoryStep {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	label, ok := s.history.Undo()
	if ok {
		s.notify()
		logger.Info("Service: Отмена действия", zap.String("label", label))
	}
	return HistoryStep{Label: label, Applied: ok}
}

func (s *TaskService) Redo(ctx context.Context) HistoryStep {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	label, ok := s.history.Redo()
	if ok {
		s.notify()
		logger.Info("Service: Повтор действия", zap.String("label", label))
	}
	return HistoryStep{Label: label, Applied: ok}
}

func (s *TaskService) History(ctx context.Context) HistoryView {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	entries := s.history.Entries()
	view := HistoryView{
		Entries: make([]HistoryEntry, 0, len(entries)),
		Cursor:  s.history.Cursor(),
		CanUndo: s.history.CanUndo(),
		CanRedo: s.history.CanRedo(),
	}
	for _, e := range entries {
		view.Entries = append(view.Entries, HistoryEntry{Label: e.Label, At: e.At, Tasks: e.Len()})
	}
	return view
}
