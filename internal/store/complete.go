package store

import (
	"taskManager/internal/models/task"
)

// Completion describes the side effects of a completion toggle.
type Completion struct {
	Task      task.Task
	Changed   bool
	Successor *task.Task
	Removed   []string
}

// SetCompleted toggles completion. Completing a recurring task appends its
// successor; reopening it removes that successor while it is still pending.
// A successor that is itself completed cannot be removed and blocks reopening.
func (s *TaskStore) SetCompleted(id string, completed bool) (Completion, bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return Completion{}, false, nil
	}
	if t.Completed == completed {
		return Completion{Task: t.Clone()}, true, nil
	}

	if completed {
		now := s.now()
		t.Completed = true
		t.CompletedAt = &now

		res := Completion{Changed: true}
		if t.IsRecurring() && s.successorLocked(id) == nil {
			if next := s.spawnSuccessorLocked(t); next != nil {
				c := next.Clone()
				res.Successor = &c
			}
		}
		res.Task = t.Clone()
		return res, true, nil
	}

	var removed []string
	if succ := s.successorLocked(id); succ != nil {
		if succ.Completed {
			return Completion{}, true, &BlockedError{IDs: []string{succ.ID}}
		}
		subtree := s.subtreeLocked(succ.ID)
		if blockers := s.blockersLocked(subtree, nil); len(blockers) > 0 {
			return Completion{}, true, &BlockedError{IDs: blockers}
		}
		removed = s.removeLocked(subtree)
	}

	t.Completed = false
	t.CompletedAt = nil
	return Completion{Task: t.Clone(), Changed: true, Removed: removed}, true, nil
}
