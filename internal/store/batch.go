package store

import (
	"cmp"
	"slices"
	"strings"

	"taskManager/internal/models/task"
)

// AppendBatch inserts tasks as fresh records: new ids, new createdAt and
// append-to-end order. The incoming ID fields are treated as source ids so
// that parent and lineage links inside the batch follow the new ids. Links to
// tasks outside the batch are kept only when the target exists.
// Entries without a title are skipped.
func (s *TaskStore) AppendBatch(batch []task.Task) []task.Task {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.appendBatchLocked(batch)
}

// ReplaceAll discards the collection and rebuilds it from batch.
func (s *TaskStore) ReplaceAll(batch []task.Task) []task.Task {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.resetLocked()
	return s.appendBatchLocked(batch)
}

func (s *TaskStore) appendBatchLocked(batch []task.Task) []task.Task {
	now := s.now()
	existing := make(map[string]bool, len(s.ids))
	for _, id := range s.ids {
		existing[id] = true
	}
	mapping := make(map[string]string, len(batch))
	fresh := make([]*task.Task, 0, len(batch))

	for _, in := range batch {
		t := in.Clone()
		t.Title = strings.TrimSpace(t.Title)
		if t.Title == "" {
			continue
		}
		sourceID := t.ID
		applyDefaults(&t)
		if !t.Priority.Valid() {
			t.Priority = task.PriorityMedium
		}
		if t.Repeat && !t.RepeatFrequency.Valid() {
			t.Repeat = false
			t.RepeatFrequency = ""
		}
		t.CreatedAt = now
		if t.Completed && t.CompletedAt == nil {
			t.CompletedAt = &now
		}
		if !t.Completed {
			t.CompletedAt = nil
		}
		s.appendLocked(&t)
		if sourceID != "" {
			if _, seen := mapping[sourceID]; !seen {
				mapping[sourceID] = t.ID
			}
		}
		fresh = append(fresh, &t)
	}

	out := make([]task.Task, 0, len(fresh))
	for _, t := range fresh {
		t.ParentID = relink(t.ParentID, mapping, existing)
		t.PreviousInstanceID = relink(t.PreviousInstanceID, mapping, existing)
		if t.ParentID == t.ID {
			t.ParentID = ""
		}
		out = append(out, t.Clone())
	}
	return out
}

func relink(ref string, mapping map[string]string, existing map[string]bool) string {
	if id, ok := mapping[ref]; ok {
		return id
	}
	if existing[ref] {
		return ref
	}
	return ""
}

// Move places id directly after afterID in manual order, or first when afterID
// is empty. The new order is the midpoint between the neighbours, so repeated
// moves produce fractional orders. Equal neighbours are spread out first.
func (s *TaskStore) Move(id, afterID string) (task.Task, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok || id == afterID {
		return task.Task{}, false
	}

	sorted := s.byOrderLocked(id)
	at := -1
	if afterID != "" {
		at = slices.IndexFunc(sorted, func(o *task.Task) bool { return o.ID == afterID })
		if at < 0 {
			return task.Task{}, false
		}
	}

	hasPrev, hasNext := at >= 0, at+1 < len(sorted)
	if hasPrev && hasNext && sorted[at].Order >= sorted[at+1].Order {
		for i, o := range sorted {
			o.Order = float64(i + 1)
		}
	}

	switch {
	case hasPrev && hasNext:
		t.Order = (sorted[at].Order + sorted[at+1].Order) / 2
	case hasPrev:
		t.Order = sorted[at].Order + 1
	case hasNext:
		t.Order = sorted[0].Order - 1
	default:
		t.Order = 1
	}
	return t.Clone(), true
}

// byOrderLocked returns every task except skip sorted by order, collection order on ties.
func (s *TaskStore) byOrderLocked(skip string) []*task.Task {
	out := make([]*task.Task, 0, len(s.ids))
	for _, id := range s.ids {
		if id != skip {
			out = append(out, s.tasks[id])
		}
	}
	slices.SortStableFunc(out, func(a, b *task.Task) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out
}
