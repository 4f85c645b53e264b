package store

import "slices"

// BulkResult separates what a bulk delete removed from what it had to keep.
type BulkResult struct {
	Removed []string
	Blocked []string
}

// Delete removes id and all of its descendants, or nothing at all when any
// task in that subtree has a live recurrence successor, even one that would
// be removed together with it. A missing id returns (nil, nil).
func (s *TaskStore) Delete(id string) ([]string, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return nil, nil
	}

	subtree := s.subtreeLocked(id)
	if blockers := s.blockersLocked(subtree, nil); len(blockers) > 0 {
		return nil, &BlockedError{IDs: blockers}
	}
	return s.removeLocked(subtree), nil
}

// DeleteMany deletes every deletable subtree among ids and reports the roots
// that were kept because of a live successor. Subtrees deleted together may
// contain each other's successors.
func (s *TaskStore) DeleteMany(ids []string) BulkResult {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var roots []string
	for _, id := range ids {
		if _, ok := s.tasks[id]; ok && !slices.Contains(roots, id) {
			roots = append(roots, id)
		}
	}

	subtrees := make(map[string]map[string]bool, len(roots))
	for _, id := range roots {
		subtrees[id] = s.subtreeLocked(id)
	}

	deletable := slices.Clone(roots)
	var blocked []string
	for changed := true; changed; {
		changed = false
		union := map[string]bool{}
		for _, id := range deletable {
			for k := range subtrees[id] {
				union[k] = true
			}
		}
		for i := 0; i < len(deletable); i++ {
			id := deletable[i]
			if s.blockedWithinLocked(subtrees[id], union) {
				blocked = append(blocked, id)
				deletable = slices.Delete(deletable, i, i+1)
				changed = true
				break
			}
		}
	}

	union := map[string]bool{}
	for _, id := range deletable {
		for k := range subtrees[id] {
			union[k] = true
		}
	}

	var removed []string
	if len(union) > 0 {
		removed = s.removeLocked(union)
	}
	return BulkResult{Removed: removed, Blocked: orderIDs(ids, blocked)}
}

// subtreeLocked returns id plus its descendants.
func (s *TaskStore) subtreeLocked(id string) map[string]bool {
	set := map[string]bool{id: true}
	for _, d := range s.descendantIDsLocked(id) {
		set[d] = true
	}
	return set
}

// blockersLocked lists live successors whose predecessor is in set, skipping
// those listed in exempt.
func (s *TaskStore) blockersLocked(set, exempt map[string]bool) []string {
	var out []string
	for _, id := range s.ids {
		t := s.tasks[id]
		if t.PreviousInstanceID != "" && set[t.PreviousInstanceID] && !exempt[id] {
			out = append(out, id)
		}
	}
	return out
}

func (s *TaskStore) blockedWithinLocked(set, removing map[string]bool) bool {
	for _, id := range s.blockersLocked(set, set) {
		if !removing[id] {
			return true
		}
	}
	return false
}

func (s *TaskStore) removeLocked(set map[string]bool) []string {
	var removed []string
	kept := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		if set[id] {
			removed = append(removed, id)
			delete(s.tasks, id)
			continue
		}
		kept = append(kept, id)
	}
	s.ids = kept
	return removed
}

func orderIDs(order []string, subset []string) []string {
	var out []string
	for _, id := range order {
		if slices.Contains(subset, id) && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
