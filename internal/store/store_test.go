package store_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.Local)

func newStore() *store.TaskStore {
	n := 0
	return store.NewTaskStore(
		store.WithClock(func() time.Time { return fixedNow }),
		store.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("t%d", n)
		}),
	)
}

func mustCreate(t *testing.T, s *store.TaskStore, d task.Draft) task.Task {
	t.Helper()
	created, err := s.Create(d)
	require.NoError(t, err)
	return created
}

// TestTaskStore_Create tests defaults, id and order assignment
func TestTaskStore_Create(t *testing.T) {
	s := newStore()

	first := mustCreate(t, s, task.Draft{Title: "  Pay rent  "})
	second := mustCreate(t, s, task.Draft{Title: "Call mom", Priority: task.PriorityHigh, Category: task.CategoryOffice})

	assert.Equal(t, "t1", first.ID)
	assert.Equal(t, "Pay rent", first.Title)
	assert.Equal(t, task.CategoryPersonal, first.Category)
	assert.Equal(t, task.PriorityMedium, first.Priority)
	assert.Equal(t, fixedNow, first.CreatedAt)
	assert.Equal(t, []string{}, first.Tags)
	assert.Greater(t, second.Order, first.Order)
	assert.Equal(t, 2, s.Len())
}

// TestTaskStore_CreateValidation tests that invalid drafts leave the store untouched
func TestTaskStore_CreateValidation(t *testing.T) {
	due := fixedNow.Add(time.Hour)
	late := due.Add(time.Hour)

	tests := []struct {
		name  string
		draft task.Draft
		field string
	}{
		{"missing title", task.Draft{Title: "   "}, "title"},
		{"repeat without frequency", task.Draft{Title: "x", Repeat: true}, "repeatFrequency"},
		{"reminder after due", task.Draft{Title: "x", DueDate: &due, Reminder: &late}, "reminder"},
		{"unknown priority", task.Draft{Title: "x", Priority: "critical"}, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore()
			_, err := s.Create(tt.draft)

			var verr *store.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Equal(t, 0, s.Len())
		})
	}
}

// TestTaskStore_UniqueIDs tests that colliding generated ids are retried
func TestTaskStore_UniqueIDs(t *testing.T) {
	calls := 0
	s := store.NewTaskStore(store.WithIDGenerator(func() string {
		calls++
		if calls <= 2 {
			return "same"
		}
		return fmt.Sprintf("id-%d", calls)
	}))

	a := mustCreate(t, s, task.Draft{Title: "a"})
	b := mustCreate(t, s, task.Draft{Title: "b"})
	assert.NotEqual(t, a.ID, b.ID)

	real := store.NewTaskStore()
	seen := map[string]bool{}
	for range 200 {
		created := mustCreate(t, real, task.Draft{Title: "x"})
		assert.False(t, seen[created.ID])
		seen[created.ID] = true
	}
}

// TestTaskStore_Update tests patching and the not-found no-op
func TestTaskStore_Update(t *testing.T) {
	s := newStore()
	created := mustCreate(t, s, task.Draft{Title: "Draft report"})

	due := fixedNow.Add(48 * time.Hour)
	updated, ok, err := s.Update(created.ID, task.BuildPatch(
		task.WithTitle("Final report"),
		task.WithPriority(task.PriorityUrgent),
		task.WithDueDate(due),
		task.WithTags([]string{"work", "q1"}),
	))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Final report", updated.Title)
	assert.Equal(t, task.PriorityUrgent, updated.Priority)
	assert.True(t, due.Equal(*updated.DueDate))
	assert.Equal(t, []string{"work", "q1"}, updated.Tags)

	cleared, _, err := s.Update(created.ID, task.BuildPatch(task.ClearDueDate()))
	require.NoError(t, err)
	assert.Nil(t, cleared.DueDate)

	_, ok, err = s.Update("missing", task.BuildPatch(task.WithTitle("x")))
	assert.NoError(t, err)
	assert.False(t, ok)

	_, _, err = s.Update(created.ID, task.BuildPatch(task.WithTitle(" ")))
	var verr *store.ValidationError
	assert.ErrorAs(t, err, &verr)
	got, _ := s.Get(created.ID)
	assert.Equal(t, "Final report", got.Title)
}

// TestTaskStore_DescendantsOf tests transitive expansion and the cycle guard
func TestTaskStore_DescendantsOf(t *testing.T) {
	s := newStore()
	root := mustCreate(t, s, task.Draft{Title: "root"})
	child := mustCreate(t, s, task.Draft{Title: "child", ParentID: root.ID})
	grandchild := mustCreate(t, s, task.Draft{Title: "grandchild", ParentID: child.ID})
	mustCreate(t, s, task.Draft{Title: "other"})

	assert.Len(t, s.ChildrenOf(root.ID), 1)
	desc := s.DescendantsOf(root.ID)
	require.Len(t, desc, 2)
	assert.Equal(t, child.ID, desc[0].ID)
	assert.Equal(t, grandchild.ID, desc[1].ID)

	_, _, err := s.Update(root.ID, task.BuildPatch(task.WithParent(grandchild.ID)))
	require.NoError(t, err)
	assert.Len(t, s.DescendantsOf(root.ID), 2)
}

// TestTaskStore_DeleteCascades tests that delete removes exactly the subtree
func TestTaskStore_DeleteCascades(t *testing.T) {
	s := newStore()
	root := mustCreate(t, s, task.Draft{Title: "root"})
	child := mustCreate(t, s, task.Draft{Title: "child", ParentID: root.ID})
	mustCreate(t, s, task.Draft{Title: "grandchild", ParentID: child.ID})
	keep := mustCreate(t, s, task.Draft{Title: "keep"})

	before := s.Len()
	removed, err := s.Delete(root.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 3)
	assert.Equal(t, before-3, s.Len())

	_, ok := s.Get(keep.ID)
	assert.True(t, ok)

	removed, err = s.Delete("missing")
	assert.NoError(t, err)
	assert.Nil(t, removed)
}

// TestTaskStore_DeleteBlockedBySuccessor tests the recurrence lineage block
func TestTaskStore_DeleteBlockedBySuccessor(t *testing.T) {
	s := newStore()
	due := fixedNow.Add(24 * time.Hour)
	rec := mustCreate(t, s, task.Draft{Title: "Gym", Repeat: true, RepeatFrequency: task.FrequencyDaily, DueDate: &due})

	res, ok, err := s.SetCompleted(rec.ID, true)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, res.Successor)

	before := s.All()
	_, err = s.Delete(rec.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrBlockedBySuccessor))

	var blocked *store.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []string{res.Successor.ID}, blocked.IDs)
	assert.Equal(t, before, s.All())

	removed, err := s.Delete(res.Successor.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{res.Successor.ID}, removed)

	_, err = s.Delete(rec.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, s.Len())
}

// TestTaskStore_DeleteSubtreeContainingSuccessor tests that a successor inside the subtree still blocks the delete
func TestTaskStore_DeleteSubtreeContainingSuccessor(t *testing.T) {
	s := newStore()
	parent := mustCreate(t, s, task.Draft{Title: "Household"})
	rec := mustCreate(t, s, task.Draft{Title: "Laundry", ParentID: parent.ID, Repeat: true, RepeatFrequency: task.FrequencyWeekly})

	res, _, err := s.SetCompleted(rec.ID, true)
	require.NoError(t, err)
	require.NotNil(t, res.Successor)
	assert.Equal(t, parent.ID, res.Successor.ParentID)

	before := s.All()
	removed, err := s.Delete(parent.ID)
	require.ErrorIs(t, err, store.ErrBlockedBySuccessor)
	assert.Empty(t, removed)

	var blocked *store.BlockedError
	require.ErrorAs(t, err, &blocked)
	assert.Equal(t, []string{res.Successor.ID}, blocked.IDs)
	assert.Equal(t, before, s.All())
	assert.Equal(t, 3, s.Len())

	_, err = s.Delete(res.Successor.ID)
	require.NoError(t, err)
	removed, err = s.Delete(parent.ID)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Equal(t, 0, s.Len())
}

// TestTaskStore_DeleteMany tests that bulk delete separates blocked from deletable
func TestTaskStore_DeleteMany(t *testing.T) {
	s := newStore()
	a := mustCreate(t, s, task.Draft{Title: "a"})
	b := mustCreate(t, s, task.Draft{Title: "b", Repeat: true, RepeatFrequency: task.FrequencyDaily})
	c := mustCreate(t, s, task.Draft{Title: "c", ParentID: a.ID})

	res, _, err := s.SetCompleted(b.ID, true)
	require.NoError(t, err)
	succ := res.Successor.ID

	out := s.DeleteMany([]string{b.ID, a.ID, "missing"})
	assert.Equal(t, []string{b.ID}, out.Blocked)
	assert.ElementsMatch(t, []string{a.ID, c.ID}, out.Removed)
	assert.Equal(t, 2, s.Len())

	out = s.DeleteMany([]string{succ, b.ID})
	assert.Empty(t, out.Blocked)
	assert.ElementsMatch(t, []string{b.ID, succ}, out.Removed)
	assert.Equal(t, 0, s.Len())
}

// TestTaskStore_SetCompleted tests completion, successor creation and reopening
func TestTaskStore_SetCompleted(t *testing.T) {
	s := newStore()
	due := time.Date(2024, 3, 10, 9, 0, 0, 0, time.Local)
	rem := due.Add(-30 * time.Minute)
	rec := mustCreate(t, s, task.Draft{Title: "Standup", Repeat: true, RepeatFrequency: task.FrequencyDaily, DueDate: &due, Reminder: &rem})
	plain := mustCreate(t, s, task.Draft{Title: "Once"})

	res, ok, err := s.SetCompleted(rec.ID, true)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, res.Changed)
	assert.True(t, res.Task.Completed)
	assert.Equal(t, fixedNow, *res.Task.CompletedAt)
	require.NotNil(t, res.Successor)
	assert.Equal(t, rec.ID, res.Successor.PreviousInstanceID)
	assert.Equal(t, due.AddDate(0, 0, 1), *res.Successor.DueDate)
	assert.Equal(t, due.AddDate(0, 0, 1).Add(-30*time.Minute), *res.Successor.Reminder)
	assert.Greater(t, res.Successor.Order, plain.Order)
	assert.Equal(t, 3, s.Len())

	again, _, err := s.SetCompleted(rec.ID, true)
	require.NoError(t, err)
	assert.False(t, again.Changed)
	assert.Equal(t, 3, s.Len())

	reopened, _, err := s.SetCompleted(rec.ID, false)
	require.NoError(t, err)
	assert.True(t, reopened.Changed)
	assert.Equal(t, []string{res.Successor.ID}, reopened.Removed)
	assert.Nil(t, reopened.Task.CompletedAt)
	assert.Equal(t, 2, s.Len())

	_, ok, err = s.SetCompleted("missing", true)
	assert.NoError(t, err)
	assert.False(t, ok)
}

// TestTaskStore_ReopenBlockedByCompletedSuccessor tests that a finished successor keeps its predecessor completed
func TestTaskStore_ReopenBlockedByCompletedSuccessor(t *testing.T) {
	s := newStore()
	rec := mustCreate(t, s, task.Draft{Title: "Pay bills", Repeat: true, RepeatFrequency: task.FrequencyMonthly})

	first, _, err := s.SetCompleted(rec.ID, true)
	require.NoError(t, err)
	second, _, err := s.SetCompleted(first.Successor.ID, true)
	require.NoError(t, err)
	require.NotNil(t, second.Successor)

	before := s.All()
	_, _, err = s.SetCompleted(rec.ID, false)
	require.ErrorIs(t, err, store.ErrBlockedBySuccessor)
	assert.Equal(t, before, s.All())
}

// TestTaskStore_AppendBatch tests fresh ids and in-batch relinking
func TestTaskStore_AppendBatch(t *testing.T) {
	s := newStore()
	existing := mustCreate(t, s, task.Draft{Title: "existing"})

	out := s.AppendBatch([]task.Task{
		{ID: "src-1", Title: "Parent"},
		{ID: "src-2", Title: "Child", ParentID: "src-1"},
		{ID: "src-3", Title: "Under existing", ParentID: existing.ID},
		{ID: "src-4", Title: "Dangling", ParentID: "nowhere", Repeat: true},
		{ID: "src-5", Title: ""},
	})

	require.Len(t, out, 4)
	assert.NotEqual(t, "src-1", out[0].ID)
	assert.Equal(t, out[0].ID, out[1].ParentID)
	assert.Equal(t, existing.ID, out[2].ParentID)
	assert.Empty(t, out[3].ParentID)
	assert.False(t, out[3].Repeat)
	assert.Equal(t, fixedNow, out[0].CreatedAt)
	assert.Greater(t, out[0].Order, existing.Order)
	assert.Equal(t, 5, s.Len())

	replaced := s.ReplaceAll([]task.Task{{Title: "only", ParentID: existing.ID}})
	require.Len(t, replaced, 1)
	assert.Empty(t, replaced[0].ParentID)
	assert.Equal(t, 1, s.Len())
}

// TestTaskStore_Move tests manual reordering with fractional orders
func TestTaskStore_Move(t *testing.T) {
	s := newStore()
	a := mustCreate(t, s, task.Draft{Title: "a"})
	b := mustCreate(t, s, task.Draft{Title: "b"})
	c := mustCreate(t, s, task.Draft{Title: "c"})

	moved, ok := s.Move(c.ID, a.ID)
	require.True(t, ok)
	assert.Equal(t, 1.5, moved.Order)

	moved, ok = s.Move(b.ID, "")
	require.True(t, ok)
	assert.Less(t, moved.Order, a.Order)

	_, ok = s.Move(a.ID, "missing")
	assert.False(t, ok)
}

// TestTaskStore_RestoreIsolation tests that snapshots do not alias live tasks
func TestTaskStore_RestoreIsolation(t *testing.T) {
	s := newStore()
	mustCreate(t, s, task.Draft{Title: "a", Tags: []string{"x"}})

	snap := s.All()
	snap[0].Tags[0] = "mutated"
	got := s.All()
	assert.Equal(t, "x", got[0].Tags[0])

	s.Restore(snap)
	got = s.All()
	assert.Equal(t, "mutated", got[0].Tags[0])
	snap[0].Title = "changed after restore"
	got = s.All()
	assert.Equal(t, "a", got[0].Title)
}
