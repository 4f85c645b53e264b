// Package history keeps a bounded linear undo/redo log of full collection snapshots.
package history

import (
	"time"

	"taskManager/internal/models/task"
)

const DefaultLimit = 50

// Snapshotter is the collection the manager records and restores.
type Snapshotter interface {
	All() []task.Task
	Restore([]task.Task)
}

// Entry is an immutable point-in-time copy. Its tasks are never handed out
// without cloning, so entries can be shared between positions safely.
type Entry struct {
	Label string
	At    time.Time
	tasks []task.Task
}

func (e Entry) Len() int {
	return len(e.tasks)
}

type Manager struct {
	target  Snapshotter
	entries []Entry
	cursor  int
	limit   int
	now     func() time.Time
}

func New(target Snapshotter, limit int) *Manager {
	if limit < 1 {
		limit = DefaultLimit
	}
	return &Manager{
		target: target,
		cursor: -1,
		limit:  limit,
		now:    time.Now,
	}
}

// WithClock overrides the timestamp source for entries.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// Record drops any redo branch and appends the current collection. When the
// log is full the oldest entry falls off and the cursor stays on the newest.
func (m *Manager) Record(label string) {
	m.entries = m.entries[:m.cursor+1]
	m.entries = append(m.entries, Entry{
		Label: label,
		At:    m.now(),
		tasks: m.target.All(),
	})
	if over := len(m.entries) - m.limit; over > 0 {
		m.entries = append([]Entry(nil), m.entries[over:]...)
	}
	m.cursor = len(m.entries) - 1
}

// Undo restores the previous entry and returns the label of the entry that was undone.
func (m *Manager) Undo() (string, bool) {
	if m.cursor <= 0 {
		return "", false
	}
	undone := m.entries[m.cursor].Label
	m.cursor--
	m.target.Restore(task.CloneAll(m.entries[m.cursor].tasks))
	return undone, true
}

// Redo restores the next entry and returns its label.
func (m *Manager) Redo() (string, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries)-1 {
		return "", false
	}
	m.cursor++
	m.target.Restore(task.CloneAll(m.entries[m.cursor].tasks))
	return m.entries[m.cursor].Label, true
}

// Reset forgets everything and records the current collection as the base.
func (m *Manager) Reset(label string) {
	m.entries = nil
	m.cursor = -1
	m.Record(label)
}

func (m *Manager) CanUndo() bool {
	return m.cursor > 0
}

func (m *Manager) CanRedo() bool {
	return m.cursor >= 0 && m.cursor < len(m.entries)-1
}

func (m *Manager) Cursor() int {
	return m.cursor
}

// Entries lists the retained entries oldest first.
func (m *Manager) Entries() []Entry {
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
