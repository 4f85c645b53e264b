// Package store owns the authoritative in-memory task collection.
//
// Lookups for ids that do not exist are silent no-ops: mutators report
// ok=false and leave the collection untouched.
package store

import (
	"slices"
	"strings"
	"sync"
	"time"

	"taskManager/internal/models/task"
	"taskManager/internal/recurrence"

	"github.com/google/uuid"
)

type TaskStore struct {
	tasks map[string]*task.Task
	ids   []string
	mtx   *sync.RWMutex
	now   func() time.Time
	newID func() string
}

type Option func(*TaskStore)

func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) {
		s.now = now
	}
}

func WithIDGenerator(gen func() string) Option {
	return func(s *TaskStore) {
		s.newID = gen
	}
}

func NewTaskStore(options ...Option) *TaskStore {
	s := &TaskStore{
		tasks: make(map[string]*task.Task),
		mtx:   &sync.RWMutex{},
		ids:   []string{},
		now:   time.Now,
		newID: newUUID,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// newUUID yields time-ordered ids; v7 carries random bits that keep ids
// unique when many tasks are created within one clock tick.
func newUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (s *TaskStore) Len() int {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return len(s.ids)
}

// Create validates the draft and appends a new task to the end of the collection.
func (s *TaskStore) Create(draft task.Draft) (task.Task, error) {
	now := s.now()
	t := task.Task{
		Title:           strings.TrimSpace(draft.Title),
		Description:     draft.Description,
		Category:        draft.Category,
		Priority:        draft.Priority,
		DueDate:         draft.DueDate,
		Reminder:        draft.Reminder,
		Repeat:          draft.Repeat,
		RepeatFrequency: draft.RepeatFrequency,
		Tags:            append([]string{}, draft.Tags...),
		CreatedAt:       now,
		ParentID:        draft.ParentID,
	}
	t = t.Clone()
	applyDefaults(&t)
	if err := validate(t); err != nil {
		return task.Task{}, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.appendLocked(&t)
	return t.Clone(), nil
}

func (s *TaskStore) Get(id string) (task.Task, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return task.Task{}, false
	}
	return t.Clone(), true
}

// All returns a deep copy of the collection in collection order.
func (s *TaskStore) All() []task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	out := make([]task.Task, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.tasks[id].Clone())
	}
	return out
}

// Restore replaces the collection verbatim, ids and order included.
func (s *TaskStore) Restore(tasks []task.Task) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.resetLocked()
	for _, t := range tasks {
		if _, dup := s.tasks[t.ID]; dup || t.ID == "" {
			continue
		}
		c := t.Clone()
		s.tasks[c.ID] = &c
		s.ids = append(s.ids, c.ID)
	}
}

func (s *TaskStore) Update(id string, patch task.Patch) (task.Task, bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	current, ok := s.tasks[id]
	if !ok {
		return task.Task{}, false, nil
	}

	updated := current.Clone()
	patch.Apply(&updated)
	if patch.Title != nil {
		updated.Title = strings.TrimSpace(updated.Title)
	}
	if !updated.Repeat {
		updated.RepeatFrequency = ""
	}
	if err := validate(updated); err != nil {
		return task.Task{}, true, err
	}

	*current = updated
	return updated.Clone(), true, nil
}

// ChildrenOf returns the direct children of id in collection order.
func (s *TaskStore) ChildrenOf(id string) []task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var out []task.Task
	for _, cid := range s.ids {
		if t := s.tasks[cid]; t.ParentID == id && cid != id {
			out = append(out, t.Clone())
		}
	}
	return out
}

// DescendantsOf returns the transitive children of id. A parent cycle stops
// the expansion instead of looping.
func (s *TaskStore) DescendantsOf(id string) []task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var out []task.Task
	for _, did := range s.descendantIDsLocked(id) {
		out = append(out, s.tasks[did].Clone())
	}
	return out
}

func (s *TaskStore) descendantIDsLocked(id string) []string {
	visited := map[string]bool{id: true}
	var out []string
	frontier := []string{id}
	for len(frontier) > 0 {
		var next []string
		for _, cid := range s.ids {
			t := s.tasks[cid]
			if visited[cid] || t.ParentID == "" || !slices.Contains(frontier, t.ParentID) {
				continue
			}
			visited[cid] = true
			out = append(out, cid)
			next = append(next, cid)
		}
		frontier = next
	}
	return out
}

func (s *TaskStore) appendLocked(t *task.Task) {
	t.ID = s.uniqueIDLocked()
	t.Order = s.maxOrderLocked() + 1
	s.tasks[t.ID] = t
	s.ids = append(s.ids, t.ID)
}

func (s *TaskStore) uniqueIDLocked() string {
	for {
		id := s.newID()
		if _, taken := s.tasks[id]; !taken && id != "" {
			return id
		}
	}
}

func (s *TaskStore) maxOrderLocked() float64 {
	max := 0.0
	for _, id := range s.ids {
		if o := s.tasks[id].Order; o > max {
			max = o
		}
	}
	return max
}

func (s *TaskStore) resetLocked() {
	s.tasks = make(map[string]*task.Task)
	s.ids = []string{}
}

func applyDefaults(t *task.Task) {
	if t.Category == "" {
		t.Category = task.CategoryPersonal
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	if !t.Repeat {
		t.RepeatFrequency = ""
	}
}

func validate(t task.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if !t.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "unknown priority " + string(t.Priority)}
	}
	if t.Repeat && !t.RepeatFrequency.Valid() {
		return &ValidationError{Field: "repeatFrequency", Reason: "required when repeat is set"}
	}
	if t.DueDate != nil && t.Reminder != nil && t.Reminder.After(*t.DueDate) {
		return &ValidationError{Field: "reminder", Reason: "must not be after the due date"}
	}
	return nil
}

// successor returns the live task generated from id, if any.
func (s *TaskStore) successorLocked(id string) *task.Task {
	for _, sid := range s.ids {
		if t := s.tasks[sid]; t.PreviousInstanceID == id {
			return t
		}
	}
	return nil
}

func (s *TaskStore) spawnSuccessorLocked(t *task.Task) *task.Task {
	next, ok := recurrence.Next(*t, s.now())
	if !ok {
		return nil
	}
	s.appendLocked(&next)
	return &next
}
