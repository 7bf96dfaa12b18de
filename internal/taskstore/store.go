package taskstore

import (
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"taskboard/internal/model"
)

// Store is the in-memory, insertion-ordered task registry shared by all views.
// Tasks are addressed by the ID assigned in Add. Readers always get copies.
type Store struct {
	mu    sync.RWMutex
	tasks []model.Task
}

func New() *Store {
	return &Store{}
}

// Add assigns the task an ID and appends it to the end of the collection.
func (s *Store) Add(task model.Task) model.Task {
	task.ID = uuid.New()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]model.Task, len(s.tasks), len(s.tasks)+1)
	copy(next, s.tasks)
	s.tasks = append(next, task)
	return task
}

// Delete removes the task with the given ID. A missing ID is a no-op.
func (s *Store) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		glog.V(1).Infof("taskstore: delete of %s matched nothing", id)
		return false
	}

	next := make([]model.Task, 0, len(s.tasks)-1)
	next = append(next, s.tasks[:i]...)
	s.tasks = append(next, s.tasks[i+1:]...)
	return true
}

// Update replaces the editable fields of the task with the given ID, keeping
// its position. ID, UserID and Created never change. A missing ID is a no-op.
func (s *Store) Update(id uuid.UUID, updated model.Task) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		glog.V(1).Infof("taskstore: update of %s matched nothing", id)
		return model.Task{}, false
	}

	next := make([]model.Task, len(s.tasks))
	copy(next, s.tasks)

	t := next[i]
	t.Title = updated.Title
	t.Description = updated.Description
	t.AssignTo = updated.AssignTo
	t.Priority = updated.Priority
	t.Status = updated.Status
	next[i] = t

	s.tasks = next
	return t, true
}

func (s *Store) Get(id uuid.UUID) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// All returns a copy of the full collection in insertion order.
func (s *Store) All() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Owned returns the tasks whose owner is email, in insertion order.
func (s *Store) Owned(email string) []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Task, 0)
	for _, t := range s.tasks {
		if t.OwnedBy(email) {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
