package store

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-agent/internal/agent"
)

var (
	// ErrNotFound is returned when no task exists for a given id.
	ErrNotFound = errors.New("no task with that id")
)

// TaskState is the lifecycle state reported over the task surface.
type TaskState string

const (
	TaskStateCompleted TaskState = "completed"
	TaskStateCanceled  TaskState = "canceled"
)

// Task is one completed JSON-RPC exchange. The agent core is stateless;
// tasks exist only so the transport can answer tasks/get and tasks/cancel.
type Task struct {
	ID        string         `json:"id"`
	SessionID string         `json:"sessionId,omitempty"`
	State     TaskState      `json:"state"`
	Query     string         `json:"query"`
	Response  agent.Response `json:"response"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TaskStore is a concurrency-safe in-memory task record store with bounded
// retention by count and age.
type TaskStore struct {
	mu sync.RWMutex

	tasks map[string]Task

	maxHistory int           // max number of retained tasks (0 = unlimited)
	maxAge     time.Duration // max task age (0 = unlimited)
}

// NewTaskStore creates a TaskStore with optional limits.
func NewTaskStore(maxHistory int, maxAge time.Duration) *TaskStore {
	return &TaskStore{
		tasks:      make(map[string]Task),
		maxHistory: maxHistory,
		maxAge:     maxAge,
	}
}

// Save records a task and enforces retention.
func (s *TaskStore) Save(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now().UTC()
	}
	s.tasks[task.ID] = task

	s.evictLocked()
}

// Get returns the task with the given id.
func (s *TaskStore) Get(id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	return task, nil
}

// Cancel marks a task canceled. Canceling an unknown id is an error; the
// transport maps it to a JSON-RPC error response.
func (s *TaskStore) Cancel(id string) (Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrNotFound
	}
	task.State = TaskStateCanceled
	s.tasks[id] = task
	return task, nil
}

// Len reports the number of retained tasks.
func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// evictLocked enforces retention by age, then by count (oldest first).
// Caller must hold the write lock.
func (s *TaskStore) evictLocked() {
	if s.maxAge > 0 {
		cutoff := time.Now().Add(-s.maxAge)
		for id, task := range s.tasks {
			if task.CreatedAt.Before(cutoff) {
				delete(s.tasks, id)
			}
		}
	}

	if s.maxHistory > 0 && len(s.tasks) > s.maxHistory {
		ids := make([]string, 0, len(s.tasks))
		for id := range s.tasks {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return s.tasks[ids[i]].CreatedAt.Before(s.tasks[ids[j]].CreatedAt)
		})
		for _, id := range ids[:len(s.tasks)-s.maxHistory] {
			delete(s.tasks, id)
		}
	}
}
