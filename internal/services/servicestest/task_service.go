// Package servicestest provides an in-memory services.TaskService for tests.
package servicestest

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

// TaskService keeps tasks in a map. IDs start at 1 and are never reused,
// including IDs handed out inside a rolled back transaction.
type TaskService struct {
	// Err, when set, is returned by every method instead of touching the data.
	Err error

	txMu   sync.Mutex
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]models.Task
}

var _ services.TaskService = (*TaskService)(nil)

func NewTaskService() *TaskService {
	return &TaskService{
		nextID: 1,
		tasks:  make(map[int64]models.Task),
	}
}

// Len returns the number of stored tasks.
func (s *TaskService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

func (s *TaskService) ListTasks(_ context.Context) ([]*models.Task, error) {
	return s.list(func(models.Task) bool { return true })
}

func (s *TaskService) ListTasksByCompleted(_ context.Context, completed bool) ([]*models.Task, error) {
	return s.list(func(t models.Task) bool { return t.Completed == completed })
}

func (s *TaskService) list(keep func(models.Task) bool) ([]*models.Task, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := make([]*models.Task, 0, len(s.tasks))
	for _, id := range slices.Sorted(maps.Keys(s.tasks)) {
		task := s.tasks[id]
		if keep(task) {
			tasks = append(tasks, clone(task))
		}
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(_ context.Context, id int64) (*models.Task, error) {
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return nil, services.ErrTaskNotFound
	}
	return clone(task), nil
}

func (s *TaskService) CreateTask(_ context.Context, task *models.Task) (*models.Task, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if !task.HasTitle() {
		return nil, services.ErrTaskTitleBlank
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := *clone(*task)
	created.ID = s.nextID
	s.nextID++
	s.tasks[created.ID] = created
	return clone(created), nil
}

func (s *TaskService) UpdateTask(_ context.Context, task *models.Task) (*models.Task, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if !task.HasTitle() {
		return nil, services.ErrTaskTitleBlank
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return nil, services.ErrTaskNotFound
	}
	s.tasks[task.ID] = *clone(*task)
	return clone(*task), nil
}

func (s *TaskService) DeleteTask(_ context.Context, id int64) error {
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return services.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// InTx serializes transactions and restores the previous contents if fn fails.
func (s *TaskService) InTx(_ context.Context, fn func(tx services.TaskService) error) error {
	if s.Err != nil {
		return s.Err
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := maps.Clone(s.tasks)
	s.mu.Unlock()

	committed := false
	defer func() {
		if !committed {
			s.mu.Lock()
			s.tasks = snapshot
			s.mu.Unlock()
		}
	}()

	err := fn(s)
	if err != nil {
		return err
	}
	committed = true
	return nil
}

func clone(task models.Task) *models.Task {
	if task.Description != nil {
		description := *task.Description
		task.Description = &description
	}
	return &task
}
