package store

import (
	"context"
	"fmt"
	"sync"

	"TaskAPI/models"
)

// MemoryStore is a Store held in process memory.
// Ids start at 1 and are never reused, even after a delete.
type MemoryStore struct {
	mu     sync.Mutex
	lastId int
	tasks  []models.Task
	index  map[int]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{index: make(map[int]int)}
}

func (s *MemoryStore) Insert(ctx context.Context, c models.TaskCreate) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	task := models.NewTask(c)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastId++
	task.Id = s.lastId
	s.index[task.Id] = len(s.tasks)
	s.tasks = append(s.tasks, task)
	return task.Clone(), nil
}

func (s *MemoryStore) Get(ctx context.Context, id int) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	return s.tasks[i].Clone(), nil
}

func (s *MemoryStore) List(ctx context.Context, page models.Page) ([]models.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := 0, len(s.tasks)
	if !page.All() {
		from = min(page.Offset(), len(s.tasks))
		if page.Size < to-from {
			to = from + page.Size
		}
	}
	tasks := make([]models.Task, 0, to-from)
	for _, t := range s.tasks[from:to] {
		tasks = append(tasks, t.Clone())
	}
	return tasks, nil
}

func (s *MemoryStore) Update(ctx context.Context, id int, u models.TaskUpdate) (models.Task, error) {
	if err := ctx.Err(); err != nil {
		return models.Task{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return models.Task{}, fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}
	s.tasks[i].Apply(u)
	return s.tasks[i].Clone(), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.tasks); j++ {
		s.index[s.tasks[j].Id] = j
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
