// Package store persists tasks.
//
// Two implementations are provided: MemoryStore keeps tasks in process memory
// and MySQLStore keeps them in the task table of a MySQL database.
// Every operation is atomic with respect to concurrent callers.
package store

import (
	"context"
	"errors"

	"TaskAPI/models"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// Store is the persistence abstraction the handlers depend on.
type Store interface {
	// Insert assigns a new id to the task and stores it.
	Insert(ctx context.Context, c models.TaskCreate) (models.Task, error)
	// Get returns the task with the given id or ErrNotFound.
	Get(ctx context.Context, id int) (models.Task, error)
	// List returns tasks in insertion order. It never returns a nil slice.
	List(ctx context.Context, page models.Page) ([]models.Task, error)
	// Update merges u into the stored task and returns the result, or ErrNotFound.
	Update(ctx context.Context, id int, u models.TaskUpdate) (models.Task, error)
	// Delete removes the task or returns ErrNotFound.
	Delete(ctx context.Context, id int) error
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*MySQLStore)(nil)
)
