// Package models contains the data models for the application to be used in request handling.
package models

// Task represents a task in the system.
// Task has the following properties:
// - Id: The unique identifier of the task, assigned by the store on insert.
// - Title: The title of the task.
// - Description: The optional description of the task, null when absent.
// - Completed: Whether the task is done.
type Task struct {
	Id          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
}

// TaskCreate is the request body for creating a task. It carries no Id.
type TaskCreate struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Completed   bool    `json:"completed"`
}

// TaskUpdate is the request body for a partial update.
// Fields left out of the JSON body are not Set and leave the stored value untouched.
type TaskUpdate struct {
	Title       Optional[string] `json:"title" validate:"omitempty,min=1,max=200"`
	Description Optional[string] `json:"description" validate:"omitempty,max=1000"`
	Completed   Optional[bool]   `json:"completed"`
}

// NewTask builds the record to be stored for a create payload.
func NewTask(c TaskCreate) Task {
	return Task{
		Title:       c.Title,
		Description: cloneString(c.Description),
		Completed:   c.Completed,
	}
}

// Apply merges the fields present in u into t.
// An explicit null description clears it; null is never applied to title or completed.
func (t *Task) Apply(u TaskUpdate) {
	if u.Title.Set && !u.Title.Null {
		t.Title = u.Title.Value
	}
	if u.Description.Set {
		if u.Description.Null {
			t.Description = nil
		} else {
			d := u.Description.Value
			t.Description = &d
		}
	}
	if u.Completed.Set && !u.Completed.Null {
		t.Completed = u.Completed.Value
	}
}

// Clone returns a copy of t that shares no memory with it.
func (t Task) Clone() Task {
	t.Description = cloneString(t.Description)
	return t
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
