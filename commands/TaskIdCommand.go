// Package commands contains the commands for the application to be used for request inputs.
package commands

import (
	"fmt"
	"net/http"
	"strconv"

	"TaskAPI/models"
)

// TaskIdCommand represents a command that targets one task by the {id} path segment.
type TaskIdCommand struct {
	Id int
}

// ParseTaskId reads the {id} path value of req.
func ParseTaskId(req *http.Request) (TaskIdCommand, error) {
	raw := req.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return TaskIdCommand{}, fmt.Errorf("value is not a valid integer: %q", raw)
	}
	return TaskIdCommand{Id: id}, nil
}

// MaxPageSize is the largest pagesize GET /tasks accepts.
const MaxPageSize = 1000

// ListTasksCommand represents the pagination query of GET /tasks.
// Both page and pagesize must be given together; neither means every task.
type ListTasksCommand struct {
	Page models.Page
}

// ParseListTasks reads the page and pagesize query parameters of req.
// The first return value names the offending parameter when err is not nil.
func ParseListTasks(req *http.Request) (ListTasksCommand, string, error) {
	query := req.URL.Query()
	page, pagesize := query.Get("page"), query.Get("pagesize")
	if page == "" && pagesize == "" {
		return ListTasksCommand{}, "", nil
	}
	number, err := strconv.Atoi(page)
	if err != nil || number < 1 {
		return ListTasksCommand{}, "page", fmt.Errorf("page must be a positive integer, got %q", page)
	}
	size, err := strconv.Atoi(pagesize)
	if err != nil || size < 1 {
		return ListTasksCommand{}, "pagesize", fmt.Errorf("pagesize must be a positive integer, got %q", pagesize)
	}
	if size > MaxPageSize {
		return ListTasksCommand{}, "pagesize", fmt.Errorf("pagesize must be at most %d, got %d", MaxPageSize, size)
	}
	return ListTasksCommand{Page: models.Page{Number: number, Size: size}}, "", nil
}
