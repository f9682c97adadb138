package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"

	"TaskAPI/models"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	desc := "Milk and eggs"
	task, err := s.Insert(ctx, models.TaskCreate{Title: "Buy groceries", Description: &desc})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if task.Id != 1 || task.Completed {
		t.Fatalf("unexpected task after insert: %+v", task)
	}

	got, err := s.Get(ctx, task.Id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Buy groceries" || got.Description == nil || *got.Description != desc {
		t.Fatalf("unexpected task from get: %+v", got)
	}

	updated, err := s.Update(ctx, task.Id, models.TaskUpdate{Completed: models.Some(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed || updated.Title != "Buy groceries" || *updated.Description != desc {
		t.Fatalf("partial update changed other fields: %+v", updated)
	}

	if err := s.Delete(ctx, task.Id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, task.Id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: expected ErrNotFound, got %v", err)
	}
	if _, err := s.Update(ctx, task.Id, models.TaskUpdate{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update after delete: expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, task.Id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete after delete: expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStoreListOrderAndPages(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	tasks, err := s.List(ctx, models.Page{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("expected an empty non-nil list, got %#v", tasks)
	}

	for i := 1; i <= 5; i++ {
		if _, err := s.Insert(ctx, models.TaskCreate{Title: fmt.Sprintf("Task %d", i)}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if err := s.Delete(ctx, 2); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tasks, _ = s.List(ctx, models.Page{})
	wantIds := []int{1, 3, 4, 5}
	if len(tasks) != len(wantIds) {
		t.Fatalf("expected %d tasks, got %d", len(wantIds), len(tasks))
	}
	for i, id := range wantIds {
		if tasks[i].Id != id {
			t.Errorf("tasks[%d].Id = %d, want %d", i, tasks[i].Id, id)
		}
	}

	page, _ := s.List(ctx, models.Page{Number: 2, Size: 3})
	if len(page) != 1 || page[0].Id != 5 {
		t.Errorf("unexpected second page: %+v", page)
	}
	page, _ = s.List(ctx, models.Page{Number: 9, Size: 3})
	if len(page) != 0 {
		t.Errorf("expected an empty page past the end, got %+v", page)
	}

	// ids are not reused after a delete
	task, _ := s.Insert(ctx, models.TaskCreate{Title: "Task 6"})
	if task.Id != 6 {
		t.Errorf("expected id 6, got %d", task.Id)
	}
	if got, _ := s.Get(ctx, 5); got.Title != "Task 5" {
		t.Errorf("index out of sync after delete: %+v", got)
	}
}

func TestMemoryStoreListHugePages(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 1; i <= 3; i++ {
		if _, err := s.Insert(ctx, models.TaskCreate{Title: fmt.Sprintf("Task %d", i)}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	tests := []struct {
		page models.Page
		want int
	}{
		{models.Page{Number: 1, Size: math.MaxInt}, 3},
		{models.Page{Number: 2, Size: math.MaxInt}, 0},
		{models.Page{Number: 3, Size: math.MaxInt}, 0},
		{models.Page{Number: math.MaxInt, Size: 2}, 0},
		{models.Page{Number: 2, Size: 2}, 1},
	}
	for _, tt := range tests {
		tasks, err := s.List(ctx, tt.page)
		if err != nil {
			t.Fatalf("list %+v: %v", tt.page, err)
		}
		if tasks == nil || len(tasks) != tt.want {
			t.Errorf("list %+v: expected %d tasks, got %#v", tt.page, tt.want, tasks)
		}
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	desc := "original"
	task, _ := s.Insert(ctx, models.TaskCreate{Title: "t", Description: &desc})
	*task.Description = "mutated"

	got, _ := s.Get(ctx, task.Id)
	if *got.Description != "original" {
		t.Fatalf("stored task was mutated through a returned value")
	}
}

func TestMemoryStoreConcurrentInserts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	const n = 100
	ids := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			task, err := s.Insert(ctx, models.TaskCreate{Title: fmt.Sprintf("Task %d", i)})
			if err != nil {
				t.Errorf("insert: %v", err)
				return
			}
			ids <- task.Id
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[int]bool)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("expected %d ids, got %d", n, len(seen))
	}
}

func TestMemoryStoreConcurrentUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	task, _ := s.Insert(ctx, models.TaskCreate{Title: "contended"})

	var wg sync.WaitGroup
	var deleted int
	var mu sync.Mutex
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := s.Delete(ctx, task.Id); err == nil {
				mu.Lock()
				deleted++
				mu.Unlock()
			}
		}()
		go func() {
			defer wg.Done()
			_, err := s.Update(ctx, task.Id, models.TaskUpdate{Completed: models.Some(true)})
			if err != nil && !errors.Is(err, ErrNotFound) {
				t.Errorf("update: %v", err)
			}
		}()
	}
	wg.Wait()

	if deleted != 1 {
		t.Fatalf("expected exactly one successful delete, got %d", deleted)
	}
	if _, err := s.Get(ctx, task.Id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected task to be gone, got %v", err)
	}
}

func TestMemoryStoreCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewMemoryStore().Insert(ctx, models.TaskCreate{Title: "t"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
