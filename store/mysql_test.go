package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"TaskAPI/models"

	"github.com/go-sql-driver/mysql"
)

// openTestMySQL connects to the database named by TASKAPI_TEST_MYSQL_DSN and
// empties the task table. The test is skipped when the variable is not set.
func openTestMySQL(t *testing.T) *MySQLStore {
	t.Helper()
	dsn := os.Getenv("TASKAPI_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TASKAPI_TEST_MYSQL_DSN not set")
	}
	ctx := context.Background()
	s, err := OpenMySQL(ctx, dsn)
	if err != nil {
		t.Fatalf("open mysql: %v", err)
	}
	if _, err := s.db.ExecContext(ctx, "TRUNCATE TABLE task"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMySQLStoreLifecycle(t *testing.T) {
	s := openTestMySQL(t)
	ctx := context.Background()

	desc := "Milk and eggs"
	task, err := s.Insert(ctx, models.TaskCreate{Title: "Buy groceries", Description: &desc})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if task.Id == 0 || task.Completed {
		t.Fatalf("unexpected task after insert: %+v", task)
	}

	updated, err := s.Update(ctx, task.Id, models.TaskUpdate{Completed: models.Some(true)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Completed || updated.Title != "Buy groceries" || updated.Description == nil || *updated.Description != desc {
		t.Fatalf("partial update changed other fields: %+v", updated)
	}

	cleared, err := s.Update(ctx, task.Id, models.TaskUpdate{Description: models.Null[string]()})
	if err != nil {
		t.Fatalf("clear description: %v", err)
	}
	if cleared.Description != nil {
		t.Fatalf("expected description to be cleared, got %q", *cleared.Description)
	}

	tasks, err := s.List(ctx, models.Page{})
	if err != nil || len(tasks) != 1 {
		t.Fatalf("list: %v %+v", err, tasks)
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

func TestMySQLConfigDSN(t *testing.T) {
	dsn := MySQLConfig{Username: "tasks", Password: "secret", Address: "db:3306", DBName: "taskdb"}.DSN()
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("parse %q: %v", dsn, err)
	}
	if cfg.User != "tasks" || cfg.Passwd != "secret" || cfg.Net != "tcp" || cfg.Addr != "db:3306" || cfg.DBName != "taskdb" {
		t.Errorf("unexpected connection settings: %+v", cfg)
	}
	if cfg.ParseTime || !cfg.AllowNativePasswords {
		t.Errorf("expected allowNativePasswords without parseTime, got %q", dsn)
	}
}
