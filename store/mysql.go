package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"TaskAPI/models"

	"github.com/go-sql-driver/mysql"
)

const createTaskTable = `
CREATE TABLE IF NOT EXISTS task (
	id INT NOT NULL AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(200) NOT NULL,
	description VARCHAR(1000) NULL,
	completed BOOLEAN NOT NULL DEFAULT FALSE
) CHARACTER SET utf8mb4`

// MySQLConfig holds the connection settings for MySQLStore.
type MySQLConfig struct {
	Username string
	Password string
	Address  string
	DBName   string
}

// DSN formats the settings as a go-sql-driver/mysql data source name.
func (c MySQLConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = c.Address
	cfg.DBName = c.DBName
	cfg.AllowNativePasswords = true
	return cfg.FormatDSN()
}

// MySQLStore is a Store backed by the task table of a MySQL database.
type MySQLStore struct {
	db *sql.DB
}

// OpenMySQL connects to the database, checks it is reachable and creates the
// task table if it does not exist.
func OpenMySQL(ctx context.Context, dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTaskTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create task table: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

func (s *MySQLStore) Insert(ctx context.Context, c models.TaskCreate) (models.Task, error) {
	task := models.NewTask(c)
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO task(title, description, completed) VALUES(?, ?, ?)",
		task.Title, nullString(task.Description), task.Completed)
	if err != nil {
		return models.Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to retrieve the last inserted ID: %w", err)
	}
	task.Id = int(id)
	return task, nil
}

func (s *MySQLStore) Get(ctx context.Context, id int) (models.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, title, description, completed FROM task WHERE id=?", id)
	task, err := scanTask(row)
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

func (s *MySQLStore) List(ctx context.Context, page models.Page) ([]models.Task, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if page.All() {
		rows, err = s.db.QueryContext(ctx, "SELECT id, title, description, completed FROM task ORDER BY id")
	} else {
		rows, err = s.db.QueryContext(ctx,
			"SELECT id, title, description, completed FROM task ORDER BY id LIMIT ? OFFSET ?",
			page.Size, page.Offset())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row into Task struct: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update locks the row, merges u into it and writes it back in one transaction,
// so a concurrent delete either happens before (ErrNotFound) or waits.
func (s *MySQLStore) Update(ctx context.Context, id int, u models.TaskUpdate) (models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Task{}, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT id, title, description, completed FROM task WHERE id=? FOR UPDATE", id)
	task, err := scanTask(row)
	if err != nil {
		return models.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	task.Apply(u)

	_, err = tx.ExecContext(ctx,
		"UPDATE task SET title=?, description=?, completed=? WHERE id=?",
		task.Title, nullString(task.Description), task.Completed, task.Id)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Task{}, fmt.Errorf("commit update: %w", err)
	}
	return task, nil
}

func (s *MySQLStore) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM task WHERE id=?", id)
	if err != nil {
		return fmt.Errorf("failed to execute SQL statement: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *MySQLStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		task        models.Task
		description sql.NullString
	)
	err := row.Scan(&task.Id, &task.Title, &description, &task.Completed)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, ErrNotFound
	}
	if err != nil {
		return models.Task{}, err
	}
	if description.Valid {
		task.Description = &description.String
	}
	return task, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
