// Package storage persists taskd users and tasks in SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	password_hash BLOB NOT NULL
);
CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	completed   INTEGER NOT NULL DEFAULT 0,
	user_id     INTEGER NOT NULL REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS tasks_user_id ON tasks(user_id);
`

var (
	// ErrNotFound is returned when a row does not exist (or belongs to another user).
	ErrNotFound = errors.New("not found")

	// ErrUsernameTaken is returned by CreateUser for a duplicate username.
	ErrUsernameTaken = errors.New("username already exists")
)

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash []byte
}

// Task is a stored task. UserID scopes every query.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
	UserID      int64  `json:"-"`
}

// SQLiteStore persists users and tasks in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and ensures
// the tables exist. Use ":memory:" for a throwaway database.
// The caller is responsible for calling Close.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	db.SetMaxOpenConns(1) // prevent SQLITE_BUSY; also keeps :memory: on one connection
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// CreateUser inserts a user and returns its id.
func (s *SQLiteStore) CreateUser(ctx context.Context, username string, passwordHash []byte) (int64, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE username = ?`, username).Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("lookup user: %w", err)
	}
	if exists > 0 {
		return 0, ErrUsernameTaken
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO users (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, ErrUsernameTaken
		}
		return 0, fmt.Errorf("insert user: %w", err)
	}
	return res.LastInsertId()
}

// UserByUsername looks up a user by exact username.
func (s *SQLiteStore) UserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash FROM users WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// ListTasks returns the user's tasks in insertion order.
func (s *SQLiteStore) ListTasks(ctx context.Context, userID int64) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, completed, user_id FROM tasks WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.UserID); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// GetTask returns one task owned by userID.
func (s *SQLiteStore) GetTask(ctx context.Context, userID, id int64) (Task, error) {
	var t Task
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, completed, user_id FROM tasks WHERE id = ? AND user_id = ?`, id, userID,
	).Scan(&t.ID, &t.Title, &t.Description, &t.Completed, &t.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// CreateTask inserts t (ID is ignored) and returns the stored row.
func (s *SQLiteStore) CreateTask(ctx context.Context, t Task) (Task, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, completed, user_id) VALUES (?, ?, ?, ?)`,
		t.Title, t.Description, t.Completed, t.UserID)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	t.ID = id
	return t, nil
}

// UpdateTask replaces title, description and completed of t.
// Returns ErrNotFound when no row of t.UserID has t.ID.
func (s *SQLiteStore) UpdateTask(ctx context.Context, t Task) (Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, completed = ? WHERE id = ? AND user_id = ?`,
		t.Title, t.Description, t.Completed, t.ID, t.UserID)
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Task{}, fmt.Errorf("update task: %w", err)
	}
	if n == 0 {
		return Task{}, ErrNotFound
	}
	return t, nil
}

// DeleteTask removes a task owned by userID.
func (s *SQLiteStore) DeleteTask(ctx context.Context, userID, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
