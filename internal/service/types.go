// Package service defines the backend-agnostic types and interfaces for task operations.
package service

// Task represents a single task item.
// ID is assigned by the server and never changes.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
}

// Credentials is a username/password pair used by login and registration.
type Credentials struct {
	Username string
	Password string
}
