// Package service defines the backend-agnostic types and interfaces for task operations.
package service

import (
	"context"

	"golang.org/x/oauth2"
)

// Repository is the remote task resource.
// Every call needs a stored credential; backends read it from the session
// on each request. Results are in server order (no client-side sorting).
// No call is retried.
type Repository interface {
	// List returns every task of the authenticated user.
	List(ctx context.Context) ([]Task, error)

	// Create adds a task. The server assigns the ID and sets Completed=false.
	Create(ctx context.Context, title, description string) error

	// Update replaces title, description and completed of the task with t.ID.
	Update(ctx context.Context, t Task) error

	// Delete removes a task.
	Delete(ctx context.Context, id string) error
}

// Accounts covers the unauthenticated calls.
type Accounts interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, creds Credentials) (*oauth2.Token, error)

	// Register creates a new user.
	Register(ctx context.Context, creds Credentials) error
}

// Backend is everything a client needs from a task server.
// Commands and the engine never import a backend package directly.
type Backend interface {
	Repository
	Accounts
}
