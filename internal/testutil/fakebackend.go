// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/oauth2"

	"taskman/internal/service"
)

// FakeBackend is an in-memory implementation of service.Backend for testing.
// IDs are assigned sequentially starting at 1, like the real server.
type FakeBackend struct {
	mu     sync.Mutex
	tasks  []service.Task
	nextID int
	users  map[string]string // username -> password

	// Error injection for testing
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
	LoginErr    error
	RegisterErr error

	// Hook, when set, runs at the start of every call (e.g. to block a call in flight).
	Hook func(ctx context.Context, op string)

	// Call counters
	ListCalls     int
	CreateCalls   int
	UpdateCalls   int
	DeleteCalls   int
	RegisterCalls int

	// LastRegistered holds the credentials of the last Register call.
	LastRegistered service.Credentials
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{nextID: 1, users: make(map[string]string)}
}

// AddTask seeds a task and returns its id.
func (f *FakeBackend) AddTask(title, description string, completed bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(title, description, completed)
}

// AddUser seeds an account.
func (f *FakeBackend) AddUser(username, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[username] = password
}

// Tasks returns a copy of the stored tasks.
func (f *FakeBackend) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]service.Task(nil), f.tasks...)
}

// Task returns the stored task with id.
func (f *FakeBackend) Task(id string) (service.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// RemoveTask deletes a task behind the client's back (another writer).
func (f *FakeBackend) RemoveTask(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return
		}
	}
}

func (f *FakeBackend) insert(title, description string, completed bool) string {
	id := strconv.Itoa(f.nextID)
	f.nextID++
	f.tasks = append(f.tasks, service.Task{
		ID:          id,
		Title:       title,
		Description: description,
		Completed:   completed,
	})
	return id
}

func (f *FakeBackend) hook(ctx context.Context, op string) {
	if f.Hook != nil {
		f.Hook(ctx, op)
	}
}

// List implements service.Repository.
func (f *FakeBackend) List(ctx context.Context) ([]service.Task, error) {
	f.hook(ctx, "list")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ListCalls++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]service.Task{}, f.tasks...), nil
}

// Create implements service.Repository.
func (f *FakeBackend) Create(ctx context.Context, title, description string) error {
	f.hook(ctx, "create")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.CreateCalls++
	if f.CreateErr != nil {
		return f.CreateErr
	}
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("create task: %w", service.ErrValidation)
	}
	f.insert(title, description, false)
	return nil
}

// Update implements service.Repository.
func (f *FakeBackend) Update(ctx context.Context, t service.Task) error {
	f.hook(ctx, "update")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.UpdateCalls++
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == t.ID {
			f.tasks[i] = t
			return nil
		}
	}
	return fmt.Errorf("update task %s: %w", t.ID, service.ErrNotFound)
}

// Delete implements service.Repository.
func (f *FakeBackend) Delete(ctx context.Context, id string) error {
	f.hook(ctx, "delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.DeleteCalls++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("delete task %s: %w", id, service.ErrNotFound)
}

// Login implements service.Accounts.
func (f *FakeBackend) Login(ctx context.Context, creds service.Credentials) (*oauth2.Token, error) {
	f.hook(ctx, "login")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.LoginErr != nil {
		return nil, f.LoginErr
	}
	if pw, ok := f.users[creds.Username]; !ok || pw != creds.Password {
		return nil, fmt.Errorf("login: %w", service.ErrUnauthorized)
	}
	return &oauth2.Token{AccessToken: "token-" + creds.Username, TokenType: "Bearer"}, nil
}

// Register implements service.Accounts.
func (f *FakeBackend) Register(ctx context.Context, creds service.Credentials) error {
	f.hook(ctx, "register")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.RegisterCalls++
	f.LastRegistered = creds
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	if creds.Username == "" || creds.Password == "" {
		return fmt.Errorf("register: %w", service.ErrValidation)
	}
	if _, ok := f.users[creds.Username]; ok {
		return fmt.Errorf("register: %w", service.ErrValidation)
	}
	f.users[creds.Username] = creds.Password
	return nil
}

var _ service.Backend = (*FakeBackend)(nil)
