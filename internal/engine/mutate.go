package engine

import (
	"context"
	"errors"
	"strings"

	"taskman/internal/service"
)

// ErrTitleRequired is returned when a task title is blank after trimming.
var ErrTitleRequired = errors.New("title is required")

// mutate runs one repository call inside busy. On success it refetches the
// collection and applies onSuccess first; on failure it records msg and
// leaves the collection alone.
func (e *Engine) mutate(ctx context.Context, op, msg string, fn func(ctx context.Context) error, onSuccess func()) error {
	gen, err := e.begin()
	if err != nil {
		return err
	}
	defer e.end(gen)

	if err := e.call(ctx, fn); err != nil {
		return e.fail(gen, op, msg, err)
	}

	e.mu.Lock()
	if e.gen != gen {
		e.mu.Unlock()
		return ErrStale
	}
	if onSuccess != nil {
		onSuccess()
	}
	e.mu.Unlock()

	return e.refresh(ctx, gen)
}

// ToggleComplete flips the completion state of t on the server, sending
// every other field unchanged.
func (e *Engine) ToggleComplete(ctx context.Context, t service.Task) error {
	t.Completed = !t.Completed
	return e.mutate(ctx, "toggle", MsgUpdateFailed, func(ctx context.Context) error {
		return e.backend.Update(ctx, t)
	}, nil)
}

// SetAddFields updates the add form.
func (e *Engine) SetAddFields(title, description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.addTitle = title
	e.addDescription = description
}

// SubmitAddForm validates the add form and creates the task.
// A blank title returns ErrTitleRequired without touching the server.
func (e *Engine) SubmitAddForm(ctx context.Context) error {
	e.mu.Lock()
	blank := strings.TrimSpace(e.addTitle) == ""
	e.mu.Unlock()
	if blank {
		return ErrTitleRequired
	}
	return e.AddTask(ctx)
}

// AddTask creates a task from the add form as entered. The form is cleared
// once the server accepts it.
func (e *Engine) AddTask(ctx context.Context) error {
	e.mu.Lock()
	title, description := e.addTitle, e.addDescription
	e.mu.Unlock()

	return e.mutate(ctx, "create", MsgAddFailed, func(ctx context.Context) error {
		return e.backend.Create(ctx, title, description)
	}, func() {
		e.addTitle = ""
		e.addDescription = ""
	})
}
