package engine

import (
	"context"
	"errors"
	"strings"

	"taskman/internal/service"
)

var (
	// ErrDialogOpen is returned when opening a dialog while another is open.
	ErrDialogOpen = errors.New("engine: a dialog is already open")

	// ErrNoDialog is returned when confirming a dialog that is not open.
	ErrNoDialog = errors.New("engine: dialog not open")
)

// DialogKind names the active dialog.
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogEdit
	DialogDelete
	DialogCreateUser
)

func (k DialogKind) String() string {
	switch k {
	case DialogEdit:
		return "edit"
	case DialogDelete:
		return "delete"
	case DialogCreateUser:
		return "create-user"
	default:
		return "none"
	}
}

// Dialog is the single active dialog. Which fields are meaningful depends
// on Kind.
type Dialog struct {
	Kind DialogKind

	// Subject is the task being edited or deleted.
	Subject service.Task

	// Edit fields.
	Title       string
	Description string
	Validation  string

	// Create-user fields. Success and Error are never both set.
	Username string
	Password string
	Success  string
	Error    string
}

// Open reports whether any dialog is showing.
func (d Dialog) Open() bool { return d.Kind != DialogNone }

func (e *Engine) open(d Dialog) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.dialog.Open() {
		return ErrDialogOpen
	}
	e.dialog = d
	return nil
}

// OpenEdit opens the edit dialog seeded from t.
func (e *Engine) OpenEdit(t service.Task) error {
	return e.open(Dialog{
		Kind:        DialogEdit,
		Subject:     t,
		Title:       t.Title,
		Description: t.Description,
	})
}

// SetEditFields updates the edit dialog's local fields.
func (e *Engine) SetEditFields(title, description string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dialog.Kind != DialogEdit {
		return
	}
	e.dialog.Title = title
	e.dialog.Description = description
}

// ConfirmEdit saves the edit dialog. A blank title keeps the dialog open
// with a validation message and makes no call. The dialog closes only when
// the server accepts the change.
func (e *Engine) ConfirmEdit(ctx context.Context) error {
	e.mu.Lock()
	if e.dialog.Kind != DialogEdit {
		e.mu.Unlock()
		return ErrNoDialog
	}
	if strings.TrimSpace(e.dialog.Title) == "" {
		e.dialog.Validation = MsgTitleRequired
		e.mu.Unlock()
		return ErrTitleRequired
	}
	e.dialog.Validation = ""
	updated := e.dialog.Subject
	updated.Title = e.dialog.Title
	updated.Description = e.dialog.Description
	e.mu.Unlock()

	return e.mutate(ctx, "update", MsgSaveFailed, func(ctx context.Context) error {
		return e.backend.Update(ctx, updated)
	}, e.closeDialog(DialogEdit, updated.ID))
}

// closeDialog returns a success effect that closes the dialog of kind for
// the task with id. A dialog opened since the call started stays open.
// Caller of the returned func holds mu.
func (e *Engine) closeDialog(kind DialogKind, id string) func() {
	return func() {
		if e.dialog.Kind == kind && e.dialog.Subject.ID == id {
			e.dialog = Dialog{}
		}
	}
}

// OpenDelete opens the delete confirmation for t.
func (e *Engine) OpenDelete(t service.Task) error {
	return e.open(Dialog{Kind: DialogDelete, Subject: t})
}

// ConfirmDelete deletes the subject. On failure the dialog stays open.
func (e *Engine) ConfirmDelete(ctx context.Context) error {
	e.mu.Lock()
	if e.dialog.Kind != DialogDelete {
		e.mu.Unlock()
		return ErrNoDialog
	}
	id := e.dialog.Subject.ID
	e.mu.Unlock()

	return e.mutate(ctx, "delete", MsgDeleteFailed, func(ctx context.Context) error {
		return e.backend.Delete(ctx, id)
	}, e.closeDialog(DialogDelete, id))
}

// OpenCreateUser opens the create-user dialog. It does not need a session.
func (e *Engine) OpenCreateUser() error {
	return e.open(Dialog{Kind: DialogCreateUser})
}

// SetCreateUserFields updates the create-user inputs.
func (e *Engine) SetCreateUserFields(username, password string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dialog.Kind != DialogCreateUser {
		return
	}
	e.dialog.Username = username
	e.dialog.Password = password
}

// ConfirmCreateUser registers the trimmed username and password. On success
// the inputs clear and the dialog stays open for the next user.
func (e *Engine) ConfirmCreateUser(ctx context.Context) error {
	e.mu.Lock()
	if e.dialog.Kind != DialogCreateUser {
		e.mu.Unlock()
		return ErrNoDialog
	}
	creds := service.Credentials{
		Username: strings.TrimSpace(e.dialog.Username),
		Password: strings.TrimSpace(e.dialog.Password),
	}
	e.mu.Unlock()

	gen, err := e.begin()
	if err != nil {
		return err
	}
	defer e.end(gen)

	err = e.call(ctx, func(ctx context.Context) error {
		return e.backend.Register(ctx, creds)
	})
	if err != nil {
		e.logger.Debug("request failed", "op", "register", "err", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return ErrStale
	}
	open := e.dialog.Kind == DialogCreateUser
	if err != nil {
		if open {
			e.dialog.Error = MsgCreateUserFailed
			e.dialog.Success = ""
		}
		return &ActionError{Message: MsgCreateUserFailed, Err: err}
	}
	if !open {
		return nil
	}
	e.dialog.Success = MsgUserCreated
	e.dialog.Error = ""
	e.dialog.Username = ""
	e.dialog.Password = ""
	return nil
}

// CancelDialog closes whatever dialog is open and discards its fields.
func (e *Engine) CancelDialog() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dialog = Dialog{}
}
