// Package engine keeps the local task collection in step with the server.
//
// An Engine owns the cached collection, the projection derived from it, the
// add form, and the active dialog. All repository calls go through it. It is
// safe for concurrent use; the busy flag lets at most one call run at a time.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"taskman/internal/projection"
	"taskman/internal/service"
)

// User-facing messages. Raw errors are logged, never shown.
const (
	MsgLoadFailed       = "Failed to load tasks."
	MsgAddFailed        = "Failed to add task."
	MsgUpdateFailed     = "Failed to update task."
	MsgDeleteFailed     = "Failed to delete task."
	MsgSaveFailed       = "Failed to save task changes."
	MsgLoginFailed      = "Login failed. Please check your username and password."
	MsgTitleRequired    = "Title is required"
	MsgUserCreated      = "User created successfully!"
	MsgCreateUserFailed = "Failed to create user. Please try a different username."
)

// DefaultTimeout bounds each repository call.
const DefaultTimeout = 10 * time.Second

var (
	// ErrBusy is returned when a call is attempted while another is in flight.
	ErrBusy = errors.New("engine: another operation is in progress")

	// ErrStale is returned when the session ended while the call was in flight.
	// The response was dropped.
	ErrStale = errors.New("engine: session ended during request")

	// ErrClosed is returned by every call after Close.
	ErrClosed = errors.New("engine: closed")
)

// ActionError is a failed repository call. Error returns the fixed
// user-facing message; Unwrap returns the raw cause.
type ActionError struct {
	Message string
	Err     error
}

func (e *ActionError) Error() string { return e.Message }
func (e *ActionError) Unwrap() error { return e.Err }

// Session is the credential holder the engine logs in and out of.
// *session.Store satisfies it.
type Session interface {
	HasCredential() bool
	SetCredential(token *oauth2.Token) error
	ClearCredential() error
}

// Options configures an Engine. Zero values select the defaults.
type Options struct {
	Filter  projection.Filter
	Sort    projection.Sort
	Timeout time.Duration
	Logger  *slog.Logger

	// LoginTimeout bounds Login. It defaults to Timeout; backends that
	// log in through a browser need longer.
	LoginTimeout time.Duration
}

// Engine is the client-side task state.
type Engine struct {
	backend service.Backend
	session Session
	logger  *slog.Logger
	timeout time.Duration

	loginTimeout time.Duration

	defaultFilter projection.Filter
	defaultSort   projection.Sort

	mu     sync.Mutex
	gen    uint64
	closed bool

	busy     bool
	errMsg   string
	loginErr string
	tasks    []service.Task
	view     []service.Task
	filter   projection.Filter
	sort     projection.Sort

	addTitle       string
	addDescription string

	dialog Dialog
}

// New creates an engine over backend and session.
func New(backend service.Backend, sess Session, opts Options) *Engine {
	if opts.Filter == "" {
		opts.Filter = projection.FilterAll
	}
	if opts.Sort == (projection.Sort{}) {
		opts.Sort = projection.DefaultSort
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.LoginTimeout <= 0 {
		opts.LoginTimeout = opts.Timeout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	e := &Engine{
		backend:       backend,
		session:       sess,
		logger:        opts.Logger,
		timeout:       opts.Timeout,
		loginTimeout:  opts.LoginTimeout,
		defaultFilter: opts.Filter,
		defaultSort:   opts.Sort,
	}
	e.reset()
	return e
}

// reset returns every piece of state to the logged-out baseline.
// Caller holds mu.
func (e *Engine) reset() {
	e.busy = false
	e.errMsg = ""
	e.loginErr = ""
	e.tasks = nil
	e.filter = e.defaultFilter
	e.sort = e.defaultSort
	e.addTitle = ""
	e.addDescription = ""
	e.dialog = Dialog{}
	e.recomputeProjection()
}

// recomputeProjection rebuilds the view. Caller holds mu and calls it after
// every change to the collection, the filter or the sort.
func (e *Engine) recomputeProjection() {
	e.view = projection.Project(e.tasks, e.filter, e.sort)
}

// begin enters busy and returns the generation the call belongs to.
func (e *Engine) begin() (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrClosed
	}
	if e.busy {
		return 0, ErrBusy
	}
	e.busy = true
	e.errMsg = ""
	return e.gen, nil
}

// end leaves busy, unless the generation moved on in the meantime.
func (e *Engine) end(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen == gen {
		e.busy = false
	}
}

// call runs fn with the per-call timeout.
func (e *Engine) call(ctx context.Context, fn func(ctx context.Context) error) error {
	return e.callWithin(ctx, e.timeout, fn)
}

func (e *Engine) callWithin(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(ctx)
}

// fail records msg for a failed call in generation gen.
func (e *Engine) fail(gen uint64, op, msg string, err error) error {
	e.logger.Debug("request failed", "op", op, "err", err)
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return ErrStale
	}
	e.errMsg = msg
	return &ActionError{Message: msg, Err: err}
}

// Refresh replaces the collection with a fresh fetch. On failure the previous
// collection stays visible and the error slot reads MsgLoadFailed.
func (e *Engine) Refresh(ctx context.Context) error {
	gen, err := e.begin()
	if err != nil {
		return err
	}
	defer e.end(gen)
	return e.refresh(ctx, gen)
}

// refresh fetches inside an operation that already holds busy.
func (e *Engine) refresh(ctx context.Context, gen uint64) error {
	var tasks []service.Task
	err := e.call(ctx, func(ctx context.Context) error {
		var err error
		tasks, err = e.backend.List(ctx)
		return err
	})
	if err != nil {
		return e.fail(gen, "list", MsgLoadFailed, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		return ErrStale
	}
	e.tasks = tasks
	e.errMsg = ""
	e.recomputeProjection()
	e.logger.Debug("collection refreshed", "tasks", len(tasks))
	return nil
}

// SetFilter changes the filter and recomputes the projection.
func (e *Engine) SetFilter(f projection.Filter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filter = f
	e.recomputeProjection()
}

// SetSort changes the sort spec and recomputes the projection.
func (e *Engine) SetSort(s projection.Sort) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sort = s
	e.recomputeProjection()
}

// Task returns the cached task with id.
func (e *Engine) Task(id string) (service.Task, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	i := slices.IndexFunc(e.tasks, func(t service.Task) bool { return t.ID == id })
	if i < 0 {
		return service.Task{}, false
	}
	return e.tasks[i], true
}

// Login exchanges credentials for a session credential and loads the
// collection. Any failure reads MsgLoginFailed, whatever the cause.
func (e *Engine) Login(ctx context.Context, creds service.Credentials) error {
	gen, err := e.begin()
	if err != nil {
		return err
	}
	defer e.end(gen)

	e.mu.Lock()
	e.loginErr = ""
	e.mu.Unlock()

	var token *oauth2.Token
	err = e.callWithin(ctx, e.loginTimeout, func(ctx context.Context) error {
		var err error
		token, err = e.backend.Login(ctx, creds)
		return err
	})
	if err == nil {
		// Check and store under one lock: a Logout in between must win.
		e.mu.Lock()
		if e.gen != gen {
			e.mu.Unlock()
			return ErrStale
		}
		err = e.session.SetCredential(token)
		e.mu.Unlock()
	}
	if err != nil {
		e.logger.Debug("request failed", "op", "login", "err", err)
		e.mu.Lock()
		defer e.mu.Unlock()
		if e.gen != gen {
			return ErrStale
		}
		e.loginErr = MsgLoginFailed
		return &ActionError{Message: MsgLoginFailed, Err: err}
	}

	return e.refresh(ctx, gen)
}

// Logout clears the credential and resets all state. Responses still in
// flight are dropped when they arrive.
func (e *Engine) Logout() error {
	e.mu.Lock()
	e.gen++
	e.reset()
	e.mu.Unlock()
	return e.session.ClearCredential()
}

// Close stops the engine. Later calls return ErrClosed and in-flight
// responses are dropped. The credential is kept.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.closed = true
	e.busy = false
}

// Snapshot is a copy of the engine state for rendering.
type Snapshot struct {
	LoggedIn   bool
	Busy       bool
	Error      string
	LoginError string

	// Tasks is the projection; Total counts the whole collection.
	Tasks  []service.Task
	Total  int
	Filter projection.Filter
	Sort   projection.Sort

	AddTitle       string
	AddDescription string

	Dialog Dialog
}

// Snapshot returns the current state. The caller owns the returned slices.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		LoggedIn:       e.session.HasCredential(),
		Busy:           e.busy,
		Error:          e.errMsg,
		LoginError:     e.loginErr,
		Tasks:          slices.Clone(e.view),
		Total:          len(e.tasks),
		Filter:         e.filter,
		Sort:           e.sort,
		AddTitle:       e.addTitle,
		AddDescription: e.addDescription,
		Dialog:         e.dialog,
	}
}
