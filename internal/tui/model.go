package tui

import (
	"context"
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"taskman/internal/engine"
	"taskman/internal/projection"
	"taskman/internal/service"
)

// msgLogoutFailed is shown when the stored credential could not be removed.
const msgLogoutFailed = "Logout failed: the saved login could not be removed."

// opDoneMsg reports a finished engine call.
type opDoneMsg struct {
	op  string
	err error
}

// field is the focused text input; fieldNone means the task table.
type field int

const (
	fieldNone field = iota
	fieldUsername
	fieldPassword
	fieldTitle
	fieldDescription
	fieldEditTitle
	fieldEditDescription
	fieldNewUsername
	fieldNewPassword
)

type model struct {
	ctx  context.Context
	eng  *engine.Engine
	snap engine.Snapshot

	width  int
	height int
	cursor int
	focus  field

	// notice is local feedback that is not engine state.
	notice string

	username    textinput.Model
	password    textinput.Model
	title       textinput.Model
	description textinput.Model
	editTitle   textinput.Model
	editDesc    textinput.Model
	newUsername textinput.Model
	newPassword textinput.Model
}

func newInput(placeholder string, limit int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = limit
	in.Width = 40
	return in
}

func newModel(ctx context.Context, eng *engine.Engine) model {
	m := model{
		ctx:         ctx,
		eng:         eng,
		username:    newInput("Username", 80),
		password:    newInput("Password", 128),
		title:       newInput("Task Title", 200),
		description: newInput("Task Description", 1000),
		editTitle:   newInput("Task Title", 200),
		editDesc:    newInput("Task Description", 1000),
		newUsername: newInput("Username", 80),
		newPassword: newInput("Password", 128),
	}
	m.password.EchoMode = textinput.EchoPassword
	m.newPassword.EchoMode = textinput.EchoPassword

	m.snap = eng.Snapshot()
	m.focus = m.restingFocus()
	m.applyFocus()
	return m
}

func (m model) Init() tea.Cmd {
	if m.snap.LoggedIn {
		return tea.Batch(textinput.Blink, m.run("refresh", m.eng.Refresh))
	}
	return textinput.Blink
}

// run wraps an engine call as a command.
func (m model) run(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m *model) input(f field) *textinput.Model {
	switch f {
	case fieldUsername:
		return &m.username
	case fieldPassword:
		return &m.password
	case fieldTitle:
		return &m.title
	case fieldDescription:
		return &m.description
	case fieldEditTitle:
		return &m.editTitle
	case fieldEditDescription:
		return &m.editDesc
	case fieldNewUsername:
		return &m.newUsername
	case fieldNewPassword:
		return &m.newPassword
	}
	return nil
}

func (m *model) applyFocus() {
	for f := fieldUsername; f <= fieldNewPassword; f++ {
		in := m.input(f)
		if f == m.focus {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

// restingFocus is where focus goes when no dialog is open.
func (m model) restingFocus() field {
	if m.snap.LoggedIn {
		return fieldNone
	}
	return fieldUsername
}

func (m *model) setFocus(f field) {
	m.focus = f
	m.applyFocus()
}

// sync reloads the snapshot and fixes up cursor and focus.
func (m *model) sync() {
	m.snap = m.eng.Snapshot()
	if m.cursor >= len(m.snap.Tasks) {
		m.cursor = len(m.snap.Tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.snap.Dialog.Open() {
		return
	}
	onLogin := m.focus == fieldUsername || m.focus == fieldPassword
	if m.focus >= fieldEditTitle || onLogin == m.snap.LoggedIn {
		m.setFocus(m.restingFocus())
	}
}

func (m model) selected() (service.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.snap.Tasks) {
		return service.Task{}, false
	}
	return m.snap.Tasks[m.cursor], true
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case opDoneMsg:
		return m.done(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.eng.Close()
			return m, tea.Quit
		}
		switch m.snap.Dialog.Kind {
		case engine.DialogEdit:
			return m.updateEdit(msg)
		case engine.DialogDelete:
			return m.updateDelete(msg)
		case engine.DialogCreateUser:
			return m.updateCreateUser(msg)
		}
		if !m.snap.LoggedIn {
			return m.updateLogin(msg)
		}
		if m.focus == fieldNone {
			return m.updateTable(msg)
		}
		return m.updateAddForm(msg)
	}
	return m.updateInput(msg)
}

func (m model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	in := m.input(m.focus)
	if in == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m model) done(msg opDoneMsg) model {
	m.notice = ""
	switch {
	case errors.Is(msg.err, engine.ErrBusy):
		m.notice = "Busy, try again in a moment."
	case errors.Is(msg.err, engine.ErrTitleRequired) && msg.op == "add":
		m.notice = engine.MsgTitleRequired
	}

	if msg.err == nil {
		switch msg.op {
		case "add":
			m.title.SetValue("")
			m.description.SetValue("")
			m.setFocus(fieldTitle)
		case "login":
			m.password.SetValue("")
		case "create-user":
			m.newUsername.SetValue("")
			m.newPassword.SetValue("")
			m.setFocus(fieldNewUsername)
		}
	}

	m.sync()
	return m
}

func (m model) logout() model {
	m.notice = ""
	if err := m.eng.Logout(); err != nil {
		m.notice = msgLogoutFailed
	}
	m.username.SetValue("")
	m.password.SetValue("")
	m.title.SetValue("")
	m.description.SetValue("")
	m.cursor = 0
	m.snap = m.eng.Snapshot()
	m.setFocus(fieldUsername)
	return m
}

func (m model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.eng.Close()
		return m, tea.Quit
	case "tab", "shift+tab", "up", "down":
		if m.focus == fieldUsername {
			m.setFocus(fieldPassword)
		} else {
			m.setFocus(fieldUsername)
		}
		return m, nil
	case "enter":
		creds := service.Credentials{Username: m.username.Value(), Password: m.password.Value()}
		return m, m.run("login", func(ctx context.Context) error {
			return m.eng.Login(ctx, creds)
		})
	case "ctrl+n":
		if err := m.eng.OpenCreateUser(); err == nil {
			m.newUsername.SetValue("")
			m.newPassword.SetValue("")
			m.snap = m.eng.Snapshot()
			m.setFocus(fieldNewUsername)
		}
		return m, nil
	}
	return m.updateInput(msg)
}

func (m model) updateTable(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		m.eng.Close()
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snap.Tasks)-1 {
			m.cursor++
		}
	case "f":
		m.eng.SetFilter(m.snap.Filter.Next())
		m.sync()
	case "s":
		sort := m.snap.Sort
		if sort.Field == projection.FieldTitle {
			sort.Field = projection.FieldID
		} else {
			sort.Field = projection.FieldTitle
		}
		m.eng.SetSort(sort)
		m.sync()
	case "o":
		sort := m.snap.Sort
		sort.Order = sort.Order.Reverse()
		m.eng.SetSort(sort)
		m.sync()
	case " ":
		if task, ok := m.selected(); ok {
			return m, m.run("toggle", func(ctx context.Context) error {
				return m.eng.ToggleComplete(ctx, task)
			})
		}
	case "e":
		if task, ok := m.selected(); ok && m.eng.OpenEdit(task) == nil {
			m.snap = m.eng.Snapshot()
			m.editTitle.SetValue(m.snap.Dialog.Title)
			m.editDesc.SetValue(m.snap.Dialog.Description)
			m.setFocus(fieldEditTitle)
		}
	case "d":
		if task, ok := m.selected(); ok && m.eng.OpenDelete(task) == nil {
			m.snap = m.eng.Snapshot()
		}
	case "r":
		return m, m.run("refresh", m.eng.Refresh)
	case "a", "tab":
		m.setFocus(fieldTitle)
	case "ctrl+l":
		return m.logout(), nil
	}
	return m, nil
}

func (m model) updateAddForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.setFocus(fieldNone)
		return m, nil
	case "tab":
		if m.focus == fieldTitle {
			m.setFocus(fieldDescription)
		} else {
			m.setFocus(fieldNone)
		}
		return m, nil
	case "shift+tab":
		if m.focus == fieldDescription {
			m.setFocus(fieldTitle)
		} else {
			m.setFocus(fieldNone)
		}
		return m, nil
	case "enter":
		m.eng.SetAddFields(m.title.Value(), m.description.Value())
		return m, m.run("add", m.eng.SubmitAddForm)
	}
	return m.updateInput(msg)
}

func (m model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.eng.CancelDialog()
		m.sync()
		return m, nil
	case "tab", "shift+tab":
		if m.focus == fieldEditTitle {
			m.setFocus(fieldEditDescription)
		} else {
			m.setFocus(fieldEditTitle)
		}
		return m, nil
	case "enter":
		m.eng.SetEditFields(m.editTitle.Value(), m.editDesc.Value())
		return m, m.run("edit", m.eng.ConfirmEdit)
	}
	return m.updateInput(msg)
}

func (m model) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "enter":
		return m, m.run("delete", m.eng.ConfirmDelete)
	case "n", "esc":
		m.eng.CancelDialog()
		m.sync()
	}
	return m, nil
}

func (m model) updateCreateUser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.eng.CancelDialog()
		m.sync()
		return m, nil
	case "tab", "shift+tab":
		if m.focus == fieldNewUsername {
			m.setFocus(fieldNewPassword)
		} else {
			m.setFocus(fieldNewUsername)
		}
		return m, nil
	case "enter":
		m.eng.SetCreateUserFields(m.newUsername.Value(), m.newPassword.Value())
		return m, m.run("create-user", m.eng.ConfirmCreateUser)
	}
	return m.updateInput(msg)
}
