package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"taskman/internal/engine"
	"taskman/internal/output"
)

func (m model) View() string {
	if m.snap.Dialog.Open() {
		return m.place(m.viewDialog())
	}
	if !m.snap.LoggedIn {
		return m.place(m.viewLogin())
	}
	return m.viewTasks()
}

// place centres a box on screen once the size is known.
func (m model) place(s string) string {
	if m.width == 0 || m.height == 0 {
		return s
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, s)
}

func (m model) viewLogin() string {
	lines := []string{
		titleStyle.Render("Login"),
		"",
		m.username.View(),
		m.password.View(),
		"",
		mutedStyle.Render("enter: login   tab: next field   ctrl+n: create user   esc: quit"),
	}
	if m.snap.Busy {
		lines = append(lines, "", mutedStyle.Render("Logging in..."))
	}
	if m.snap.LoginError != "" {
		lines = append(lines, "", errorStyle.Render(m.snap.LoginError))
	}
	if m.notice != "" {
		lines = append(lines, "", errorStyle.Render(m.notice))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func (m model) viewTasks() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Task Manager"))
	b.WriteString("\n")
	switch {
	case m.snap.Busy:
		b.WriteString(mutedStyle.Render("Loading..."))
	case m.snap.Error != "":
		b.WriteString(errorStyle.Render(m.snap.Error))
	case m.notice != "":
		b.WriteString(errorStyle.Render(m.notice))
	}
	b.WriteString("\n\n")

	b.WriteString(m.title.View())
	b.WriteString("\n")
	b.WriteString(m.description.View())
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s\n", mutedStyle.Render(fmt.Sprintf(
		"filter: %s   sort: %s %s   %d of %d tasks",
		m.snap.Filter, m.snap.Sort.Field, m.snap.Sort.Order, len(m.snap.Tasks), m.snap.Total)))

	if len(m.snap.Tasks) == 0 {
		b.WriteString(mutedStyle.Render("no tasks"))
		b.WriteString("\n")
	}
	for i, task := range m.snap.Tasks {
		row := fmt.Sprintf("%4s  %s %s", task.ID, output.Checkbox(task.Completed), output.NormalizeTitle(task.Title))
		if task.Description != "" {
			row += "  " + mutedStyle.Render(task.Description)
		}
		switch {
		case i == m.cursor && m.focus == fieldNone:
			row = selectedStyle.Render(row)
		case task.Completed:
			row = doneStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.focus == fieldNone {
		b.WriteString(mutedStyle.Render("space: toggle  e: edit  d: delete  a: add  f: filter  s: sort  o: order  r: refresh  ctrl+l: logout  q: quit"))
	} else {
		b.WriteString(mutedStyle.Render("enter: add task   tab: next field   esc: back to list"))
	}
	return b.String()
}

func (m model) viewDialog() string {
	d := m.snap.Dialog
	var lines []string
	switch d.Kind {
	case engine.DialogEdit:
		lines = []string{
			titleStyle.Render("Edit Task"),
			"",
			m.editTitle.View(),
			m.editDesc.View(),
			"",
			mutedStyle.Render("enter: save   tab: next field   esc: cancel"),
		}
		if d.Validation != "" {
			lines = append(lines, "", errorStyle.Render(d.Validation))
		}
		if m.snap.Error != "" {
			lines = append(lines, "", errorStyle.Render(m.snap.Error))
		}

	case engine.DialogDelete:
		lines = []string{
			titleStyle.Render("Confirm Delete"),
			"",
			fmt.Sprintf("Are you sure you want to delete %q?", output.NormalizeTitle(d.Subject.Title)),
			"",
			mutedStyle.Render("y/enter: delete   n/esc: cancel"),
		}
		if m.snap.Error != "" {
			lines = append(lines, "", errorStyle.Render(m.snap.Error))
		}

	case engine.DialogCreateUser:
		lines = []string{
			titleStyle.Render("Create User"),
			"",
			m.newUsername.View(),
			m.newPassword.View(),
			"",
			mutedStyle.Render("enter: create   tab: next field   esc: close"),
		}
		if d.Error != "" {
			lines = append(lines, "", errorStyle.Render(d.Error))
		}
		if d.Success != "" {
			lines = append(lines, "", successStyle.Render(d.Success))
		}
	}
	if m.snap.Busy {
		lines = append(lines, "", mutedStyle.Render("Working..."))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}
