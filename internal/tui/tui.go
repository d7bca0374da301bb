// Package tui is the full-screen client. Every state change goes through
// the engine; the view is drawn from engine snapshots.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"taskman/internal/engine"
)

// Run shows the client until the user quits or ctx is cancelled.
func Run(ctx context.Context, eng *engine.Engine, opts ...tea.ProgramOption) error {
	m := newModel(ctx, eng)
	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
