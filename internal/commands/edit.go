package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskman/internal/engine"
	"taskman/internal/exitcode"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct {
	title       string
	description string
	fs          *pflag.FlagSet
}

func (c *EditCmd) Name() string          { return "edit" }
func (c *EditCmd) Aliases() []string     { return nil }
func (c *EditCmd) Synopsis() string      { return "Change a task's title or description" }
func (c *EditCmd) Usage() string         { return "taskman edit [--title <text>] [--description <text>] <id>" }
func (c *EditCmd) Requires() Requirement { return NeedsSession }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	c.fs = fs
	fs.StringVarP(&c.title, "title", "t", "", "new title")
	fs.StringVarP(&c.description, "description", "d", "", "new description")
}

func (c *EditCmd) changed(name string) bool {
	return c.fs != nil && c.fs.Changed(name)
}

func (c *EditCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if !c.changed("title") && !c.changed("description") {
		fmt.Fprintln(errOut, "error: nothing to change (use --title or --description)")
		return exitcode.UserError
	}

	task, code := resolveTask(ctx, env, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := env.Engine.OpenEdit(task); err != nil {
		return reportError(errOut, err)
	}
	defer env.Engine.CancelDialog()

	title, description := task.Title, task.Description
	if c.changed("title") {
		title = c.title
	}
	if c.changed("description") {
		description = c.description
	}
	env.Engine.SetEditFields(title, description)

	err := env.Engine.ConfirmEdit(ctx)
	if errors.Is(err, engine.ErrTitleRequired) {
		fmt.Fprintf(errOut, "error: %s\n", env.Engine.Snapshot().Dialog.Validation)
		return exitcode.UserError
	}
	if err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
