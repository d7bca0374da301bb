package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskman/internal/exitcode"
)

func init() {
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles, so running it on a
// completed task reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string          { return "done" }
func (c *DoneCmd) Aliases() []string     { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string      { return "Toggle a task's completion" }
func (c *DoneCmd) Usage() string         { return "taskman done <id>" }
func (c *DoneCmd) Requires() Requirement { return NeedsSession }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, code := resolveTask(ctx, env, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := env.Engine.ToggleComplete(ctx, task); err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		if task.Completed {
			fmt.Fprintln(out, "reopened")
		} else {
			fmt.Fprintln(out, "ok")
		}
	}
	return exitcode.Success
}
