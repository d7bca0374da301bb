package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskman/internal/exitcode"
	"taskman/internal/output"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string          { return "rm" }
func (c *RmCmd) Aliases() []string     { return []string{"delete"} }
func (c *RmCmd) Synopsis() string      { return "Delete a task" }
func (c *RmCmd) Usage() string         { return "taskman rm <id>" }
func (c *RmCmd) Requires() Requirement { return NeedsSession }

func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	task, code := resolveTask(ctx, env, args, errOut)
	if code != exitcode.Success {
		return code
	}

	// The command line is the confirmation.
	if err := env.Engine.OpenDelete(task); err != nil {
		return reportError(errOut, err)
	}
	defer env.Engine.CancelDialog()

	if err := env.Engine.ConfirmDelete(ctx); err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintf(out, "deleted: %s\n", output.NormalizeTitle(task.Title))
	}
	return exitcode.Success
}
