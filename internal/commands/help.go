package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskman/internal/exitcode"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string          { return "help" }
func (c *HelpCmd) Aliases() []string     { return nil }
func (c *HelpCmd) Synopsis() string      { return "Print usage" }
func (c *HelpCmd) Usage() string         { return "taskman help [command]" }
func (c *HelpCmd) Requires() Requirement { return NeedsNothing }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, ok := DefaultRegistry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "Usage: %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		return exitcode.Success
	}

	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  taskman                                             List tasks
  taskman list [common flags] [--filter <f>] [--sort <title|id>] [--order <asc|desc>]
  taskman add [common flags] [--description <text>] <title...>
  taskman done [common flags] <id>                    Toggle completion
  taskman edit [common flags] [--title <text>] [--description <text>] <id>
  taskman rm [common flags] <id>
  taskman ui [common flags]                           Full-screen client
  taskman login [common flags] [--username <name>] [--password <password>]
  taskman register [common flags] [--password <password>] <username>
  taskman logout [common flags]
  taskman help [command]
  taskman version

Filters: all, completed, incomplete

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Environment:
  TASKMAN_SERVER    Task server URL (overrides config.yaml)
  TASKMAN_PASSWORD  Password for login and register
`
