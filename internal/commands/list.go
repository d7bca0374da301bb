package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskman/internal/exitcode"
	"taskman/internal/output"
	"taskman/internal/projection"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
type ListCmd struct {
	filter string
	field  string
	order  string
}

func (c *ListCmd) Name() string          { return "list" }
func (c *ListCmd) Aliases() []string     { return []string{"ls"} }
func (c *ListCmd) Synopsis() string      { return "List tasks" }
func (c *ListCmd) Usage() string         { return "taskman list [--filter <f>] [--sort <field>] [--order <asc|desc>]" }
func (c *ListCmd) Requires() Requirement { return NeedsSession }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.filter, "filter", "f", "", "all, completed or incomplete")
	fs.StringVarP(&c.field, "sort", "s", "", "title or id")
	fs.StringVarP(&c.order, "order", "o", "", "asc or desc")
}

func (c *ListCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	// Flags override config.yaml, which the engine already starts from.
	snap := env.Engine.Snapshot()
	if c.filter != "" {
		filter, err := projection.ParseFilter(c.filter)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		env.Engine.SetFilter(filter)
	}
	if c.field != "" || c.order != "" {
		field, order := string(snap.Sort.Field), string(snap.Sort.Order)
		if c.field != "" {
			field = c.field
		}
		if c.order != "" {
			order = c.order
		}
		sort, err := projection.ParseSort(field, order)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		env.Engine.SetSort(sort)
	}

	if err := env.Engine.Refresh(ctx); err != nil {
		return reportError(errOut, err)
	}

	snap = env.Engine.Snapshot()
	output.FormatTasks(out, snap.Tasks, snap.Total, snap.Filter, snap.Sort)
	return exitcode.Success
}
