package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"taskman/internal/engine"
	"taskman/internal/exitcode"
	"taskman/internal/service"
)

func init() {
	Register(&RegisterCmd{})
}

// RegisterCmd implements the register command.
type RegisterCmd struct {
	password string
}

func (c *RegisterCmd) Name() string          { return "register" }
func (c *RegisterCmd) Aliases() []string     { return []string{"useradd"} }
func (c *RegisterCmd) Synopsis() string      { return "Create a user account" }
func (c *RegisterCmd) Usage() string         { return "taskman register [--password <password>] <username>" }
func (c *RegisterCmd) Requires() Requirement { return NeedsBackend }

func (c *RegisterCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.password, "password", "p", "", "password (or $"+PasswordEnv+")")
}

func (c *RegisterCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: username required")
		return exitcode.UserError
	}
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	password := passwordFrom(c.password)
	if password == "" {
		fmt.Fprintf(errOut, "error: password required (use --password or $%s)\n", PasswordEnv)
		return exitcode.UserError
	}

	if err := env.Engine.OpenCreateUser(); err != nil {
		return reportError(errOut, err)
	}
	defer env.Engine.CancelDialog()

	env.Engine.SetCreateUserFields(args[0], password)
	err := env.Engine.ConfirmCreateUser(ctx)
	dialog := env.Engine.Snapshot().Dialog

	if errors.Is(err, service.ErrUnsupported) {
		fmt.Fprintf(errOut, "error: the %s backend does not support registration\n", env.Config.Backend)
		return exitcode.UserError
	}
	var actionErr *engine.ActionError
	if errors.As(err, &actionErr) {
		fmt.Fprintf(errOut, "error: %s\n", dialog.Error)
		return exitcode.UserError
	}
	if err != nil {
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, dialog.Success)
	}
	return exitcode.Success
}
