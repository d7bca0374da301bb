package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"taskman/internal/config"
	"taskman/internal/exitcode"
	"taskman/internal/service"
)

// PasswordEnv supplies the password to login and register when --password is not given.
const PasswordEnv = "TASKMAN_PASSWORD"

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
type LoginCmd struct {
	username string
	password string
}

func (c *LoginCmd) Name() string          { return "login" }
func (c *LoginCmd) Aliases() []string     { return nil }
func (c *LoginCmd) Synopsis() string      { return "Authenticate with the task server" }
func (c *LoginCmd) Usage() string         { return "taskman login [--username <name>] [--password <password>]" }
func (c *LoginCmd) Requires() Requirement { return NeedsBackend }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.username, "username", "u", "", "account name (rest backend)")
	fs.StringVarP(&c.password, "password", "p", "", "password (or $"+PasswordEnv+")")
}

func (c *LoginCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	// A stored credential that still works needs no new login, unless a
	// different account was asked for.
	if c.username == "" && env.Session.HasCredential() {
		if err := env.Engine.Refresh(ctx); err == nil {
			if !env.Config.Quiet {
				fmt.Fprintln(out, "already logged in")
			}
			return exitcode.Success
		}
	}

	creds := service.Credentials{Username: c.username, Password: passwordFrom(c.password)}
	if env.Config.Backend == config.BackendREST {
		if creds.Username == "" {
			fmt.Fprintln(errOut, "error: username required (use --username)")
			return exitcode.UserError
		}
		if creds.Password == "" {
			fmt.Fprintf(errOut, "error: password required (use --password or $%s)\n", PasswordEnv)
			return exitcode.UserError
		}
	}

	if err := env.Engine.Login(ctx, creds); err != nil {
		if env.Engine.Snapshot().LoginError != "" {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.AuthError
		}
		// Logged in, but the first fetch failed.
		return reportError(errOut, err)
	}

	if !env.Config.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

func passwordFrom(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(PasswordEnv)
}
