// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/pflag"

	"taskman/internal/config"
	"taskman/internal/engine"
	"taskman/internal/session"
)

// Requirement says what a command needs before it can run.
type Requirement int

const (
	// NeedsNothing commands run without a backend (help, version, logout).
	NeedsNothing Requirement = iota

	// NeedsBackend commands get an engine but may run logged out (login, register).
	NeedsBackend

	// NeedsSession commands get an engine and a stored credential.
	NeedsSession
)

// Env is what a command runs against.
type Env struct {
	// Config is always set.
	Config *config.Config

	// Session is always set.
	Session *session.Store

	// Engine is nil for NeedsNothing commands.
	Engine *engine.Engine

	Logger *slog.Logger
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// Requires reports what the dispatcher must set up before Run.
	Requires() Requirement

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *pflag.FlagSet)

	// Run executes the command.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int
}
