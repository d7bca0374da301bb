// Package cli parses the command line and runs commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"taskman/internal/commands"
	"taskman/internal/config"
	"taskman/internal/engine"
	"taskman/internal/exitcode"
	"taskman/internal/projection"
	"taskman/internal/service"
	"taskman/internal/session"
)

// BackendFactory creates the backend selected by cfg. Task calls read the
// credential from sess on every request.
type BackendFactory func(ctx context.Context, cfg *config.Config, sess *session.Store, errOut io.Writer) (service.Backend, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  BackendFactory
}

// NewDispatcher creates a new dispatcher with the given registry and backend factory.
func NewDispatcher(registry *commands.Registry, factory BackendFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// Flags require a command
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	// Common flags
	var configDir string
	var quiet bool
	var debug bool

	fs.StringVar(&configDir, "config", "", "override config directory")
	fs.BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	fs.BoolVar(&debug, "debug", false, "print debug logs to stderr")

	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.New(configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	cfg.Quiet = quiet
	cfg.Debug = debug
	if err := cfg.Load(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	logger := cfg.Logger(errOut)
	sess := session.Open(cfg.TokenPath())
	env := &commands.Env{Config: cfg, Session: sess, Logger: logger}

	if cmd.Requires() >= commands.NeedsBackend {
		if cfg.Backend == config.BackendGoogleTasks && !cfg.HasOAuthClient() {
			printOAuthSetup(errOut, cfg)
			return exitcode.AuthError
		}
		if cmd.Requires() == commands.NeedsSession && !sess.HasCredential() {
			fmt.Fprintln(errOut, "error: not logged in (run: taskman login)")
			return exitcode.AuthError
		}

		opts, err := engineOptions(cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
		opts.Logger = logger

		backend, err := d.factory(ctx, cfg, sess, errOut)
		if err != nil {
			logger.Debug("backend setup failed", "backend", cfg.Backend, "err", err)
			fmt.Fprintf(errOut, "error: %s backend: %v\n", cfg.Backend, err)
			return exitcode.ForError(err)
		}

		env.Engine = engine.New(backend, sess, opts)
		defer env.Engine.Close()
	}

	logger.Debug("running command", "command", cmd.Name(), "backend", cfg.Backend, "config", cfg.Dir)
	return cmd.Run(ctx, env, fs.Args(), out, errOut)
}

// engineOptions turns config.yaml settings into engine options.
func engineOptions(cfg *config.Config) (engine.Options, error) {
	filter, err := projection.ParseFilter(cfg.Filter)
	if err != nil {
		return engine.Options{}, fmt.Errorf("%s: %w", config.SettingsFile, err)
	}
	sort, err := projection.ParseSort(cfg.Sort, cfg.Order)
	if err != nil {
		return engine.Options{}, fmt.Errorf("%s: %w", config.SettingsFile, err)
	}
	opts := engine.Options{Filter: filter, Sort: sort, Timeout: cfg.Timeout}
	if cfg.Backend == config.BackendGoogleTasks {
		opts.LoginTimeout = browserLoginTimeout
	}
	return opts, nil
}

// browserLoginTimeout leaves room for the Google consent screen.
const browserLoginTimeout = 6 * time.Minute

func printOAuthSetup(errOut io.Writer, cfg *config.Config) {
	fmt.Fprintf(errOut, "error: oauth_client.json not found in %s\n\n", cfg.Dir)
	fmt.Fprintln(errOut, "To use the Google Tasks backend, you need OAuth credentials:")
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "1. Go to https://console.cloud.google.com/apis/credentials")
	fmt.Fprintln(errOut, "2. Create a project (or select an existing one)")
	fmt.Fprintln(errOut, "3. Enable the Google Tasks API:")
	fmt.Fprintln(errOut, "   https://console.cloud.google.com/apis/library/tasks.googleapis.com")
	fmt.Fprintln(errOut, "4. Create OAuth 2.0 credentials:")
	fmt.Fprintln(errOut, "   - Click 'Create Credentials' > 'OAuth client ID'")
	fmt.Fprintln(errOut, "   - Choose 'Desktop app' as application type")
	fmt.Fprintln(errOut, "   - Download the JSON file")
	fmt.Fprintln(errOut, "5. Save it as:")
	fmt.Fprintf(errOut, "   %s\n", cfg.OAuthClientPath())
	fmt.Fprintln(errOut, "")
	fmt.Fprintln(errOut, "Then run 'taskman login'.")
}
