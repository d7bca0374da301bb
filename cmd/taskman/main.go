// Package main is the entry point for the taskman CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"taskman/internal/backend/googletasks"
	"taskman/internal/backend/rest"
	"taskman/internal/cli"
	"taskman/internal/commands"
	"taskman/internal/config"
	"taskman/internal/service"
	"taskman/internal/session"
)

func main() {
	// Create context that cancels on interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, newBackend)

	// Run and exit with code
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

// newBackend picks the backend named in config.yaml.
func newBackend(ctx context.Context, cfg *config.Config, sess *session.Store, errOut io.Writer) (service.Backend, error) {
	switch cfg.Backend {
	case config.BackendGoogleTasks:
		oauthConfig, err := googletasks.LoadOAuthConfig(cfg.OAuthClientPath())
		if err != nil {
			return nil, err
		}
		client, err := googletasks.New(ctx, oauthConfig, sess, errOut, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.BackendREST:
		return rest.New(cfg.Server, sess, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
