// Package main is the entry point for taskd, the task server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"taskman/internal/server"
	"taskman/internal/storage"
)

// SecretEnv supplies the token signing secret when --secret is not given.
const SecretEnv = "TASKD_SECRET"

type options struct {
	addr     string
	dbPath   string
	secret   string
	tokenTTL time.Duration
	debug    bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "taskd",
		Short:         "Serve the taskman task API",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.secret == "" {
				opts.secret = os.Getenv(SecretEnv)
			}
			return serve(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.addr, "addr", ":5000", "listen address")
	flags.StringVar(&opts.dbPath, "db", "taskd.db", "SQLite database path")
	flags.StringVar(&opts.secret, "secret", "", "token signing secret (or $"+SecretEnv+")")
	flags.DurationVar(&opts.tokenTTL, "token-ttl", time.Hour, "bearer token lifetime")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	return cmd
}

func serve(ctx context.Context, opts options) error {
	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	if !opts.debug {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.NewSQLiteStore(opts.dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	srv := server.New(server.Config{
		Addr:     opts.addr,
		Secret:   opts.secret,
		TokenTTL: opts.tokenTTL,
	}, store, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
