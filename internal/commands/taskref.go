package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"taskman/internal/engine"
	"taskman/internal/exitcode"
	"taskman/internal/service"
)

// ErrTaskIDRequired indicates no task id was provided.
var ErrTaskIDRequired = errors.New("task id required")

// ParseTaskID parses the single task id argument.
// Ids are opaque: numeric on taskd, alphanumeric on Google Tasks.
func ParseTaskID(args []string) (string, error) {
	if len(args) == 0 {
		return "", ErrTaskIDRequired
	}
	if len(args) > 1 {
		return "", fmt.Errorf("unexpected argument: %s", args[1])
	}
	id := strings.TrimSpace(args[0])
	if id == "" {
		return "", ErrTaskIDRequired
	}
	if strings.ContainsAny(id, " \t\r\n/") {
		return "", fmt.Errorf("invalid task id: %s", args[0])
	}
	return id, nil
}

// resolveTask parses the id argument, refreshes the collection and returns
// the cached task. On failure it prints the error and returns the exit code.
func resolveTask(ctx context.Context, env *Env, args []string, errOut io.Writer) (service.Task, int) {
	id, err := ParseTaskID(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}

	if err := env.Engine.Refresh(ctx); err != nil {
		return service.Task{}, reportError(errOut, err)
	}

	task, ok := env.Engine.Task(id)
	if !ok {
		fmt.Fprintf(errOut, "error: task not found: %s\n", id)
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}

// reportError prints a failed engine call and maps it to an exit code.
// Engine failures carry a fixed message; the raw cause only picks the code.
func reportError(errOut io.Writer, err error) int {
	fmt.Fprintf(errOut, "error: %s\n", err)
	if errors.Is(err, service.ErrUnauthorized) {
		fmt.Fprintln(errOut, "error: session expired or revoked (run: taskman login)")
	}
	var actionErr *engine.ActionError
	if errors.As(err, &actionErr) {
		return exitcode.ForError(actionErr.Err)
	}
	if errors.Is(err, engine.ErrBusy) {
		return exitcode.BackendError
	}
	return exitcode.ForError(err)
}
